package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	userID  string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "famledger-cli",
		Short: "famledger CLI tool",
		Long:  `A command line interface for the famledger transfer API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the famledger API")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User ID to act as")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	})

	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer operations",
	}

	var (
		fromAccount string
		toAccount   string
		amount      string
		description string
	)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a transfer between two accounts",
		Run: func(cmd *cobra.Command, args []string) {
			createTransfer(fromAccount, toAccount, amount, description)
		},
	}
	createCmd.Flags().StringVar(&fromAccount, "from", "", "Source account ID")
	createCmd.Flags().StringVar(&toAccount, "to", "", "Destination account ID")
	createCmd.Flags().StringVar(&amount, "amount", "", "Amount to transfer")
	createCmd.Flags().StringVar(&description, "description", "", "Transfer description")
	createCmd.MarkFlagRequired("from")
	createCmd.MarkFlagRequired("to")
	createCmd.MarkFlagRequired("amount")

	cancelCmd := &cobra.Command{
		Use:   "cancel [transfer-id]",
		Short: "Cancel a transfer and reverse its balance effect",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cancelTransfer(args[0])
		},
	}

	transferCmd.AddCommand(createCmd, cancelCmd)
	rootCmd.AddCommand(ledgerCmd, transferCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func doRequest(method, path string, body []byte) (*http.Response, []byte) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}

	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	return resp, respBody
}

func checkConsistency() {
	resp, body := doRequest(http.MethodGet, "/api/v1/ledger/consistency", nil)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result struct {
		Consistent bool   `json:"consistent"`
		Detail     string `json:"detail"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if !result.Consistent {
		fmt.Printf("Ledger INCONSISTENT: %s\n", result.Detail)
		os.Exit(1)
	}

	fmt.Println("Ledger consistent")
}

func createTransfer(from, to, amount, description string) {
	payload, _ := json.Marshal(map[string]string{
		"from_account_id": from,
		"to_account_id":   to,
		"amount":          amount,
		"description":     description,
	})

	resp, body := doRequest(http.MethodPost, "/api/v1/transfers", payload)

	if resp.StatusCode != http.StatusCreated {
		fmt.Printf("Transfer FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	fmt.Printf("Transfer created\n%s\n", string(body))
}

func cancelTransfer(id string) {
	resp, body := doRequest(http.MethodDelete, "/api/v1/transfers/"+id, nil)

	if resp.StatusCode != http.StatusNoContent {
		fmt.Printf("Cancel FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	fmt.Println("Transfer cancelled")
}
