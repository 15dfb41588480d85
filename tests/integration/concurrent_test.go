package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/famstack/famledger/internal/domain"
	"github.com/famstack/famledger/internal/usecase"
)

func TestConcurrentTransfers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	e := newEnv(t)

	t.Run("opposing transfers do not deadlock or lose money", func(t *testing.T) {
		e.DB.TruncateAll(ctx)

		a := e.DB.CreateTestAccount(ctx, testOwner, "A", domain.AccountTypeChecking, decimal.NewFromInt(10000))
		b := e.DB.CreateTestAccount(ctx, testOwner, "B", domain.AccountTypeSavings, decimal.NewFromInt(10000))

		const rounds = 20

		var wg sync.WaitGroup
		errs := make(chan error, rounds*2)

		for i := 0; i < rounds; i++ {
			wg.Add(2)

			go func() {
				defer wg.Done()
				_, err := e.TransferUC.CreateTransfer(ctx, usecase.CreateTransferInput{
					OwnerID:       testOwner,
					FromAccountID: a.ID,
					ToAccountID:   b.ID,
					Amount:        decimal.NewFromInt(7),
				})
				errs <- err
			}()

			go func() {
				defer wg.Done()
				_, err := e.TransferUC.CreateTransfer(ctx, usecase.CreateTransferInput{
					OwnerID:       testOwner,
					FromAccountID: b.ID,
					ToAccountID:   a.ID,
					Amount:        decimal.NewFromInt(3),
				})
				errs <- err
			}()
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Fatalf("concurrent transfer failed: %v", err)
			}
		}

		aAfter, _ := e.AccountRepo.GetByID(ctx, a.ID, testOwner)
		bAfter, _ := e.AccountRepo.GetByID(ctx, b.ID, testOwner)

		// A loses 20*7 and gains 20*3; totals must be conserved.
		wantA := decimal.NewFromInt(10000 - rounds*7 + rounds*3)
		wantB := decimal.NewFromInt(10000 + rounds*7 - rounds*3)

		if !aAfter.CurrentBalance.Equal(wantA) {
			t.Errorf("A balance = %s, want %s", aAfter.CurrentBalance, wantA)
		}

		if !bAfter.CurrentBalance.Equal(wantB) {
			t.Errorf("B balance = %s, want %s", bAfter.CurrentBalance, wantB)
		}

		total := aAfter.CurrentBalance.Add(bAfter.CurrentBalance)
		if !total.Equal(decimal.NewFromInt(20000)) {
			t.Errorf("total = %s, money not conserved", total)
		}
	})

	t.Run("concurrent cancels reverse exactly once", func(t *testing.T) {
		e.DB.TruncateAll(ctx)

		a := e.DB.CreateTestAccount(ctx, testOwner, "A", domain.AccountTypeChecking, decimal.NewFromInt(1000))
		b := e.DB.CreateTestAccount(ctx, testOwner, "B", domain.AccountTypeSavings, decimal.Zero)

		transfer, err := e.TransferUC.CreateTransfer(ctx, usecase.CreateTransferInput{
			OwnerID:       testOwner,
			FromAccountID: a.ID,
			ToAccountID:   b.ID,
			Amount:        decimal.NewFromInt(100),
		})
		if err != nil {
			t.Fatalf("CreateTransfer() error = %v", err)
		}

		const attempts = 5

		var wg sync.WaitGroup
		results := make(chan error, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- e.TransferUC.DeleteTransfer(ctx, transfer.ID, testOwner)
			}()
		}

		wg.Wait()
		close(results)

		succeeded := 0
		for err := range results {
			if err == nil {
				succeeded++
			} else if !errors.Is(err, domain.ErrTransferNotFound) {
				t.Fatalf("unexpected cancel error: %v", err)
			}
		}

		if succeeded != 1 {
			t.Errorf("cancels succeeded = %d, want exactly 1", succeeded)
		}

		aAfter, _ := e.AccountRepo.GetByID(ctx, a.ID, testOwner)
		if !aAfter.CurrentBalance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("A balance = %s, want 1000", aAfter.CurrentBalance)
		}
	})
}
