package integration

import (
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	adaptershttp "github.com/famstack/famledger/internal/adapter/http"
	"github.com/famstack/famledger/internal/adapter/http/handler"
	"github.com/famstack/famledger/internal/adapter/repository/postgres"
	redisrepo "github.com/famstack/famledger/internal/adapter/repository/redis"
	"github.com/famstack/famledger/internal/infrastructure/metrics"
	"github.com/famstack/famledger/internal/usecase"
	"github.com/famstack/famledger/tests/testutil"
)

const testOwner = "owner-1"

// env bundles the wired stack for one integration test.
type env struct {
	DB          *testutil.TestDB
	Router      http.Handler
	AccountRepo *postgres.AccountRepository
	TransferUC  *usecase.TransferUseCase
}

// newEnv wires the full stack against the test database. Redis is an
// in-process miniredis so the suite only needs PostgreSQL.
func newEnv(t *testing.T) *env {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	pool := testDB.Pool

	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier(usecase.DefaultTransactionTimeout)

	logger := zerolog.Nop()

	accountUC := usecase.NewAccountUseCase(accountRepo, idGen)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, entryRepo, idGen, logger)
	entryUC := usecase.NewEntryUseCase(entryRepo)
	reconciliationUC := usecase.NewReconciliationUseCase(txManager, accountRepo, entryRepo, retrier)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo, nil)

	m := metrics.New()

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC, entryUC, reconciliationUC),
		TransferHandler:  handler.NewTransferHandler(transferUC, m),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: redisrepo.NewIdempotencyStore(redisClient),
		Metrics:          m,
		Logger:           logger,
	})

	return &env{
		DB:          testDB,
		Router:      router,
		AccountRepo: accountRepo,
		TransferUC:  transferUC,
	}
}
