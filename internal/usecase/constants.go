package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a database transaction so a stuck
	// transfer cannot hold account row locks indefinitely.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultPageSize is the page size when a listing omits the limit.
	DefaultPageSize = 50

	// MaxPageSize caps a single listing page.
	MaxPageSize = 100

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)

// Sort fields and directions accepted by transfer listing.
const (
	SortByDate   = "date"
	SortByAmount = "amount"
)
