package ports

import (
	"context"
	"time"

	"tapneat/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EmployeeRepository defines persistence operations for employees.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic
// locking; balance mutations only happen through them.
type EmployeeRepository interface {
	GetByRFID(ctx context.Context, rfid string) (*domain.Employee, error)
	GetByRFIDForUpdate(ctx context.Context, tx pgx.Tx, rfid string) (*domain.Employee, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Employee, error)
	// Search resolves an employee by RFID tag or employee code.
	Search(ctx context.Context, term string) (*domain.Employee, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, newBalance int64) error
	// CreditAll adds amount to every employee's balance and returns the
	// number of rows affected.
	CreditAll(ctx context.Context, amount int64) (int64, error)
}

// LedgerListParams holds filters for listing ledger entries.
type LedgerListParams struct {
	EmployeeID   *uuid.UUID
	Date         *time.Time // calendar day of OccurredAt
	MealCategory *domain.MealCategory
	Limit        int
}

// LedgerRepository defines persistence operations for the audit ledger.
type LedgerRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error)
	List(ctx context.Context, params LedgerListParams) ([]domain.LedgerEntry, error)
	// UpdateFulfillment transitions a pending entry's fulfillment status.
	// Returns false when no pending entry with that id exists.
	UpdateFulfillment(ctx context.Context, id uuid.UUID, status domain.FulfillmentStatus) (bool, error)
}

// PrintJobRepository defines the durable print queue.
type PrintJobRepository interface {
	Enqueue(ctx context.Context, job *domain.PrintJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PrintJob, error)
	// ClaimBatch atomically selects up to limit oldest pending jobs and marks
	// them printing in the same statement, so concurrent pollers never
	// receive overlapping sets.
	ClaimBatch(ctx context.Context, limit int) ([]domain.PrintJob, error)
	// MarkTerminal moves a non-terminal job to completed or failed. Returns
	// false when the job was already terminal (idempotent no-op) or absent.
	MarkTerminal(ctx context.Context, id uuid.UUID, status domain.PrintJobStatus, errDetail *string) (bool, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
