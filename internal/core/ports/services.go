package ports

import (
	"context"
	"time"

	"tapneat/internal/core/domain"

	"github.com/google/uuid"
)

// ScanResult is the success payload of a card scan.
type ScanResult struct {
	Employee *domain.Employee
	Entry    *domain.LedgerEntry
	Slot     domain.MealSlot
}

// WalletService moves money against employee wallets.
type WalletService interface {
	// Deduct resolves the card, prices the current meal window and debits the
	// wallet, writing the balance update and the ledger entry atomically.
	Deduct(ctx context.Context, rfid string) (*ScanResult, error)
	// Credit adds amount to one employee's balance and records a recharge
	// ledger entry.
	Credit(ctx context.Context, employeeID uuid.UUID, amount int64) (*domain.Employee, *domain.LedgerEntry, error)
	// CreditAll adds amount to every employee's balance, returning the count.
	CreditAll(ctx context.Context, amount int64) (int64, error)
	// Lookup resolves an employee by RFID tag or employee code.
	Lookup(ctx context.Context, term string) (*domain.Employee, error)
}

// EnqueueRequest carries the denormalized fields of a new print job.
type EnqueueRequest struct {
	EmployeeName  string
	EmployeeCode  string
	Site          string
	LedgerEntryID *uuid.UUID
	MealLabel     string
	Amount        int64 // paise
	Balance       int64 // paise
	OccurredAt    time.Time
}

// PrintQueueService manages the durable print queue.
type PrintQueueService interface {
	Enqueue(ctx context.Context, req EnqueueRequest) (*domain.PrintJob, error)
	Claim(ctx context.Context, limit int) ([]domain.PrintJob, error)
	// GetJob fetches a single job by id regardless of its status.
	GetJob(ctx context.Context, id uuid.UUID) (*domain.PrintJob, error)
	// Complete and Fail are idempotent; reporting a terminal job again is a
	// no-op, not an error.
	Complete(ctx context.Context, id uuid.UUID) error
	Fail(ctx context.Context, id uuid.UUID, detail string) error
}

// ReceiptService serves the public receipt page and transaction history.
type ReceiptService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error)
	UpdateFulfillment(ctx context.Context, id uuid.UUID, status domain.FulfillmentStatus) error
	ListTransactions(ctx context.Context, params LedgerListParams) ([]domain.LedgerEntry, error)
}

// ScanGuard suppresses accidental double taps of the same card.
type ScanGuard interface {
	// FirstTap returns true when no tap of this card was seen within ttl.
	FirstTap(ctx context.Context, rfid string, ttl time.Duration) (bool, error)
}

// JobSource is the dispatcher's view of the print queue.
type JobSource interface {
	Claim(ctx context.Context, limit int) ([]domain.PrintJob, error)
	Report(ctx context.Context, id uuid.UUID, status domain.PrintJobStatus, errDetail string) error
}

// ReceiptRenderer builds the printer byte stream for a claimed job.
type ReceiptRenderer interface {
	Render(ctx context.Context, job domain.PrintJob) []byte
}

// PrinterTransport delivers a rendered receipt to the physical printer.
type PrinterTransport interface {
	Send(ctx context.Context, data []byte) error
}
