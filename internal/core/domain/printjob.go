package domain

import (
	"time"

	"github.com/google/uuid"
)

// PrintJobStatus represents the lifecycle state of a print job.
// pending -> printing -> {completed, failed}; there is no automatic path back
// to pending from failed.
type PrintJobStatus string

const (
	PrintJobPending   PrintJobStatus = "pending"
	PrintJobPrinting  PrintJobStatus = "printing"
	PrintJobCompleted PrintJobStatus = "completed"
	PrintJobFailed    PrintJobStatus = "failed"
)

// PrintJob is one unit of printer work. Fields are denormalized from the
// originating ledger entry because the dispatcher never queries the ledger.
type PrintJob struct {
	ID            uuid.UUID      `json:"id"`
	EmployeeName  string         `json:"employee_name"`
	EmployeeCode  string         `json:"employee_id"`
	Site          string         `json:"site"`
	LedgerEntryID *uuid.UUID     `json:"transaction_id,omitempty"`
	MealLabel     string         `json:"meal_type"`
	Amount        int64          `json:"-"` // paise
	Balance       int64          `json:"-"` // paise, post-deduction
	OccurredAt    time.Time      `json:"timestamp"`
	ReceiptURL    string         `json:"qr_url"`
	Status        PrintJobStatus `json:"status"`
	ErrorDetail   *string        `json:"error,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
}

// IsTerminal returns true if the job is in a final state.
func (j *PrintJob) IsTerminal() bool {
	return j.Status == PrintJobCompleted || j.Status == PrintJobFailed
}
