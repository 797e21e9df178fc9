package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerType represents the kind of balance change.
type LedgerType string

const (
	LedgerDeduction LedgerType = "deduction"
	LedgerRecharge  LedgerType = "recharge"
)

// FulfillmentStatus tracks whether the ordered meal was handed over. It is the
// only mutable field of a ledger entry, updated from the receipt page.
type FulfillmentStatus string

const (
	FulfillmentPending   FulfillmentStatus = "Pending"
	FulfillmentDelivered FulfillmentStatus = "Delivered"
	FulfillmentCancelled FulfillmentStatus = "Cancelled"
)

// LedgerEntry is an immutable audit record of one balance change. Employee
// identity fields are denormalized so history survives employee edits.
type LedgerEntry struct {
	ID                uuid.UUID         `json:"id"`
	EmployeeID        uuid.UUID         `json:"employee_id"`
	RFIDTag           string            `json:"rfid_number"`
	EmployeeCode      string            `json:"emp_id"`
	EmployeeName      string            `json:"emp_name"`
	Type              LedgerType        `json:"transaction_type"`
	FulfillmentStatus FulfillmentStatus `json:"order_status"`
	MealCategory      *MealCategory     `json:"meal_category,omitempty"` // nil for recharges
	Amount            int64             `json:"-"`                       // paise, > 0
	PreviousBalance   int64             `json:"-"`
	NewBalance        int64             `json:"-"`
	OccurredAt        time.Time         `json:"occurred_at"`
	CreatedAt         time.Time         `json:"created_at"`
}
