package domain

import (
	"time"

	"github.com/google/uuid"
)

// Employee is a card holder with a wallet balance. The balance is only ever
// mutated through ledger operations so that every change has an audit row.
type Employee struct {
	ID        uuid.UUID `json:"id"`
	RFIDTag   string    `json:"rfid_number"`
	Code      string    `json:"emp_id"`
	Name      string    `json:"emp_name"`
	Site      string    `json:"site_name"`
	Shift     string    `json:"shift"`
	Balance   int64     `json:"-"` // paise, >= 0
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
