package dto

import (
	"fmt"
	"time"

	"tapneat/internal/core/domain"
	"tapneat/pkg/money"

	"github.com/google/uuid"
)

// ScanRequest is the request body for a card tap.
type ScanRequest struct {
	RFIDNumber string `json:"rfid_number" binding:"required,max=64"`
}

// RechargeRequest is the request body for wallet recharge. Either a single
// employee_id or all=true for a bulk credit.
type RechargeRequest struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Amount     string  `json:"amount" binding:"required"`
	All        bool    `json:"all,omitempty"`
}

// StatusUpdateRequest is the dispatcher's print-job status report.
type StatusUpdateRequest struct {
	JobID  string  `json:"job_id" binding:"required"`
	Status string  `json:"status" binding:"required,oneof=completed failed"`
	Error  *string `json:"error,omitempty"`
}

// FulfillmentRequest marks a receipt delivered or cancelled.
type FulfillmentRequest struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"required,oneof=Delivered Cancelled"`
}

// EmployeeResponse is the wire view of an employee. Balance is rupees.
type EmployeeResponse struct {
	ID         string `json:"id"`
	RFIDNumber string `json:"rfid_number"`
	EmpID      string `json:"emp_id"`
	EmpName    string `json:"emp_name"`
	SiteName   string `json:"site_name"`
	Shift      string `json:"shift,omitempty"`
	Balance    string `json:"balance"`
}

// TransactionResponse is the wire view of a ledger entry. Amounts are
// rupees; occurred_at is RFC 3339.
type TransactionResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmpID           string  `json:"emp_id"`
	EmpName         string  `json:"emp_name"`
	TransactionType string  `json:"transaction_type"`
	MealCategory    *string `json:"meal_category,omitempty"`
	Amount          string  `json:"amount"`
	PreviousBalance string  `json:"previous_balance"`
	NewBalance      string  `json:"new_balance"`
	OrderStatus     string  `json:"order_status"`
	OccurredAt      string  `json:"occurred_at"`
}

// MealInfoResponse answers the meal-window inquiry.
type MealInfoResponse struct {
	MealCategory string `json:"meal_category"`
	Price        string `json:"price"`
	TimeSlot     string `json:"time_slot"`
}

// ScanResponse is the success payload of a deducting tap.
type ScanResponse struct {
	Employee    EmployeeResponse    `json:"employee"`
	Transaction TransactionResponse `json:"transaction"`
	Meal        MealInfoResponse    `json:"meal"`
}

// RechargeResponse covers both single and bulk recharges.
type RechargeResponse struct {
	Employee    *EmployeeResponse    `json:"employee,omitempty"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	Credited    *int64               `json:"credited,omitempty"` // bulk: row count
}

// PrintJobResponse is the wire view of a print job, both for enqueue
// acknowledgements and for the dispatcher claim feed.
type PrintJobResponse struct {
	ID            string  `json:"id"`
	EmployeeName  string  `json:"employee_name"`
	EmployeeID    string  `json:"employee_id"`
	Site          string  `json:"site"`
	TransactionID *string `json:"transaction_id,omitempty"`
	MealType      string  `json:"meal_type"`
	Amount        string  `json:"amount"`
	Balance       string  `json:"balance"`
	Timestamp     string  `json:"timestamp"`
	QRURL         string  `json:"qr_url"`
	Status        string  `json:"status"`
	Error         *string `json:"error,omitempty"`
}

// ClaimResponse wraps the dispatcher claim feed.
type ClaimResponse struct {
	Jobs []PrintJobResponse `json:"jobs"`
}

// FromEmployee converts a domain employee to its wire view.
func FromEmployee(e *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID.String(),
		RFIDNumber: e.RFIDTag,
		EmpID:      e.Code,
		EmpName:    e.Name,
		SiteName:   e.Site,
		Shift:      e.Shift,
		Balance:    money.FormatRupees(e.Balance),
	}
}

// FromLedgerEntry converts a ledger entry to its wire view.
func FromLedgerEntry(entry *domain.LedgerEntry) TransactionResponse {
	var meal *string
	if entry.MealCategory != nil {
		s := string(*entry.MealCategory)
		meal = &s
	}
	return TransactionResponse{
		ID:              entry.ID.String(),
		EmployeeID:      entry.EmployeeID.String(),
		EmpID:           entry.EmployeeCode,
		EmpName:         entry.EmployeeName,
		TransactionType: string(entry.Type),
		MealCategory:    meal,
		Amount:          money.FormatRupees(entry.Amount),
		PreviousBalance: money.FormatRupees(entry.PreviousBalance),
		NewBalance:      money.FormatRupees(entry.NewBalance),
		OrderStatus:     string(entry.FulfillmentStatus),
		OccurredAt:      entry.OccurredAt.UTC().Format(time.RFC3339),
	}
}

// FromMealSlot converts a classified slot to its wire view.
func FromMealSlot(slot domain.MealSlot) MealInfoResponse {
	return MealInfoResponse{
		MealCategory: string(slot.Category),
		Price:        money.FormatRupees(slot.Price),
		TimeSlot:     slot.Window,
	}
}

// FromPrintJob converts a print job to its wire view.
func FromPrintJob(j *domain.PrintJob) PrintJobResponse {
	var txnID *string
	if j.LedgerEntryID != nil {
		s := j.LedgerEntryID.String()
		txnID = &s
	}
	return PrintJobResponse{
		ID:            j.ID.String(),
		EmployeeName:  j.EmployeeName,
		EmployeeID:    j.EmployeeCode,
		Site:          j.Site,
		TransactionID: txnID,
		MealType:      j.MealLabel,
		Amount:        money.FormatRupees(j.Amount),
		Balance:       money.FormatRupees(j.Balance),
		Timestamp:     j.OccurredAt.UTC().Format(time.RFC3339),
		QRURL:         j.ReceiptURL,
		Status:        string(j.Status),
		Error:         j.ErrorDetail,
	}
}

// ToDomain converts a claimed wire job back into a domain job on the
// dispatcher side.
func (r PrintJobResponse) ToDomain() (domain.PrintJob, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return domain.PrintJob{}, fmt.Errorf("parse job id: %w", err)
	}
	amount, err := money.ParseRupees(r.Amount)
	if err != nil {
		return domain.PrintJob{}, fmt.Errorf("parse amount: %w", err)
	}
	balance, err := money.ParseRupees(r.Balance)
	if err != nil {
		return domain.PrintJob{}, fmt.Errorf("parse balance: %w", err)
	}
	occurredAt, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return domain.PrintJob{}, fmt.Errorf("parse timestamp: %w", err)
	}

	var entryID *uuid.UUID
	if r.TransactionID != nil {
		parsed, err := uuid.Parse(*r.TransactionID)
		if err != nil {
			return domain.PrintJob{}, fmt.Errorf("parse transaction id: %w", err)
		}
		entryID = &parsed
	}

	return domain.PrintJob{
		ID:            id,
		EmployeeName:  r.EmployeeName,
		EmployeeCode:  r.EmployeeID,
		Site:          r.Site,
		LedgerEntryID: entryID,
		MealLabel:     r.MealType,
		Amount:        amount,
		Balance:       balance,
		OccurredAt:    occurredAt,
		ReceiptURL:    r.QRURL,
		Status:        domain.PrintJobStatus(r.Status),
		ErrorDetail:   r.Error,
	}, nil
}
