package dto

import (
	"fmt"
	"time"

	"tapneat/internal/core/ports"
	"tapneat/pkg/money"

	"github.com/google/uuid"
)

// PrintEnqueueRequest is the external enqueue payload. Upstream callers
// (kiosk frontend, legacy scan clients) disagree on field names, so each
// field is resolved by an ordered lookup across both objects:
//
//	name:    employee.emp_name, employee.name
//	code:    employee.emp_id, employee.id
//	site:    employee.site, employee.site_name
//	meal:    employee.meal_category, transaction.meal_type, transaction.meal_category
//	amount:  employee.amount, transaction.amount_deducted, transaction.amount
//	balance: employee.balance, transaction.new_balance, transaction.balance
//
// Amounts arrive as rupee strings or JSON numbers.
type PrintEnqueueRequest struct {
	Employee    map[string]any `json:"employee" binding:"required"`
	Transaction map[string]any `json:"transaction" binding:"required"`
}

// ToEnqueueRequest resolves the flexible payload into the service request.
func (r PrintEnqueueRequest) ToEnqueueRequest() (ports.EnqueueRequest, error) {
	name := lookupString(r.Employee, "emp_name", "name")
	code := lookupString(r.Employee, "emp_id", "id")
	site := lookupString(r.Employee, "site", "site_name")
	meal := firstNonEmpty(
		lookupString(r.Employee, "meal_category"),
		lookupString(r.Transaction, "meal_type", "meal_category"),
	)

	amount, err := lookupAmount(r.Employee, r.Transaction, []string{"amount"}, []string{"amount_deducted", "amount"})
	if err != nil {
		return ports.EnqueueRequest{}, fmt.Errorf("amount: %w", err)
	}
	balance, err := lookupAmount(r.Employee, r.Transaction, []string{"balance"}, []string{"new_balance", "balance"})
	if err != nil {
		return ports.EnqueueRequest{}, fmt.Errorf("balance: %w", err)
	}

	var entryID *uuid.UUID
	if raw := lookupString(r.Transaction, "id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return ports.EnqueueRequest{}, fmt.Errorf("transaction id: %w", err)
		}
		entryID = &parsed
	}

	occurredAt := time.Now().UTC()
	if raw := lookupString(r.Employee, "timestamp"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			occurredAt = parsed
		}
	}

	return ports.EnqueueRequest{
		EmployeeName:  name,
		EmployeeCode:  code,
		Site:          site,
		LedgerEntryID: entryID,
		MealLabel:     meal,
		Amount:        amount,
		Balance:       balance,
		OccurredAt:    occurredAt,
	}, nil
}

func lookupString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch s := v.(type) {
			case string:
				if s != "" {
					return s
				}
			case float64:
				return fmt.Sprintf("%v", s)
			}
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// lookupAmount resolves a money field, trying employee keys before
// transaction keys. JSON numbers are rupees.
func lookupAmount(emp, txn map[string]any, empKeys, txnKeys []string) (int64, error) {
	for _, k := range empKeys {
		if v, ok := emp[k]; ok {
			return coerceRupees(v)
		}
	}
	for _, k := range txnKeys {
		if v, ok := txn[k]; ok {
			return coerceRupees(v)
		}
	}
	return 0, fmt.Errorf("field missing")
}

func coerceRupees(v any) (int64, error) {
	switch val := v.(type) {
	case string:
		return money.ParseRupees(val)
	case float64:
		return money.ParseRupees(fmt.Sprintf("%v", val))
	default:
		return 0, fmt.Errorf("unsupported value %T", v)
	}
}
