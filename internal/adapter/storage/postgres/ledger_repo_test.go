package postgres

import (
	"context"
	"testing"
	"time"

	"tapneat/internal/core/domain"
	"tapneat/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(employeeID uuid.UUID) *domain.LedgerEntry {
	now := time.Now().UTC().Truncate(time.Microsecond)
	meal := domain.MealLunch
	return &domain.LedgerEntry{
		ID:                uuid.New(),
		EmployeeID:        employeeID,
		RFIDTag:           "RFID001",
		EmployeeCode:      "EMP001",
		EmployeeName:      "Asha Verma",
		Type:              domain.LedgerDeduction,
		FulfillmentStatus: domain.FulfillmentPending,
		MealCategory:      &meal,
		Amount:            5000,
		PreviousBalance:   100000,
		NewBalance:        95000,
		OccurredAt:        now,
		CreatedAt:         now,
	}
}

func ledgerColumnNames() []string {
	return []string{"id", "employee_id", "rfid_tag", "emp_code", "emp_name", "entry_type",
		"fulfillment_status", "meal_category", "amount", "previous_balance", "new_balance",
		"occurred_at", "created_at"}
}

func ledgerRow(e *domain.LedgerEntry) *pgxmock.Rows {
	return pgxmock.NewRows(ledgerColumnNames()).AddRow(
		e.ID, e.EmployeeID, e.RFIDTag, e.EmployeeCode, e.EmployeeName, e.Type,
		e.FulfillmentStatus, e.MealCategory, e.Amount, e.PreviousBalance, e.NewBalance,
		e.OccurredAt, e.CreatedAt,
	)
}

func TestLedgerRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	e := newTestEntry(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledger_entries").
		WithArgs(e.ID, e.EmployeeID, e.RFIDTag, e.EmployeeCode, e.EmployeeName, e.Type,
			e.FulfillmentStatus, e.MealCategory, e.Amount, e.PreviousBalance, e.NewBalance,
			e.OccurredAt, e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, e)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	e := newTestEntry(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM ledger_entries WHERE id").
		WithArgs(e.ID).
		WillReturnRows(ledgerRow(e))

	result, err := repo.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, e.Amount, result.Amount)
	assert.Equal(t, domain.MealLunch, *result.MealCategory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM ledger_entries WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(ledgerColumnNames()))

	result, err := repo.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestLedgerRepo_List_ByEmployee(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	employeeID := uuid.New()
	e1 := newTestEntry(employeeID)
	e2 := newTestEntry(employeeID)

	mock.ExpectQuery("SELECT .+ FROM ledger_entries WHERE employee_id = \\$1 ORDER BY occurred_at DESC LIMIT \\$2").
		WithArgs(employeeID, 100).
		WillReturnRows(ledgerRow(e1).AddRow(
			e2.ID, e2.EmployeeID, e2.RFIDTag, e2.EmployeeCode, e2.EmployeeName, e2.Type,
			e2.FulfillmentStatus, e2.MealCategory, e2.Amount, e2.PreviousBalance, e2.NewBalance,
			e2.OccurredAt, e2.CreatedAt,
		))

	entries, err := repo.List(context.Background(), ports.LedgerListParams{EmployeeID: &employeeID})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_List_AllFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	employeeID := uuid.New()
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	meal := domain.MealLunch

	mock.ExpectQuery("SELECT .+ FROM ledger_entries WHERE employee_id = \\$1 AND occurred_at::date = \\$2::date AND meal_category = \\$3").
		WithArgs(employeeID, date, meal, 25).
		WillReturnRows(pgxmock.NewRows(ledgerColumnNames()))

	entries, err := repo.List(context.Background(), ports.LedgerListParams{
		EmployeeID:   &employeeID,
		Date:         &date,
		MealCategory: &meal,
		Limit:        25,
	})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_UpdateFulfillment(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE ledger_entries SET fulfillment_status").
		WithArgs(domain.FulfillmentDelivered, id, domain.FulfillmentPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.UpdateFulfillment(context.Background(), id, domain.FulfillmentDelivered)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLedgerRepo_UpdateFulfillment_AlreadySettled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE ledger_entries SET fulfillment_status").
		WithArgs(domain.FulfillmentCancelled, id, domain.FulfillmentPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.UpdateFulfillment(context.Background(), id, domain.FulfillmentCancelled)
	require.NoError(t, err)
	assert.False(t, ok)
}
