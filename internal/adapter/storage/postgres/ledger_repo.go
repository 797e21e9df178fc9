package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tapneat/internal/core/domain"
	"tapneat/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ledgerColumns = `id, employee_id, rfid_tag, emp_code, emp_name, entry_type,
		fulfillment_status, meal_category, amount, previous_balance, new_balance, occurred_at, created_at`

// LedgerRepo implements ports.LedgerRepository.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Create inserts a ledger entry within a database transaction. Entries are
// append-only; only the fulfillment status is ever updated afterwards.
func (r *LedgerRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (id, employee_id, rfid_tag, emp_code, emp_name, entry_type,
		fulfillment_status, meal_category, amount, previous_balance, new_balance, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.EmployeeID, e.RFIDTag, e.EmployeeCode, e.EmployeeName, e.Type,
		e.FulfillmentStatus, e.MealCategory, e.Amount, e.PreviousBalance, e.NewBalance,
		e.OccurredAt, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	e := &domain.LedgerEntry{}
	err := row.Scan(
		&e.ID, &e.EmployeeID, &e.RFIDTag, &e.EmployeeCode, &e.EmployeeName, &e.Type,
		&e.FulfillmentStatus, &e.MealCategory, &e.Amount, &e.PreviousBalance, &e.NewBalance,
		&e.OccurredAt, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// GetByID fetches a ledger entry by id.
func (r *LedgerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id = $1`

	e, err := scanLedgerEntry(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return e, nil
}

// List fetches ledger entries with filtering, newest first.
func (r *LedgerRepo) List(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *params.EmployeeID)
		argIdx++
	}
	if params.Date != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at::date = $%d::date", argIdx))
		args = append(args, *params.Date)
		argIdx++
	}
	if params.MealCategory != nil {
		conditions = append(conditions, fmt.Sprintf("meal_category = $%d", argIdx))
		args = append(args, *params.MealCategory)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT `+ledgerColumns+` FROM ledger_entries %s ORDER BY occurred_at DESC LIMIT $%d`, where, argIdx)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e := domain.LedgerEntry{}
		err := rows.Scan(
			&e.ID, &e.EmployeeID, &e.RFIDTag, &e.EmployeeCode, &e.EmployeeName, &e.Type,
			&e.FulfillmentStatus, &e.MealCategory, &e.Amount, &e.PreviousBalance, &e.NewBalance,
			&e.OccurredAt, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return entries, nil
}

// UpdateFulfillment transitions a pending entry to the given status. Returns
// false when no pending entry with that id exists, so repeated reports and
// reports against settled entries are no-ops.
func (r *LedgerRepo) UpdateFulfillment(ctx context.Context, id uuid.UUID, status domain.FulfillmentStatus) (bool, error) {
	query := `UPDATE ledger_entries SET fulfillment_status = $1 WHERE id = $2 AND fulfillment_status = $3`

	tag, err := r.pool.Exec(ctx, query, status, id, domain.FulfillmentPending)
	if err != nil {
		return false, fmt.Errorf("update fulfillment status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
