package postgres

import (
	"context"
	"errors"
	"fmt"

	"tapneat/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `id, rfid_tag, emp_code, emp_name, site, shift, balance, created_at, updated_at`

// EmployeeRepo implements ports.EmployeeRepository.
type EmployeeRepo struct {
	pool Pool
}

// NewEmployeeRepo creates a new EmployeeRepo.
func NewEmployeeRepo(pool Pool) *EmployeeRepo {
	return &EmployeeRepo{pool: pool}
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	e := &domain.Employee{}
	err := row.Scan(
		&e.ID, &e.RFIDTag, &e.Code, &e.Name, &e.Site, &e.Shift,
		&e.Balance, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// GetByRFID fetches an employee by RFID tag (without locking).
func (r *EmployeeRepo) GetByRFID(ctx context.Context, rfid string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE rfid_tag = $1`

	e, err := scanEmployee(r.pool.QueryRow(ctx, query, rfid))
	if err != nil {
		return nil, fmt.Errorf("get employee by rfid: %w", err)
	}
	return e, nil
}

// GetByRFIDForUpdate fetches an employee by RFID tag with pessimistic locking.
// This MUST be called within a transaction; the row lock serializes
// concurrent debits against the same card.
func (r *EmployeeRepo) GetByRFIDForUpdate(ctx context.Context, tx pgx.Tx, rfid string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE rfid_tag = $1 FOR UPDATE`

	e, err := scanEmployee(tx.QueryRow(ctx, query, rfid))
	if err != nil {
		return nil, fmt.Errorf("get employee for update by rfid: %w", err)
	}
	return e, nil
}

// GetByIDForUpdate fetches an employee by id with pessimistic locking.
// This MUST be called within a transaction.
func (r *EmployeeRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 FOR UPDATE`

	e, err := scanEmployee(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get employee for update by id: %w", err)
	}
	return e, nil
}

// Search fetches an employee by RFID tag or employee code.
func (r *EmployeeRepo) Search(ctx context.Context, term string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE rfid_tag = $1 OR emp_code = $1`

	e, err := scanEmployee(r.pool.QueryRow(ctx, query, term))
	if err != nil {
		return nil, fmt.Errorf("search employee: %w", err)
	}
	return e, nil
}

// UpdateBalance sets an employee's balance within a transaction.
func (r *EmployeeRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, newBalance int64) error {
	query := `UPDATE employees SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, newBalance, id)
	if err != nil {
		return fmt.Errorf("update employee balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee not found: %s", id)
	}
	return nil
}

// CreditAll adds amount to every employee's balance in a single statement
// and returns the number of rows affected.
func (r *EmployeeRepo) CreditAll(ctx context.Context, amount int64) (int64, error) {
	query := `UPDATE employees SET balance = balance + $1, updated_at = NOW()`

	tag, err := r.pool.Exec(ctx, query, amount)
	if err != nil {
		return 0, fmt.Errorf("bulk credit employees: %w", err)
	}
	return tag.RowsAffected(), nil
}
