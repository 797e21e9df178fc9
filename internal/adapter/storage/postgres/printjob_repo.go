package postgres

import (
	"context"
	"errors"
	"fmt"

	"tapneat/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const printJobColumns = `id, employee_name, employee_code, site, ledger_entry_id, meal_label,
		amount, balance, occurred_at, receipt_url, status, error_detail, created_at, completed_at`

// PrintJobRepo implements ports.PrintJobRepository. The claim query relies on
// the (status, created_at) index.
type PrintJobRepo struct {
	pool Pool
}

// NewPrintJobRepo creates a new PrintJobRepo.
func NewPrintJobRepo(pool Pool) *PrintJobRepo {
	return &PrintJobRepo{pool: pool}
}

// Enqueue inserts a new pending print job.
func (r *PrintJobRepo) Enqueue(ctx context.Context, j *domain.PrintJob) error {
	query := `INSERT INTO print_jobs (id, employee_name, employee_code, site, ledger_entry_id, meal_label,
		amount, balance, occurred_at, receipt_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		j.ID, j.EmployeeName, j.EmployeeCode, j.Site, j.LedgerEntryID, j.MealLabel,
		j.Amount, j.Balance, j.OccurredAt, j.ReceiptURL, j.Status, j.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert print job: %w", err)
	}
	return nil
}

// GetByID fetches a print job by id.
func (r *PrintJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PrintJob, error) {
	query := `SELECT ` + printJobColumns + ` FROM print_jobs WHERE id = $1`

	j := &domain.PrintJob{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&j.ID, &j.EmployeeName, &j.EmployeeCode, &j.Site, &j.LedgerEntryID, &j.MealLabel,
		&j.Amount, &j.Balance, &j.OccurredAt, &j.ReceiptURL, &j.Status, &j.ErrorDetail,
		&j.CreatedAt, &j.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get print job: %w", err)
	}
	return j, nil
}

// ClaimBatch atomically selects up to limit oldest pending jobs and marks
// them printing in one statement. SKIP LOCKED keeps concurrent pollers from
// blocking on or double-claiming each other's rows; a plain select followed
// by an update-by-ids would race.
func (r *PrintJobRepo) ClaimBatch(ctx context.Context, limit int) ([]domain.PrintJob, error) {
	query := `UPDATE print_jobs SET status = $1
		WHERE id IN (
			SELECT id FROM print_jobs
			WHERE status = $2
			ORDER BY created_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + printJobColumns

	rows, err := r.pool.Query(ctx, query, domain.PrintJobPrinting, domain.PrintJobPending, limit)
	if err != nil {
		return nil, fmt.Errorf("claim print jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.PrintJob
	for rows.Next() {
		j := domain.PrintJob{}
		err := rows.Scan(
			&j.ID, &j.EmployeeName, &j.EmployeeCode, &j.Site, &j.LedgerEntryID, &j.MealLabel,
			&j.Amount, &j.Balance, &j.OccurredAt, &j.ReceiptURL, &j.Status, &j.ErrorDetail,
			&j.CreatedAt, &j.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan claimed job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claimed jobs: %w", err)
	}
	return jobs, nil
}

// MarkTerminal moves a non-terminal job to completed or failed. Jobs already
// in a terminal state are left untouched and reported as false, making
// duplicate status reports harmless.
func (r *PrintJobRepo) MarkTerminal(ctx context.Context, id uuid.UUID, status domain.PrintJobStatus, errDetail *string) (bool, error) {
	if status != domain.PrintJobCompleted && status != domain.PrintJobFailed {
		return false, fmt.Errorf("non-terminal status %q", status)
	}

	query := `UPDATE print_jobs SET status = $1, error_detail = $2, completed_at = NOW()
		WHERE id = $3 AND status IN ($4, $5)`

	tag, err := r.pool.Exec(ctx, query, status, errDetail, id,
		domain.PrintJobPending, domain.PrintJobPrinting)
	if err != nil {
		return false, fmt.Errorf("mark print job terminal: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
