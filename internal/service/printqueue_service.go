package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"tapneat/internal/core/domain"
	"tapneat/internal/core/ports"
	"tapneat/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxClaimBatch = 50

var frontendSuffixRe = regexp.MustCompile(`(?i)/frontend.*$`)

// PrintQueueServiceImpl implements ports.PrintQueueService.
type PrintQueueServiceImpl struct {
	jobs         ports.PrintJobRepository
	receiptBase  string
	defaultBatch int
	log          zerolog.Logger
}

// NewPrintQueueService creates a new PrintQueueServiceImpl. publicBaseURL is
// normalized once here; defaultBatch caps claims that pass no limit.
func NewPrintQueueService(jobs ports.PrintJobRepository, publicBaseURL string, defaultBatch int, log zerolog.Logger) *PrintQueueServiceImpl {
	if defaultBatch <= 0 {
		defaultBatch = 10
	}
	return &PrintQueueServiceImpl{
		jobs:         jobs,
		receiptBase:  NormalizeBaseURL(publicBaseURL),
		defaultBatch: defaultBatch,
		log:          log,
	}
}

// NormalizeBaseURL cleans a configured public base URL. Deployments have
// shipped values with a stray /frontend page suffix or with the app path
// duplicated (host/app/app); both would break the printed QR link.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = frontendSuffixRe.ReplaceAllString(raw, "")
	raw = strings.TrimRight(raw, "/")

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	deduped := segments[:0]
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if len(deduped) > 0 && strings.EqualFold(deduped[len(deduped)-1], seg) {
			continue
		}
		deduped = append(deduped, seg)
	}
	u.Path = ""
	if len(deduped) > 0 {
		u.Path = "/" + strings.Join(deduped, "/")
	}
	return u.String()
}

// Enqueue inserts a pending job carrying everything the receipt needs.
func (s *PrintQueueServiceImpl) Enqueue(ctx context.Context, req ports.EnqueueRequest) (*domain.PrintJob, error) {
	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	job := &domain.PrintJob{
		ID:            uuid.New(),
		EmployeeName:  req.EmployeeName,
		EmployeeCode:  req.EmployeeCode,
		Site:          req.Site,
		LedgerEntryID: req.LedgerEntryID,
		MealLabel:     req.MealLabel,
		Amount:        req.Amount,
		Balance:       req.Balance,
		OccurredAt:    occurredAt,
		Status:        domain.PrintJobPending,
		CreatedAt:     time.Now().UTC(),
	}
	if req.LedgerEntryID != nil {
		job.ReceiptURL = s.receiptBase + "/receipt?id=" + req.LedgerEntryID.String()
	}

	if err := s.jobs.Enqueue(ctx, job); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("enqueue print job: %w", err))
	}

	s.log.Info().
		Str("job_id", job.ID.String()).
		Str("emp_id", job.EmployeeCode).
		Str("meal", job.MealLabel).
		Msg("print job queued")

	return job, nil
}

// Claim hands out up to limit pending jobs, marking them printing.
func (s *PrintQueueServiceImpl) Claim(ctx context.Context, limit int) ([]domain.PrintJob, error) {
	if limit <= 0 {
		limit = s.defaultBatch
	}
	if limit > maxClaimBatch {
		limit = maxClaimBatch
	}

	jobs, err := s.jobs.ClaimBatch(ctx, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("claim print jobs: %w", err))
	}
	if len(jobs) > 0 {
		s.log.Info().Int("count", len(jobs)).Msg("print jobs claimed")
	}
	return jobs, nil
}

// GetJob fetches one job by id for operator inspection.
func (s *PrintQueueServiceImpl) GetJob(ctx context.Context, id uuid.UUID) (*domain.PrintJob, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get print job: %w", err))
	}
	if job == nil {
		return nil, apperror.ErrNotFound("print job")
	}
	return job, nil
}

// Complete reports a successful print. Repeated reports are no-ops.
func (s *PrintQueueServiceImpl) Complete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.jobs.MarkTerminal(ctx, id, domain.PrintJobCompleted, nil)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("complete print job: %w", err))
	}
	if !ok {
		s.log.Debug().Str("job_id", id.String()).Msg("job already settled, ignoring completion report")
		return nil
	}
	s.log.Info().Str("job_id", id.String()).Msg("print job completed")
	return nil
}

// Fail reports a failed print with its cause. Repeated reports are no-ops.
func (s *PrintQueueServiceImpl) Fail(ctx context.Context, id uuid.UUID, detail string) error {
	var detailPtr *string
	if detail != "" {
		detailPtr = &detail
	}

	ok, err := s.jobs.MarkTerminal(ctx, id, domain.PrintJobFailed, detailPtr)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("fail print job: %w", err))
	}
	if !ok {
		s.log.Debug().Str("job_id", id.String()).Msg("job already settled, ignoring failure report")
		return nil
	}
	s.log.Warn().Str("job_id", id.String()).Str("detail", detail).Msg("print job failed")
	return nil
}
