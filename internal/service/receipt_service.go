package service

import (
	"context"
	"fmt"

	"tapneat/internal/core/domain"
	"tapneat/internal/core/ports"
	"tapneat/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultListLimit = 100

// ReceiptServiceImpl implements ports.ReceiptService.
type ReceiptServiceImpl struct {
	ledgerRepo ports.LedgerRepository
	log        zerolog.Logger
}

// NewReceiptService creates a new ReceiptServiceImpl.
func NewReceiptService(ledgerRepo ports.LedgerRepository, log zerolog.Logger) *ReceiptServiceImpl {
	return &ReceiptServiceImpl{ledgerRepo: ledgerRepo, log: log}
}

// Get fetches the ledger entry behind a printed receipt QR.
func (s *ReceiptServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	entry, err := s.ledgerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get receipt: %w", err))
	}
	if entry == nil {
		return nil, apperror.ErrNotFound("receipt")
	}
	return entry, nil
}

// UpdateFulfillment marks a pending order delivered or cancelled.
func (s *ReceiptServiceImpl) UpdateFulfillment(ctx context.Context, id uuid.UUID, status domain.FulfillmentStatus) error {
	if status != domain.FulfillmentDelivered && status != domain.FulfillmentCancelled {
		return apperror.Validation("fulfillment status must be Delivered or Cancelled")
	}

	ok, err := s.ledgerRepo.UpdateFulfillment(ctx, id, status)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("update fulfillment: %w", err))
	}
	if !ok {
		return apperror.ErrNotFound("pending receipt")
	}

	s.log.Info().
		Str("entry_id", id.String()).
		Str("status", string(status)).
		Msg("fulfillment updated")
	return nil
}

// ListTransactions returns filtered ledger history, newest first.
func (s *ReceiptServiceImpl) ListTransactions(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, error) {
	if params.Limit <= 0 || params.Limit > defaultListLimit {
		params.Limit = defaultListLimit
	}

	entries, err := s.ledgerRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list transactions: %w", err))
	}
	return entries, nil
}
