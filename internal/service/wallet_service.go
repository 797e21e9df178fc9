package service

import (
	"context"
	"fmt"
	"time"

	"tapneat/internal/core/domain"
	"tapneat/internal/core/ports"
	"tapneat/pkg/apperror"
	"tapneat/pkg/money"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	empRepo    ports.EmployeeRepository
	ledgerRepo ports.LedgerRepository
	guard      ports.ScanGuard
	transactor ports.DBTransactor
	debounce   time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	empRepo ports.EmployeeRepository,
	ledgerRepo ports.LedgerRepository,
	guard ports.ScanGuard,
	transactor ports.DBTransactor,
	debounce time.Duration,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		empRepo:    empRepo,
		ledgerRepo: ledgerRepo,
		guard:      guard,
		transactor: transactor,
		debounce:   debounce,
		now:        time.Now,
		log:        log,
	}
}

// Deduct implements the card-tap debit with pessimistic locking. The balance
// update and the ledger entry commit or roll back together.
func (s *WalletServiceImpl) Deduct(ctx context.Context, rfid string) (*ports.ScanResult, error) {
	// Reader hardware fires several reads per physical tap; only the first
	// within the debounce window charges the card.
	if s.guard != nil && s.debounce > 0 {
		first, err := s.guard.FirstTap(ctx, rfid, s.debounce)
		if err != nil {
			s.log.Warn().Err(err).Str("rfid", rfid).Msg("scan guard unavailable, continuing without debounce")
		} else if !first {
			return nil, apperror.ErrDuplicateScan()
		}
	}

	// Resolve the card before looking at the clock: an unknown card is
	// "not found" even outside meal hours. The cheap read keeps the
	// distinction without opening a transaction for bad cards.
	known, err := s.empRepo.GetByRFID(ctx, rfid)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("resolve employee: %w", err))
	}
	if known == nil {
		return nil, apperror.ErrNotFound("employee")
	}

	now := s.now()
	slot, ok := domain.ClassifyMeal(now)
	if !ok {
		return nil, apperror.ErrOutsideMealWindow()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	emp, err := s.empRepo.GetByRFIDForUpdate(ctx, dbTx, rfid)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock employee: %w", err))
	}
	if emp == nil {
		return nil, apperror.ErrNotFound("employee")
	}

	if emp.Balance < slot.Price {
		return nil, apperror.ErrInsufficientBalance().WithDetails(map[string]any{
			"required":  money.FormatRupees(slot.Price),
			"available": money.FormatRupees(emp.Balance),
		})
	}

	newBalance := emp.Balance - slot.Price
	if err := s.empRepo.UpdateBalance(ctx, dbTx, emp.ID, newBalance); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("update balance: %w", err))
	}

	meal := slot.Category
	entry := &domain.LedgerEntry{
		ID:                uuid.New(),
		EmployeeID:        emp.ID,
		RFIDTag:           emp.RFIDTag,
		EmployeeCode:      emp.Code,
		EmployeeName:      emp.Name,
		Type:              domain.LedgerDeduction,
		FulfillmentStatus: domain.FulfillmentPending,
		MealCategory:      &meal,
		Amount:            slot.Price,
		PreviousBalance:   emp.Balance,
		NewBalance:        newBalance,
		OccurredAt:        now,
		CreatedAt:         now.UTC(),
	}
	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create ledger entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	emp.Balance = newBalance

	s.log.Info().
		Str("entry_id", entry.ID.String()).
		Str("emp_id", emp.Code).
		Str("meal", string(slot.Category)).
		Int64("amount", slot.Price).
		Int64("new_balance", newBalance).
		Msg("meal deducted")

	return &ports.ScanResult{Employee: emp, Entry: entry, Slot: slot}, nil
}

// Credit adds amount to a single wallet and records a recharge entry.
func (s *WalletServiceImpl) Credit(ctx context.Context, employeeID uuid.UUID, amount int64) (*domain.Employee, *domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	emp, err := s.empRepo.GetByIDForUpdate(ctx, dbTx, employeeID)
	if err != nil {
		return nil, nil, apperror.ErrDatabaseError(fmt.Errorf("lock employee: %w", err))
	}
	if emp == nil {
		return nil, nil, apperror.ErrNotFound("employee")
	}

	now := s.now()
	newBalance := emp.Balance + amount
	if err := s.empRepo.UpdateBalance(ctx, dbTx, emp.ID, newBalance); err != nil {
		return nil, nil, apperror.ErrDatabaseError(fmt.Errorf("update balance: %w", err))
	}

	entry := &domain.LedgerEntry{
		ID:                uuid.New(),
		EmployeeID:        emp.ID,
		RFIDTag:           emp.RFIDTag,
		EmployeeCode:      emp.Code,
		EmployeeName:      emp.Name,
		Type:              domain.LedgerRecharge,
		FulfillmentStatus: domain.FulfillmentDelivered,
		Amount:            amount,
		PreviousBalance:   emp.Balance,
		NewBalance:        newBalance,
		OccurredAt:        now,
		CreatedAt:         now.UTC(),
	}
	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, nil, apperror.ErrDatabaseError(fmt.Errorf("create ledger entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	emp.Balance = newBalance

	s.log.Info().
		Str("emp_id", emp.Code).
		Int64("amount", amount).
		Int64("new_balance", newBalance).
		Msg("wallet recharged")

	return emp, entry, nil
}

// CreditAll bulk-credits every wallet in one statement. Matching the
// upstream behavior, bulk recharges write no per-employee ledger entries.
func (s *WalletServiceImpl) CreditAll(ctx context.Context, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	count, err := s.empRepo.CreditAll(ctx, amount)
	if err != nil {
		return 0, apperror.ErrDatabaseError(fmt.Errorf("bulk credit: %w", err))
	}

	s.log.Info().
		Int64("amount", amount).
		Int64("employees", count).
		Msg("bulk wallet recharge")

	return count, nil
}

// Lookup resolves an employee by RFID tag or employee code.
func (s *WalletServiceImpl) Lookup(ctx context.Context, term string) (*domain.Employee, error) {
	if term == "" {
		return nil, apperror.Validation("search term is required")
	}

	emp, err := s.empRepo.Search(ctx, term)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("search employee: %w", err))
	}
	if emp == nil {
		return nil, apperror.ErrNotFound("employee")
	}
	return emp, nil
}
