package handler

import (
	"time"

	"tapneat/internal/adapter/http/dto"
	"tapneat/internal/core/domain"
	"tapneat/internal/core/ports"
	"tapneat/pkg/apperror"
	"tapneat/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ScanHandler handles the card-tap endpoints.
type ScanHandler struct {
	walletSvc ports.WalletService
	printSvc  ports.PrintQueueService
	log       zerolog.Logger
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(walletSvc ports.WalletService, printSvc ports.PrintQueueService, log zerolog.Logger) *ScanHandler {
	return &ScanHandler{walletSvc: walletSvc, printSvc: printSvc, log: log}
}

// Scan handles POST /api/v1/scan. A successful debit also queues the
// receipt print; a queue failure must not undo the debit, so it is logged
// and swallowed.
func (h *ScanHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.walletSvc.Deduct(c.Request.Context(), req.RFIDNumber)
	if err != nil {
		response.Error(c, err)
		return
	}

	entryID := result.Entry.ID
	if _, err := h.printSvc.Enqueue(c.Request.Context(), ports.EnqueueRequest{
		EmployeeName:  result.Employee.Name,
		EmployeeCode:  result.Employee.Code,
		Site:          result.Employee.Site,
		LedgerEntryID: &entryID,
		MealLabel:     string(result.Slot.Category),
		Amount:        result.Entry.Amount,
		Balance:       result.Entry.NewBalance,
		OccurredAt:    result.Entry.OccurredAt,
	}); err != nil {
		h.log.Warn().Err(err).Str("entry_id", entryID.String()).Msg("receipt print enqueue failed")
	}

	response.OK(c, dto.ScanResponse{
		Employee:    dto.FromEmployee(result.Employee),
		Transaction: dto.FromLedgerEntry(result.Entry),
		Meal:        dto.FromMealSlot(result.Slot),
	})
}

// MealInfo handles GET /api/v1/scan. It reports which meal window covers
// the current moment, or an explicit HH:MM via ?time= for kiosk preview.
func (h *ScanHandler) MealInfo(c *gin.Context) {
	at := time.Now()
	if raw := c.Query("time"); raw != "" {
		parsed, err := time.Parse("15:04", raw)
		if err != nil {
			response.Error(c, apperror.Validation("time must be HH:MM"))
			return
		}
		now := time.Now()
		at = time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	}

	slot, ok := domain.ClassifyMeal(at)
	if !ok {
		response.Error(c, apperror.ErrOutsideMealWindow())
		return
	}

	response.OK(c, dto.FromMealSlot(slot))
}
