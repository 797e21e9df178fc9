package handler

import (
	"strconv"
	"time"

	"tapneat/internal/adapter/http/dto"
	"tapneat/internal/core/domain"
	"tapneat/internal/core/ports"
	"tapneat/pkg/apperror"
	"tapneat/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReceiptHandler serves the public receipt page and transaction history.
type ReceiptHandler struct {
	receiptSvc ports.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receiptSvc ports.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptSvc: receiptSvc}
}

// Get handles GET /api/v1/receipt. This is the landing endpoint of the
// QR code printed on the physical receipt.
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Query("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a UUID"))
		return
	}

	entry, err := h.receiptSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromLedgerEntry(entry))
}

// UpdateStatus handles POST /api/v1/receipt/status, marking the meal
// Delivered or Cancelled from the counter staff's receipt page.
func (h *ReceiptHandler) UpdateStatus(c *gin.Context) {
	var req dto.FulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		response.Error(c, apperror.Validation("id must be a UUID"))
		return
	}

	if err := h.receiptSvc.UpdateFulfillment(c.Request.Context(), id, domain.FulfillmentStatus(req.Status)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": id.String(), "order_status": req.Status})
}

// ListTransactions handles GET /api/v1/transactions with optional
// employee_id, date (YYYY-MM-DD), meal_category and limit filters.
func (h *ReceiptHandler) ListTransactions(c *gin.Context) {
	var params ports.LedgerListParams

	if raw := c.Query("employee_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, apperror.Validation("employee_id must be a UUID"))
			return
		}
		params.EmployeeID = &id
	}
	if raw := c.Query("date"); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			response.Error(c, apperror.Validation("date must be YYYY-MM-DD"))
			return
		}
		params.Date = &day
	}
	if raw := c.Query("meal_category"); raw != "" {
		category := domain.MealCategory(raw)
		params.MealCategory = &category
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			response.Error(c, apperror.Validation("limit must be a non-negative integer"))
			return
		}
		params.Limit = limit
	}

	entries, err := h.receiptSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.TransactionResponse, 0, len(entries))
	for i := range entries {
		out = append(out, dto.FromLedgerEntry(&entries[i]))
	}
	response.OK(c, gin.H{"transactions": out})
}
