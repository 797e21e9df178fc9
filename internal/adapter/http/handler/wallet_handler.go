package handler

import (
	"tapneat/internal/adapter/http/dto"
	"tapneat/internal/core/ports"
	"tapneat/pkg/apperror"
	"tapneat/pkg/money"
	"tapneat/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet lookup and recharge endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// Lookup handles GET /api/v1/wallet. The search term matches either the
// RFID tag or the employee code.
func (h *WalletHandler) Lookup(c *gin.Context) {
	emp, err := h.walletSvc.Lookup(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromEmployee(emp))
}

// Recharge handles POST /api/v1/wallet/recharge. With all=true the amount
// is credited to every wallet in one statement; otherwise employee_id is
// required and the credit is recorded in the ledger.
func (h *WalletHandler) Recharge(c *gin.Context) {
	var req dto.RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := money.ParseRupees(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	if req.All {
		credited, err := h.walletSvc.CreditAll(c.Request.Context(), amount)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, dto.RechargeResponse{Credited: &credited})
		return
	}

	if req.EmployeeID == nil {
		response.Error(c, apperror.Validation("employee_id is required unless all=true"))
		return
	}
	employeeID, err := uuid.Parse(*req.EmployeeID)
	if err != nil {
		response.Error(c, apperror.Validation("employee_id must be a UUID"))
		return
	}

	emp, entry, err := h.walletSvc.Credit(c.Request.Context(), employeeID, amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	empResp := dto.FromEmployee(emp)
	txnResp := dto.FromLedgerEntry(entry)
	response.OK(c, dto.RechargeResponse{Employee: &empResp, Transaction: &txnResp})
}
