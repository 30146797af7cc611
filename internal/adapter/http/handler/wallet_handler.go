package handler

import (
	"teenpay-backend/internal/adapter/http/dto"
	"teenpay-backend/internal/adapter/http/middleware"
	"teenpay-backend/internal/core/ports"
	"teenpay-backend/pkg/apperror"
	"teenpay-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles balance and direct top-up endpoints.
type WalletHandler struct {
	topupSvc     ports.TopUpService
	reportingSvc ports.ReportingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(topupSvc ports.TopUpService, reportingSvc ports.ReportingService) *WalletHandler {
	return &WalletHandler{topupSvc: topupSvc, reportingSvc: reportingSvc}
}

// GetBalance handles GET /api/v1/wallets/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.reportingSvc.GetBalance(c.Request.Context(), principal.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: dto.FormatCents(balance)})
}

// TopUpChild handles POST /api/v1/wallets/topup-child, the parent's
// direct transfer to a linked child.
func (h *WalletHandler) TopUpChild(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TopUpChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	childID, err := uuid.Parse(req.ChildID)
	if err != nil {
		response.Error(c, apperror.Validation("child_id must be a UUID"))
		return
	}

	amountCents, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.topupSvc.TopUpChild(c.Request.Context(), principal.UserID, childID, amountCents)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, transferView(result))
}
