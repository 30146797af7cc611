package handler

import (
	"time"

	"teenpay-backend/internal/adapter/http/dto"
	"teenpay-backend/internal/adapter/http/middleware"
	"teenpay-backend/internal/core/ports"
	"teenpay-backend/pkg/apperror"
	"teenpay-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// ReceiptHandler serves the caller's receipts and ledger history.
type ReceiptHandler struct {
	reportingSvc ports.ReportingService
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(reportingSvc ports.ReportingService) *ReceiptHandler {
	return &ReceiptHandler{reportingSvc: reportingSvc}
}

// ListReceipts handles GET /api/v1/receipts.
func (h *ReceiptHandler) ListReceipts(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	views, err := h.reportingSvc.ListReceipts(c.Request.Context(), principal.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.ReceiptResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.ReceiptResponse{
			ID:         v.ID.String(),
			ReceiptNo:  v.ReceiptNo,
			Amount:     dto.FormatCents(v.Amount),
			Kind:       string(v.Kind),
			Direction:  v.Direction,
			From:       v.FromName,
			To:         v.ToName,
			SchoolName: v.SchoolName,
			CreatedAt:  v.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	response.OK(c, out)
}

// ListTransactions handles GET /api/v1/transactions.
func (h *ReceiptHandler) ListTransactions(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	views, err := h.reportingSvc.ListTransactions(c.Request.Context(), principal.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.TransactionResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.TransactionResponse{
			ID:           v.ID.String(),
			Amount:       dto.FormatCents(v.Amount),
			Kind:         string(v.Kind),
			Description:  v.Description,
			Counterparty: v.Counterparty,
			SchoolName:   v.SchoolName,
			CreatedAt:    v.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	response.OK(c, out)
}
