package handler

import (
	"time"

	"teenpay-backend/internal/adapter/http/dto"
	"teenpay-backend/internal/adapter/http/middleware"
	"teenpay-backend/internal/core/ports"
	"teenpay-backend/pkg/apperror"
	"teenpay-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TopUpHandler handles the top-up request workflow.
type TopUpHandler struct {
	topupSvc ports.TopUpService
}

// NewTopUpHandler creates a new TopUpHandler.
func NewTopUpHandler(topupSvc ports.TopUpService) *TopUpHandler {
	return &TopUpHandler{topupSvc: topupSvc}
}

// Create handles POST /api/v1/topup-requests. The caller is the child.
func (h *TopUpHandler) Create(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TopUpCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	created, err := h.topupSvc.Create(c.Request.Context(), principal.UserID, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.TopUpRequestResponse{
		ID:          created.ID.String(),
		Status:      string(created.Status),
		RequestedAt: created.RequestedAt.UTC().Format(time.RFC3339),
		Note:        created.Note,
	})
}

// Inbox handles GET /api/v1/topup-requests/inbox. The caller is the parent.
func (h *TopUpHandler) Inbox(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	items, err := h.topupSvc.Inbox(c.Request.Context(), principal.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.TopUpInboxItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.TopUpInboxItemResponse{
			ID:            item.ID.String(),
			ChildID:       item.ChildID.String(),
			ChildUsername: item.ChildUsername,
			RequestedAt:   item.RequestedAt.UTC().Format(time.RFC3339),
			Note:          item.Note,
		})
	}

	response.OK(c, out)
}

// Approve handles POST /api/v1/topup-requests/:id/approve.
func (h *TopUpHandler) Approve(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrRequestNotFound())
		return
	}

	var req dto.ApproveTopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amountCents, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.topupSvc.Approve(c.Request.Context(), principal.UserID, requestID, amountCents)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, transferView(result))
}

func transferView(r *ports.TransferResult) dto.TransferResponse {
	return dto.TransferResponse{
		Amount:         dto.FormatCents(r.PayerReceipt.AmountCents),
		PayerReceiptNo: r.PayerReceipt.ReceiptNo,
		PayeeReceiptNo: r.PayeeReceipt.ReceiptNo,
		PayerBalance:   dto.FormatCents(r.PayerBalance),
		PayeeBalance:   dto.FormatCents(r.PayeeBalance),
	}
}
