package handler

import (
	"net/http"

	"teenpay-backend/internal/adapter/http/dto"
	"teenpay-backend/internal/adapter/http/middleware"
	"teenpay-backend/internal/core/ports"
	"teenpay-backend/pkg/apperror"
	"teenpay-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles QR payment endpoints.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// PayByQR handles POST /api/v1/payments/qr. The caller is the terminal
// account; the payer is identified by the scanned payload.
func (h *PaymentHandler) PayByQR(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.QRPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	// The payload is JSON itself; sanitizing would corrupt it. It is
	// parsed and validated field by field downstream.

	result, err := h.paymentSvc.PayByQR(c.Request.Context(), principal.UserID, req.Payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.QRPaymentResponse{
		Status:          result.Status,
		Amount:          dto.FormatCents(result.AmountCents),
		PayerBalance:    dto.FormatCents(result.PayerBalance),
		TerminalBalance: dto.FormatCents(result.TerminalBalance),
		PayerReceiptNo:  result.PayerReceiptNo,
		PayeeReceiptNo:  result.PayeeReceiptNo,
		SchoolCode:      result.SchoolCode,
	})
}

// QRCode handles GET /api/v1/payments/qr-code. It renders the caller's
// presentation QR as a PNG. Amount and school_code are optional; a
// terminal fills in whatever the presentation QR leaves blank.
func (h *PaymentHandler) QRCode(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	schoolCode := c.Query("school_code")

	var amountCents *int64
	if raw := c.Query("amount"); raw != "" {
		cents, err := dto.ParseAmount(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		amountCents = &cents
	}

	png, err := h.paymentSvc.GenerateQR(c.Request.Context(), principal.UserID, amountCents, schoolCode)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
