package handlers

import (
	"safecircle/internal/payment"
	"safecircle/pkg/errors"
	"safecircle/pkg/logger"
	"safecircle/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type confirmCardBody struct {
	UserID         string  `json:"userId" binding:"required"`
	PlanID         string  `json:"planId"`
	Amount         float64 `json:"amount" binding:"required"`
	Currency       string  `json:"currency"`
	CardholderName string  `json:"cardholderName" binding:"required"`
}

// ConfirmCardPayment handles POST /confirmCardPayment. Premium is granted
// inside the flow only when the card client reports "succeeded".
func (h *Handlers) ConfirmCardPayment(c *gin.Context) {
	var body confirmCardBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "userId, amount and cardholderName required")
		return
	}

	err := h.cardFlow.Confirm(c.Request.Context(), payment.ConfirmRequest{
		UserID:         body.UserID,
		PlanID:         body.PlanID,
		Amount:         body.Amount,
		Currency:       body.Currency,
		CardholderName: body.CardholderName,
	})
	if err != nil {
		if errors.IsCode(err, errors.CodeValidation) {
			response.BadRequest(c, errors.GetMessage(err))
			return
		}
		logger.Error("card confirmation failed", zap.Error(err))
		response.ServerError(c, errors.GetMessage(err))
		return
	}

	response.Success(c, "payment confirmed", nil)
}
