package handlers

import (
	"encoding/json"
	"net/http"

	"safecircle/pkg/errors"
	"safecircle/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// The payment endpoints keep the exact wire shapes the mobile client
// already speaks: {status, transaction_id} on success and
// {status:"error", message} on failure.

type requestPaymentBody struct {
	Phone  string  `json:"phone"`
	Amount float64 `json:"amount"`
}

// RequestMobileMoneyPayment handles POST /requestMobileMoneyPayment.
func (h *Handlers) RequestMobileMoneyPayment(c *gin.Context) {
	var body requestPaymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "phone and amount required"})
		return
	}

	txID, err := h.payments.CreateIntent(c.Request.Context(), body.Phone, body.Amount)
	if err != nil {
		if errors.IsCode(err, errors.CodeValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": errors.GetMessage(err)})
			return
		}
		logger.Error("payment initiation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Payment initiation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "transaction_id": txID})
}

type verifyPaymentBody struct {
	TransactionID string `json:"transaction_id"`
}

// VerifyMobileMoneyPayment handles POST /verifyMobileMoneyPayment.
func (h *Handlers) VerifyMobileMoneyPayment(c *gin.Context) {
	var body verifyPaymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "transaction_id required"})
		return
	}

	raw, err := h.payments.VerifyIntent(c.Request.Context(), body.TransactionID)
	if err != nil {
		if errors.IsCode(err, errors.CodeValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": errors.GetMessage(err)})
			return
		}
		logger.Error("verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Verification failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": json.RawMessage(raw)})
}
