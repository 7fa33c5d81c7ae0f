package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"safecircle/internal/payment"
	"safecircle/pkg/errors"
	"safecircle/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MoneyUnifyWebhook handles POST /moneyUnifyWebhook. The provider expects
// plain-text replies: 200 "Webhook received", 400 on a bad payload, 500 on
// a failed apply.
func (h *Handlers) MoneyUnifyWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	var p payment.WebhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		c.String(http.StatusBadRequest, "Invalid webhook payload")
		return
	}
	p.Raw = body

	if err := h.reconciler.ApplyWebhook(c.Request.Context(), p); err != nil {
		if errors.IsCode(err, errors.CodeValidation) {
			c.String(http.StatusBadRequest, "Invalid webhook payload")
			return
		}
		logger.Error("webhook error", zap.Error(err))
		c.String(http.StatusInternalServerError, "Webhook failed")
		return
	}

	c.String(http.StatusOK, "Webhook received")
}
