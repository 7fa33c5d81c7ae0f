package payment

import (
	"context"
	"encoding/json"

	"safecircle/internal/models"
	"safecircle/pkg/errors"
	"safecircle/pkg/logger"
	"safecircle/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WebhookPayload is the provider push. Extra fields stay in Raw.
type WebhookPayload struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Raw           json.RawMessage
}

// Reconciler applies provider-pushed updates to the ledger. It runs
// independently of, and races against, the manual verify path; both do a
// keyed last-write-wins update on status/updated_at while keeping their
// own raw-payload column. No version token is used on purpose; that is
// the observed contract, not an oversight.
type Reconciler struct {
	db      *gorm.DB
	metrics *metrics.Metrics
}

func NewReconciler(db *gorm.DB, m *metrics.Metrics) *Reconciler {
	return &Reconciler{db: db, metrics: m}
}

// ApplyWebhook validates and applies one callback. Reapplying an identical
// payload is a no-op in effect: the row ends in the same status. A webhook
// for an id the ledger has never seen is an error, not an insert.
func (r *Reconciler) ApplyWebhook(ctx context.Context, p WebhookPayload) error {
	if p.TransactionID == "" || p.Status == "" {
		return errors.WithCode(errors.CodeValidation, "transaction_id and status required")
	}
	if len(p.Raw) == 0 {
		raw, _ := json.Marshal(map[string]string{
			"transaction_id": p.TransactionID,
			"status":         p.Status,
		})
		p.Raw = raw
	}

	err := models.ApplyWebhookUpdate(r.db.WithContext(ctx), p.TransactionID, p.Status, p.Raw)
	if err == gorm.ErrRecordNotFound {
		r.metrics.Payment("webhook", "missing")
		return errors.WithCodef(errors.CodeNotFound, "no ledger entry for %s", p.TransactionID)
	}
	if err != nil {
		r.metrics.Payment("webhook", "error")
		return errors.Wrap(errors.CodePersistence, err, "apply webhook")
	}

	r.metrics.Payment("webhook", "success")
	logger.Info("webhook applied",
		zap.String("transaction_id", p.TransactionID), zap.String("status", p.Status))
	return nil
}
