package payment

import (
	"context"
	"time"

	"safecircle/internal/models"
	"safecircle/pkg/errors"
	"safecircle/pkg/logger"
	"safecircle/pkg/metrics"
	"safecircle/pkg/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatusSucceeded is the only confirmation status that grants entitlement.
const StatusSucceeded = "succeeded"

// SecretSource hands out a client secret for one confirmation attempt.
type SecretSource interface {
	CreateSecret(ctx context.Context, amount float64, currency string) (string, error)
}

// CardClient is the injected card-processing SDK.
type CardClient interface {
	Confirm(ctx context.Context, clientSecret string, details CardDetails) (ConfirmResult, error)
}

type CardDetails struct {
	CardholderName string
}

type ConfirmResult struct {
	Status string
}

// CardFlow runs the client-side confirmation path. It is the only code in
// the system allowed to grant the premium entitlement, and it does so only
// on an explicit "succeeded" status.
type CardFlow struct {
	db      *gorm.DB
	secrets SecretSource
	card    CardClient
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewCardFlow(db *gorm.DB, secrets SecretSource, card CardClient, m *metrics.Metrics) *CardFlow {
	return &CardFlow{db: db, secrets: secrets, card: card, metrics: m, now: time.Now}
}

type ConfirmRequest struct {
	UserID         string
	PlanID         string
	Amount         float64
	Currency       string
	CardholderName string
}

// Confirm requests a secret, confirms with the card client and, only on
// success, flips the user's premium flag and records payment metadata.
// Every other outcome leaves the profile untouched.
func (f *CardFlow) Confirm(ctx context.Context, req ConfirmRequest) error {
	if req.UserID == "" || req.Amount <= 0 {
		return errors.WithCode(errors.CodeValidation, "user and amount required")
	}
	if req.CardholderName == "" {
		return errors.WithCode(errors.CodeValidation, "cardholder name required")
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}

	secret, err := f.secrets.CreateSecret(ctx, req.Amount, req.Currency)
	if err != nil {
		f.metrics.Payment("confirm", "error")
		return errors.Wrap(errors.CodeUpstream, err, "create client secret")
	}

	result, err := f.card.Confirm(ctx, secret, CardDetails{CardholderName: req.CardholderName})
	if err != nil {
		f.metrics.Payment("confirm", "error")
		return errors.Wrap(errors.CodeUpstream, err, "confirm payment")
	}
	if result.Status != StatusSucceeded {
		f.metrics.Payment("confirm", "declined")
		return errors.WithCodef(errors.CodeUpstream, "payment not completed: %s", result.Status)
	}

	if err := models.GrantPremium(f.db, req.UserID, req.PlanID, req.Amount, f.now()); err != nil {
		f.metrics.Payment("confirm", "error")
		return errors.Wrap(errors.CodePersistence, err, "grant premium")
	}

	f.metrics.Payment("confirm", "success")
	util.Sig().Emit(models.SigPaymentSucceeded, req.UserID, req.PlanID)
	logger.Info("premium granted", zap.String("user", req.UserID), zap.String("plan", req.PlanID))
	return nil
}
