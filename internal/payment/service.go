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

// Service creates and verifies payment intents against the ledger.
type Service struct {
	db       *gorm.DB
	provider Provider
	metrics  *metrics.Metrics
}

func NewService(db *gorm.DB, provider Provider, m *metrics.Metrics) *Service {
	return &Service{db: db, provider: provider, metrics: m}
}

// CreateIntent asks the provider for a transaction and records a PENDING
// ledger row. Success is only reported after the row is durably written.
// A crash between the provider call and the write is an acknowledged gap:
// the provider-side transaction then has no ledger row until its webhook
// fails against the missing id.
func (s *Service) CreateIntent(ctx context.Context, phone string, amount float64) (string, error) {
	if phone == "" || amount <= 0 {
		return "", errors.WithCode(errors.CodeValidation, "phone and amount required")
	}

	resp, err := s.provider.RequestPayment(ctx, phone, amount)
	if err != nil {
		s.metrics.Payment("create", "error")
		return "", err
	}
	if resp.TransactionID == "" {
		s.metrics.Payment("create", "error")
		return "", errors.WithCode(errors.CodeUpstream, "provider returned no transaction_id")
	}

	entry := &models.PaymentLedgerEntry{
		TransactionID: resp.TransactionID,
		Phone:         phone,
		Amount:        amount,
		Provider:      models.ProviderMobileMoney,
		Status:        models.PaymentStatusPending,
		RawResponse:   resp.Raw,
	}
	if err := models.InsertLedgerEntry(s.db.WithContext(ctx), entry); err != nil {
		s.metrics.Payment("create", "error")
		return "", errors.Wrap(errors.CodePersistence, err, "write pending ledger entry")
	}

	s.metrics.Payment("create", "success")
	logger.Info("payment intent created",
		zap.String("transaction_id", resp.TransactionID), zap.Float64("amount", amount))
	return resp.TransactionID, nil
}

// VerifyIntent pulls the provider's current view and overwrites the ledger
// row's status (UNKNOWN when the provider omits one). Returns the raw
// provider payload for the caller.
func (s *Service) VerifyIntent(ctx context.Context, transactionID string) (json.RawMessage, error) {
	if transactionID == "" {
		return nil, errors.WithCode(errors.CodeValidation, "transaction_id required")
	}

	resp, err := s.provider.VerifyPayment(ctx, transactionID)
	if err != nil {
		s.metrics.Payment("verify", "error")
		return nil, err
	}

	if err := models.ApplyVerification(s.db.WithContext(ctx), transactionID, resp.Status, resp.Raw); err != nil {
		s.metrics.Payment("verify", "error")
		if err == gorm.ErrRecordNotFound {
			return nil, errors.WithCodef(errors.CodeNotFound, "no ledger entry for %s", transactionID)
		}
		return nil, errors.Wrap(errors.CodePersistence, err, "apply verification")
	}

	s.metrics.Payment("verify", "success")
	return resp.Raw, nil
}
