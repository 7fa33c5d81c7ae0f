// Package payment implements the intent lifecycle against the mobile-money
// provider, the webhook reconciliation path and the card confirmation flow.
package payment

import (
	"context"
	"encoding/json"
)

// ProviderResponse is one provider reply, with the raw body retained for
// the ledger's audit columns.
type ProviderResponse struct {
	TransactionID string
	Status        string
	Raw           json.RawMessage
}

// Provider is the mobile-money gateway. Calls are not retried by the core;
// a failure surfaces immediately to the caller.
type Provider interface {
	RequestPayment(ctx context.Context, phone string, amount float64) (*ProviderResponse, error)
	VerifyPayment(ctx context.Context, transactionID string) (*ProviderResponse, error)
}
