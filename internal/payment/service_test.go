package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"safecircle/internal/models"
	"safecircle/pkg/errors"
	"safecircle/pkg/metrics"
	"safecircle/pkg/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// one registry per test binary; prometheus rejects duplicate collectors
var testMetrics = metrics.NewMetrics()

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := util.OpenDatabase(&gorm.Config{}, "sqlite",
		fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

type fakeProvider struct {
	requestResp *ProviderResponse
	requestErr  error
	verifyResp  *ProviderResponse
	verifyErr   error
	requests    int
}

func (f *fakeProvider) RequestPayment(ctx context.Context, phone string, amount float64) (*ProviderResponse, error) {
	f.requests++
	return f.requestResp, f.requestErr
}

func (f *fakeProvider) VerifyPayment(ctx context.Context, transactionID string) (*ProviderResponse, error) {
	return f.verifyResp, f.verifyErr
}

func TestCreateIntentWritesPendingRow(t *testing.T) {
	db := openTestDB(t)
	raw := json.RawMessage(`{"status":"success","transaction_id":"tx-1"}`)
	svc := NewService(db, &fakeProvider{
		requestResp: &ProviderResponse{TransactionID: "tx-1", Status: "success", Raw: raw},
	}, testMetrics)

	txID, err := svc.CreateIntent(context.Background(), "260971111111", 25)
	require.NoError(t, err)
	assert.Equal(t, "tx-1", txID)

	entry, err := models.GetLedgerEntry(db, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, entry.Status)
	assert.Equal(t, models.ProviderMobileMoney, entry.Provider)
	assert.Equal(t, "260971111111", entry.Phone)
	assert.EqualValues(t, 25, entry.Amount)
	assert.JSONEq(t, string(raw), string(entry.RawResponse))
}

func TestCreateIntentValidation(t *testing.T) {
	db := openTestDB(t)
	provider := &fakeProvider{}
	svc := NewService(db, provider, testMetrics)

	cases := []struct {
		name   string
		phone  string
		amount float64
	}{
		{"missing phone", "", 25},
		{"zero amount", "260971111111", 0},
		{"negative amount", "260971111111", -5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateIntent(context.Background(), tc.phone, tc.amount)
			assert.True(t, errors.IsCode(err, errors.CodeValidation))
		})
	}

	// the provider was never called and nothing was written
	assert.Equal(t, 0, provider.requests)
	var count int64
	require.NoError(t, db.Model(&models.PaymentLedgerEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateIntentProviderFailure(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, &fakeProvider{
		requestErr: errors.WithCode(errors.CodeUpstream, "provider down"),
	}, testMetrics)

	_, err := svc.CreateIntent(context.Background(), "260971111111", 25)
	assert.True(t, errors.IsCode(err, errors.CodeUpstream))

	var count int64
	require.NoError(t, db.Model(&models.PaymentLedgerEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateIntentMissingTransactionID(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, &fakeProvider{
		requestResp: &ProviderResponse{Status: "success"},
	}, testMetrics)

	_, err := svc.CreateIntent(context.Background(), "260971111111", 25)
	assert.True(t, errors.IsCode(err, errors.CodeUpstream))
}

func TestVerifyIntentOverwritesStatus(t *testing.T) {
	db := openTestDB(t)
	raw := json.RawMessage(`{"status":"successful","transaction_id":"tx-1"}`)
	svc := NewService(db, &fakeProvider{
		verifyResp: &ProviderResponse{TransactionID: "tx-1", Status: "successful", Raw: raw},
	}, testMetrics)

	require.NoError(t, models.InsertLedgerEntry(db, &models.PaymentLedgerEntry{
		TransactionID: "tx-1",
		Provider:      models.ProviderMobileMoney,
	}))

	got, err := svc.VerifyIntent(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(got))

	entry, err := models.GetLedgerEntry(db, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "successful", entry.Status)
	assert.JSONEq(t, string(raw), string(entry.VerificationResponse))
}

func TestVerifyIntentUnknownStatus(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, &fakeProvider{
		verifyResp: &ProviderResponse{TransactionID: "tx-1", Raw: json.RawMessage(`{}`)},
	}, testMetrics)

	require.NoError(t, models.InsertLedgerEntry(db, &models.PaymentLedgerEntry{
		TransactionID: "tx-1",
		Provider:      models.ProviderMobileMoney,
	}))

	_, err := svc.VerifyIntent(context.Background(), "tx-1")
	require.NoError(t, err)

	entry, err := models.GetLedgerEntry(db, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusUnknown, entry.Status)
}

func TestVerifyIntentMissingLedgerRow(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, &fakeProvider{
		verifyResp: &ProviderResponse{TransactionID: "ghost", Status: "successful", Raw: json.RawMessage(`{}`)},
	}, testMetrics)

	_, err := svc.VerifyIntent(context.Background(), "ghost")
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestVerifyIntentValidation(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, &fakeProvider{}, testMetrics)

	_, err := svc.VerifyIntent(context.Background(), "")
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}
