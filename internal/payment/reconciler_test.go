package payment

import (
	"context"
	"encoding/json"
	"testing"

	"safecircle/internal/models"
	"safecircle/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPending(t *testing.T, db *gorm.DB, txID string) {
	t.Helper()
	require.NoError(t, models.InsertLedgerEntry(db, &models.PaymentLedgerEntry{
		TransactionID: txID,
		Phone:         "260971111111",
		Amount:        25,
		Provider:      models.ProviderMobileMoney,
	}))
}

func TestApplyWebhookUpdatesStatus(t *testing.T) {
	db := openTestDB(t)
	r := NewReconciler(db, testMetrics)
	seedPending(t, db, "tx-1")

	raw := json.RawMessage(`{"transaction_id":"tx-1","status":"successful","msisdn":"260971111111"}`)
	err := r.ApplyWebhook(context.Background(), WebhookPayload{
		TransactionID: "tx-1",
		Status:        "successful",
		Raw:           raw,
	})
	require.NoError(t, err)

	entry, err := models.GetLedgerEntry(db, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "successful", entry.Status)
	assert.JSONEq(t, string(raw), string(entry.WebhookPayload))
}

func TestApplyWebhookReplayIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	r := NewReconciler(db, testMetrics)
	seedPending(t, db, "tx-1")

	p := WebhookPayload{TransactionID: "tx-1", Status: "failed"}
	require.NoError(t, r.ApplyWebhook(context.Background(), p))
	require.NoError(t, r.ApplyWebhook(context.Background(), p))

	entry, err := models.GetLedgerEntry(db, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", entry.Status)

	var count int64
	require.NoError(t, db.Model(&models.PaymentLedgerEntry{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApplyWebhookMissingFields(t *testing.T) {
	db := openTestDB(t)
	r := NewReconciler(db, testMetrics)
	seedPending(t, db, "tx-1")

	cases := []struct {
		name string
		p    WebhookPayload
	}{
		{"no transaction id", WebhookPayload{Status: "successful"}},
		{"no status", WebhookPayload{TransactionID: "tx-1"}},
		{"empty", WebhookPayload{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := r.ApplyWebhook(context.Background(), tc.p)
			assert.True(t, errors.IsCode(err, errors.CodeValidation))
		})
	}

	// nothing was mutated by the rejected payloads
	entry, err := models.GetLedgerEntry(db, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, entry.Status)
}

func TestApplyWebhookUnknownTransaction(t *testing.T) {
	db := openTestDB(t)
	r := NewReconciler(db, testMetrics)

	err := r.ApplyWebhook(context.Background(), WebhookPayload{
		TransactionID: "ghost",
		Status:        "successful",
	})
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))

	// an update, never an insert
	var count int64
	require.NoError(t, db.Model(&models.PaymentLedgerEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestWebhookAndVerifyLastWriteWins(t *testing.T) {
	db := openTestDB(t)
	r := NewReconciler(db, testMetrics)
	svc := NewService(db, &fakeProvider{
		verifyResp: &ProviderResponse{TransactionID: "tx-1", Status: "pending", Raw: json.RawMessage(`{}`)},
	}, testMetrics)
	seedPending(t, db, "tx-1")

	// webhook lands first, verify overwrites it afterwards
	require.NoError(t, r.ApplyWebhook(context.Background(), WebhookPayload{
		TransactionID: "tx-1", Status: "successful",
	}))
	_, err := svc.VerifyIntent(context.Background(), "tx-1")
	require.NoError(t, err)

	entry, err := models.GetLedgerEntry(db, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", entry.Status)

	// each channel kept its own payload column
	assert.NotEmpty(t, entry.WebhookPayload)
	assert.NotEmpty(t, entry.VerificationResponse)
}
