package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type PaymentProvider string

const (
	ProviderMobileMoney PaymentProvider = "MobileMoney"
	ProviderCard        PaymentProvider = "Card"
)

// Payment statuses. Between PENDING and a provider-defined terminal string
// the ledger stores whatever the provider last reported; UNKNOWN covers a
// verify response that omitted one.
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusUnknown = "UNKNOWN"
)

const SigPaymentSucceeded = "payment:succeeded"

// PaymentLedgerEntry is one payment attempt, keyed by the provider-assigned
// transaction id. The verify path and the webhook path update status and
// updated_at independently (last write wins) but each keeps its own raw
// payload column for audit.
type PaymentLedgerEntry struct {
	TransactionID string          `gorm:"primaryKey" json:"transactionId"`
	Phone         string          `json:"phone"`
	Amount        float64         `json:"amount"`
	Provider      PaymentProvider `json:"provider"`
	Status        string          `gorm:"index" json:"status"`

	RawResponse          json.RawMessage `gorm:"type:text" json:"rawResponse,omitempty"`
	VerificationResponse json.RawMessage `gorm:"type:text" json:"verificationResponse,omitempty"`
	WebhookPayload       json.RawMessage `gorm:"type:text" json:"webhookPayload,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InsertLedgerEntry durably records a new PENDING attempt.
func InsertLedgerEntry(db *gorm.DB, entry *PaymentLedgerEntry) error {
	if entry.Status == "" {
		entry.Status = PaymentStatusPending
	}
	return db.Create(entry).Error
}

// GetLedgerEntry fetches one row by transaction id.
func GetLedgerEntry(db *gorm.DB, transactionID string) (*PaymentLedgerEntry, error) {
	var e PaymentLedgerEntry
	if err := db.First(&e, "transaction_id = ?", transactionID).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ApplyVerification overwrites status from the manual verify path, keeping
// the raw payload in its own column.
func ApplyVerification(db *gorm.DB, transactionID, status string, raw json.RawMessage) error {
	if status == "" {
		status = PaymentStatusUnknown
	}
	return applyChannelUpdate(db, transactionID, map[string]interface{}{
		"status":                status,
		"verification_response": raw,
		"updated_at":            time.Now(),
	})
}

// ApplyWebhookUpdate overwrites status from the provider-push path.
// Reapplying an identical payload lands on the same final status.
func ApplyWebhookUpdate(db *gorm.DB, transactionID, status string, raw json.RawMessage) error {
	return applyChannelUpdate(db, transactionID, map[string]interface{}{
		"status":          status,
		"webhook_payload": raw,
		"updated_at":      time.Now(),
	})
}

func applyChannelUpdate(db *gorm.DB, transactionID string, patch map[string]interface{}) error {
	res := db.Model(&PaymentLedgerEntry{}).
		Where("transaction_id = ?", transactionID).
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
