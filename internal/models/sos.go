package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SOSStatus tracks the local sync leg of a record.
type SOSStatus string

const (
	SOSQueued  SOSStatus = "queued"
	SOSSyncing SOSStatus = "syncing"
	SOSSynced  SOSStatus = "synced"
	SOSFailed  SOSStatus = "failed"
)

// IncidentStatus tracks the remote incident itself, as shown in the
// records view.
type IncidentStatus string

const (
	IncidentInProgress IncidentStatus = "in_progress"
	IncidentResolved   IncidentStatus = "resolved"
	IncidentSafe       IncidentStatus = "safe"
)

// Signal names emitted around SOS records.
const (
	SigSOSQueued = "sos:queued"
	SigSOSSynced = "sos:synced"
)

// Location is a best-effort coordinate reading. Lat/Lng both zero is the
// sentinel for "no location obtained", not a real coordinate.
type Location struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// IsSentinel reports whether the reading is the no-location sentinel.
func (l Location) IsSentinel() bool { return l.Lat == 0 && l.Lng == 0 }

// SOSRecord is one distress event. The id is client-generated (uuid v4) so
// the same record can be appended locally and upserted remotely without a
// server round-trip for identity.
type SOSRecord struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string    `gorm:"index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`

	Location Location `gorm:"embedded;embeddedPrefix:loc_" json:"location"`

	Status     SOSStatus      `gorm:"index" json:"status"`
	Incident   IncidentStatus `json:"incident"`
	RetryCount int            `json:"retryCount"`
	LastError  string         `json:"lastError,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// UpsertSOSRecord writes a record keyed by its client id. Redelivering the
// same id updates the existing row instead of creating a duplicate.
func UpsertSOSRecord(db *gorm.DB, rec *SOSRecord) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "incident", "retry_count", "last_error", "updated_at",
		}),
	}).Create(rec).Error
}

// ListSOSRecords returns a user's records, newest first, all statuses;
// the records view shows history including synced and safe entries.
func ListSOSRecords(db *gorm.DB, userID string) ([]SOSRecord, error) {
	var recs []SOSRecord
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&recs).Error
	return recs, err
}

// MarkRecordSafe resolves an incident as safe.
func MarkRecordSafe(db *gorm.DB, recordID string) error {
	res := db.Model(&SOSRecord{}).Where("id = ?", recordID).
		Update("incident", IncidentSafe)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
