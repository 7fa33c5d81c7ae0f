package sos

import (
	"context"

	"safecircle/internal/models"

	"gorm.io/gorm"
)

// RecordStore adapts the remote-facing database to the RemoteStore
// interface the manager syncs against.
type RecordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) *RecordStore { return &RecordStore{db: db} }

func (s *RecordStore) UpsertRecord(ctx context.Context, rec *models.SOSRecord) error {
	return models.UpsertSOSRecord(s.db.WithContext(ctx), rec)
}
