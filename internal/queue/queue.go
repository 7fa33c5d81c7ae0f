// Package queue is the on-device durable store for SOS records. A record
// lands here before any network call is attempted; this table is the sole
// source of truth for "has this alert been queued".
package queue

import (
	"context"

	"safecircle/internal/models"
	"safecircle/pkg/errors"
	"safecircle/pkg/util"

	"gorm.io/gorm"
)

type Queue struct {
	db *gorm.DB
}

// Open opens (and migrates) the queue database. An empty dsn opens an
// in-memory database, which tests rely on.
func Open(driver, dsn string) (*Queue, error) {
	db, err := util.OpenDatabase(&gorm.Config{}, driver, dsn)
	if err != nil {
		return nil, errors.Wrap(errors.CodePersistence, err, "open queue database")
	}
	if err := db.AutoMigrate(&models.SOSRecord{}); err != nil {
		return nil, errors.Wrap(errors.CodePersistence, err, "migrate queue table")
	}
	return &Queue{db: db}, nil
}

// NewWithDB wraps an existing handle. Test helper.
func NewWithDB(db *gorm.DB) (*Queue, error) {
	if err := db.AutoMigrate(&models.SOSRecord{}); err != nil {
		return nil, errors.Wrap(errors.CodePersistence, err, "migrate queue table")
	}
	return &Queue{db: db}, nil
}

// Append durably persists a record. It fails only when the storage layer
// itself fails; once it returns nil the record survives process restart.
func (q *Queue) Append(ctx context.Context, rec *models.SOSRecord) error {
	if err := q.db.WithContext(ctx).Create(rec).Error; err != nil {
		return errors.Wrap(errors.CodePersistence, err, "append sos record")
	}
	return nil
}

// Patch is an atomic partial update of one record.
type Patch struct {
	Status     *models.SOSStatus
	RetryCount *int
	LastError  *string
}

// Update applies the patch to one record by id.
func (q *Queue) Update(ctx context.Context, id string, patch Patch) error {
	fields := map[string]interface{}{}
	if patch.Status != nil {
		fields["status"] = *patch.Status
	}
	if patch.RetryCount != nil {
		fields["retry_count"] = *patch.RetryCount
	}
	if patch.LastError != nil {
		fields["last_error"] = *patch.LastError
	}
	if len(fields) == 0 {
		return nil
	}
	res := q.db.WithContext(ctx).Model(&models.SOSRecord{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return errors.Wrap(errors.CodePersistence, res.Error, "update sos record")
	}
	if res.RowsAffected == 0 {
		return errors.WithCodef(errors.CodeNotFound, "sos record %s not found", id)
	}
	return nil
}

// Get fetches one record by id.
func (q *Queue) Get(ctx context.Context, id string) (*models.SOSRecord, error) {
	var rec models.SOSRecord
	if err := q.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.WithCodef(errors.CodeNotFound, "sos record %s not found", id)
		}
		return nil, errors.Wrap(errors.CodePersistence, err, "get sos record")
	}
	return &rec, nil
}

// ListPending returns records still owed to the remote store, in insertion
// order. There is no Remove: records are retained for the history view.
func (q *Queue) ListPending(ctx context.Context) ([]models.SOSRecord, error) {
	var recs []models.SOSRecord
	err := q.db.WithContext(ctx).
		Where("status IN ?", []models.SOSStatus{models.SOSQueued, models.SOSFailed}).
		Order("created_at").
		Find(&recs).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodePersistence, err, "list pending sos records")
	}
	return recs, nil
}

// ListAll returns every record, newest first, for the records view.
func (q *Queue) ListAll(ctx context.Context) ([]models.SOSRecord, error) {
	var recs []models.SOSRecord
	err := q.db.WithContext(ctx).Order("created_at DESC").Find(&recs).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodePersistence, err, "list sos records")
	}
	return recs, nil
}

// CountPending reports how many records still need a sync attempt.
func (q *Queue) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.WithContext(ctx).Model(&models.SOSRecord{}).
		Where("status IN ?", []models.SOSStatus{models.SOSQueued, models.SOSFailed}).
		Count(&n).Error
	if err != nil {
		return 0, errors.Wrap(errors.CodePersistence, err, "count pending sos records")
	}
	return n, nil
}
