package sos

import (
	"context"
	"fmt"
	"testing"
	"time"

	"safecircle/internal/models"
	"safecircle/pkg/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRecordStoreUpsertIsIdempotent(t *testing.T) {
	db, err := util.OpenDatabase(&gorm.Config{}, "sqlite",
		fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SOSRecord{}))

	store := NewRecordStore(db)
	ctx := context.Background()

	rec := &models.SOSRecord{
		ID:        uuid.NewString(),
		UserID:    "u1",
		CreatedAt: time.Now(),
		Status:    models.SOSSyncing,
		Incident:  models.IncidentInProgress,
	}
	require.NoError(t, store.UpsertRecord(ctx, rec))

	// redelivery with a newer status updates in place, no duplicate row
	rec.Status = models.SOSSynced
	rec.Incident = models.IncidentResolved
	require.NoError(t, store.UpsertRecord(ctx, rec))

	var count int64
	require.NoError(t, db.Model(&models.SOSRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var got models.SOSRecord
	require.NoError(t, db.First(&got, "id = ?", rec.ID).Error)
	assert.Equal(t, models.SOSSynced, got.Status)
	assert.Equal(t, models.IncidentResolved, got.Incident)
}
