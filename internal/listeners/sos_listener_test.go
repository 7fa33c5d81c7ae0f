package listeners

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"safecircle/internal/models"
	"safecircle/pkg/notification"
	"safecircle/pkg/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type smsRecorder struct {
	mu    sync.Mutex
	sends []sentSMS
}

type sentSMS struct {
	phone  string
	params map[string]string
}

func (r *smsRecorder) Send(ctx context.Context, phone, sign, template string, params map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends = append(r.sends, sentSMS{phone: phone, params: params})
	return nil
}

func (r *smsRecorder) snapshot() []sentSMS {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentSMS(nil), r.sends...)
}

func setupListenerTest(t *testing.T) (*gorm.DB, *smsRecorder) {
	t.Helper()
	util.Sig().Reset()
	t.Cleanup(util.Sig().Reset)

	db, err := util.OpenDatabase(&gorm.Config{}, "sqlite",
		fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	rec := &smsRecorder{}
	sms := notification.NewSMS(notification.SMSConfig{SignName: "SafeCircle"}, rec)
	InitSOSListeners(db, sms)
	return db, rec
}

func TestSOSSyncedFansOutToCircle(t *testing.T) {
	db, rec := setupListenerTest(t)

	_, err := models.AddCircleMember(db, "u1", models.CircleMember{
		Name: "Mum", PhoneNumber: "260972222222", Category: models.CategoryFamily,
	})
	require.NoError(t, err)
	_, err = models.AddCircleMember(db, "u1", models.CircleMember{
		Name: "Dan", PhoneNumber: "260973333333", Category: models.CategoryFriends,
	})
	require.NoError(t, err)

	util.Sig().Emit(models.SigSOSSynced, &models.SOSRecord{
		ID:        "rec-1",
		UserID:    "u1",
		CreatedAt: time.Now(),
		Location:  models.Location{Lat: -15.4, Lng: 28.3},
	})

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	phones := map[string]bool{}
	for _, s := range rec.snapshot() {
		phones[s.phone] = true
		assert.Equal(t, "rec-1", s.params["recordId"])
		assert.Contains(t, s.params["mapsLink"], "-15.4")
	}
	assert.True(t, phones["260972222222"])
	assert.True(t, phones["260973333333"])
}

func TestSOSSyncedWithoutLocationOmitsMapsLink(t *testing.T) {
	db, rec := setupListenerTest(t)

	_, err := models.AddCircleMember(db, "u1", models.CircleMember{
		Name: "Mum", PhoneNumber: "260972222222",
	})
	require.NoError(t, err)

	util.Sig().Emit(models.SigSOSSynced, &models.SOSRecord{
		ID:        "rec-2",
		UserID:    "u1",
		CreatedAt: time.Now(),
	})

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, hasLink := rec.snapshot()[0].params["mapsLink"]
	assert.False(t, hasLink)
}

func TestSOSSyncedEmptyCircleSendsNothing(t *testing.T) {
	_, rec := setupListenerTest(t)

	util.Sig().Emit(models.SigSOSSynced, &models.SOSRecord{
		ID:     "rec-3",
		UserID: "loner",
	})

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}
