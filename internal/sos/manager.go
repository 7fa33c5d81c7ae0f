// Package sos implements the alert lifecycle: countdown, location capture,
// durable local enqueue and the sync loop against the circle/record store.
package sos

import (
	"context"
	"sync"
	"time"

	"safecircle/internal/models"
	"safecircle/internal/queue"
	"safecircle/pkg/errors"
	"safecircle/pkg/logger"
	"safecircle/pkg/metrics"
	"safecircle/pkg/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCancelled is returned by Countdown.Wait when the alert was aborted
// before the timer fired. No record exists in that case.
var ErrCancelled = errors.New("sos cancelled before dispatch")

// LocationProvider supplies a best-effort current position. It may fail or
// block; the manager bounds the wait and treats failure as non-fatal.
type LocationProvider interface {
	Current(ctx context.Context) (models.Location, error)
}

// RemoteStore is the eventually-reachable sink for records. Upsert is keyed
// by the record's client id so redelivery never duplicates.
type RemoteStore interface {
	UpsertRecord(ctx context.Context, rec *models.SOSRecord) error
}

// Queue is the durable local store the manager writes before any remote
// attempt.
type Queue interface {
	Append(ctx context.Context, rec *models.SOSRecord) error
	Update(ctx context.Context, id string, patch queue.Patch) error
	ListPending(ctx context.Context) ([]models.SOSRecord, error)
}

type Config struct {
	// LocationTimeout bounds the wait for a position fix.
	LocationTimeout time.Duration
	// SyncTimeout bounds one remote push attempt.
	SyncTimeout time.Duration
}

type Manager struct {
	loc     LocationProvider
	queue   Queue
	remote  RemoteStore
	metrics *metrics.Metrics
	cfg     Config

	now   func() time.Time
	newID func() string

	// serializes status transitions per process; the queue update itself
	// is atomic, this just keeps retry sweeps from racing a fresh send
	syncMu sync.Mutex
}

func NewManager(loc LocationProvider, q Queue, remote RemoteStore, m *metrics.Metrics, cfg Config) *Manager {
	if cfg.LocationTimeout <= 0 {
		cfg.LocationTimeout = 5 * time.Second
	}
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = 10 * time.Second
	}
	return &Manager{
		loc:     loc,
		queue:   q,
		remote:  remote,
		metrics: m,
		cfg:     cfg,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Trigger starts an alert. With a positive countdown the returned handle is
// cancellable until the timer fires; Cancel before expiry aborts with no
// record created. A zero countdown dispatches immediately.
func (m *Manager) Trigger(ctx context.Context, userID string, countdown time.Duration) *Countdown {
	cd := &Countdown{
		done:      make(chan struct{}),
		cancelled: make(chan struct{}),
	}
	if countdown <= 0 {
		cd.beginSend()
		cd.resolve(m.Send(ctx, userID))
		return cd
	}

	timer := time.NewTimer(countdown)
	go func() {
		defer timer.Stop()
		select {
		case <-cd.cancelled:
			cd.resolve(nil, ErrCancelled)
		case <-timer.C:
			// Cancel can still win the race with the expiring timer; only
			// the side that claims the state slot proceeds. A dispatched
			// SOS must never be silently swallowed, nor an acknowledged
			// cancel overridden.
			if !cd.beginSend() {
				cd.resolve(nil, ErrCancelled)
				return
			}
			cd.resolve(m.Send(ctx, userID))
		}
	}()
	return cd
}

// Send runs the dispatch sequence: bounded location capture, record build,
// durable local append, then an async remote push. It returns once the
// record is safely queued; the caller may treat that as delivered.
func (m *Manager) Send(ctx context.Context, userID string) (*models.SOSRecord, error) {
	loc := m.captureLocation(ctx)

	if userID == "" {
		userID = models.AnonymousUserID
	}
	rec := &models.SOSRecord{
		ID:        m.newID(),
		UserID:    userID,
		CreatedAt: m.now(),
		Location:  loc,
		Status:    models.SOSQueued,
		Incident:  models.IncidentInProgress,
	}

	// Durability is the core guarantee: a failure here is fatal and must
	// propagate, everything after is recoverable.
	if err := m.queue.Append(ctx, rec); err != nil {
		return nil, err
	}
	m.metrics.SOSTransition("queued")
	util.Sig().Emit(models.SigSOSQueued, rec)
	logger.Info("sos queued", zap.String("id", rec.ID), zap.String("user", rec.UserID))

	go m.syncDetached(rec.ID)

	return rec, nil
}

func (m *Manager) captureLocation(ctx context.Context) models.Location {
	lctx, cancel := context.WithTimeout(ctx, m.cfg.LocationTimeout)
	defer cancel()

	loc, err := m.loc.Current(lctx)
	if err != nil {
		logger.Warn("location unavailable, sending anyway", zap.Error(err))
		return models.Location{}
	}
	return loc
}

// syncDetached pushes one record outside the caller's request lifetime.
func (m *Manager) syncDetached(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.SyncTimeout)
	defer cancel()
	if err := m.SyncOne(ctx, id); err != nil {
		logger.Warn("sos sync failed, will retry", zap.String("id", id), zap.Error(err))
	}
}

// SyncOne attempts the remote push for one record and applies the status
// transition: queued/failed -> syncing -> synced|failed.
func (m *Manager) SyncOne(ctx context.Context, id string) error {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()

	rec, err := m.getForSync(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil // already synced
	}

	syncing := models.SOSSyncing
	if err := m.queue.Update(ctx, id, queue.Patch{Status: &syncing}); err != nil {
		return err
	}

	// The remote copy is what the records view serves, so the push carries
	// the terminal status; only the local row tracks the in-flight leg.
	rec.Status = models.SOSSynced
	if err := m.remote.UpsertRecord(ctx, rec); err != nil {
		failed := models.SOSFailed
		retries := rec.RetryCount + 1
		msg := err.Error()
		if uerr := m.queue.Update(ctx, id, queue.Patch{
			Status:     &failed,
			RetryCount: &retries,
			LastError:  &msg,
		}); uerr != nil {
			return uerr
		}
		m.metrics.SOSTransition("failed")
		return errors.Wrap(errors.CodeUpstream, err, "push sos record")
	}

	synced := models.SOSSynced
	if err := m.queue.Update(ctx, id, queue.Patch{Status: &synced}); err != nil {
		return err
	}
	m.metrics.SOSTransition("synced")
	util.Sig().Emit(models.SigSOSSynced, rec)
	logger.Info("sos synced", zap.String("id", rec.ID))
	return nil
}

func (m *Manager) getForSync(ctx context.Context, id string) (*models.SOSRecord, error) {
	pending, err := m.queue.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	for i := range pending {
		if pending[i].ID == id {
			return &pending[i], nil
		}
	}
	return nil, nil
}

// RetryPending re-drives every queued or failed record, in insertion
// order. The caller owns the schedule; the manager never retries on its
// own. Returns how many records reached synced.
func (m *Manager) RetryPending(ctx context.Context) (int, error) {
	pending, err := m.queue.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	synced := 0
	for i := range pending {
		m.metrics.SOSRetry()
		if err := m.SyncOne(ctx, pending[i].ID); err != nil {
			logger.Warn("retry failed", zap.String("id", pending[i].ID), zap.Error(err))
			continue
		}
		synced++
	}
	return synced, nil
}
