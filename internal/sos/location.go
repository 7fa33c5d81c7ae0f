package sos

import (
	"context"
	"encoding/json"
	"time"

	"safecircle/internal/models"
	"safecircle/pkg/cache"
	"safecircle/pkg/errors"
)

type ctxKey int

const fixKey ctxKey = iota

type deviceFix struct {
	UserID   string
	Location models.Location
}

// WithDeviceFix attaches the position the device reported with this
// request. The provider prefers it over any cached reading.
func WithDeviceFix(ctx context.Context, userID string, loc models.Location) context.Context {
	return context.WithValue(ctx, fixKey, deviceFix{UserID: userID, Location: loc})
}

// WithUser attaches just the user so the provider can fall back to that
// user's last cached fix when the current request carries none.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, fixKey, deviceFix{UserID: userID})
}

// DeviceProvider resolves a position from the request itself, falling back
// to the user's last known fix. Fresh readings refresh the cache so a later
// alert without coordinates still gets something useful.
type DeviceProvider struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewDeviceProvider(c cache.Cache, ttl time.Duration) *DeviceProvider {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &DeviceProvider{cache: c, ttl: ttl}
}

func (p *DeviceProvider) Current(ctx context.Context) (models.Location, error) {
	fix, ok := ctx.Value(fixKey).(deviceFix)
	if !ok {
		return models.Location{}, errors.WithCode(errors.CodeNotFound, "no position available")
	}
	if !fix.Location.IsSentinel() {
		p.remember(ctx, fix)
		return fix.Location, nil
	}
	return p.lastKnown(ctx, fix.UserID)
}

func (p *DeviceProvider) remember(ctx context.Context, fix deviceFix) {
	if p.cache == nil || fix.UserID == "" {
		return
	}
	b, err := json.Marshal(fix.Location)
	if err != nil {
		return
	}
	// best effort, a cache failure never blocks a dispatch
	_ = p.cache.Set(ctx, "fix:"+fix.UserID, string(b), p.ttl)
}

func (p *DeviceProvider) lastKnown(ctx context.Context, userID string) (models.Location, error) {
	if p.cache == nil || userID == "" {
		return models.Location{}, errors.WithCode(errors.CodeNotFound, "no position available")
	}
	v, ok := p.cache.Get(ctx, "fix:"+userID)
	if !ok {
		return models.Location{}, errors.WithCode(errors.CodeNotFound, "no recent fix")
	}
	s, ok := v.(string)
	if !ok {
		return models.Location{}, errors.WithCode(errors.CodeNotFound, "no recent fix")
	}
	var loc models.Location
	if err := json.Unmarshal([]byte(s), &loc); err != nil {
		return models.Location{}, errors.Wrap(errors.CodeUnknown, err, "decode cached fix")
	}
	return loc, nil
}
