package sos

import (
	"context"
	"testing"
	"time"

	"safecircle/internal/models"
	"safecircle/pkg/cache"
	"safecircle/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceProviderPrefersRequestFix(t *testing.T) {
	p := NewDeviceProvider(cache.NewGoCache(cache.LocalConfig{}), time.Minute)

	ctx := WithDeviceFix(context.Background(), "u1", models.Location{Lat: 1.5, Lng: 2.5})
	loc, err := p.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.5, loc.Lat)
	assert.Equal(t, 2.5, loc.Lng)
}

func TestDeviceProviderFallsBackToLastFix(t *testing.T) {
	p := NewDeviceProvider(cache.NewGoCache(cache.LocalConfig{}), time.Minute)

	// a fresh fix seeds the cache
	ctx := WithDeviceFix(context.Background(), "u1", models.Location{Lat: 1.5, Lng: 2.5})
	_, err := p.Current(ctx)
	require.NoError(t, err)

	// the next alert carries no coordinates
	loc, err := p.Current(WithUser(context.Background(), "u1"))
	require.NoError(t, err)
	assert.Equal(t, 1.5, loc.Lat)
}

func TestDeviceProviderNoFix(t *testing.T) {
	p := NewDeviceProvider(cache.NewGoCache(cache.LocalConfig{}), time.Minute)

	_, err := p.Current(context.Background())
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))

	_, err = p.Current(WithUser(context.Background(), "stranger"))
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestDeviceProviderIsolatesUsers(t *testing.T) {
	p := NewDeviceProvider(cache.NewGoCache(cache.LocalConfig{}), time.Minute)

	ctx := WithDeviceFix(context.Background(), "u1", models.Location{Lat: 1, Lng: 1})
	_, err := p.Current(ctx)
	require.NoError(t, err)

	_, err = p.Current(WithUser(context.Background(), "u2"))
	assert.Error(t, err)
}
