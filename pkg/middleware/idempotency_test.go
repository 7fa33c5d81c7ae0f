package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"safecircle/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idempotentRouter(cfg IdempotencyConfig, handled *atomic.Int32) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/hook", Idempotency(cfg), func(c *gin.Context) {
		handled.Add(1)
		c.String(http.StatusOK, "Webhook received")
	})
	return r
}

func postBody(r *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyRejectsDuplicateByDefault(t *testing.T) {
	var handled atomic.Int32
	r := idempotentRouter(IdempotencyConfig{
		TTL:   time.Minute,
		Store: cache.NewGoCache(cache.LocalConfig{}),
	}, &handled)

	body := `{"transaction_id":"tx-1","status":"successful"}`
	first := postBody(r, body, nil)
	require.Equal(t, http.StatusOK, first.Code)

	second := postBody(r, body, nil)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.EqualValues(t, 1, handled.Load())
}

func TestIdempotencyOnDuplicateAcknowledges(t *testing.T) {
	var handled atomic.Int32
	r := idempotentRouter(IdempotencyConfig{
		TTL:   time.Minute,
		Store: cache.NewGoCache(cache.LocalConfig{}),
		OnDuplicate: func(c *gin.Context) {
			c.String(http.StatusOK, "Webhook received")
		},
	}, &handled)

	body := `{"transaction_id":"tx-1","status":"successful"}`
	first := postBody(r, body, nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "Webhook received", first.Body.String())

	// an exact replay is acknowledged but the handler runs only once
	second := postBody(r, body, nil)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "Webhook received", second.Body.String())
	assert.EqualValues(t, 1, handled.Load())
}

func TestIdempotencyDistinctPayloadsPass(t *testing.T) {
	var handled atomic.Int32
	r := idempotentRouter(IdempotencyConfig{
		TTL:   time.Minute,
		Store: cache.NewGoCache(cache.LocalConfig{}),
	}, &handled)

	first := postBody(r, `{"transaction_id":"tx-1","status":"successful"}`, nil)
	second := postBody(r, `{"transaction_id":"tx-2","status":"successful"}`, nil)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.EqualValues(t, 2, handled.Load())
}

func TestIdempotencyHeaderKeyWins(t *testing.T) {
	var handled atomic.Int32
	r := idempotentRouter(IdempotencyConfig{
		TTL:   time.Minute,
		Store: cache.NewGoCache(cache.LocalConfig{}),
	}, &handled)

	// different bodies, same key: the second is a duplicate
	first := postBody(r, `{"n":1}`, map[string]string{"Idempotency-Key": "k1"})
	second := postBody(r, `{"n":2}`, map[string]string{"Idempotency-Key": "k1"})
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.EqualValues(t, 1, handled.Load())
}
