package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"safecircle/pkg/cache"

	"github.com/gin-gonic/gin"
)

type IdempotencyConfig struct {
	HeaderName string        // defaults to Idempotency-Key
	TTL        time.Duration // suppression window for duplicates
	Store      cache.Cache

	// OnDuplicate writes the response for a suppressed duplicate. The
	// default rejects with 409; webhook routes acknowledge instead, since
	// providers retry until they see success.
	OnDuplicate gin.HandlerFunc
}

// Idempotency suppresses duplicate requests inside the TTL window. The key
// is the Idempotency-Key header when present, otherwise a hash of the body,
// which makes an exact webhook replay collapse onto the same key.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "Idempotency-Key"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	store := cfg.Store
	if store == nil {
		store = cache.NewGoCache(cache.LocalConfig{})
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(cfg.HeaderName))
		if key == "" {
			b, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(strings.NewReader(string(b)))
			h := sha256.Sum256(b)
			key = hex.EncodeToString(h[:])
		}
		ok, err := store.SetNX(c.Request.Context(), "idem:"+key, 1, cfg.TTL)
		if err != nil {
			// a broken store must not block traffic
			c.Next()
			return
		}
		if !ok {
			if cfg.OnDuplicate != nil {
				cfg.OnDuplicate(c)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "duplicate request"})
			return
		}
		c.Next()
	}
}
