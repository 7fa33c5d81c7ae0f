package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func computeSignature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// WebhookSignature verifies the provider's HMAC over the raw body. An empty
// secret disables verification, matching providers that do not sign.
func WebhookSignature(headerName, secret string) gin.HandlerFunc {
	if headerName == "" {
		headerName = "X-Webhook-Signature"
	}
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		signature := strings.TrimSpace(c.GetHeader(headerName))
		if signature == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "signature missing"})
			return
		}
		body, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(strings.NewReader(string(body)))

		expected := computeSignature(body, secret)
		if !hmac.Equal([]byte(signature), []byte(expected)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		c.Next()
	}
}
