package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPSMSClient posts messages to a JSON SMS gateway. Any gateway exposing
// a POST /messages endpoint with this shape works.
type HTTPSMSClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPSMSClient(baseURL, apiKey string) *HTTPSMSClient {
	return &HTTPSMSClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPSMSClient) Send(ctx context.Context, phone, sign, template string, params map[string]string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"to":       phone,
		"sign":     sign,
		"template": template,
		"params":   params,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages",
		strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
