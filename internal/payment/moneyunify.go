package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"safecircle/pkg/errors"
)

// MoneyUnify talks to the MoneyUnify REST API. Requests are form-encoded,
// replies are JSON with at least transaction_id and status.
type MoneyUnify struct {
	baseURL string
	authID  string
	client  *http.Client
}

func NewMoneyUnify(baseURL, authID string) *MoneyUnify {
	return &MoneyUnify{
		baseURL: strings.TrimRight(baseURL, "/"),
		authID:  authID,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (mu *MoneyUnify) RequestPayment(ctx context.Context, phone string, amount float64) (*ProviderResponse, error) {
	form := url.Values{}
	form.Set("auth_id", mu.authID)
	form.Set("from_payer", phone)
	form.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	return mu.post(ctx, "/payments/request", form)
}

func (mu *MoneyUnify) VerifyPayment(ctx context.Context, transactionID string) (*ProviderResponse, error) {
	form := url.Values{}
	form.Set("auth_id", mu.authID)
	form.Set("transaction_id", transactionID)
	return mu.post(ctx, "/payments/verify", form)
}

func (mu *MoneyUnify) post(ctx context.Context, path string, form url.Values) (*ProviderResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mu.baseURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(errors.CodeUpstream, err, "build provider request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := mu.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUpstream, err, "call payment provider")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUpstream, err, "read provider response")
	}
	if resp.StatusCode >= 400 {
		return nil, errors.WithCodef(errors.CodeUpstream,
			"provider returned %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var parsed struct {
		TransactionID string `json:"transaction_id"`
		Status        string `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(errors.CodeUpstream, err, "decode provider response")
	}
	return &ProviderResponse{
		TransactionID: parsed.TransactionID,
		Status:        parsed.Status,
		Raw:           body,
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return fmt.Sprintf("%s...", b[:n])
}
