package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"safecircle/pkg/errors"
)

// CardGateway talks to the card processor's REST API. It backs both sides
// of the confirmation flow: minting a client secret and confirming against
// it.
type CardGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewCardGateway(baseURL, apiKey string) *CardGateway {
	return &CardGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *CardGateway) CreateSecret(ctx context.Context, amount float64, currency string) (string, error) {
	var out struct {
		ClientSecret string `json:"client_secret"`
	}
	err := g.post(ctx, "/v1/payment_intents", map[string]interface{}{
		"amount":   amount,
		"currency": currency,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.ClientSecret == "" {
		return "", errors.WithCode(errors.CodeUpstream, "gateway returned no client secret")
	}
	return out.ClientSecret, nil
}

func (g *CardGateway) Confirm(ctx context.Context, clientSecret string, details CardDetails) (ConfirmResult, error) {
	var out struct {
		Status string `json:"status"`
	}
	err := g.post(ctx, "/v1/payment_intents/confirm", map[string]interface{}{
		"client_secret":   clientSecret,
		"cardholder_name": details.CardholderName,
	}, &out)
	if err != nil {
		return ConfirmResult{}, err
	}
	return ConfirmResult{Status: out.Status}, nil
}

func (g *CardGateway) post(ctx context.Context, path string, body map[string]interface{}, out interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(errors.CodeUpstream, err, "encode gateway request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return errors.Wrap(errors.CodeUpstream, err, "build gateway request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return errors.Wrap(errors.CodeUpstream, err, "call card gateway")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.CodeUpstream, err, "read gateway response")
	}
	if resp.StatusCode >= 400 {
		return errors.WithCodef(errors.CodeUpstream,
			"gateway returned %d: %s", resp.StatusCode, truncate(raw, 256))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(errors.CodeUpstream, err, "decode gateway response")
	}
	return nil
}
