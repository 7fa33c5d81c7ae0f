package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"safecircle/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyUnifyRequestPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/request", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-123", r.PostForm.Get("auth_id"))
		assert.Equal(t, "260971111111", r.PostForm.Get("from_payer"))
		assert.Equal(t, "25", r.PostForm.Get("amount"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","transaction_id":"tx-1"}`))
	}))
	defer srv.Close()

	mu := NewMoneyUnify(srv.URL, "auth-123")
	resp, err := mu.RequestPayment(context.Background(), "260971111111", 25)
	require.NoError(t, err)
	assert.Equal(t, "tx-1", resp.TransactionID)
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.Raw)
}

func TestMoneyUnifyVerifyPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/verify", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "tx-1", r.PostForm.Get("transaction_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"successful","transaction_id":"tx-1"}`))
	}))
	defer srv.Close()

	mu := NewMoneyUnify(srv.URL, "auth-123")
	resp, err := mu.VerifyPayment(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "successful", resp.Status)
}

func TestMoneyUnifyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"error","message":"invalid auth_id"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	mu := NewMoneyUnify(srv.URL, "bad")
	_, err := mu.RequestPayment(context.Background(), "260971111111", 25)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeUpstream))
	assert.Contains(t, err.Error(), "401")
}

func TestMoneyUnifyMalformedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	mu := NewMoneyUnify(srv.URL, "auth-123")
	_, err := mu.VerifyPayment(context.Background(), "tx-1")
	assert.True(t, errors.IsCode(err, errors.CodeUpstream))
}
