package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerror "github.com/annoylog/backend/internal/domain/error"
)

const subscriberBody = `{
  "subscriber": {
    "original_app_user_id": "user-1",
    "entitlements": {
      "pro": {"expires_date": "2026-07-01T00:00:00Z", "product_identifier": "monthly", "purchase_date": "2026-06-01T00:00:00Z"},
      "lifetime": {"expires_date": null, "product_identifier": "forever", "purchase_date": "2025-01-01T00:00:00Z"},
      "beta": {"expires_date": "2026-01-01T00:00:00Z", "product_identifier": "beta", "purchase_date": "2025-12-01T00:00:00Z"}
    },
    "subscriptions": {
      "monthly": {"expires_date": "2026-07-01T00:00:00Z", "unsubscribe_detected_at": null, "billing_issues_detected_at": null},
      "beta": {"expires_date": "2026-01-01T00:00:00Z", "unsubscribe_detected_at": "2025-12-15T00:00:00Z", "billing_issues_detected_at": null}
    }
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "secret-key", 2*time.Second)
	c.now = func() time.Time { return time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestClient_GetCustomerInfo(t *testing.T) {
	var gotPath, gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(subscriberBody))
	})

	info, err := c.GetCustomerInfo(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "/subscribers/user-1", gotPath)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "user-1", info.CustomerID)

	t.Run("renewing subscription is active", func(t *testing.T) {
		pro, ok := info.Active["pro"]
		require.True(t, ok)
		assert.True(t, pro.WillRenew)
		assert.Equal(t, "monthly", pro.ProductIdentifier)
	})

	t.Run("lifetime purchase is active without renewal", func(t *testing.T) {
		lifetime, ok := info.Active["lifetime"]
		require.True(t, ok)
		assert.False(t, lifetime.WillRenew)
		assert.Nil(t, lifetime.ExpiresAt)
	})

	t.Run("lapsed entitlement only appears in all", func(t *testing.T) {
		_, active := info.Active["beta"]
		assert.False(t, active)
		beta, ok := info.All["beta"]
		require.True(t, ok)
		assert.False(t, beta.WillRenew)
	})
}

func TestClient_CustomerNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetCustomerInfo(context.Background(), "nobody")
	assert.ErrorIs(t, err, domainerror.ErrBillingCustomerNotFound)
}

func TestClient_RetriesOnceOnServerError(t *testing.T) {
	t.Run("recovers", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(subscriberBody))
		})

		info, err := c.GetCustomerInfo(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Contains(t, info.Active, "pro")
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("gives up", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.GetCustomerInfo(context.Background(), "user-1")
		require.Error(t, err)
		assert.ErrorIs(t, err, domainerror.ErrBillingUnavailable)
		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestClient_UnexpectedStatusAndBody(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_, err := c.GetCustomerInfo(context.Background(), "user-1")
		assert.ErrorIs(t, err, domainerror.ErrBillingUnavailable)
	})

	t.Run("malformed json", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"subscriber":`))
		})
		_, err := c.GetCustomerInfo(context.Background(), "user-1")
		assert.Error(t, err)
	})
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(srv.URL, "k", time.Second)
	_, err := c.GetCustomerInfo(context.Background(), "user-1")
	assert.ErrorIs(t, err, domainerror.ErrBillingUnavailable)
}
