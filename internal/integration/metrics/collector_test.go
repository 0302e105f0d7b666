package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annoylog/backend/internal/domain/entity"
)

func TestCollector(t *testing.T) {
	c := NewCollector()

	c.MigrationFinished(entity.MigrationOutcomeMigrated, "")
	c.MigrationFinished(entity.MigrationOutcomeBlocked, entity.BlockReasonAccountHasData)
	c.MigrationFinished(entity.MigrationOutcomeBlocked, entity.BlockReasonAccountHasData)
	c.EntitlementSynced(entity.EntitlementStatusActive, false)
	c.EntitlementSynced(entity.EntitlementStatusNone, true)
	c.EntitlementCacheLookup(true)
	c.EntitlementCacheLookup(false)
	c.EntitlementCacheLookup(false)
	c.MailAttempted(entity.MailPasswordReset, entity.MailDelivered)
	c.MailAttempted(entity.MailPasswordReset, entity.MailQueued)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.migrations.WithLabelValues("migrated", "")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.migrations.WithLabelValues("blocked", "account_has_data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.entitlementSyncs.WithLabelValues("none", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.mailAttempts.WithLabelValues("password_reset", "delivered")))

	t.Run("handler exposes the counters", func(t *testing.T) {
		srv := httptest.NewServer(c.Handler())
		defer srv.Close()

		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `annoylog_guest_migrations_total{outcome="blocked",reason="account_has_data"} 2`)
		assert.Contains(t, string(body), "annoylog_entitlement_cache_lookups_total")
		assert.Contains(t, string(body), "go_goroutines")
	})
}
