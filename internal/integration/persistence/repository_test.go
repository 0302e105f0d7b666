package persistence

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/infra/db"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.MigrateSchema(conn))
	return conn
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	user := entity.NewUser("ana@example.com", "Ana", "hash-1", time.Now())
	require.NoError(t, repo.Create(ctx, user))

	t.Run("email is unique", func(t *testing.T) {
		twin := entity.NewUser("ana@example.com", "Other Ana", "hash-2", time.Now())
		assert.ErrorIs(t, repo.Create(ctx, twin), domainerror.ErrEmailAlreadyExists)

		taken, err := repo.ExistsByEmail(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.True(t, taken)
	})

	t.Run("profile edit touches only given fields", func(t *testing.T) {
		tz := "Asia/Tokyo"
		at := time.Now().UTC().Add(time.Minute).Truncate(time.Second)
		got, err := repo.UpdateProfile(ctx, user.ID, adapter.ProfileChange{Timezone: &tz}, at)
		require.NoError(t, err)
		assert.Equal(t, "Asia/Tokyo", got.Timezone)
		assert.Equal(t, "Ana", got.Name)
		assert.Equal(t, "hash-1", got.PasswordHash)
		assert.True(t, got.UpdatedAt.Equal(at))
	})

	t.Run("password hash", func(t *testing.T) {
		require.NoError(t, repo.SetPasswordHash(ctx, user.ID, "hash-3", time.Now()))
		got, err := repo.FindByEmail(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, "hash-3", got.PasswordHash)
		assert.Equal(t, "Asia/Tokyo", got.Timezone)
	})

	t.Run("missing account", func(t *testing.T) {
		name := "Ghost"
		_, err := repo.UpdateProfile(ctx, uuid.New(), adapter.ProfileChange{Name: &name}, time.Now())
		assert.ErrorIs(t, err, domainerror.ErrUserNotFound)
		assert.ErrorIs(t, repo.SetPasswordHash(ctx, uuid.New(), "x", time.Now()), domainerror.ErrUserNotFound)
		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domainerror.ErrUserNotFound)
	})
}

func TestGuestMigrationRepository_Claim(t *testing.T) {
	ctx := context.Background()
	repo := NewGuestMigrationRepository(newTestDB(t))
	userID := uuid.New()
	now := time.Now().UTC()

	t.Run("first claim inserts the marker", func(t *testing.T) {
		ok, err := repo.Claim(ctx, userID, "device-a", now, now.Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, ok)

		marker, err := repo.FindByUserID(ctx, userID)
		require.NoError(t, err)
		require.NotNil(t, marker)
		assert.Equal(t, entity.MigrationStatusInProgress, marker.Status)
		assert.Equal(t, "device-a", marker.DeviceID)
	})

	t.Run("held claim is refused", func(t *testing.T) {
		ok, err := repo.Claim(ctx, userID, "device-b", now.Add(time.Second), now.Add(-time.Minute))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("stale claim is taken over", func(t *testing.T) {
		later := now.Add(10 * time.Minute)
		ok, err := repo.Claim(ctx, userID, "device-b", later, later.Add(-5*time.Minute))
		require.NoError(t, err)
		assert.True(t, ok)

		marker, err := repo.FindByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "device-b", marker.DeviceID)
	})

	t.Run("finished marker can be claimed again", func(t *testing.T) {
		require.NoError(t, repo.Finish(ctx, userID, entity.MigrationStatusAborted, 0, 0, now))

		marker, err := repo.FindByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, entity.MigrationStatusAborted, marker.Status)
		assert.NotNil(t, marker.CompletedAt)

		ok, err := repo.Claim(ctx, userID, "device-c", now, now.Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("finish records counts", func(t *testing.T) {
		require.NoError(t, repo.Finish(ctx, userID, entity.MigrationStatusPartial, 2, 5, now))
		marker, err := repo.FindByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, entity.MigrationStatusPartial, marker.Status)
		assert.Equal(t, 2, marker.CategoriesMigrated)
		assert.Equal(t, 5, marker.EntriesMigrated)
	})

	t.Run("missing marker", func(t *testing.T) {
		marker, err := repo.FindByUserID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, marker)
	})
}

func TestGuestMigrationRepository_ConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	repo := NewGuestMigrationRepository(newTestDB(t))
	userID := uuid.New()
	now := time.Now().UTC()

	var won atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Claim(ctx, userID, "device", now, now.Add(-time.Minute))
			if err == nil && ok {
				won.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), won.Load())
}

func TestSubscriptionRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewSubscriptionRepository(newTestDB(t))
	userID := uuid.New()
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expires := first.Add(30 * 24 * time.Hour)

	_, err := repo.FindByUserID(ctx, userID)
	assert.ErrorIs(t, err, domainerror.ErrSubscriptionNotFound)

	active := entity.EntitlementSnapshot{IsPro: true, Status: entity.EntitlementStatusActive, ExpiresAt: &expires}
	require.NoError(t, repo.Upsert(ctx, entity.NewSubscription(userID, active, "pro", "cus_1", first)))

	second := first.Add(time.Hour)
	require.NoError(t, repo.Upsert(ctx, entity.NewSubscription(userID, entity.NoEntitlementSnapshot(), "pro", "cus_1", second)))

	stored, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.False(t, stored.IsPro)
	assert.Equal(t, entity.EntitlementStatusNone, stored.Status)
	assert.Nil(t, stored.ExpiresAt)
	assert.True(t, second.Equal(stored.SyncedAt))
	assert.True(t, first.Equal(stored.CreatedAt))

	require.NoError(t, repo.DeleteByUserID(ctx, userID))
	_, err = repo.FindByUserID(ctx, userID)
	assert.ErrorIs(t, err, domainerror.ErrSubscriptionNotFound)
}

func TestCategoryAndEntryRepositories(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	categories := NewCategoryRepository(conn)
	entries := NewEntryRepository(conn)
	userID := uuid.New()

	hasCategories, err := categories.ExistsByUserID(ctx, userID)
	require.NoError(t, err)
	assert.False(t, hasCategories)

	bus := entity.NewCategory(userID, "Bus", "", entity.DefaultCategoryColor)
	require.NoError(t, categories.Create(ctx, bus))

	t.Run("exists checks", func(t *testing.T) {
		ok, err := categories.ExistsByUserID(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = categories.ExistsByNameForUser(ctx, userID, "Bus")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = categories.ExistsByNameForUser(ctx, uuid.New(), "Bus")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	base := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		catID := bus.ID
		require.NoError(t, entries.Create(ctx, entity.NewEntry(userID, "late", i+1, &catID, base.Add(time.Duration(i)*24*time.Hour))))
	}

	t.Run("list is newest first with total", func(t *testing.T) {
		list, total, err := entries.List(ctx, entity.EntryFilter{UserID: userID, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, list, 2)
		assert.Equal(t, 3, list[0].Rating)
	})

	t.Run("between is half open", func(t *testing.T) {
		list, err := entries.ListBetween(ctx, userID, base, base.Add(48*time.Hour))
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, 1, list[0].Rating)
	})

	t.Run("created instants", func(t *testing.T) {
		instants, err := entries.ListCreatedAt(ctx, userID)
		require.NoError(t, err)
		require.Len(t, instants, 3)
		assert.True(t, instants[0].After(instants[2]))
	})

	t.Run("deleting a category clears references", func(t *testing.T) {
		cleared, err := entries.ClearCategory(ctx, userID, bus.ID)
		require.NoError(t, err)
		assert.Positive(t, cleared)
		require.NoError(t, categories.Delete(ctx, bus.ID))

		list, _, err := entries.List(ctx, entity.EntryFilter{UserID: userID})
		require.NoError(t, err)
		require.Len(t, list, 3)
		for _, e := range list {
			assert.Nil(t, e.CategoryID)
		}
	})

	t.Run("delete by user", func(t *testing.T) {
		require.NoError(t, entries.DeleteByUserID(ctx, userID))
		ok, err := entries.ExistsByUserID(ctx, userID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestOutboundMailRepository(t *testing.T) {
	ctx := context.Background()
	outbox := NewOutboundMailRepository(newTestDB(t))
	now := time.Now().UTC().Truncate(time.Second)

	first := entity.NewOutboundMail(entity.MailPasswordReset, "a@example.com", "A", "Reset", map[string]string{"link": "https://x"}, now.Add(-time.Minute))
	second := entity.NewOutboundMail(entity.MailGuestDataKept, "b@example.com", "B", "Kept", nil, now)
	later := entity.NewOutboundMail(entity.MailGuestDataKept, "c@example.com", "C", "Kept", nil, now.Add(time.Hour))
	for _, m := range []*entity.OutboundMail{first, second, later} {
		require.NoError(t, outbox.Enqueue(ctx, m))
	}

	t.Run("claims due mail oldest first", func(t *testing.T) {
		claimed, err := outbox.ClaimDue(ctx, now, 10)
		require.NoError(t, err)
		require.Len(t, claimed, 2)
		assert.Equal(t, first.ID, claimed[0].ID)
		assert.Equal(t, "https://x", claimed[0].Vars["link"])
		assert.Equal(t, entity.MailSending, claimed[0].State)

		again, err := outbox.ClaimDue(ctx, now.Add(time.Minute), 10)
		require.NoError(t, err)
		assert.Empty(t, again, "leased mail is not handed out twice")
	})

	t.Run("expired lease is claimable", func(t *testing.T) {
		claimed, err := outbox.ClaimDue(ctx, now.Add(entity.MailLease+time.Second), 10)
		require.NoError(t, err)
		assert.Len(t, claimed, 2)
	})

	t.Run("delivered mail is purged", func(t *testing.T) {
		first.Delivered("re_1", now)
		require.NoError(t, outbox.Save(ctx, first))

		n, err := outbox.PurgeDelivered(ctx, now.Add(time.Second))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestOutboundMailRepository_ConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	outbox := NewOutboundMailRepository(newTestDB(t))
	now := time.Now().UTC()
	for i := 0; i < 6; i++ {
		require.NoError(t, outbox.Enqueue(ctx, entity.NewOutboundMail(entity.MailGuestDataKept, "x@example.com", "", "Kept", nil, now)))
	}

	var (
		wg    sync.WaitGroup
		total atomic.Int64
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := outbox.ClaimDue(ctx, now, 6)
			if err == nil {
				total.Add(int64(len(claimed)))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(6), total.Load())
}
