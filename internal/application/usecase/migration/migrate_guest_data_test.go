package migration

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	"github.com/annoylog/backend/internal/domain/valueobject"
	"github.com/annoylog/backend/internal/integration/localstore"
)

const deviceID = "device-test-0001"

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore { return &memStore{data: map[string]string{}} }

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }

type fakeCategoryRepo struct {
	adapter.CategoryRepository
	mu        sync.Mutex
	created   []*entity.Category
	existing  bool
	failAfter int
}

func (f *fakeCategoryRepo) Create(_ context.Context, c *entity.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter > 0 && len(f.created) >= f.failAfter {
		return errors.New("insert failed")
	}
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCategoryRepo) ExistsByUserID(context.Context, uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing || len(f.created) > 0, nil
}

type fakeEntryRepo struct {
	adapter.EntryRepository
	mu        sync.Mutex
	created   []*entity.Entry
	existing  bool
	failAfter int
}

func (f *fakeEntryRepo) Create(_ context.Context, e *entity.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter > 0 && len(f.created) >= f.failAfter {
		return errors.New("insert failed")
	}
	f.created = append(f.created, e)
	return nil
}

func (f *fakeEntryRepo) ExistsByUserID(context.Context, uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing || len(f.created) > 0, nil
}

// fakeMigrationRepo mirrors the claim rules of the SQL repository.
type fakeMigrationRepo struct {
	adapter.GuestMigrationRepository
	mu      sync.Mutex
	markers map[uuid.UUID]*entity.GuestMigration
}

func newFakeMigrationRepo() *fakeMigrationRepo {
	return &fakeMigrationRepo{markers: map[uuid.UUID]*entity.GuestMigration{}}
}

func (f *fakeMigrationRepo) Claim(_ context.Context, userID uuid.UUID, device string, now, staleBefore time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.markers[userID]; ok {
		if m.Status == entity.MigrationStatusInProgress && !m.StartedAt.Before(staleBefore) {
			return false, nil
		}
	}
	f.markers[userID] = &entity.GuestMigration{
		ID:        uuid.New(),
		UserID:    userID,
		DeviceID:  device,
		Status:    entity.MigrationStatusInProgress,
		StartedAt: now,
	}
	return true, nil
}

func (f *fakeMigrationRepo) Finish(_ context.Context, userID uuid.UUID, status entity.MigrationStatus, categories, entries int, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.markers[userID]
	if !ok {
		return errors.New("no marker")
	}
	m.Status = status
	m.CategoriesMigrated = categories
	m.EntriesMigrated = entries
	m.CompletedAt = &now
	return nil
}

func (f *fakeMigrationRepo) marker(userID uuid.UUID) *entity.GuestMigration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markers[userID]
}

type fakeUserRepo struct {
	adapter.UserRepository
	user *entity.User
}

func (f *fakeUserRepo) FindByID(context.Context, uuid.UUID) (*entity.User, error) {
	return f.user, nil
}

type fakeNotifier struct {
	adapter.Notifier
	mu     sync.Mutex
	notice []adapter.GuestDataKeptNotice
}

func (f *fakeNotifier) NotifyGuestDataKept(_ context.Context, in adapter.GuestDataKeptNotice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notice = append(f.notice, in)
	return nil
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes []entity.MigrationOutcome
}

func (f *fakeMetrics) MigrationFinished(outcome entity.MigrationOutcome, _ entity.MigrationBlockReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcome)
}

func (f *fakeMetrics) EntitlementSynced(entity.EntitlementStatus, bool) {}
func (f *fakeMetrics) EntitlementCacheLookup(bool)                      {}

type fixture struct {
	userID     uuid.UUID
	store      *memStore
	staging    adapter.GuestStaging
	categories *fakeCategoryRepo
	entries    *fakeEntryRepo
	markers    *fakeMigrationRepo
	email      *fakeNotifier
	metrics    *fakeMetrics
	uc         *MigrateGuestDataUseCase
}

func newFixture() *fixture {
	store := newMemStore()
	f := &fixture{
		userID:     uuid.New(),
		store:      store,
		staging:    localstore.NewGuestStaging(store),
		categories: &fakeCategoryRepo{},
		entries:    &fakeEntryRepo{},
		markers:    newFakeMigrationRepo(),
		email:      &fakeNotifier{},
		metrics:    &fakeMetrics{},
	}
	users := &fakeUserRepo{user: &entity.User{ID: f.userID, Email: "guest@example.com", Name: "Guest"}}
	f.uc = NewMigrateGuestDataUseCase(f.staging, f.categories, f.entries, f.markers, users, f.email, f.metrics, time.Minute)
	return f
}

func (f *fixture) stage(t *testing.T, categories []entity.StagedCategory, entries []entity.StagedEntry) {
	t.Helper()
	ctx := context.Background()
	if categories != nil {
		require.NoError(t, f.staging.SaveCategories(ctx, deviceID, categories))
	}
	if entries != nil {
		require.NoError(t, f.staging.SaveEntries(ctx, deviceID, entries))
	}
}

func (f *fixture) run(t *testing.T) (*MigrateGuestDataOutput, error) {
	t.Helper()
	return f.uc.Execute(context.Background(), MigrateGuestDataInput{Session: entity.NewSession(f.userID, deviceID)})
}

func ref(r valueobject.CategoryRef) *valueobject.CategoryRef { return &r }

func sampleData() ([]entity.StagedCategory, []entity.StagedEntry) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	categories := []entity.StagedCategory{
		{LocalID: "100", Name: "Gym", Color: "#445566", CreatedAt: created},
		{LocalID: "101", Name: "Landlord", CreatedAt: created},
	}
	entries := []entity.StagedEntry{
		{LocalID: "200", Text: "No racks", Rating: 3, Category: ref(valueobject.UserRef("100")), CreatedAt: created.Add(time.Hour)},
		{LocalID: "201", Text: "Standup", Rating: 4, Category: ref(valueobject.DefaultRef("work")), CreatedAt: created.Add(2 * time.Hour)},
		{LocalID: "202", Text: "Boiler", Rating: 5, Category: ref(valueobject.LegacyRef("101")), CreatedAt: created.Add(3 * time.Hour)},
	}
	return categories, entries
}

func TestMigrateGuestData_CopiesIntoEmptyAccount(t *testing.T) {
	f := newFixture()
	categories, entries := sampleData()
	f.stage(t, categories, entries)

	out, err := f.run(t)
	require.NoError(t, err)

	assert.Equal(t, entity.MigrationOutcomeMigrated, out.Outcome)
	assert.True(t, out.Success)
	assert.True(t, out.Synced)
	assert.False(t, out.Partial)
	assert.Equal(t, 2, out.CategoriesMigrated)
	assert.Equal(t, 3, out.EntriesMigrated)

	require.Len(t, f.categories.created, 2)
	require.Len(t, f.entries.created, 3)

	gym := f.categories.created[0]
	assert.Equal(t, "Gym", gym.Name)
	assert.Equal(t, "#445566", gym.Color)
	assert.Equal(t, entity.DefaultCategoryColor, f.categories.created[1].Color)

	t.Run("references are rewritten to remote ids", func(t *testing.T) {
		require.NotNil(t, f.entries.created[0].CategoryID)
		assert.Equal(t, gym.ID, *f.entries.created[0].CategoryID)

		workID, _ := entity.DefaultCategoryID("work")
		require.NotNil(t, f.entries.created[1].CategoryID)
		assert.Equal(t, workID, *f.entries.created[1].CategoryID)

		require.NotNil(t, f.entries.created[2].CategoryID)
		assert.Equal(t, f.categories.created[1].ID, *f.entries.created[2].CategoryID)
	})

	t.Run("creation times are kept", func(t *testing.T) {
		assert.True(t, f.entries.created[0].CreatedAt.Equal(entries[0].CreatedAt))
	})

	t.Run("staging is cleared", func(t *testing.T) {
		left, err := f.staging.LoadEntries(context.Background(), deviceID)
		require.NoError(t, err)
		assert.Empty(t, left)
		leftCats, err := f.staging.LoadCategories(context.Background(), deviceID)
		require.NoError(t, err)
		assert.Empty(t, leftCats)
	})

	t.Run("marker is completed", func(t *testing.T) {
		m := f.markers.marker(f.userID)
		require.NotNil(t, m)
		assert.Equal(t, entity.MigrationStatusCompleted, m.Status)
		assert.Equal(t, 3, m.EntriesMigrated)
		assert.NotNil(t, m.CompletedAt)
	})

	assert.Equal(t, []entity.MigrationOutcome{entity.MigrationOutcomeMigrated}, f.metrics.outcomes)
}

func TestMigrateGuestData_NothingToMigrate(t *testing.T) {
	t.Run("no device", func(t *testing.T) {
		f := newFixture()
		out, err := f.uc.Execute(context.Background(), MigrateGuestDataInput{Session: entity.NewSession(f.userID, "")})
		require.NoError(t, err)
		assert.Equal(t, entity.MigrationOutcomeNothingToMigrate, out.Outcome)
	})

	t.Run("empty staging", func(t *testing.T) {
		f := newFixture()
		out, err := f.run(t)
		require.NoError(t, err)
		assert.Equal(t, entity.MigrationOutcomeNothingToMigrate, out.Outcome)
		assert.Nil(t, f.markers.marker(f.userID))
	})
}

func TestMigrateGuestData_RequiresAuthenticatedSession(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Execute(context.Background(), MigrateGuestDataInput{Session: entity.NewSession(uuid.Nil, deviceID)})
	require.Error(t, err)
}

func TestMigrateGuestData_BlockedWhenAccountHasData(t *testing.T) {
	f := newFixture()
	f.entries.existing = true
	categories, entries := sampleData()
	f.stage(t, categories, entries)

	out, err := f.run(t)
	require.NoError(t, err)

	assert.Equal(t, entity.MigrationOutcomeBlocked, out.Outcome)
	assert.Equal(t, entity.BlockReasonAccountHasData, out.Reason)
	assert.False(t, out.Success)
	assert.False(t, out.Synced)
	assert.Equal(t, NoticeGuestDataKept, out.Notice)
	assert.Equal(t, 2, out.CategoriesLeft)
	assert.Equal(t, 3, out.EntriesLeft)

	assert.Empty(t, f.categories.created)
	assert.Nil(t, f.markers.marker(f.userID))

	left, err := f.staging.LoadEntries(context.Background(), deviceID)
	require.NoError(t, err)
	assert.Len(t, left, 3)

	require.Len(t, f.email.notice, 1)
	assert.Equal(t, "guest@example.com", f.email.notice[0].Email)
	assert.Equal(t, 3, f.email.notice[0].Entries)
}

func TestMigrateGuestData_BlockedWhileClaimHeld(t *testing.T) {
	f := newFixture()
	_, entries := sampleData()
	f.stage(t, nil, entries)

	ok, err := f.markers.Claim(context.Background(), f.userID, "device-other-01", time.Now(), time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	out, err := f.run(t)
	require.NoError(t, err)
	assert.Equal(t, entity.MigrationOutcomeBlocked, out.Outcome)
	assert.Equal(t, entity.BlockReasonMigrationInProgress, out.Reason)
	assert.Empty(t, f.entries.created)
}

func TestMigrateGuestData_TakesOverStaleClaim(t *testing.T) {
	f := newFixture()
	_, entries := sampleData()
	f.stage(t, nil, entries)

	old := time.Now().Add(-time.Hour)
	_, err := f.markers.Claim(context.Background(), f.userID, "device-crashed", old, old.Add(-time.Minute))
	require.NoError(t, err)

	out, err := f.run(t)
	require.NoError(t, err)
	assert.Equal(t, entity.MigrationOutcomeMigrated, out.Outcome)
	assert.Equal(t, deviceID, f.markers.marker(f.userID).DeviceID)
}

func TestMigrateGuestData_PartialFailureRestagesLeftovers(t *testing.T) {
	f := newFixture()
	f.entries.failAfter = 1
	categories, entries := sampleData()
	f.stage(t, categories, entries)

	out, err := f.run(t)
	require.NoError(t, err)

	assert.Equal(t, entity.MigrationOutcomeMigrated, out.Outcome)
	assert.True(t, out.Partial)
	assert.Equal(t, 1, out.EntriesMigrated)
	assert.Equal(t, 2, out.EntriesLeft)

	left, err := f.staging.LoadEntries(context.Background(), deviceID)
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, valueobject.LocalID("201"), left[0].LocalID)

	assert.Equal(t, entity.MigrationStatusPartial, f.markers.marker(f.userID).Status)
}

func TestMigrateGuestData_FailureWithNothingCopiedReleasesClaim(t *testing.T) {
	f := newFixture()
	_, entries := sampleData()
	f.stage(t, nil, entries)
	f.uc.entryRepo = alwaysFailEntryRepo{}

	out, err := f.run(t)
	require.Error(t, err)
	assert.Equal(t, entity.MigrationOutcomeFailed, out.Outcome)
	assert.False(t, out.Success)

	m := f.markers.marker(f.userID)
	require.NotNil(t, m)
	assert.Equal(t, entity.MigrationStatusAborted, m.Status)

	left, err := f.staging.LoadEntries(context.Background(), deviceID)
	require.NoError(t, err)
	assert.Len(t, left, 3)

	t.Run("a later attempt may claim again", func(t *testing.T) {
		f.uc.entryRepo = f.entries
		out, err := f.run(t)
		require.NoError(t, err)
		assert.Equal(t, entity.MigrationOutcomeMigrated, out.Outcome)
		assert.Equal(t, 3, out.EntriesMigrated)
	})
}

type alwaysFailEntryRepo struct {
	adapter.EntryRepository
}

func (alwaysFailEntryRepo) Create(context.Context, *entity.Entry) error {
	return errors.New("database unavailable")
}

func (alwaysFailEntryRepo) ExistsByUserID(context.Context, uuid.UUID) (bool, error) {
	return false, nil
}

func TestMigrateGuestData_DuplicateStagedNamesKeepOwnRows(t *testing.T) {
	f := newFixture()
	created := time.Now().UTC()
	f.stage(t,
		[]entity.StagedCategory{
			{LocalID: "1", Name: "Bus", CreatedAt: created},
			{LocalID: "2", Name: " bus ", CreatedAt: created},
			{LocalID: "3", Name: "BUS", CreatedAt: created},
		},
		[]entity.StagedEntry{
			{LocalID: "4", Text: "Late", Rating: 2, Category: ref(valueobject.UserRef("2")), CreatedAt: created},
		},
	)

	out, err := f.run(t)
	require.NoError(t, err)

	require.Len(t, f.categories.created, 3)
	assert.Equal(t, 3, out.CategoriesMigrated)
	assert.Equal(t, 3, f.markers.marker(f.userID).CategoriesMigrated)
	assert.Equal(t, "Bus", f.categories.created[0].Name)
	assert.Equal(t, "bus (2)", f.categories.created[1].Name)
	assert.Equal(t, "BUS (3)", f.categories.created[2].Name)

	require.Len(t, f.entries.created, 1)
	assert.Equal(t, f.categories.created[1].ID, *f.entries.created[0].CategoryID)
}

func TestMigrateGuestData_CategoryCountOnFailure(t *testing.T) {
	f := newFixture()
	f.categories.failAfter = 1
	categories, entries := sampleData()
	f.stage(t, categories, entries)

	out, err := f.run(t)
	require.NoError(t, err)

	assert.True(t, out.Partial)
	assert.Equal(t, 1, out.CategoriesMigrated)
	assert.Equal(t, 1, out.CategoriesLeft)
	assert.Len(t, f.categories.created, out.CategoriesMigrated)
}

func TestUniqueName(t *testing.T) {
	taken := map[string]struct{}{"gym": {}, "gym (2)": {}}
	assert.Equal(t, "Work", uniqueName("Work", taken))
	assert.Equal(t, "Gym (3)", uniqueName("Gym", taken))

	long := strings.Repeat("x", maxCategoryName)
	taken[long] = struct{}{}
	got := uniqueName(long, taken)
	assert.Equal(t, maxCategoryName, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, " (2)"))
}

// Payloads written by the mobile client before the keys were renamed.
func TestMigrateGuestData_OlderClientPayload(t *testing.T) {
	f := newFixture()
	f.store.data["device:"+deviceID+":staged_categories"] = `[{"localId":1,"name":"Gaming"}]`
	f.store.data["device:"+deviceID+":staged_entries"] = `[{"id":101,"text":"Lag spikes","rating":7,"category_id":1}]`

	out, err := f.run(t)
	require.NoError(t, err)
	assert.Equal(t, entity.MigrationOutcomeMigrated, out.Outcome)
	assert.True(t, out.Success)
	assert.True(t, out.Synced)

	require.Len(t, f.categories.created, 1)
	gaming := f.categories.created[0]
	assert.Equal(t, "Gaming", gaming.Name)

	require.Len(t, f.entries.created, 1)
	entry := f.entries.created[0]
	assert.Equal(t, "Lag spikes", entry.Text)
	assert.Equal(t, 7, entry.Rating)
	require.NotNil(t, entry.CategoryID)
	assert.Equal(t, gaming.ID, *entry.CategoryID)

	assert.Empty(t, f.store.data)
}

func TestMigrateGuestData_CategoryWithoutLocalID(t *testing.T) {
	f := newFixture()
	f.store.data["device:"+deviceID+":staged_categories"] = `[{"name":"Noise"},{"name":"Traffic"}]`
	f.store.data["device:"+deviceID+":staged_entries"] = `[{"id":1,"text":"Horns","rating":4,"category":{"kind":"user","id":"7"}}]`

	out, err := f.run(t)
	require.NoError(t, err)

	assert.Equal(t, 2, out.CategoriesMigrated)
	require.Len(t, f.categories.created, 2)
	require.Len(t, f.entries.created, 1)
	assert.Nil(t, f.entries.created[0].CategoryID)
}

func TestMigrateGuestData_SecondRunIsBlocked(t *testing.T) {
	f := newFixture()
	categories, entries := sampleData()
	f.stage(t, categories, entries)

	first, err := f.run(t)
	require.NoError(t, err)
	require.Equal(t, entity.MigrationOutcomeMigrated, first.Outcome)

	f.stage(t, categories, entries)
	second, err := f.run(t)
	require.NoError(t, err)

	assert.Equal(t, entity.MigrationOutcomeBlocked, second.Outcome)
	assert.Equal(t, entity.BlockReasonAccountHasData, second.Reason)
	assert.False(t, second.Success)
	assert.False(t, second.Synced)
	assert.Len(t, f.categories.created, 2)
	assert.Len(t, f.entries.created, 3)
	assert.Equal(t, entity.MigrationStatusCompleted, f.markers.marker(f.userID).Status)

	left, err := f.staging.LoadEntries(context.Background(), deviceID)
	require.NoError(t, err)
	assert.Len(t, left, 3)
}

func TestMigrateGuestData_ConcurrentSignInsMigrateOnce(t *testing.T) {
	f := newFixture()
	_, entries := sampleData()
	f.stage(t, nil, entries)

	const callers = 8
	results := make(chan *MigrateGuestDataOutput, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.uc.Execute(context.Background(), MigrateGuestDataInput{Session: entity.NewSession(f.userID, deviceID)})
			assert.NoError(t, err)
			results <- out
		}()
	}
	wg.Wait()
	close(results)

	migrated := 0
	for out := range results {
		switch out.Outcome {
		case entity.MigrationOutcomeMigrated:
			migrated++
		case entity.MigrationOutcomeBlocked:
			assert.Contains(t,
				[]entity.MigrationBlockReason{entity.BlockReasonAccountHasData, entity.BlockReasonMigrationInProgress},
				out.Reason)
			assert.False(t, out.Success)
		default:
			// Staging was already cleared by the winner.
			assert.Equal(t, entity.MigrationOutcomeNothingToMigrate, out.Outcome)
		}
	}
	assert.Equal(t, 1, migrated)
	assert.Len(t, f.entries.created, 3)
}
