package entry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

type memEntryRepo struct {
	adapter.EntryRepository
	entries map[uuid.UUID]*entity.Entry
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: map[uuid.UUID]*entity.Entry{}}
}

func (m *memEntryRepo) Create(_ context.Context, e *entity.Entry) error {
	m.entries[e.ID] = e
	return nil
}

func (m *memEntryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, domainerror.ErrEntryNotFound
	}
	clone := *e
	return &clone, nil
}

func (m *memEntryRepo) Update(_ context.Context, e *entity.Entry) error {
	m.entries[e.ID] = e
	return nil
}

func (m *memEntryRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.entries, id)
	return nil
}

type memCategoryRepo struct {
	adapter.CategoryRepository
	categories map[uuid.UUID]*entity.Category
}

func (m *memCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, domainerror.ErrCategoryNotFound
	}
	return c, nil
}

func entryErrorCode(t *testing.T, err error) domainerror.EntryErrorCode {
	t.Helper()
	var entryErr *domainerror.EntryError
	require.ErrorAs(t, err, &entryErr)
	return entryErr.Code
}

func TestValidateContent(t *testing.T) {
	assert.NoError(t, ValidateContent("Neighbour's dog", 7))
	assert.Equal(t, domainerror.ErrCodeEntryTextRequired, entryErrorCode(t, ValidateContent("   ", 3)))
	assert.Equal(t, domainerror.ErrCodeEntryTextTooLong, entryErrorCode(t, ValidateContent(strings.Repeat("é", MaxTextLength+1), 3)))
	assert.NoError(t, ValidateContent(strings.Repeat("é", MaxTextLength), 3))
	assert.Equal(t, domainerror.ErrCodeInvalidRating, entryErrorCode(t, ValidateContent("x", 0)))
	assert.Equal(t, domainerror.ErrCodeInvalidRating, entryErrorCode(t, ValidateContent("x", 11)))
}

func TestCreateEntry(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	own := entity.NewCategory(userID, "Bus", "", entity.DefaultCategoryColor)
	foreign := entity.NewCategory(uuid.New(), "Theirs", "", entity.DefaultCategoryColor)
	categories := &memCategoryRepo{categories: map[uuid.UUID]*entity.Category{own.ID: own, foreign.ID: foreign}}
	uc := NewCreateEntryUseCase(newMemEntryRepo(), categories)

	t.Run("default category", func(t *testing.T) {
		work, _ := entity.DefaultCategoryID("work")
		out, err := uc.Execute(ctx, CreateEntryInput{UserID: userID, Text: "Meeting overran", Rating: 6, CategoryID: &work})
		require.NoError(t, err)
		require.NotNil(t, out.Category)
		assert.True(t, out.Category.IsDefault)
	})

	t.Run("own category", func(t *testing.T) {
		out, err := uc.Execute(ctx, CreateEntryInput{UserID: userID, Text: "Late again", Rating: 4, CategoryID: &own.ID})
		require.NoError(t, err)
		assert.Equal(t, "Bus", out.Category.Name)
	})

	t.Run("someone else's category", func(t *testing.T) {
		_, err := uc.Execute(ctx, CreateEntryInput{UserID: userID, Text: "x", Rating: 4, CategoryID: &foreign.ID})
		assert.Equal(t, domainerror.ErrCodeEntryCategoryNotFound, entryErrorCode(t, err))
	})

	t.Run("invalid rating", func(t *testing.T) {
		_, err := uc.Execute(ctx, CreateEntryInput{UserID: userID, Text: "x", Rating: 42})
		assert.ErrorIs(t, err, domainerror.ErrInvalidRating)
	})
}

func TestUpdateEntry_EditWindow(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	repo := newMemEntryRepo()
	uc := NewUpdateEntryUseCase(repo, &memCategoryRepo{})

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	fresh := entity.NewEntry(userID, "Printer", 3, nil, now.Add(-71*time.Hour))
	stale := entity.NewEntry(userID, "Printer", 3, nil, now.Add(-72*time.Hour))
	require.NoError(t, repo.Create(ctx, fresh))
	require.NoError(t, repo.Create(ctx, stale))

	t.Run("inside the window", func(t *testing.T) {
		rating := 9
		out, err := uc.Execute(ctx, UpdateEntryInput{EntryID: fresh.ID, UserID: userID, Rating: &rating})
		require.NoError(t, err)
		assert.Equal(t, 9, out.Entry.Rating)
		assert.Equal(t, "Printer", out.Entry.Text)
		assert.Equal(t, now, out.Entry.UpdatedAt)
	})

	t.Run("window closed", func(t *testing.T) {
		text := "changed"
		_, err := uc.Execute(ctx, UpdateEntryInput{EntryID: stale.ID, UserID: userID, Text: &text})
		assert.Equal(t, domainerror.ErrCodeEntryLocked, entryErrorCode(t, err))
		assert.Equal(t, "Printer", repo.entries[stale.ID].Text)
	})

	t.Run("clear category", func(t *testing.T) {
		work, _ := entity.DefaultCategoryID("work")
		out, err := uc.Execute(ctx, UpdateEntryInput{EntryID: fresh.ID, UserID: userID, CategoryID: &work})
		require.NoError(t, err)
		require.NotNil(t, out.Entry.CategoryID)

		out, err = uc.Execute(ctx, UpdateEntryInput{EntryID: fresh.ID, UserID: userID, ClearCategory: true})
		require.NoError(t, err)
		assert.Nil(t, out.Entry.CategoryID)
	})

	t.Run("other user", func(t *testing.T) {
		_, err := uc.Execute(ctx, UpdateEntryInput{EntryID: fresh.ID, UserID: uuid.New()})
		assert.Equal(t, domainerror.ErrCodeNotAuthorizedEntry, entryErrorCode(t, err))
	})

	t.Run("missing entry", func(t *testing.T) {
		_, err := uc.Execute(ctx, UpdateEntryInput{EntryID: uuid.New(), UserID: userID})
		assert.Equal(t, domainerror.ErrCodeEntryNotFound, entryErrorCode(t, err))
	})
}

func TestDeleteEntry_AllowedAfterWindow(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	repo := newMemEntryRepo()
	old := entity.NewEntry(userID, "Ancient grudge", 10, nil, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, repo.Create(ctx, old))

	uc := NewDeleteEntryUseCase(repo)

	err := uc.Execute(ctx, DeleteEntryInput{EntryID: old.ID, UserID: uuid.New()})
	assert.Equal(t, domainerror.ErrCodeNotAuthorizedEntry, entryErrorCode(t, err))

	require.NoError(t, uc.Execute(ctx, DeleteEntryInput{EntryID: old.ID, UserID: userID}))
	assert.Empty(t, repo.entries)
}
