// Package migration moves data staged by a guest device into an account.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

// DefaultClaimTTL is how long an in-progress marker blocks other attempts.
const DefaultClaimTTL = 5 * time.Minute

// maxCategoryName matches the categories.name column width.
const maxCategoryName = 50

// NoticeGuestDataKept is shown to the user when migration is blocked.
const NoticeGuestDataKept = "This account already has journal data, so entries you logged as a guest stay on this device only."

// MigrateGuestDataInput represents the input for a guest migration.
type MigrateGuestDataInput struct {
	Session *entity.Session
}

// MigrateGuestDataOutput is the tagged result of a migration attempt.
// Expected outcomes (migrated, nothing_to_migrate, blocked) come with a nil
// error; failed comes with the error that caused it.
type MigrateGuestDataOutput struct {
	Outcome            entity.MigrationOutcome
	Success            bool
	Synced             bool
	Reason             entity.MigrationBlockReason
	Notice             string
	Partial            bool
	CategoriesMigrated int
	EntriesMigrated    int
	CategoriesLeft     int
	EntriesLeft        int
}

// MigrateGuestDataUseCase copies a device's staged categories and entries
// into an empty account, exactly once.
type MigrateGuestDataUseCase struct {
	staging       adapter.GuestStaging
	categoryRepo  adapter.CategoryRepository
	entryRepo     adapter.EntryRepository
	migrationRepo adapter.GuestMigrationRepository
	userRepo      adapter.UserRepository
	notifier      adapter.Notifier
	metrics       adapter.SyncMetrics
	claimTTL      time.Duration
	now           func() time.Time
}

// NewMigrateGuestDataUseCase creates a new MigrateGuestDataUseCase instance.
// notifier and metrics may be nil.
func NewMigrateGuestDataUseCase(
	staging adapter.GuestStaging,
	categoryRepo adapter.CategoryRepository,
	entryRepo adapter.EntryRepository,
	migrationRepo adapter.GuestMigrationRepository,
	userRepo adapter.UserRepository,
	notifier adapter.Notifier,
	metrics adapter.SyncMetrics,
	claimTTL time.Duration,
) *MigrateGuestDataUseCase {
	if claimTTL <= 0 {
		claimTTL = DefaultClaimTTL
	}
	return &MigrateGuestDataUseCase{
		staging:       staging,
		categoryRepo:  categoryRepo,
		entryRepo:     entryRepo,
		migrationRepo: migrationRepo,
		userRepo:      userRepo,
		notifier:      notifier,
		metrics:       metrics,
		claimTTL:      claimTTL,
		now:           time.Now,
	}
}

// Execute runs the migration for the session's account and device.
func (uc *MigrateGuestDataUseCase) Execute(ctx context.Context, input MigrateGuestDataInput) (*MigrateGuestDataOutput, error) {
	session := input.Session
	if !session.IsAuthenticated() {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeMissingToken,
			"guest migration requires an authenticated session",
			domainerror.ErrInvalidToken,
		)
	}
	if !session.HasDevice() {
		return uc.finish(&MigrateGuestDataOutput{Outcome: entity.MigrationOutcomeNothingToMigrate}), nil
	}

	userID, deviceID := session.UserID, session.DeviceID
	log := slog.With("userID", userID, "deviceID", deviceID)

	categories, err := uc.staging.LoadCategories(ctx, deviceID)
	if err != nil {
		return uc.fail(fmt.Errorf("failed to load staged categories: %w", err))
	}
	entries, err := uc.staging.LoadEntries(ctx, deviceID)
	if err != nil {
		return uc.fail(fmt.Errorf("failed to load staged entries: %w", err))
	}

	if len(categories) == 0 && len(entries) == 0 {
		return uc.finish(&MigrateGuestDataOutput{Outcome: entity.MigrationOutcomeNothingToMigrate}), nil
	}

	hasData, err := uc.accountHasData(ctx, userID)
	if err != nil {
		return uc.fail(err)
	}
	if hasData {
		log.Info("Guest migration blocked, account already has data",
			"stagedCategories", len(categories),
			"stagedEntries", len(entries),
		)
		uc.queueNotice(ctx, userID, len(categories), len(entries))
		return uc.finish(blocked(entity.BlockReasonAccountHasData, len(categories), len(entries))), nil
	}

	now := uc.now().UTC()
	claimed, err := uc.migrationRepo.Claim(ctx, userID, deviceID, now, now.Add(-uc.claimTTL))
	if err != nil {
		return uc.fail(fmt.Errorf("failed to claim guest migration: %w", err))
	}
	if !claimed {
		log.Warn("Guest migration blocked, another migration holds the claim")
		return uc.finish(blocked(entity.BlockReasonMigrationInProgress, len(categories), len(entries))), nil
	}

	// A migration that finished between the first probe and the claim has
	// already filled the account.
	hasData, err = uc.accountHasData(ctx, userID)
	if err != nil {
		uc.release(ctx, userID)
		return uc.fail(err)
	}
	if hasData {
		uc.release(ctx, userID)
		log.Info("Guest migration blocked after claim, account already has data")
		uc.queueNotice(ctx, userID, len(categories), len(entries))
		return uc.finish(blocked(entity.BlockReasonAccountHasData, len(categories), len(entries))), nil
	}

	mapping, migratedCategories, categoriesLeft, catErr := uc.copyCategories(ctx, userID, categories)
	if catErr != nil {
		log.Error("Guest category migration stopped", "error", catErr, "remaining", len(categoriesLeft))
	}
	uc.restageCategories(ctx, deviceID, categoriesLeft)

	migratedEntries, entriesLeft, entryErr := uc.copyEntries(ctx, userID, entries, mapping)
	if entryErr != nil {
		log.Error("Guest entry migration stopped", "error", entryErr, "remaining", len(entriesLeft))
	}
	uc.restageEntries(ctx, deviceID, entriesLeft)

	finishedAt := uc.now().UTC()

	if migratedCategories == 0 && migratedEntries == 0 {
		// Nothing reached the account, so it is still clean and a later attempt may retry.
		uc.release(ctx, userID)
		return uc.fail(fmt.Errorf("failed to migrate guest data: %w", errors.Join(catErr, entryErr)))
	}

	status := entity.MigrationStatusCompleted
	partial := len(categoriesLeft) > 0 || len(entriesLeft) > 0
	if partial {
		status = entity.MigrationStatusPartial
	}
	if err := uc.migrationRepo.Finish(ctx, userID, status, migratedCategories, migratedEntries, finishedAt); err != nil {
		log.Error("Failed to record guest migration result", "error", err)
	}

	log.Info("Guest data migrated",
		"categories", migratedCategories,
		"entries", migratedEntries,
		"partial", partial,
	)

	return uc.finish(&MigrateGuestDataOutput{
		Outcome:            entity.MigrationOutcomeMigrated,
		Success:            true,
		Synced:             true,
		Partial:            partial,
		CategoriesMigrated: migratedCategories,
		EntriesMigrated:    migratedEntries,
		CategoriesLeft:     len(categoriesLeft),
		EntriesLeft:        len(entriesLeft),
	}), nil
}

// accountHasData probes categories first, then entries.
func (uc *MigrateGuestDataUseCase) accountHasData(ctx context.Context, userID uuid.UUID) (bool, error) {
	hasCategories, err := uc.categoryRepo.ExistsByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to probe account categories: %w", err)
	}
	if hasCategories {
		return true, nil
	}

	hasEntries, err := uc.entryRepo.ExistsByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to probe account entries: %w", err)
	}
	return hasEntries, nil
}

// copyCategories inserts staged categories in order and stops at the first
// failure. It returns the mapping for inserted ones, how many were inserted
// and the ones left behind. Every staged category gets its own row: a name
// already taken in this run gets a numeric suffix.
func (uc *MigrateGuestDataUseCase) copyCategories(
	ctx context.Context,
	userID uuid.UUID,
	staged []entity.StagedCategory,
) (IdentifierMapping, int, []entity.StagedCategory, error) {
	mapping := make(IdentifierMapping, len(staged))
	taken := make(map[string]struct{}, len(staged))

	for i, sc := range staged {
		if sc.LocalID == "" {
			slog.Warn("Staged category has no local id, entries cannot reference it", "userID", userID, "name", sc.Name)
		}

		color := sc.Color
		if color == "" {
			color = entity.DefaultCategoryColor
		}
		name := uniqueName(strings.TrimSpace(sc.Name), taken)
		category := entity.NewCategory(userID, name, sc.Emoji, color)
		if !sc.CreatedAt.IsZero() {
			category.CreatedAt = sc.CreatedAt.UTC()
		}

		if err := uc.categoryRepo.Create(ctx, category); err != nil {
			return mapping, i, staged[i:], fmt.Errorf("failed to insert category %q: %w", sc.LocalID, err)
		}
		taken[strings.ToLower(name)] = struct{}{}
		if sc.LocalID != "" {
			mapping[sc.LocalID] = category.ID
		}
	}

	return mapping, len(staged), nil, nil
}

// uniqueName appends " (2)", " (3)" and so on until name differs, ignoring
// case, from every name in taken. The result stays within maxCategoryName runes.
func uniqueName(name string, taken map[string]struct{}) string {
	candidate := truncateRunes(name, maxCategoryName)
	for n := 2; ; n++ {
		if _, ok := taken[strings.ToLower(candidate)]; !ok {
			return candidate
		}
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(name, maxCategoryName-utf8.RuneCountInString(suffix)) + suffix
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// copyEntries inserts staged entries in order, rewriting category references
// through mapping, and stops at the first failure.
func (uc *MigrateGuestDataUseCase) copyEntries(
	ctx context.Context,
	userID uuid.UUID,
	staged []entity.StagedEntry,
	mapping IdentifierMapping,
) (int, []entity.StagedEntry, error) {
	for i, se := range staged {
		createdAt := se.CreatedAt
		if createdAt.IsZero() {
			createdAt = uc.now()
		}
		e := entity.NewEntry(userID, se.Text, se.Rating, mapping.Resolve(se.Category), createdAt)

		if err := uc.entryRepo.Create(ctx, e); err != nil {
			return i, staged[i:], fmt.Errorf("failed to insert entry %q: %w", se.LocalID, err)
		}
	}
	return len(staged), nil, nil
}

// restageCategories clears the staged categories or writes back the leftovers.
func (uc *MigrateGuestDataUseCase) restageCategories(ctx context.Context, deviceID string, left []entity.StagedCategory) {
	var err error
	if len(left) == 0 {
		err = uc.staging.ClearCategories(ctx, deviceID)
	} else {
		err = uc.staging.SaveCategories(ctx, deviceID, left)
	}
	if err != nil {
		slog.Error("Failed to update staged categories after migration", "deviceID", deviceID, "error", err)
	}
}

// restageEntries clears the staged entries or writes back the leftovers.
func (uc *MigrateGuestDataUseCase) restageEntries(ctx context.Context, deviceID string, left []entity.StagedEntry) {
	var err error
	if len(left) == 0 {
		err = uc.staging.ClearEntries(ctx, deviceID)
	} else {
		err = uc.staging.SaveEntries(ctx, deviceID, left)
	}
	if err != nil {
		slog.Error("Failed to update staged entries after migration", "deviceID", deviceID, "error", err)
	}
}

// release gives the claim back without recording a migration.
func (uc *MigrateGuestDataUseCase) release(ctx context.Context, userID uuid.UUID) {
	if err := uc.migrationRepo.Finish(ctx, userID, entity.MigrationStatusAborted, 0, 0, uc.now().UTC()); err != nil {
		slog.Error("Failed to release guest migration claim", "userID", userID, "error", err)
	}
}

// queueNotice emails the user that their guest data stays on the device.
func (uc *MigrateGuestDataUseCase) queueNotice(ctx context.Context, userID uuid.UUID, categories, entries int) {
	if uc.notifier == nil || uc.userRepo == nil {
		return
	}
	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		slog.Warn("Skipping guest data notice, user lookup failed", "userID", userID, "error", err)
		return
	}
	err = uc.notifier.NotifyGuestDataKept(ctx, adapter.GuestDataKeptNotice{
		Email:      user.Email,
		Name:       user.Name,
		Entries:    entries,
		Categories: categories,
	})
	if err != nil {
		slog.Error("Failed to queue guest data notice", "userID", userID, "error", err)
	}
}

func (uc *MigrateGuestDataUseCase) fail(err error) (*MigrateGuestDataOutput, error) {
	slog.Error("Guest migration failed", "error", err)
	return uc.finish(&MigrateGuestDataOutput{Outcome: entity.MigrationOutcomeFailed}), err
}

func (uc *MigrateGuestDataUseCase) finish(out *MigrateGuestDataOutput) *MigrateGuestDataOutput {
	if uc.metrics != nil {
		uc.metrics.MigrationFinished(out.Outcome, out.Reason)
	}
	return out
}

func blocked(reason entity.MigrationBlockReason, categories, entries int) *MigrateGuestDataOutput {
	return &MigrateGuestDataOutput{
		Outcome:        entity.MigrationOutcomeBlocked,
		Success:        false,
		Synced:         false,
		Reason:         reason,
		Notice:         NoticeGuestDataKept,
		CategoriesLeft: categories,
		EntriesLeft:    entries,
	}
}
