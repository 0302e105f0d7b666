package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/adapter"
)

// GetStreakInput represents the input for streak computation.
type GetStreakInput struct {
	UserID   uuid.UUID
	Timezone string
}

// GetStreakOutput reports consecutive logging days.
type GetStreakOutput struct {
	Current       int
	Longest       int
	LoggedToday   bool
	LastEntryDate string
}

// GetStreakUseCase counts runs of consecutive days with at least one entry.
// A streak is still current if the last logged day is yesterday.
type GetStreakUseCase struct {
	entryRepo adapter.EntryRepository
	userRepo  adapter.UserRepository
	now       func() time.Time
}

// NewGetStreakUseCase creates a new GetStreakUseCase instance.
func NewGetStreakUseCase(entryRepo adapter.EntryRepository, userRepo adapter.UserRepository) *GetStreakUseCase {
	return &GetStreakUseCase{
		entryRepo: entryRepo,
		userRepo:  userRepo,
		now:       time.Now,
	}
}

// Execute performs the streak computation.
func (uc *GetStreakUseCase) Execute(ctx context.Context, input GetStreakInput) (*GetStreakOutput, error) {
	loc, err := resolveLocation(ctx, uc.userRepo, input.UserID, input.Timezone)
	if err != nil {
		return nil, err
	}

	instants, err := uc.entryRepo.ListCreatedAt(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entry dates: %w", err)
	}

	days := distinctDays(instants, loc)
	if len(days) == 0 {
		return &GetStreakOutput{}, nil
	}

	today := startOfDay(uc.now(), loc)
	logged := make(map[time.Time]bool, len(days))
	for _, d := range days {
		logged[d] = true
	}

	out := &GetStreakOutput{
		Longest:       longestRun(days),
		LoggedToday:   logged[today],
		LastEntryDate: days[len(days)-1].Format(dayLayout),
	}

	cursor := today
	if !logged[cursor] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for logged[cursor] {
		out.Current++
		cursor = cursor.AddDate(0, 0, -1)
	}

	return out, nil
}

// distinctDays returns the local midnights of instants, ascending and unique.
func distinctDays(instants []time.Time, loc *time.Location) []time.Time {
	seen := make(map[time.Time]struct{}, len(instants))
	days := make([]time.Time, 0, len(instants))
	for _, t := range instants {
		d := startOfDay(t, loc)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// longestRun finds the longest sequence of consecutive calendar days.
func longestRun(days []time.Time) int {
	longest, run := 0, 0
	for i, d := range days {
		if i > 0 && days[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
