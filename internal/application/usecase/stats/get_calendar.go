package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/annoylog/backend/internal/application/adapter"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/domain/valueobject"
)

const monthLayout = "2006-01"

// GetCalendarInput represents the input for a month calendar.
// An empty Month means the current month.
type GetCalendarInput struct {
	UserID   uuid.UUID
	Month    string
	Timezone string
}

// CalendarDay is one cell of the calendar.
type CalendarDay struct {
	Date          string
	Count         int
	AverageRating decimal.Decimal
	Level         valueobject.MoodLevel
}

// GetCalendarOutput holds every day of the month, including empty ones.
type GetCalendarOutput struct {
	Month string
	Days  []CalendarDay
}

// GetCalendarUseCase colors each day of a month by its average rating.
type GetCalendarUseCase struct {
	entryRepo adapter.EntryRepository
	userRepo  adapter.UserRepository
	now       func() time.Time
}

// NewGetCalendarUseCase creates a new GetCalendarUseCase instance.
func NewGetCalendarUseCase(entryRepo adapter.EntryRepository, userRepo adapter.UserRepository) *GetCalendarUseCase {
	return &GetCalendarUseCase{
		entryRepo: entryRepo,
		userRepo:  userRepo,
		now:       time.Now,
	}
}

// Execute performs the calendar computation.
func (uc *GetCalendarUseCase) Execute(ctx context.Context, input GetCalendarInput) (*GetCalendarOutput, error) {
	loc, err := resolveLocation(ctx, uc.userRepo, input.UserID, input.Timezone)
	if err != nil {
		return nil, err
	}

	var start time.Time
	if input.Month == "" {
		now := uc.now().In(loc)
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	} else {
		m, err := time.ParseInLocation(monthLayout, input.Month, loc)
		if err != nil {
			return nil, domainerror.NewStatsError(
				domainerror.ErrCodeInvalidMonth,
				"month must be in YYYY-MM format",
				domainerror.ErrInvalidMonth,
			)
		}
		start = m
	}
	end := start.AddDate(0, 1, 0)

	entries, err := uc.entryRepo.ListBetween(ctx, input.UserID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	type bucket struct{ count, sum int }
	buckets := make(map[string]*bucket)
	for _, e := range entries {
		key := dayKey(e.CreatedAt, loc)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.count++
		b.sum += e.Rating
	}

	out := &GetCalendarOutput{Month: start.Format(monthLayout)}
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		day := CalendarDay{Date: key, AverageRating: decimal.Zero, Level: valueobject.MoodLevelNone}
		if b, ok := buckets[key]; ok {
			day.Count = b.count
			day.AverageRating = average(b.sum, b.count)
			day.Level = valueobject.MoodLevelFor(day.AverageRating.InexactFloat64())
		}
		out.Days = append(out.Days, day)
	}

	return out, nil
}
