package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

const (
	defaultInsightDays = 30
	maxInsightDays     = 365
)

// GetInsightsInput represents the input for Pro insights.
type GetInsightsInput struct {
	UserID   uuid.UUID
	Days     int
	Timezone string
}

// CategoryInsight aggregates entries of one category. CategoryID is nil for uncategorized entries.
type CategoryInsight struct {
	CategoryID    *uuid.UUID
	Name          string
	Emoji         string
	Count         int
	Share         decimal.Decimal
	AverageRating decimal.Decimal
}

// WeekdayInsight counts entries on one weekday.
type WeekdayInsight struct {
	Weekday       time.Weekday
	Count         int
	AverageRating decimal.Decimal
}

// GetInsightsOutput summarizes a trailing period.
type GetInsightsOutput struct {
	From          time.Time
	To            time.Time
	TotalEntries  int
	AverageRating decimal.Decimal
	Categories    []CategoryInsight
	Weekdays      []WeekdayInsight
	PeakHour      *int
}

// GetInsightsUseCase computes category, weekday and hour breakdowns.
type GetInsightsUseCase struct {
	entryRepo    adapter.EntryRepository
	categoryRepo adapter.CategoryRepository
	userRepo     adapter.UserRepository
	now          func() time.Time
}

// NewGetInsightsUseCase creates a new GetInsightsUseCase instance.
func NewGetInsightsUseCase(
	entryRepo adapter.EntryRepository,
	categoryRepo adapter.CategoryRepository,
	userRepo adapter.UserRepository,
) *GetInsightsUseCase {
	return &GetInsightsUseCase{
		entryRepo:    entryRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		now:          time.Now,
	}
}

// Execute performs the insights computation.
func (uc *GetInsightsUseCase) Execute(ctx context.Context, input GetInsightsInput) (*GetInsightsOutput, error) {
	days := input.Days
	if days == 0 {
		days = defaultInsightDays
	}
	if days < 1 || days > maxInsightDays {
		return nil, domainerror.NewStatsError(
			domainerror.ErrCodeInvalidPeriodDays,
			fmt.Sprintf("days must be between 1 and %d", maxInsightDays),
			domainerror.ErrInvalidPeriodDays,
		)
	}

	loc, err := resolveLocation(ctx, uc.userRepo, input.UserID, input.Timezone)
	if err != nil {
		return nil, err
	}

	to := startOfDay(uc.now(), loc).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -days)

	entries, err := uc.entryRepo.ListBetween(ctx, input.UserID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	names, err := uc.categoryNames(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	out := &GetInsightsOutput{
		From:          from,
		To:            to,
		TotalEntries:  len(entries),
		AverageRating: decimal.Zero,
	}
	if len(entries) == 0 {
		return out, nil
	}

	type agg struct{ count, sum int }
	byCategory := make(map[uuid.UUID]*agg)
	var uncategorized agg
	var weekdays [7]agg
	var hours [24]int
	total := 0

	for _, e := range entries {
		total += e.Rating
		local := e.CreatedAt.In(loc)
		weekdays[local.Weekday()].count++
		weekdays[local.Weekday()].sum += e.Rating
		hours[local.Hour()]++

		if e.CategoryID == nil {
			uncategorized.count++
			uncategorized.sum += e.Rating
			continue
		}
		a, ok := byCategory[*e.CategoryID]
		if !ok {
			a = &agg{}
			byCategory[*e.CategoryID] = a
		}
		a.count++
		a.sum += e.Rating
	}

	out.AverageRating = average(total, len(entries))

	for id, a := range byCategory {
		id := id
		c, ok := names[id]
		if !ok {
			c = &entity.Category{Name: "Deleted category"}
		}
		out.Categories = append(out.Categories, CategoryInsight{
			CategoryID:    &id,
			Name:          c.Name,
			Emoji:         c.Emoji,
			Count:         a.count,
			Share:         percent(a.count, len(entries)),
			AverageRating: average(a.sum, a.count),
		})
	}
	if uncategorized.count > 0 {
		out.Categories = append(out.Categories, CategoryInsight{
			Name:          "Uncategorized",
			Count:         uncategorized.count,
			Share:         percent(uncategorized.count, len(entries)),
			AverageRating: average(uncategorized.sum, uncategorized.count),
		})
	}
	sort.SliceStable(out.Categories, func(i, j int) bool {
		if out.Categories[i].Count != out.Categories[j].Count {
			return out.Categories[i].Count > out.Categories[j].Count
		}
		return out.Categories[i].Name < out.Categories[j].Name
	})

	for wd, a := range weekdays {
		out.Weekdays = append(out.Weekdays, WeekdayInsight{
			Weekday:       time.Weekday(wd),
			Count:         a.count,
			AverageRating: average(a.sum, a.count),
		})
	}

	peak := 0
	for h := range hours {
		if hours[h] > hours[peak] {
			peak = h
		}
	}
	out.PeakHour = &peak

	return out, nil
}

// categoryNames indexes default and user categories by id.
func (uc *GetInsightsUseCase) categoryNames(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]*entity.Category, error) {
	own, err := uc.categoryRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	names := make(map[uuid.UUID]*entity.Category, len(own)+6)
	for _, c := range entity.DefaultCategories() {
		names[c.ID] = c
	}
	for _, c := range own {
		names[c.ID] = c
	}
	return names, nil
}
