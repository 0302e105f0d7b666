// Package stats computes streaks, calendar coloring and Pro insights from entries.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/annoylog/backend/internal/application/adapter"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

const dayLayout = "2006-01-02"

// resolveLocation prefers an explicit IANA name and falls back to the user's timezone.
func resolveLocation(ctx context.Context, userRepo adapter.UserRepository, userID uuid.UUID, tz string) (*time.Location, error) {
	if tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, domainerror.NewStatsError(
				domainerror.ErrCodeStatsTimezone,
				fmt.Sprintf("unknown timezone %q", tz),
				err,
			)
		}
		return loc, nil
	}

	user, err := userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user.Location(), nil
}

// startOfDay truncates t to midnight in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// dayKey formats t as a calendar date in loc.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// average returns sum/count rounded to one decimal place.
func average(sum, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(count))).Round(1)
}

// percent returns part/total as a percentage rounded to one decimal place.
func percent(part, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(total))).Round(1)
}
