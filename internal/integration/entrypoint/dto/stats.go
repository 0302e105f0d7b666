package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/annoylog/backend/internal/application/usecase/stats"
)

// StreakResponse reports consecutive logging days.
type StreakResponse struct {
	Current       int    `json:"current"`
	Longest       int    `json:"longest"`
	LoggedToday   bool   `json:"logged_today"`
	LastEntryDate string `json:"last_entry_date,omitempty"`
}

// CalendarDayResponse is one day of the calendar.
type CalendarDayResponse struct {
	Date          string          `json:"date"`
	Count         int             `json:"count"`
	AverageRating decimal.Decimal `json:"average_rating"`
	Level         string          `json:"level"`
}

// CalendarResponse is a month of calendar days.
type CalendarResponse struct {
	Month string                `json:"month"`
	Days  []CalendarDayResponse `json:"days"`
}

// CategoryInsightResponse is the breakdown for one category.
type CategoryInsightResponse struct {
	CategoryID    *string         `json:"category_id"`
	Name          string          `json:"name"`
	Emoji         string          `json:"emoji,omitempty"`
	Count         int             `json:"count"`
	Share         decimal.Decimal `json:"share"`
	AverageRating decimal.Decimal `json:"average_rating"`
}

// WeekdayInsightResponse is the breakdown for one weekday.
type WeekdayInsightResponse struct {
	Weekday       string          `json:"weekday"`
	Count         int             `json:"count"`
	AverageRating decimal.Decimal `json:"average_rating"`
}

// InsightsResponse summarizes a trailing period.
type InsightsResponse struct {
	From          time.Time                 `json:"from"`
	To            time.Time                 `json:"to"`
	TotalEntries  int                       `json:"total_entries"`
	AverageRating decimal.Decimal           `json:"average_rating"`
	Categories    []CategoryInsightResponse `json:"categories"`
	Weekdays      []WeekdayInsightResponse  `json:"weekdays"`
	PeakHour      *int                      `json:"peak_hour"`
}

// ToStreakResponse converts a streak result to a DTO.
func ToStreakResponse(out *stats.GetStreakOutput) StreakResponse {
	return StreakResponse{
		Current:       out.Current,
		Longest:       out.Longest,
		LoggedToday:   out.LoggedToday,
		LastEntryDate: out.LastEntryDate,
	}
}

// ToCalendarResponse converts a calendar result to a DTO.
func ToCalendarResponse(out *stats.GetCalendarOutput) CalendarResponse {
	resp := CalendarResponse{Month: out.Month, Days: make([]CalendarDayResponse, 0, len(out.Days))}
	for _, d := range out.Days {
		resp.Days = append(resp.Days, CalendarDayResponse{
			Date:          d.Date,
			Count:         d.Count,
			AverageRating: d.AverageRating,
			Level:         string(d.Level),
		})
	}
	return resp
}

// ToInsightsResponse converts an insights result to a DTO.
func ToInsightsResponse(out *stats.GetInsightsOutput) InsightsResponse {
	resp := InsightsResponse{
		From:          out.From,
		To:            out.To,
		TotalEntries:  out.TotalEntries,
		AverageRating: out.AverageRating,
		Categories:    make([]CategoryInsightResponse, 0, len(out.Categories)),
		Weekdays:      make([]WeekdayInsightResponse, 0, len(out.Weekdays)),
		PeakHour:      out.PeakHour,
	}
	for _, c := range out.Categories {
		item := CategoryInsightResponse{
			Name:          c.Name,
			Emoji:         c.Emoji,
			Count:         c.Count,
			Share:         c.Share,
			AverageRating: c.AverageRating,
		}
		if c.CategoryID != nil {
			id := c.CategoryID.String()
			item.CategoryID = &id
		}
		resp.Categories = append(resp.Categories, item)
	}
	for _, w := range out.Weekdays {
		resp.Weekdays = append(resp.Weekdays, WeekdayInsightResponse{
			Weekday:       w.Weekday.String(),
			Count:         w.Count,
			AverageRating: w.AverageRating,
		})
	}
	return resp
}
