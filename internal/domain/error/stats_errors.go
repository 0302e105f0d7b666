package error

import "errors"

// Stats domain errors.
var (
	// ErrInvalidMonth is returned when a month parameter is not YYYY-MM.
	ErrInvalidMonth = errors.New("month must be in YYYY-MM format")

	// ErrInvalidPeriodDays is returned when an insights period is out of range.
	ErrInvalidPeriodDays = errors.New("days must be between 1 and 365")
)

// StatsErrorCode defines error codes for stats errors.
// Format: STATS-XXYYYY.
type StatsErrorCode string

const (
	ErrCodeInvalidMonth      StatsErrorCode = "STATS-010001"
	ErrCodeInvalidPeriodDays StatsErrorCode = "STATS-010002"
	ErrCodeStatsTimezone     StatsErrorCode = "STATS-010003"
)

// StatsError reports a bad stats query.
type StatsError = CodedError[StatsErrorCode]

func NewStatsError(code StatsErrorCode, message string, err error) *StatsError {
	return newCoded(code, message, err)
}
