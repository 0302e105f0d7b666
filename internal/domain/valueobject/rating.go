package valueobject

import "fmt"

const (
	// MinRating is the lowest annoyance rating.
	MinRating = 1
	// MaxRating is the highest annoyance rating.
	MaxRating = 10
)

// ValidateRating reports whether rating is within the 1..10 scale.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("rating must be between %d and %d, got %d", MinRating, MaxRating, rating)
	}
	return nil
}

// MoodLevel buckets an average rating for calendar coloring.
type MoodLevel string

const (
	MoodLevelNone    MoodLevel = "none"
	MoodLevelCalm    MoodLevel = "calm"
	MoodLevelIrked   MoodLevel = "irked"
	MoodLevelAnnoyed MoodLevel = "annoyed"
	MoodLevelFurious MoodLevel = "furious"
)

// MoodLevelFor maps an average rating to its calendar bucket.
// Zero means no entries that day.
func MoodLevelFor(avg float64) MoodLevel {
	switch {
	case avg <= 0:
		return MoodLevelNone
	case avg < 4:
		return MoodLevelCalm
	case avg < 7:
		return MoodLevelIrked
	case avg < 9:
		return MoodLevelAnnoyed
	default:
		return MoodLevelFurious
	}
}
