// Package scheduler implements the spaced repetition scoring model for
// vocabulary reviews: the review interval table, the weighted success-rate
// running mean, and the mastery promotion ladder.
package scheduler

import "time"

// Level is a mastery tier as stored in the "Mastery Level" select property.
type Level string

const (
	LevelNew      Level = "New"
	LevelLearning Level = "Learning"
	LevelFamiliar Level = "Familiar"
	LevelMastered Level = "Mastered"
)

// NeverReviewed is the overdue value assigned to items with no recorded
// review. It sorts such items ahead of everything else in the review queue.
const NeverReviewed = 999

// reviewIntervals maps a mastery level to the number of days that must pass
// after a review before the item is due again.
var reviewIntervals = map[Level]int{
	LevelNew:      1,
	LevelLearning: 3,
	LevelFamiliar: 7,
	LevelMastered: 30,
}

// Interval returns the required review interval in days for a mastery level.
// Unrecognized levels fall back to the shortest interval.
func Interval(level Level) int {
	if interval, ok := reviewIntervals[level]; ok {
		return interval
	}
	return 1
}

// DaysOverdue reports how many days past its review interval an item is.
// 0 means not yet due; larger values mean more overdue.
func DaysOverdue(lastReviewed *time.Time, level Level) int {
	return DaysOverdueAt(lastReviewed, level, timeNow())
}

// DaysOverdueAt is DaysOverdue with an explicit clock. A nil lastReviewed
// means the item has never been reviewed and is always due (NeverReviewed).
// A last review in the future yields 0.
func DaysOverdueAt(lastReviewed *time.Time, level Level, now time.Time) int {
	if lastReviewed == nil {
		return NeverReviewed
	}
	daysSince := int(now.Sub(*lastReviewed).Hours() / 24)
	overdue := daysSince - Interval(level)
	if overdue < 0 {
		return 0
	}
	return overdue
}

// WeightedSuccessRate folds one session's success rate into the stored
// running mean. currentRate must already be the mean of currentCount
// observations; the result is the mean over currentCount+1.
func WeightedSuccessRate(currentRate float64, currentCount int, sessionRate float64) float64 {
	if currentCount > 0 {
		return (currentRate*float64(currentCount) + sessionRate) / float64(currentCount+1)
	}
	return sessionRate
}

// NextLevel determines the mastery level after a review. Thresholds are
// evaluated top-down; the first match wins.
func NextLevel(successRate float64, reviewCount int) Level {
	switch {
	case successRate >= 90 && reviewCount >= 5:
		return LevelMastered
	case successRate >= 75 && reviewCount >= 3:
		return LevelFamiliar
	case reviewCount >= 1:
		return LevelLearning
	default:
		return LevelNew
	}
}

// Variable to allow mocking time.Now in tests
var timeNow = time.Now
