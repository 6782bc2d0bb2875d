package usecase

import (
	"time"

	"github.com/user/counterteams-service/internal/entity"
)

const (
	// RefreshTTL is how long a complete entry stays fresh.
	RefreshTTL = 7 * 24 * time.Hour
	// updateWindowDays is the number of leading days of each month on which
	// data is always refreshed. Rotations happen at month boundaries.
	updateWindowDays = 3
)

// RefreshDue decides whether the entry for a boss must be re-extracted. entry
// is nil when the boss has never been stored.
func RefreshDue(now time.Time, entry *entity.Entry) bool {
	return dataStale(now, entry) || IsUpdateDay(now)
}

// IsUpdateDay reports whether now falls on the first days of its month or on
// its last day.
func IsUpdateDay(now time.Time) bool {
	day := now.Day()
	if day <= updateWindowDays {
		return true
	}
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	return day == lastDay
}

// dataStale covers the rules that depend on the entry itself.
func dataStale(now time.Time, entry *entity.Entry) bool {
	if entry == nil || !entry.Complete() {
		return true
	}
	updated, ok := entry.UpdatedAt()
	if !ok {
		return true
	}
	return now.Sub(updated) > RefreshTTL
}
