// FilePath: internal/models/models.feeding.go
package models

import "time"

type EventKind string

const (
	ManualFeed    EventKind = "MANUAL_FEED"
	ScheduledFeed EventKind = "SCHEDULED_FEED"
	ButtonFeed    EventKind = "BUTTON_FEED"
	UnknownEvent  EventKind = "UNKNOWN"
)

// Countable reports whether events of this kind contribute to the daily
// feeding aggregate. Sensor reports and unclassified events do not.
func (k EventKind) Countable() bool {
	switch k {
	case ManualFeed, ScheduledFeed, ButtonFeed:
		return true
	}
	return false
}

// CountableKinds returns the kinds that increment daily aggregates, for use
// in IN clauses.
func CountableKinds() []EventKind {
	return []EventKind{ManualFeed, ScheduledFeed, ButtonFeed}
}

// FeedingEvent is one immutable record of a dispense action or sensor report.
// FeedingID is the caller-supplied correlation token linking a dispense to its
// later photo upload; it may be empty for legacy integrations. ImagePath is
// the only field patched after insert, by the asynchronous photo upload.
type FeedingEvent struct {
	ID        int64     `json:"id" db:"id"`
	FeederID  int64     `json:"feeder_id" db:"feeder_id"`
	FeedingID string    `json:"feeding_id,omitempty" db:"feeding_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Source    string    `json:"source" db:"source"`
	Weight    float64   `json:"weight" db:"weight"`
	Amount    float64   `json:"amount" db:"amount"`
	Kind      EventKind `json:"event_type" db:"event_type"`
	ImagePath string    `json:"image_path,omitempty" db:"image_path"`
	FeedType  string    `json:"feed_type,omitempty" db:"feed_type"`
}

// DailyStat is the per-feeder, per-date rollup row. The count is maintained by
// upsert-increment on countable events; deleting events does not rebalance it.
type DailyStat struct {
	FeederID      int64  `json:"feeder_id" db:"feeder_id"`
	Date          string `json:"date" db:"date"`
	TotalFeedings int    `json:"total_feedings" db:"total_feedings"`
}

// DailyTotals combines the stored feeding count for a date with a live
// recomputed sum of dispensed amounts, so the sum never drifts.
type DailyTotals struct {
	FeederID       int64   `json:"feeder_id"`
	Date           string  `json:"date"`
	TotalFeedings  int     `json:"total_feedings"`
	TotalDispensed float64 `json:"total_dispensed"`
}
