// FilePath: internal/models/models.schedule.go
package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekdays is a set of weekday numbers (0=Sunday .. 6=Saturday) stored as a
// comma-separated string, matching the on-device representation.
type Weekdays []int

// Value implements the driver.Valuer interface
func (w Weekdays) Value() (driver.Value, error) {
	parts := make([]string, len(w))
	for i, d := range w {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ","), nil
}

// Scan implements the sql.Scanner interface
func (w *Weekdays) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*w = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Weekdays", value)
	}
	if s == "" {
		*w = Weekdays{}
		return nil
	}
	parts := strings.Split(s, ",")
	days := make(Weekdays, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("invalid weekday %q: %w", p, err)
		}
		days = append(days, d)
	}
	*w = days
	return nil
}

// FeedingSchedule mirrors a schedule slot that was pushed to a dispenser. The
// device, not this row, is authoritative for actually firing the feed; the
// mirror exists so the dashboard can show what the device was told.
type FeedingSchedule struct {
	ID            int64      `json:"schedule_id" db:"schedule_id"`
	FeederID      int64      `json:"feeder_id" db:"feeder_id"`
	Name          string     `json:"schedule_name" db:"schedule_name"`
	Hour          int        `json:"hour" db:"hour"`
	Minute        int        `json:"minute" db:"minute"`
	AmountGrams   float64    `json:"amount_g" db:"amount_g"`
	Days          Weekdays   `json:"days_of_week" db:"days_of_week"`
	Enabled       bool       `json:"is_enabled" db:"is_enabled"`
	LastTriggered *time.Time `json:"last_triggered,omitempty" db:"last_triggered"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}
