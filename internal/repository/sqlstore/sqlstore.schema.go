// FilePath: internal/repository/sqlstore/sqlstore.schema.go
package sqlstore

import (
	"fmt"

	"github.com/animalhaven/feederhub/internal/database"
	"github.com/animalhaven/feederhub/internal/errors"
)

// serialPK returns the autoincrementing primary key column definition for the
// active driver.
func serialPK(driver string) string {
	if driver == "postgres" {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

func schemaStatements(driver string) []string {
	pk := serialPK(driver)
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS feeders (
			id %s,
			name TEXT NOT NULL,
			device_host TEXT NOT NULL,
			device_port INTEGER NOT NULL,
			camera_host TEXT NOT NULL,
			camera_port INTEGER NOT NULL,
			location TEXT NOT NULL,
			max_capacity_g INTEGER NOT NULL,
			current_weight_g REAL NOT NULL,
			is_active BOOLEAN NOT NULL,
			is_online BOOLEAN NOT NULL,
			last_online TIMESTAMP,
			last_offline TIMESTAMP,
			wifi_strength INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS feeding_events (
			id %s,
			feeder_id INTEGER NOT NULL,
			feeding_id TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			source TEXT NOT NULL,
			weight REAL NOT NULL,
			amount REAL NOT NULL,
			event_type TEXT NOT NULL,
			image_path TEXT NOT NULL,
			feed_type TEXT NOT NULL
		)`, pk),
		`CREATE TABLE IF NOT EXISTS daily_stats (
			feeder_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			total_feedings INTEGER NOT NULL,
			PRIMARY KEY (feeder_id, date)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS feeding_schedules (
			schedule_id %s,
			feeder_id INTEGER NOT NULL,
			schedule_name TEXT NOT NULL,
			hour INTEGER NOT NULL,
			minute INTEGER NOT NULL,
			amount_g REAL NOT NULL,
			days_of_week TEXT NOT NULL,
			is_enabled BOOLEAN NOT NULL,
			last_triggered TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		)`, pk),
		`CREATE TABLE IF NOT EXISTS system_settings (
			setting_key TEXT PRIMARY KEY,
			setting_value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feeding_events_timestamp
			ON feeding_events(timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_feeding_events_feeding_id
			ON feeding_events(feeding_id)`,
		`CREATE INDEX IF NOT EXISTS idx_feeding_events_feeder
			ON feeding_events(feeder_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_feeders_address
			ON feeders(device_host, device_port)`,
	}
}

// InitSchema creates all tables and indexes if they do not exist yet.
func InitSchema(db database.DB) error {
	driver := db.GetDB().DriverName()
	for _, stmt := range schemaStatements(driver) {
		if _, err := db.GetDB().Exec(stmt); err != nil {
			return errors.NewDatabaseError("failed to initialize schema", err)
		}
	}
	return nil
}
