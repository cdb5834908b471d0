// FilePath: internal/repository/sqlstore/sqlstore_test.go
package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/animalhaven/feederhub/internal/config"
	"github.com/animalhaven/feederhub/internal/database"
	"github.com/animalhaven/feederhub/internal/errors"
	"github.com/animalhaven/feederhub/internal/models"
)

// newTestDB creates a throwaway SQLite database with the full schema applied.
func newTestDB(t *testing.T) database.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "feederhub-test.db")
	db, err := database.NewSQLiteDB(config.SQLiteConfig{Path: dbPath})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}
	return db
}

func newTestFeeder(t *testing.T, repo *FeederRepo, name, host string, port int) *models.FeederModule {
	t.Helper()

	now := time.Now()
	feeder := &models.FeederModule{
		Name:          name,
		DeviceHost:    host,
		DevicePort:    port,
		CameraPort:    80,
		Location:      "Test Area",
		CapacityGrams: 5000,
		Active:        true,
		Online:        false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.Create(context.Background(), feeder); err != nil {
		t.Fatalf("Failed to create feeder: %v", err)
	}
	if feeder.ID == 0 {
		t.Fatal("Create did not populate the feeder id")
	}
	return feeder
}

func TestFeederRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewFeederRepository(db)
	ctx := context.Background()

	first := newTestFeeder(t, repo, "Kitchen Feeder", "192.168.1.50", 80)
	second := newTestFeeder(t, repo, "Barn Feeder", "192.168.1.51", 8080)

	// Get round-trips the stored row
	got, err := repo.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Failed to get feeder: %v", err)
	}
	if got.Name != "Kitchen Feeder" || got.DeviceHost != "192.168.1.50" || got.DevicePort != 80 {
		t.Errorf("Unexpected feeder data: %+v", got)
	}
	if !got.Active || got.Online {
		t.Errorf("Expected active=true online=false, got active=%v online=%v", got.Active, got.Online)
	}

	// Get for a missing id is a typed not-found
	if _, err := repo.Get(ctx, 9999); !errors.IsNotFound(err) {
		t.Errorf("Expected not-found error for missing feeder, got %v", err)
	}

	// Address lookup finds the active claimant
	byAddr, err := repo.GetActiveByAddress(ctx, "192.168.1.51", 8080)
	if err != nil {
		t.Fatalf("Failed to look up feeder by address: %v", err)
	}
	if byAddr.ID != second.ID {
		t.Errorf("Expected feeder %d at address, got %d", second.ID, byAddr.ID)
	}
	if _, err := repo.GetActiveByAddress(ctx, "192.168.1.51", 80); !errors.IsNotFound(err) {
		t.Errorf("Expected not-found for unclaimed port, got %v", err)
	}

	// ListActive returns ascending id order
	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("Failed to list active feeders: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("Expected 2 active feeders, got %d", len(active))
	}
	if active[0].ID != first.ID || active[1].ID != second.ID {
		t.Errorf("Expected feeders ordered by id, got [%d %d]", active[0].ID, active[1].ID)
	}

	// Deactivate is a soft delete: the row survives, the address frees up
	if err := repo.Deactivate(ctx, first.ID); err != nil {
		t.Fatalf("Failed to deactivate feeder: %v", err)
	}
	if _, err := repo.GetActiveByAddress(ctx, "192.168.1.50", 80); !errors.IsNotFound(err) {
		t.Errorf("Expected deactivated feeder to release its address, got %v", err)
	}
	deactivated, err := repo.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Deactivated feeder should still be readable: %v", err)
	}
	if deactivated.Active {
		t.Error("Expected feeder to be inactive after Deactivate")
	}

	active, err = repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("Failed to list active feeders: %v", err)
	}
	if len(active) != 1 || active[0].ID != second.ID {
		t.Errorf("Expected only feeder %d to remain active, got %+v", second.ID, active)
	}

	// Deactivating a missing feeder reports not-found
	if err := repo.Deactivate(ctx, 9999); !errors.IsNotFound(err) {
		t.Errorf("Expected not-found when deactivating a missing feeder, got %v", err)
	}
}

func TestFeederOnlineState(t *testing.T) {
	db := newTestDB(t)
	repo := NewFeederRepository(db)
	ctx := context.Background()

	feeder := newTestFeeder(t, repo, "Porch Feeder", "10.0.0.5", 80)

	onlineAt := time.Date(2026, time.May, 12, 9, 0, 0, 0, time.Local)
	if err := repo.SetOnlineState(ctx, feeder.ID, true, onlineAt); err != nil {
		t.Fatalf("Failed to mark feeder online: %v", err)
	}

	got, err := repo.Get(ctx, feeder.ID)
	if err != nil {
		t.Fatalf("Failed to get feeder: %v", err)
	}
	if !got.Online {
		t.Error("Expected feeder to be online")
	}
	if got.LastOnline == nil || !got.LastOnline.Equal(onlineAt) {
		t.Errorf("Expected last_online %v, got %v", onlineAt, got.LastOnline)
	}
	if got.LastOffline != nil {
		t.Errorf("Expected last_offline to stay unset, got %v", got.LastOffline)
	}

	// Going offline later stamps the other timestamp and keeps the first
	offlineAt := onlineAt.Add(30 * time.Minute)
	if err := repo.SetOnlineState(ctx, feeder.ID, false, offlineAt); err != nil {
		t.Fatalf("Failed to mark feeder offline: %v", err)
	}

	got, err = repo.Get(ctx, feeder.ID)
	if err != nil {
		t.Fatalf("Failed to get feeder: %v", err)
	}
	if got.Online {
		t.Error("Expected feeder to be offline")
	}
	if got.LastOffline == nil || !got.LastOffline.Equal(offlineAt) {
		t.Errorf("Expected last_offline %v, got %v", offlineAt, got.LastOffline)
	}
	if got.LastOnline == nil || !got.LastOnline.Equal(onlineAt) {
		t.Errorf("Expected last_online to survive the offline write, got %v", got.LastOnline)
	}
	if !got.LastOffline.After(*got.LastOnline) {
		t.Error("Expected last_offline after last_online for an online-then-offline sequence")
	}

	// A missing id is silently ignored
	if err := repo.SetOnlineState(ctx, 9999, true, time.Now()); err != nil {
		t.Errorf("Expected online-state write for missing id to be a no-op, got %v", err)
	}
}

func insertEvent(t *testing.T, repo *FeedingEventRepo, feederID int64, kind models.EventKind, amount float64, at time.Time) *models.FeedingEvent {
	t.Helper()

	event := &models.FeedingEvent{
		FeederID:  feederID,
		Timestamp: at,
		Source:    "test",
		Amount:    amount,
		Kind:      kind,
	}
	if err := repo.Insert(context.Background(), event); err != nil {
		t.Fatalf("Failed to insert %s event: %v", kind, err)
	}
	if event.ID == 0 {
		t.Fatal("Insert did not populate the event id")
	}
	return event
}

func TestDailyAggregates(t *testing.T) {
	db := newTestDB(t)
	repo := NewFeedingEventRepository(db)
	ctx := context.Background()

	day := time.Date(2026, time.May, 12, 8, 0, 0, 0, time.Local)
	date := "2026-05-12"

	insertEvent(t, repo, 1, models.ManualFeed, 50, day)
	insertEvent(t, repo, 1, models.ScheduledFeed, 50, day.Add(2*time.Hour))
	third := insertEvent(t, repo, 1, models.ButtonFeed, 100, day.Add(4*time.Hour))

	// Unclassified events never touch the aggregate
	insertEvent(t, repo, 1, models.UnknownEvent, 999, day.Add(5*time.Hour))
	// Other feeders and other days do not bleed in
	insertEvent(t, repo, 2, models.ManualFeed, 70, day)
	insertEvent(t, repo, 1, models.ManualFeed, 80, day.AddDate(0, 0, 1))

	totals, err := repo.DailyTotals(ctx, 1, date)
	if err != nil {
		t.Fatalf("Failed to get daily totals: %v", err)
	}
	if totals.TotalFeedings != 3 {
		t.Errorf("Expected 3 feedings on %s, got %d", date, totals.TotalFeedings)
	}
	if totals.TotalDispensed != 200 {
		t.Errorf("Expected 200g dispensed on %s, got %.1f", date, totals.TotalDispensed)
	}

	// Deleting a log row keeps the stored count but drops the recomputed sum
	if err := repo.Delete(ctx, third.ID); err != nil {
		t.Fatalf("Failed to delete event: %v", err)
	}
	totals, err = repo.DailyTotals(ctx, 1, date)
	if err != nil {
		t.Fatalf("Failed to get daily totals after delete: %v", err)
	}
	if totals.TotalFeedings != 3 {
		t.Errorf("Expected stored count to stay at 3 after delete, got %d", totals.TotalFeedings)
	}
	if totals.TotalDispensed != 100 {
		t.Errorf("Expected recomputed sum 100 after delete, got %.1f", totals.TotalDispensed)
	}

	// A date with no activity reports zeroes, not an error
	totals, err = repo.DailyTotals(ctx, 1, "2026-01-01")
	if err != nil {
		t.Fatalf("Failed to get totals for empty date: %v", err)
	}
	if totals.TotalFeedings != 0 || totals.TotalDispensed != 0 {
		t.Errorf("Expected zero totals for empty date, got %+v", totals)
	}
}

func TestFeedingEventLog(t *testing.T) {
	db := newTestDB(t)
	repo := NewFeedingEventRepository(db)
	ctx := context.Background()

	base := time.Date(2026, time.May, 12, 8, 0, 0, 0, time.Local)
	first := insertEvent(t, repo, 1, models.ManualFeed, 50, base)
	second := insertEvent(t, repo, 1, models.ManualFeed, 60, base.Add(time.Hour))
	third := insertEvent(t, repo, 1, models.ButtonFeed, 70, base.Add(2*time.Hour))

	// Newest first
	events, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	if events[0].ID != third.ID || events[2].ID != first.ID {
		t.Errorf("Expected newest-first ordering, got ids [%d %d %d]",
			events[0].ID, events[1].ID, events[2].ID)
	}

	// Limit truncates
	events, err = repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to list events with limit: %v", err)
	}
	if len(events) != 2 || events[0].ID != third.ID || events[1].ID != second.ID {
		t.Errorf("Expected the 2 newest events, got %+v", events)
	}

	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("Failed to delete all events: %v", err)
	}
	events, err = repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list events after delete-all: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Expected empty log after delete-all, got %d events", len(events))
	}
}

func TestAttachImage(t *testing.T) {
	db := newTestDB(t)
	repo := NewFeedingEventRepository(db)
	ctx := context.Background()

	base := time.Date(2026, time.May, 12, 8, 0, 0, 0, time.Local)
	tagged := &models.FeedingEvent{
		FeederID:  1,
		FeedingID: "fd_abc123",
		Timestamp: base,
		Source:    "test",
		Amount:    50,
		Kind:      models.ManualFeed,
	}
	if err := repo.Insert(ctx, tagged); err != nil {
		t.Fatalf("Failed to insert event: %v", err)
	}
	latest := insertEvent(t, repo, 1, models.ManualFeed, 60, base.Add(time.Hour))

	// Token match patches exactly the tagged row
	if err := repo.AttachImage(ctx, "fd_abc123", "/uploads/fd_abc123_capture1.jpg"); err != nil {
		t.Fatalf("Failed to attach image: %v", err)
	}
	got, err := repo.Get(ctx, tagged.ID)
	if err != nil {
		t.Fatalf("Failed to get event: %v", err)
	}
	if got.ImagePath != "/uploads/fd_abc123_capture1.jpg" {
		t.Errorf("Expected image path on tagged event, got %q", got.ImagePath)
	}

	// An unknown token is a silent no-op
	if err := repo.AttachImage(ctx, "fd_missing", "/uploads/orphan.jpg"); err != nil {
		t.Errorf("Expected unmatched token to be a no-op, got %v", err)
	}

	// The tokenless fallback patches the newest row
	if err := repo.AttachImageToLatest(ctx, "/uploads/legacy.jpg"); err != nil {
		t.Fatalf("Failed to attach image to latest: %v", err)
	}
	got, err = repo.Get(ctx, latest.ID)
	if err != nil {
		t.Fatalf("Failed to get latest event: %v", err)
	}
	if got.ImagePath != "/uploads/legacy.jpg" {
		t.Errorf("Expected legacy image on latest event, got %q", got.ImagePath)
	}
}

func TestScheduleRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	evening := &models.FeedingSchedule{
		FeederID:    1,
		Name:        "Evening",
		Hour:        18,
		Minute:      30,
		AmountGrams: 60,
		Days:        models.Weekdays{0, 1, 2, 3, 4, 5, 6},
		Enabled:     true,
		CreatedAt:   time.Now(),
	}
	morning := &models.FeedingSchedule{
		FeederID:    1,
		Name:        "Morning",
		Hour:        7,
		Minute:      0,
		AmountGrams: 40,
		Days:        models.Weekdays{1, 3, 5},
		Enabled:     true,
		CreatedAt:   time.Now(),
	}
	for _, s := range []*models.FeedingSchedule{evening, morning} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Failed to create schedule %q: %v", s.Name, err)
		}
		if s.ID == 0 {
			t.Fatalf("Create did not populate the schedule id for %q", s.Name)
		}
	}

	// Listed in time-of-day order with the weekday set intact
	schedules, err := repo.ListByFeeder(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to list schedules: %v", err)
	}
	if len(schedules) != 2 {
		t.Fatalf("Expected 2 schedules, got %d", len(schedules))
	}
	if schedules[0].Name != "Morning" || schedules[1].Name != "Evening" {
		t.Errorf("Expected time-of-day ordering, got [%s %s]", schedules[0].Name, schedules[1].Name)
	}
	if len(schedules[0].Days) != 3 || schedules[0].Days[0] != 1 || schedules[0].Days[2] != 5 {
		t.Errorf("Weekday set did not round-trip, got %v", schedules[0].Days)
	}
	if schedules[0].LastTriggered != nil {
		t.Errorf("Expected last_triggered unset for a new schedule, got %v", schedules[0].LastTriggered)
	}

	firedAt := time.Date(2026, time.May, 12, 7, 0, 5, 0, time.Local)
	if err := repo.MarkTriggered(ctx, morning.ID, firedAt); err != nil {
		t.Fatalf("Failed to mark schedule triggered: %v", err)
	}
	schedules, err = repo.ListByFeeder(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to list schedules: %v", err)
	}
	if schedules[0].LastTriggered == nil || !schedules[0].LastTriggered.Equal(firedAt) {
		t.Errorf("Expected last_triggered %v, got %v", firedAt, schedules[0].LastTriggered)
	}

	if err := repo.Delete(ctx, evening.ID); err != nil {
		t.Fatalf("Failed to delete schedule: %v", err)
	}
	if err := repo.Delete(ctx, evening.ID); !errors.IsNotFound(err) {
		t.Errorf("Expected not-found on double delete, got %v", err)
	}
}

func TestSettingsRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "dispense_amount"); !errors.IsNotFound(err) {
		t.Errorf("Expected not-found for unset key, got %v", err)
	}

	if err := repo.Set(ctx, "dispense_amount", "75"); err != nil {
		t.Fatalf("Failed to set setting: %v", err)
	}
	value, err := repo.Get(ctx, "dispense_amount")
	if err != nil {
		t.Fatalf("Failed to get setting: %v", err)
	}
	if value != "75" {
		t.Errorf("Expected value 75, got %q", value)
	}

	// Set is an upsert
	if err := repo.Set(ctx, "dispense_amount", "120"); err != nil {
		t.Fatalf("Failed to overwrite setting: %v", err)
	}
	value, err = repo.Get(ctx, "dispense_amount")
	if err != nil {
		t.Fatalf("Failed to get setting: %v", err)
	}
	if value != "120" {
		t.Errorf("Expected value 120 after overwrite, got %q", value)
	}
}
