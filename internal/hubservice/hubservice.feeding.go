// FilePath: internal/hubservice/hubservice.feeding.go
package hubservice

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/animalhaven/feederhub/internal/errors"
	"github.com/animalhaven/feederhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000

	// SettingDispenseAmount is the system-settings key for the default
	// dispense amount in grams.
	SettingDispenseAmount = "dispense_amount"
)

// TriggerFeeding runs one dispense action end to end: resolve the feeder,
// send the dispense command, record the event and increment the daily
// aggregate, then schedule the best-effort delayed photo capture. A failed
// dispense records nothing and marks the feeder offline.
func (s *HubService) TriggerFeeding(ctx context.Context, feederID int64, req *models.TriggerFeedingRequest) (*models.FeedingEvent, error) {
	feeder, err := s.Feeders.Get(ctx, feederID)
	if err != nil {
		return nil, err
	}
	if !feeder.Active {
		return nil, errors.NewNotFoundError("feeder not found or inactive", nil)
	}

	req.ApplyDefaults()
	feedingID := nuts.NID("fd", 12)

	nuts.L.Infof("[FeedingService] Triggering feeding %s on %q (%s), %.0fg",
		feedingID, feeder.Name, feeder.DeviceAddress(), req.Amount)

	if err := s.Devices.Dispense(ctx, feeder.DeviceAddress(), req.Amount); err != nil {
		// Failed transition: nothing is logged, the feeder goes offline.
		s.SetOnlineState(ctx, feederID, false)
		s.events.Emit("feeding.failed", strconv.FormatInt(feederID, 10))
		return nil, err
	}

	event := &models.FeedingEvent{
		FeederID:  feederID,
		FeedingID: feedingID,
		Timestamp: time.Now(),
		Source:    req.Source + " - " + feeder.Name,
		Amount:    req.Amount,
		Kind:      models.ManualFeed,
	}
	if err := s.Events.Insert(ctx, event); err != nil {
		// The dispense already happened; surface the storage failure but do
		// not pretend the feeder is unreachable.
		return nil, err
	}

	s.events.Emit("feeding.confirmed", feedingID)

	if camera := feeder.CameraAddress(); camera != "" {
		s.Captures.ScheduleCapture(camera, s.timing.CaptureDelay)
	}
	return event, nil
}

// RecordEvent appends a feeding or sensor report, typically posted by the
// device firmware. Countable kinds increment the daily aggregate.
func (s *HubService) RecordEvent(ctx context.Context, req *models.RecordEventRequest) (*models.FeedingEvent, error) {
	req.ApplyDefaults()

	event := &models.FeedingEvent{
		FeederID:  req.FeederID,
		FeedingID: req.FeedingID,
		Timestamp: time.Now(),
		Source:    req.Source,
		Weight:    req.Weight,
		Amount:    req.Amount,
		Kind:      models.EventKind(req.Event),
		FeedType:  req.FeedType,
	}
	if err := s.Events.Insert(ctx, event); err != nil {
		return nil, err
	}
	if event.Kind == models.ScheduledFeed {
		s.markScheduleTriggered(ctx, event.FeederID, event.Timestamp)
	}
	return event, nil
}

// markScheduleTriggered stamps last_triggered on the mirror row for a
// device-reported scheduled feed. The firmware runs a single slot, so the
// enabled mirror with a matching hour wins; a lone enabled mirror is stamped
// even when the report arrives with a skewed clock.
func (s *HubService) markScheduleTriggered(ctx context.Context, feederID int64, at time.Time) {
	schedules, err := s.Schedules.ListByFeeder(ctx, feederID)
	if err != nil {
		nuts.L.Warnf("[FeedingService] Could not load schedules for feeder %d: %v", feederID, err)
		return
	}
	var match, lone *models.FeedingSchedule
	enabled := 0
	for _, sched := range schedules {
		if !sched.Enabled {
			continue
		}
		enabled++
		lone = sched
		if match == nil && sched.Hour == at.Hour() {
			match = sched
		}
	}
	if match == nil && enabled == 1 {
		match = lone
	}
	if match == nil {
		return
	}
	if err := s.Schedules.MarkTriggered(ctx, match.ID, at); err != nil {
		nuts.L.Warnf("[FeedingService] Could not stamp schedule %d: %v", match.ID, err)
	}
}

// AttachImage patches the image path onto the event(s) matching the
// correlation token, falling back to the most recent row when no token was
// supplied. Both paths tolerate a missing target silently.
func (s *HubService) AttachImage(ctx context.Context, feedingID, imagePath string) error {
	var err error
	if feedingID != "" {
		err = s.Events.AttachImage(ctx, feedingID, imagePath)
	} else {
		err = s.Events.AttachImageToLatest(ctx, imagePath)
	}
	if err != nil {
		return err
	}
	s.events.Emit("photo.attached", feedingID)
	return nil
}

// IngestPhoto stores the raw image bytes and back-fills the matching event.
func (s *HubService) IngestPhoto(ctx context.Context, feedingID string, captureSeq int, data []byte) (string, error) {
	path, err := s.Photos.Save(ctx, feedingID, captureSeq, data)
	if err != nil {
		return "", err
	}
	if err := s.AttachImage(ctx, feedingID, path); err != nil {
		return "", err
	}
	return path, nil
}

// StreamPhoto copies a stored feeding photo to w by file name.
func (s *HubService) StreamPhoto(ctx context.Context, name string, w io.Writer) error {
	return s.Photos.Stream(ctx, name, w)
}

// PurgeOldPhotos removes stored photos last modified before the cutoff.
func (s *HubService) PurgeOldPhotos(ctx context.Context, before time.Time) error {
	return s.Photos.DeleteOlderThan(ctx, before)
}

// RequestSecondCapture schedules another delayed capture for a feeding that
// already happened, e.g. to photograph the bowl after the animal finished.
// Repeated requests while a capture is pending coalesce into one trigger.
func (s *HubService) RequestSecondCapture(ctx context.Context, feederID int64) error {
	feeder, err := s.Feeders.Get(ctx, feederID)
	if err != nil {
		return err
	}
	camera := feeder.CameraAddress()
	if camera == "" {
		return errors.NewValidationError("feeder has no camera configured", nil)
	}
	if !s.Captures.ScheduleCoalescedCapture(camera, s.timing.SecondCaptureDelay) {
		nuts.L.Infof("[FeedingService] Second capture already pending for feeder %d", feederID)
	}
	return nil
}

// ListRecentEvents returns the newest events first, truncated to limit
// (default 100).
func (s *HubService) ListRecentEvents(ctx context.Context, limit int) ([]*models.FeedingEvent, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.Events.ListRecent(ctx, limit)
}

// DeleteEvent removes one log row without rebalancing the daily aggregate.
func (s *HubService) DeleteEvent(ctx context.Context, id int64) error {
	return s.Events.Delete(ctx, id)
}

// DeleteAllEvents clears the feeding log. Aggregates keep their counts; the
// drift is the documented cost of the incremental rollup.
func (s *HubService) DeleteAllEvents(ctx context.Context) error {
	return s.Events.DeleteAll(ctx)
}

// DailyTotals reports the stored feeding count and the recomputed dispensed
// sum for one feeder and calendar date.
func (s *HubService) DailyTotals(ctx context.Context, feederID int64, date string) (*models.DailyTotals, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, errors.NewValidationError("invalid date, expected YYYY-MM-DD", err)
	}
	return s.Events.DailyTotals(ctx, feederID, date)
}

// DefaultDispenseAmount returns the configured default dispense amount in
// grams, falling back to the built-in default when unset.
func (s *HubService) DefaultDispenseAmount(ctx context.Context) float64 {
	raw, err := s.Settings.Get(ctx, SettingDispenseAmount)
	if err != nil {
		return models.DefaultFeedAmount
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || amount <= 0 {
		return models.DefaultFeedAmount
	}
	return amount
}

// SetDefaultDispenseAmount stores the default dispense amount in grams.
func (s *HubService) SetDefaultDispenseAmount(ctx context.Context, amount float64) error {
	if amount <= 0 {
		return errors.NewValidationError("dispense amount must be positive", nil)
	}
	return s.Settings.Set(ctx, SettingDispenseAmount, strconv.FormatFloat(amount, 'f', -1, 64))
}
