// FilePath: internal/hubservice/hubservice.schedule.go
package hubservice

import (
	"context"
	"fmt"
	"time"

	"github.com/animalhaven/feederhub/internal/errors"
	"github.com/animalhaven/feederhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// SetSchedule validates a schedule slot, pushes it onto the dispenser, and
// mirrors it locally. The device fires the schedule itself; the mirror is
// advisory and only written after the device accepted the push.
func (s *HubService) SetSchedule(ctx context.Context, feederID int64, req *models.SetScheduleRequest) (*models.FeedingSchedule, error) {
	if req.Hour < 0 || req.Hour > 23 {
		return nil, errors.NewValidationError("hour must be between 0 and 23", nil)
	}
	if req.Minute < 0 || req.Minute > 59 {
		return nil, errors.NewValidationError("minute must be between 0 and 59", nil)
	}
	if req.AmountGrams <= 0 {
		return nil, errors.NewValidationError("schedule amount must be positive", nil)
	}
	for _, day := range req.Days {
		if day < 0 || day > 6 {
			return nil, errors.NewValidationError("weekdays must be between 0 (Sunday) and 6 (Saturday)", nil)
		}
	}
	req.ApplyDefaults()

	feeder, err := s.Feeders.Get(ctx, feederID)
	if err != nil {
		return nil, err
	}
	if !feeder.Active {
		return nil, errors.NewNotFoundError("feeder not found or inactive", nil)
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("Schedule %d:%02d", req.Hour, req.Minute)
	}

	schedule := &models.FeedingSchedule{
		FeederID:    feederID,
		Name:        name,
		Hour:        req.Hour,
		Minute:      req.Minute,
		AmountGrams: req.AmountGrams,
		Days:        models.Weekdays(req.Days),
		Enabled:     *req.Enabled,
		CreatedAt:   time.Now(),
	}

	// The device only has a small fixed number of slots; slot 0 matches the
	// firmware's single-schedule deployments.
	if err := s.Devices.PushSchedule(ctx, feeder.DeviceAddress(), 0, schedule); err != nil {
		s.SetOnlineState(ctx, feederID, false)
		return nil, err
	}

	if err := s.Schedules.Create(ctx, schedule); err != nil {
		return nil, err
	}

	nuts.L.Infof("[ScheduleService] Pushed schedule %d:%02d (%.0fg) to feeder %d",
		schedule.Hour, schedule.Minute, schedule.AmountGrams, feederID)
	return schedule, nil
}

// ListSchedules returns the schedule mirror for one feeder.
func (s *HubService) ListSchedules(ctx context.Context, feederID int64) ([]*models.FeedingSchedule, error) {
	if _, err := s.Feeders.Get(ctx, feederID); err != nil {
		return nil, err
	}
	return s.Schedules.ListByFeeder(ctx, feederID)
}

// DeleteSchedule removes a mirror row. The device keeps firing its own copy
// until it is reprogrammed.
func (s *HubService) DeleteSchedule(ctx context.Context, id int64) error {
	return s.Schedules.Delete(ctx, id)
}
