// FilePath: internal/hubservice/hubservice.go
package hubservice

import (
	"github.com/animalhaven/feederhub/internal/config"
	"github.com/animalhaven/feederhub/internal/device"
	"github.com/animalhaven/feederhub/internal/errors"
	"github.com/animalhaven/feederhub/internal/repository"
	"github.com/animalhaven/feederhub/internal/repository/photos"
	"github.com/animalhaven/feederhub/internal/statuscache"
	nuts "github.com/vaudience/go-nuts"
)

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Feeders   repository.FeederRepository
	Events    repository.FeedingEventRepository
	Schedules repository.ScheduleRepository
	Settings  repository.SettingsRepository
	Photos    *photos.Store
	Devices   *device.Client
	Captures  *device.CaptureScheduler
	Status    *statuscache.Cache

	timing config.DeviceConfig
	events *nuts.EventEmitter
}

// New creates a new HubService instance
func New(
	feeders repository.FeederRepository,
	events repository.FeedingEventRepository,
	schedules repository.ScheduleRepository,
	settings repository.SettingsRepository,
	photoStore *photos.Store,
	devices *device.Client,
	status *statuscache.Cache,
	timing config.DeviceConfig,
) *HubService {
	return &HubService{
		Feeders:   feeders,
		Events:    events,
		Schedules: schedules,
		Settings:  settings,
		Photos:    photoStore,
		Devices:   devices,
		Captures:  device.NewCaptureScheduler(devices),
		Status:    status,
		timing:    timing,
		events:    nuts.NewEventEmitter(),
	}
}

// Validate checks if all required dependencies are initialized
func (s *HubService) Validate() error {
	if s.Feeders == nil {
		return ErrMissingDependency("feeders")
	}
	if s.Events == nil {
		return ErrMissingDependency("events")
	}
	if s.Schedules == nil {
		return ErrMissingDependency("schedules")
	}
	if s.Settings == nil {
		return ErrMissingDependency("settings")
	}
	if s.Photos == nil {
		return ErrMissingDependency("photos")
	}
	if s.Devices == nil {
		return ErrMissingDependency("devices")
	}
	return nil
}

// OnEvent registers a callback for service events such as feeding.confirmed,
// feeding.failed, feeder.registered, feeder.deactivated and photo.attached.
func (s *HubService) OnEvent(event string, handler func(id string)) {
	s.events.On(event, "hub_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}

// Shutdown cancels pending delayed captures, waits for them to exit, and
// closes the status cache connection.
func (s *HubService) Shutdown() {
	if s.Captures != nil {
		s.Captures.Shutdown()
	}
	if err := s.Status.Close(); err != nil {
		nuts.L.Warnf("[HubService] Status cache close failed: %v", err)
	}
}

func ErrMissingDependency(name string) error {
	return errors.NewInternalError("missing dependency: "+name, nil)
}
