// FilePath: internal/hubservice/hubservice.feeder.go
package hubservice

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/animalhaven/feederhub/internal/errors"
	"github.com/animalhaven/feederhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const defaultDevicePort = 80

// RegisterFeeder creates a new feeder module. The address must be an IPv4
// literal with an optional port (default 80), and no other active module may
// already claim it. New modules start offline until the first probe says
// otherwise.
func (s *HubService) RegisterFeeder(ctx context.Context, req *models.RegisterFeederRequest) (*models.FeederModule, error) {
	if req.Name == "" {
		return nil, errors.NewValidationError("feeder name is required", nil)
	}
	host, port, err := parseDeviceAddress(req.Address)
	if err != nil {
		return nil, err
	}
	cameraHost, cameraPort := "", defaultDevicePort
	if req.Camera != "" {
		cameraHost, cameraPort, err = parseDeviceAddress(req.Camera)
		if err != nil {
			return nil, errors.NewValidationError("camera address must be an IPv4 address with an optional port", nil)
		}
	}
	req.ApplyDefaults()

	existing, err := s.Feeders.GetActiveByAddress(ctx, host, port)
	if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, errors.NewValidationError("a feeder with this address already exists", nil).
			WithDetails(map[string]any{"feeder_id": existing.ID})
	}

	now := time.Now()
	feeder := &models.FeederModule{
		Name:          req.Name,
		DeviceHost:    host,
		DevicePort:    port,
		CameraHost:    cameraHost,
		CameraPort:    cameraPort,
		Location:      req.Location,
		CapacityGrams: req.Capacity,
		Active:        true,
		Online:        false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Feeders.Create(ctx, feeder); err != nil {
		return nil, err
	}

	nuts.L.Infof("[FeederService] Registered feeder %q (%s:%d) with id %d", feeder.Name, host, port, feeder.ID)
	s.events.Emit("feeder.registered", strconv.FormatInt(feeder.ID, 10))
	return feeder, nil
}

// ListActiveFeeders returns the active modules in ascending id order. Each
// module is probed synchronously first, and a changed reachability verdict is
// persisted before the list is returned, so a read can mutate online state.
func (s *HubService) ListActiveFeeders(ctx context.Context) ([]*models.FeederModule, error) {
	feeders, err := s.Feeders.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	for _, feeder := range feeders {
		online := s.Devices.Probe(ctx, feeder.DeviceAddress(), s.timing.ProbeTimeout)
		changed := online != feeder.Online
		if !changed {
			// First verdict for a fresh module still stamps its timestamp.
			changed = (online && feeder.LastOnline == nil) || (!online && feeder.LastOffline == nil)
		}
		if !changed {
			continue
		}
		now := time.Now()
		if err := s.Feeders.SetOnlineState(ctx, feeder.ID, online, now); err != nil {
			nuts.L.Warnf("[FeederService] Failed to persist online state for feeder %d: %v", feeder.ID, err)
			continue
		}
		feeder.Online = online
		if online {
			feeder.LastOnline = &now
		} else {
			feeder.LastOffline = &now
		}
		feeder.UpdatedAt = now
	}

	return feeders, nil
}

// DeactivateFeeder soft-deletes a module. Historical log rows stay intact.
func (s *HubService) DeactivateFeeder(ctx context.Context, id int64) error {
	if err := s.Feeders.Deactivate(ctx, id); err != nil {
		return err
	}
	nuts.L.Infof("[FeederService] Deactivated feeder %d", id)
	s.events.Emit("feeder.deactivated", strconv.FormatInt(id, 10))
	return nil
}

// SetOnlineState is the fire-and-forget telemetry write: it stamps the online
// flag and the matching timestamp, and swallows a missing id.
func (s *HubService) SetOnlineState(ctx context.Context, id int64, online bool) {
	if err := s.Feeders.SetOnlineState(ctx, id, online, time.Now()); err != nil {
		nuts.L.Warnf("[FeederService] Online-state write failed for feeder %d: %v", id, err)
	}
}

// LiveStatus returns the dispenser's live status payload for display. The
// verdict is served from the short-TTL cache when available and is never
// persisted into the feeders table.
func (s *HubService) LiveStatus(ctx context.Context, id int64) (*models.DeviceStatus, error) {
	if cached := s.Status.Get(ctx, id); cached != nil {
		return cached, nil
	}

	feeder, err := s.Feeders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !feeder.Active {
		return nil, errors.NewNotFoundError("feeder not found", nil)
	}

	status, err := s.Devices.Status(ctx, feeder.DeviceAddress())
	if err != nil {
		// Unreachable is a display verdict here, not a failure.
		status = &models.DeviceStatus{Online: false}
	}

	s.Status.Set(ctx, id, status)
	return status, nil
}

// parseDeviceAddress validates an "a.b.c.d" or "a.b.c.d:p" device address and
// splits it into host and port.
func parseDeviceAddress(address string) (string, int, error) {
	if address == "" {
		return "", 0, errors.NewValidationError("device address is required", nil)
	}

	host := address
	port := defaultDevicePort
	if strings.Contains(address, ":") {
		h, p, err := net.SplitHostPort(address)
		if err != nil {
			return "", 0, errors.NewValidationError("invalid device address format", err)
		}
		port, err = strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return "", 0, errors.NewValidationError("invalid device port", err)
		}
		host = h
	}

	ip := net.ParseIP(host)
	if ip == nil || ip.To4() == nil {
		return "", 0, errors.NewValidationError("device address must be an IPv4 literal", nil)
	}
	return host, port, nil
}
