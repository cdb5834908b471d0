// FilePath: internal/device/device.go
package device

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/animalhaven/feederhub/internal/config"
	"github.com/animalhaven/feederhub/internal/errors"
	"github.com/animalhaven/feederhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// Client talks to feeder hardware over plain HTTP. Reachability is advisory:
// probe failures collapse to false, capture triggers swallow everything, and
// only the dispense path surfaces a typed error.
type Client struct {
	http   *http.Client
	timing config.DeviceConfig
}

// NewClient creates a device client with the configured call timings
func NewClient(timing config.DeviceConfig) *Client {
	return &Client{
		// Per-call deadlines come from contexts; the transport itself stays
		// unbounded.
		http:   &http.Client{},
		timing: timing,
	}
}

// Probe reports whether the dispenser at address answers its status endpoint
// within timeout. Any error collapses to false.
func (c *Client) Probe(ctx context.Context, address string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+address+"/get_status", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Status fetches the live status payload from a dispenser. The fields are for
// display only and are never written back into the registry.
func (c *Client) Status(ctx context.Context, address string) (*models.DeviceStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timing.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+address+"/get_status", nil)
	if err != nil {
		return nil, errors.NewInternalError("failed to build status request", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewDeviceUnreachableError("feeder did not answer status request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewDeviceUnreachableError(
			fmt.Sprintf("feeder status returned %d", resp.StatusCode), nil)
	}

	status := &models.DeviceStatus{Online: true}
	if err := json.NewDecoder(resp.Body).Decode(status); err != nil {
		// A 200 with a garbled payload still counts as reachable.
		nuts.L.Warnf("[Device] Unparseable status payload from %s: %v", address, err)
		return &models.DeviceStatus{Online: true}, nil
	}
	status.Online = true
	return status, nil
}

// Dispense commands the dispenser to release amount grams. Non-200 or
// transport failure is a DeviceUnreachable error; the caller marks the feeder
// offline.
func (c *Client) Dispense(ctx context.Context, address string, amount float64) error {
	ctx, cancel := context.WithTimeout(ctx, c.timing.DispenseTimeout)
	defer cancel()

	form := url.Values{"amount": {strconv.FormatFloat(amount, 'f', -1, 64)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"http://"+address+"/trigger_dispensing", strings.NewReader(form.Encode()))
	if err != nil {
		return errors.NewInternalError("failed to build dispense request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewDeviceUnreachableError("cannot connect to feeder, it may be offline", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewDeviceUnreachableError(
			fmt.Sprintf("feeder rejected dispense command with status %d", resp.StatusCode), nil)
	}
	return nil
}

// TriggerCapture asks the camera unit to take a photo. Fire-and-forget: any
// response or error is only logged.
func (c *Client) TriggerCapture(ctx context.Context, cameraAddress string) {
	ctx, cancel := context.WithTimeout(ctx, c.timing.CaptureTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+cameraAddress+"/trigger_capture", nil)
	if err != nil {
		nuts.L.Warnf("[Device] Failed to build capture request for %s: %v", cameraAddress, err)
		return
	}
	resp, err := c.http.Do(req)
	if err != nil {
		nuts.L.Warnf("[Device] Capture trigger failed for %s: %v", cameraAddress, err)
		return
	}
	resp.Body.Close()
	nuts.L.Infof("[Device] Capture triggered on %s (status %d)", cameraAddress, resp.StatusCode)
}

// PushSchedule writes a schedule slot onto the dispenser. The device fires
// schedules itself; the hub only mirrors what was pushed.
func (c *Client) PushSchedule(ctx context.Context, address string, slot int, schedule *models.FeedingSchedule) error {
	ctx, cancel := context.WithTimeout(ctx, c.timing.DispenseTimeout)
	defer cancel()

	enabled := "0"
	if schedule.Enabled {
		enabled = "1"
	}
	params := url.Values{
		"index":   {strconv.Itoa(slot)},
		"hour":    {strconv.Itoa(schedule.Hour)},
		"minute":  {strconv.Itoa(schedule.Minute)},
		"amount":  {strconv.FormatFloat(schedule.AmountGrams, 'f', -1, 64)},
		"enabled": {enabled},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"http://"+address+"/set_schedule?"+params.Encode(), nil)
	if err != nil {
		return errors.NewInternalError("failed to build schedule request", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewDeviceUnreachableError("cannot push schedule, feeder may be offline", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewDeviceUnreachableError(
			fmt.Sprintf("feeder rejected schedule with status %d", resp.StatusCode), nil)
	}
	return nil
}
