// FilePath: internal/device/device.captures.go
package device

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	nuts "github.com/vaudience/go-nuts"
)

// CaptureScheduler owns the delayed camera triggers so they are cancellable
// scheduled tasks instead of free-floating goroutines: an orderly shutdown
// abandons pending captures deliberately. It also holds the single-slot
// pending flag with an atomic test-and-set, replacing what used to be an
// unsynchronized shared flag between two endpoints.
type CaptureScheduler struct {
	client  *Client
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	pending atomic.Bool
}

// NewCaptureScheduler creates a capture scheduler bound to a device client
func NewCaptureScheduler(client *Client) *CaptureScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &CaptureScheduler{
		client: client,
		ctx:    ctx,
		cancel: cancel,
	}
}

// ScheduleCapture fires a capture trigger at cameraAddress after delay.
// Best-effort: errors are swallowed inside the client, and a shutdown before
// the delay elapses drops the capture silently.
func (s *CaptureScheduler) ScheduleCapture(cameraAddress string, delay time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			s.client.TriggerCapture(s.ctx, cameraAddress)
		case <-s.ctx.Done():
			nuts.L.Infof("[CaptureScheduler] Dropped pending capture for %s on shutdown", cameraAddress)
		}
	}()
}

// ScheduleCoalescedCapture schedules a delayed capture unless one is already
// pending. The slot clears once the capture fires (or shutdown drops it), so
// repeated requests while one is in flight collapse into a single trigger.
// Returns whether a new capture was scheduled.
func (s *CaptureScheduler) ScheduleCoalescedCapture(cameraAddress string, delay time.Duration) bool {
	if !s.pending.CompareAndSwap(false, true) {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.pending.Store(false)
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			s.client.TriggerCapture(s.ctx, cameraAddress)
		case <-s.ctx.Done():
			nuts.L.Infof("[CaptureScheduler] Dropped pending capture for %s on shutdown", cameraAddress)
		}
	}()
	return true
}

// Shutdown cancels pending captures and waits for their goroutines to exit.
func (s *CaptureScheduler) Shutdown() {
	s.cancel()
	s.wg.Wait()
}
