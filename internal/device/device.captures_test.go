// FilePath: internal/device/device.captures_test.go
package device

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleCapture(t *testing.T) {
	var captures atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trigger_capture" {
			t.Errorf("Expected /trigger_capture, got %s", r.URL.Path)
		}
		captures.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	scheduler := NewCaptureScheduler(NewClient(testTimings()))
	scheduler.ScheduleCapture(deviceAddress(t, server), 20*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for captures.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := captures.Load(); got != 1 {
		t.Errorf("Expected exactly 1 capture trigger, got %d", got)
	}

	scheduler.Shutdown()
}

func TestShutdownDropsPendingCaptures(t *testing.T) {
	var captures atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captures.Add(1)
	}))
	defer server.Close()

	scheduler := NewCaptureScheduler(NewClient(testTimings()))
	scheduler.ScheduleCapture(deviceAddress(t, server), time.Hour)

	done := make(chan struct{})
	go func() {
		scheduler.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return while a capture was pending")
	}
	if got := captures.Load(); got != 0 {
		t.Errorf("Expected pending capture to be dropped on shutdown, got %d triggers", got)
	}
}

func TestCoalescedCaptureCollapsesRepeatedRequests(t *testing.T) {
	var captures atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/trigger_capture" {
			captures.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	scheduler := NewCaptureScheduler(NewClient(testTimings()))
	defer scheduler.Shutdown()
	camera := deviceAddress(t, server)

	// Repeated requests while one is pending collapse into a single trigger
	if !scheduler.ScheduleCoalescedCapture(camera, 50*time.Millisecond) {
		t.Fatal("Expected first request to schedule a capture")
	}
	if scheduler.ScheduleCoalescedCapture(camera, 50*time.Millisecond) {
		t.Error("Expected second request to coalesce into the pending capture")
	}

	deadline := time.Now().Add(2 * time.Second)
	for captures.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := captures.Load(); got != 1 {
		t.Fatalf("Expected exactly 1 capture trigger, got %d", got)
	}

	// The slot frees once the capture fired
	scheduled := false
	deadline = time.Now().Add(2 * time.Second)
	for !scheduled && time.Now().Before(deadline) {
		scheduled = scheduler.ScheduleCoalescedCapture(camera, time.Millisecond)
		if !scheduled {
			time.Sleep(10 * time.Millisecond)
		}
	}
	if !scheduled {
		t.Fatal("Expected slot to free after the capture fired")
	}

	deadline = time.Now().Add(2 * time.Second)
	for captures.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := captures.Load(); got != 2 {
		t.Errorf("Expected a second capture after the slot freed, got %d", got)
	}
}
