// FilePath: internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"time"

	"github.com/animalhaven/feederhub/internal/hubservice"
	"github.com/robfig/cron/v3"
	nuts "github.com/vaudience/go-nuts"
)

const (
	sweepTimeout = 30 * time.Second
	purgeSpec    = "@daily"
)

// Sweeper periodically re-probes all active feeders so online state stays
// fresh even when nobody is looking at the dashboard. It reuses the same
// probe-and-persist reconciliation the feeder list endpoint runs. It also
// runs the daily photo retention purge when a retention window is set.
type Sweeper struct {
	cron      *cron.Cron
	svc       *hubservice.HubService
	spec      string
	retention time.Duration
}

// New creates a sweeper with a cron spec such as "@every 1m". An empty spec
// disables the sweep; a zero retention disables the photo purge.
func New(svc *hubservice.HubService, spec string, retention time.Duration) *Sweeper {
	return &Sweeper{
		cron:      cron.New(),
		svc:       svc,
		spec:      spec,
		retention: retention,
	}
}

// Start registers the cron jobs and starts the loop.
func (s *Sweeper) Start() error {
	if s.spec == "" {
		nuts.L.Infof("[Sweeper] Reachability sweep disabled")
	} else {
		if _, err := s.cron.AddFunc(s.spec, s.sweep); err != nil {
			return err
		}
		nuts.L.Infof("[Sweeper] Reachability sweep scheduled (%s)", s.spec)
	}
	if s.retention > 0 {
		if _, err := s.cron.AddFunc(purgeSpec, s.purgePhotos); err != nil {
			return err
		}
		nuts.L.Infof("[Sweeper] Photo purge scheduled (%s, retention %s)", purgeSpec, s.retention)
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	feeders, err := s.svc.ListActiveFeeders(ctx)
	if err != nil {
		nuts.L.Errorf("[Sweeper] Reachability sweep failed: %v", err)
		return
	}

	online := 0
	for _, feeder := range feeders {
		if feeder.Online {
			online++
		}
	}
	nuts.L.Infof("[Sweeper] Probed %d feeders, %d online", len(feeders), online)
}

func (s *Sweeper) purgePhotos() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if err := s.svc.PurgeOldPhotos(ctx, time.Now().Add(-s.retention)); err != nil {
		nuts.L.Errorf("[Sweeper] Photo purge failed: %v", err)
	}
}
