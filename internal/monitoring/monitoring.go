// FilePath: internal/monitoring/monitoring.go
package monitoring

import (
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"
)

// Config holds monitoring configuration
type Config struct {
	LogLevel string
}

// Service provides lightweight event accounting for the hub: feeding
// outcomes, registry changes and photo deliveries.
type Service struct {
	config Config

	mu     sync.Mutex
	counts map[string]int64
}

// NewService creates a new monitoring service
func NewService(config Config) *Service {
	return &Service{
		config: config,
		counts: make(map[string]int64),
	}
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	s.mu.Lock()
	s.counts[eventName]++
	s.mu.Unlock()

	nuts.L.Infof("[Monitoring] Event %s recorded at %v with labels: %v", eventName, time.Now(), labels)
}

// EventCounts returns a snapshot of counts per event since startup.
func (s *Service) EventCounts() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]int64, len(s.counts))
	for name, count := range s.counts {
		snapshot[name] = count
	}
	return snapshot
}
