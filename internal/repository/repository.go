// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/animalhaven/feederhub/internal/database"
	"github.com/animalhaven/feederhub/internal/models"
)

// FeederRepository defines the interface for feeder registry operations
type FeederRepository interface {
	database.Repository
	Create(ctx context.Context, feeder *models.FeederModule) error
	Get(ctx context.Context, id int64) (*models.FeederModule, error)
	GetActiveByAddress(ctx context.Context, host string, port int) (*models.FeederModule, error)
	ListActive(ctx context.Context) ([]*models.FeederModule, error)
	Deactivate(ctx context.Context, id int64) error
	SetOnlineState(ctx context.Context, id int64, online bool, at time.Time) error
}

// FeedingEventRepository defines the interface for the feeding log and its
// daily aggregates
type FeedingEventRepository interface {
	database.Repository
	Insert(ctx context.Context, event *models.FeedingEvent) error
	AttachImage(ctx context.Context, feedingID, imagePath string) error
	AttachImageToLatest(ctx context.Context, imagePath string) error
	ListRecent(ctx context.Context, limit int) ([]*models.FeedingEvent, error)
	Get(ctx context.Context, id int64) (*models.FeedingEvent, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	DailyTotals(ctx context.Context, feederID int64, date string) (*models.DailyTotals, error)
}

// ScheduleRepository defines the interface for the advisory schedule mirror
type ScheduleRepository interface {
	database.Repository
	Create(ctx context.Context, schedule *models.FeedingSchedule) error
	ListByFeeder(ctx context.Context, feederID int64) ([]*models.FeedingSchedule, error)
	Delete(ctx context.Context, id int64) error
	MarkTriggered(ctx context.Context, id int64, at time.Time) error
}

// SettingsRepository defines the interface for small system-wide settings
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
