// FilePath: internal/repository/sqlstore/sqlstore.schedule.go
package sqlstore

import (
	"context"
	"time"

	"github.com/animalhaven/feederhub/internal/database"
	"github.com/animalhaven/feederhub/internal/errors"
	"github.com/animalhaven/feederhub/internal/models"
)

type ScheduleRepo struct {
	BaseRepo
}

func NewScheduleRepository(db database.DB) *ScheduleRepo {
	return &ScheduleRepo{BaseRepo: BaseRepo{db: db}}
}

func (r *ScheduleRepo) Create(ctx context.Context, schedule *models.FeedingSchedule) error {
	query := `
		INSERT INTO feeding_schedules (
			feeder_id, schedule_name, hour, minute, amount_g,
			days_of_week, is_enabled, last_triggered, created_at
		) VALUES (
			:feeder_id, :schedule_name, :hour, :minute, :amount_g,
			:days_of_week, :is_enabled, :last_triggered, :created_at
		)`

	id, err := r.insertReturningID(ctx, query, "schedule_id", schedule)
	if err != nil {
		return errors.NewDatabaseError("failed to create schedule", err)
	}
	schedule.ID = id
	return nil
}

func (r *ScheduleRepo) ListByFeeder(ctx context.Context, feederID int64) ([]*models.FeedingSchedule, error) {
	schedules := []*models.FeedingSchedule{}
	query := r.rebind(`
		SELECT * FROM feeding_schedules
		WHERE feeder_id = ?
		ORDER BY hour ASC, minute ASC`)

	err := r.db.GetDB().SelectContext(ctx, &schedules, query, feederID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list schedules", err)
	}
	return schedules, nil
}

func (r *ScheduleRepo) Delete(ctx context.Context, id int64) error {
	query := r.rebind(`DELETE FROM feeding_schedules WHERE schedule_id = ?`)

	result, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete schedule", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("schedule not found", nil)
	}
	return nil
}

// MarkTriggered records when the device reported firing this slot.
func (r *ScheduleRepo) MarkTriggered(ctx context.Context, id int64, at time.Time) error {
	query := r.rebind(`UPDATE feeding_schedules SET last_triggered = ? WHERE schedule_id = ?`)

	if _, err := r.db.GetDB().ExecContext(ctx, query, at, id); err != nil {
		return errors.NewDatabaseError("failed to mark schedule triggered", err)
	}
	return nil
}
