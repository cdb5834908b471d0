// FilePath: internal/repository/sqlstore/sqlstore.feedingevent.go
package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/animalhaven/feederhub/internal/database"
	"github.com/animalhaven/feederhub/internal/errors"
	"github.com/animalhaven/feederhub/internal/models"
	"github.com/jmoiron/sqlx"
	nuts "github.com/vaudience/go-nuts"
)

const dateLayout = "2006-01-02"

type FeedingEventRepo struct {
	BaseRepo
}

func NewFeedingEventRepository(db database.DB) *FeedingEventRepo {
	return &FeedingEventRepo{BaseRepo: BaseRepo{db: db}}
}

// Insert appends the event row and, for countable kinds, upsert-increments the
// daily aggregate for (feeder, event date). Both writes share one transaction:
// either the pair commits or neither does.
func (r *FeedingEventRepo) Insert(ctx context.Context, event *models.FeedingEvent) error {
	db := r.db.GetDB()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO feeding_events (
			feeder_id, feeding_id, timestamp, source, weight, amount,
			event_type, image_path, feed_type
		) VALUES (
			:feeder_id, :feeding_id, :timestamp, :source, :weight, :amount,
			:event_type, :image_path, :feed_type
		)`

	if r.driver() == "postgres" {
		rows, err := tx.NamedQuery(insert+" RETURNING id", event)
		if err != nil {
			return errors.NewDatabaseError("failed to insert feeding event", err)
		}
		if rows.Next() {
			if err := rows.Scan(&event.ID); err != nil {
				rows.Close()
				return errors.NewDatabaseError("failed to read event id", err)
			}
		}
		rows.Close()
	} else {
		result, err := tx.NamedExecContext(ctx, insert, event)
		if err != nil {
			return errors.NewDatabaseError("failed to insert feeding event", err)
		}
		if event.ID, err = result.LastInsertId(); err != nil {
			return errors.NewDatabaseError("failed to read event id", err)
		}
	}

	if event.Kind.Countable() {
		day := event.Timestamp.Format(dateLayout)
		upsert := r.rebind(`
			INSERT INTO daily_stats (feeder_id, date, total_feedings)
			VALUES (?, ?, 1)
			ON CONFLICT (feeder_id, date)
			DO UPDATE SET total_feedings = daily_stats.total_feedings + 1`)

		if _, err := tx.ExecContext(ctx, upsert, event.FeederID, day); err != nil {
			return errors.NewDatabaseError("failed to update daily stats", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit feeding event", err)
	}
	return nil
}

// AttachImage back-fills the image path on the row(s) matching a correlation
// token. No matching row is a silent no-op; late and duplicate photo
// deliveries are expected.
func (r *FeedingEventRepo) AttachImage(ctx context.Context, feedingID, imagePath string) error {
	query := r.rebind(`UPDATE feeding_events SET image_path = ? WHERE feeding_id = ?`)

	result, err := r.db.GetDB().ExecContext(ctx, query, imagePath, feedingID)
	if err != nil {
		return errors.NewDatabaseError("failed to attach image", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		nuts.L.Infof("[FeedingEventRepo] No event matched feeding id %s, image %s dropped", feedingID, imagePath)
	}
	return nil
}

// AttachImageToLatest is the legacy fallback when no correlation token was
// supplied: it patches the most recently inserted row. Ambiguous under
// concurrent feedings, kept for old camera firmware only.
func (r *FeedingEventRepo) AttachImageToLatest(ctx context.Context, imagePath string) error {
	query := r.rebind(`
		UPDATE feeding_events SET image_path = ?
		WHERE id = (SELECT MAX(id) FROM feeding_events)`)

	if _, err := r.db.GetDB().ExecContext(ctx, query, imagePath); err != nil {
		return errors.NewDatabaseError("failed to attach image to latest event", err)
	}
	return nil
}

func (r *FeedingEventRepo) ListRecent(ctx context.Context, limit int) ([]*models.FeedingEvent, error) {
	events := []*models.FeedingEvent{}
	query := r.rebind(`
		SELECT * FROM feeding_events
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`)

	err := r.db.GetDB().SelectContext(ctx, &events, query, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list feeding events", err)
	}
	return events, nil
}

func (r *FeedingEventRepo) Get(ctx context.Context, id int64) (*models.FeedingEvent, error) {
	event := &models.FeedingEvent{}
	query := r.rebind(`SELECT * FROM feeding_events WHERE id = ?`)

	err := r.db.GetDB().GetContext(ctx, event, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("feeding event not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get feeding event", err)
	}
	return event, nil
}

// Delete removes one log row. Daily aggregates are intentionally not
// decremented; see DailyTotals.
func (r *FeedingEventRepo) Delete(ctx context.Context, id int64) error {
	query := r.rebind(`DELETE FROM feeding_events WHERE id = ?`)

	result, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete feeding event", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("feeding event not found", nil)
	}
	return nil
}

func (r *FeedingEventRepo) DeleteAll(ctx context.Context) error {
	result, err := r.db.GetDB().ExecContext(ctx, `DELETE FROM feeding_events`)
	if err != nil {
		return errors.NewDatabaseError("failed to delete feeding events", err)
	}
	if rows, err := result.RowsAffected(); err == nil {
		nuts.L.Infof("[FeedingEventRepo] Deleted %d feeding events", rows)
	}
	return nil
}

// DailyTotals returns the stored feeding count for a date together with a
// live-recomputed sum of dispensed amounts across countable events. The count
// comes from the incremental aggregate and may drift after deletions; the sum
// is always recomputed to avoid a second drift source.
func (r *FeedingEventRepo) DailyTotals(ctx context.Context, feederID int64, date string) (*models.DailyTotals, error) {
	db := r.db.GetDB()
	totals := &models.DailyTotals{FeederID: feederID, Date: date}

	countQuery := r.rebind(`
		SELECT total_feedings FROM daily_stats
		WHERE feeder_id = ? AND date = ?`)
	err := db.GetContext(ctx, &totals.TotalFeedings, countQuery, feederID, date)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.NewDatabaseError("failed to get daily stats", err)
	}

	dayStart, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return nil, errors.NewValidationError("invalid date, expected YYYY-MM-DD", err)
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	sumQuery, args, err := sqlx.In(`
		SELECT COALESCE(SUM(amount), 0) FROM feeding_events
		WHERE feeder_id = ? AND timestamp >= ? AND timestamp < ?
		AND event_type IN (?)`,
		feederID, dayStart, dayEnd, models.CountableKinds())
	if err != nil {
		return nil, errors.NewInternalError("failed to build daily sum query", err)
	}

	err = db.GetContext(ctx, &totals.TotalDispensed, r.rebind(sumQuery), args...)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to sum dispensed amounts", err)
	}
	return totals, nil
}
