// FilePath: internal/repository/sqlstore/sqlstore.feeder.go
package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/animalhaven/feederhub/internal/database"
	"github.com/animalhaven/feederhub/internal/errors"
	"github.com/animalhaven/feederhub/internal/models"
)

type FeederRepo struct {
	BaseRepo
}

func NewFeederRepository(db database.DB) *FeederRepo {
	return &FeederRepo{BaseRepo: BaseRepo{db: db}}
}

func (r *FeederRepo) Create(ctx context.Context, feeder *models.FeederModule) error {
	query := `
		INSERT INTO feeders (
			name, device_host, device_port, camera_host, camera_port,
			location, max_capacity_g, current_weight_g,
			is_active, is_online, last_online, last_offline,
			wifi_strength, created_at, updated_at
		) VALUES (
			:name, :device_host, :device_port, :camera_host, :camera_port,
			:location, :max_capacity_g, :current_weight_g,
			:is_active, :is_online, :last_online, :last_offline,
			:wifi_strength, :created_at, :updated_at
		)`

	id, err := r.insertReturningID(ctx, query, "id", feeder)
	if err != nil {
		return errors.NewDatabaseError("failed to create feeder", err)
	}
	feeder.ID = id
	return nil
}

func (r *FeederRepo) Get(ctx context.Context, id int64) (*models.FeederModule, error) {
	feeder := &models.FeederModule{}
	query := r.rebind(`SELECT * FROM feeders WHERE id = ?`)

	err := r.db.GetDB().GetContext(ctx, feeder, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("feeder not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get feeder", err)
	}
	return feeder, nil
}

// GetActiveByAddress looks up the active module claiming a device address.
// Used to enforce the one-active-module-per-address invariant at registration.
func (r *FeederRepo) GetActiveByAddress(ctx context.Context, host string, port int) (*models.FeederModule, error) {
	feeder := &models.FeederModule{}
	query := r.rebind(`
		SELECT * FROM feeders
		WHERE device_host = ? AND device_port = ? AND is_active = ?
		LIMIT 1`)

	err := r.db.GetDB().GetContext(ctx, feeder, query, host, port, true)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no active feeder at address", err)
		}
		return nil, errors.NewDatabaseError("failed to look up feeder by address", err)
	}
	return feeder, nil
}

func (r *FeederRepo) ListActive(ctx context.Context) ([]*models.FeederModule, error) {
	feeders := []*models.FeederModule{}
	query := r.rebind(`SELECT * FROM feeders WHERE is_active = ? ORDER BY id ASC`)

	err := r.db.GetDB().SelectContext(ctx, &feeders, query, true)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list feeders", err)
	}
	return feeders, nil
}

// Deactivate clears the active flag. Historical log rows referencing the
// feeder are left untouched.
func (r *FeederRepo) Deactivate(ctx context.Context, id int64) error {
	query := r.rebind(`UPDATE feeders SET is_active = ?, updated_at = ? WHERE id = ?`)

	result, err := r.db.GetDB().ExecContext(ctx, query, false, time.Now(), id)
	if err != nil {
		return errors.NewDatabaseError("failed to deactivate feeder", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("feeder not found", nil)
	}
	return nil
}

// SetOnlineState stamps last_online or last_offline (mutually exclusive per
// call) and the updated_at marker. A missing id is a no-op; callers treat this
// as fire-and-forget telemetry.
func (r *FeederRepo) SetOnlineState(ctx context.Context, id int64, online bool, at time.Time) error {
	var query string
	if online {
		query = `UPDATE feeders SET is_online = ?, last_online = ?, updated_at = ? WHERE id = ?`
	} else {
		query = `UPDATE feeders SET is_online = ?, last_offline = ?, updated_at = ? WHERE id = ?`
	}

	_, err := r.db.GetDB().ExecContext(ctx, r.rebind(query), online, at, at, id)
	if err != nil {
		return errors.NewDatabaseError("failed to update feeder online state", err)
	}
	return nil
}
