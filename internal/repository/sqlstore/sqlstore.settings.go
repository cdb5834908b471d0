// FilePath: internal/repository/sqlstore/sqlstore.settings.go
package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/animalhaven/feederhub/internal/database"
	"github.com/animalhaven/feederhub/internal/errors"
)

type SettingsRepo struct {
	BaseRepo
}

func NewSettingsRepository(db database.DB) *SettingsRepo {
	return &SettingsRepo{BaseRepo: BaseRepo{db: db}}
}

func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	query := r.rebind(`SELECT setting_value FROM system_settings WHERE setting_key = ?`)

	err := r.db.GetDB().GetContext(ctx, &value, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", errors.NewNotFoundError("setting not found", err)
		}
		return "", errors.NewDatabaseError("failed to get setting", err)
	}
	return value, nil
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	query := r.rebind(`
		INSERT INTO system_settings (setting_key, setting_value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (setting_key)
		DO UPDATE SET setting_value = excluded.setting_value, updated_at = excluded.updated_at`)

	if _, err := r.db.GetDB().ExecContext(ctx, query, key, value, time.Now()); err != nil {
		return errors.NewDatabaseError("failed to set setting", err)
	}
	return nil
}
