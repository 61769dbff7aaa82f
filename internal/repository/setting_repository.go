package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/complaint-api/internal/models"
)

// SettingRepository provides database access for the admin key/value settings.
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository creates a new instance of SettingRepository.
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// ListAll returns every setting row ordered by key.
func (r *SettingRepository) ListAll(ctx context.Context) ([]models.Setting, error) {
	const query = `SELECT key, value, updated_by, updated_at FROM settings ORDER BY key ASC`
	var settings []models.Setting
	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// BulkUpsert writes a batch of settings in one transaction so a partial save
// never leaves the settings screen half-updated.
func (r *SettingRepository) BulkUpsert(ctx context.Context, settings []models.Setting) error {
	if len(settings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO settings (key, value, updated_by, updated_at) VALUES ($1, $2, $3, $4)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()
	for i := range settings {
		if settings[i].UpdatedAt.IsZero() {
			settings[i].UpdatedAt = now
		}
		if _, err := tx.ExecContext(ctx, query, settings[i].Key, settings[i].Value, settings[i].UpdatedBy, settings[i].UpdatedAt); err != nil {
			return fmt.Errorf("upsert setting %s: %w", settings[i].Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings transaction: %w", err)
	}
	return nil
}
