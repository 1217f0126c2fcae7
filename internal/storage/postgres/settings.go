package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/taskflow/internal/constants"
	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/storage"
)

func (s *Store) GetWorkSchedule(ctx context.Context, userID string) (models.WorkSchedule, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE user_id = $1 AND key = $2`,
		userID, constants.SettingWorkSchedule).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("work schedule for user %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return storage.DecodeWorkSchedule(raw)
}

func (s *Store) SaveWorkSchedule(ctx context.Context, userID string, schedule models.WorkSchedule) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	raw, err := storage.EncodeWorkSchedule(schedule)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (user_id, key, value) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value`,
		userID, constants.SettingWorkSchedule, raw)
	if err != nil {
		return fmt.Errorf("failed to save work schedule: %w", err)
	}
	return nil
}
