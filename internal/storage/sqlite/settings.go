package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/taskflow/internal/constants"
	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/storage"
)

func (s *Store) getSetting(ctx context.Context, userID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE user_id = ? AND key = ?`, userID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %s for user %s: %w", key, userID, storage.ErrNotFound)
	}
	return value, err
}

func (s *Store) setSetting(ctx context.Context, userID, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (user_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value`, userID, key, value)
	return err
}

func (s *Store) GetWorkSchedule(ctx context.Context, userID string) (models.WorkSchedule, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}
	raw, err := s.getSetting(ctx, userID, constants.SettingWorkSchedule)
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
	if err := s.setSetting(ctx, userID, constants.SettingWorkSchedule, raw); err != nil {
		return fmt.Errorf("failed to save work schedule: %w", err)
	}
	return nil
}
