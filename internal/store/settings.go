package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetSetting returns ErrNotFound when the key was never written.
func (s *Store) GetSetting(ctx context.Context, key string) (*Setting, error) {
	var row settingRow
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return &Setting{Key: row.Key, Value: row.Value}, nil
}

func (s *Store) ListSettings(ctx context.Context) ([]Setting, error) {
	var rows []settingRow
	if err := s.db.WithContext(ctx).Order("key ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	settings := make([]Setting, 0, len(rows))
	for _, row := range rows {
		settings = append(settings, Setting{Key: row.Key, Value: row.Value})
	}
	return settings, nil
}

func (s *Store) UpsertSetting(ctx context.Context, key, value string) (*Setting, error) {
	row := settingRow{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert setting: %w", err)
	}
	return &Setting{Key: row.Key, Value: row.Value}, nil
}
