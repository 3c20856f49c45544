package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

func (s *Store) ListInBodyAnalyses(ctx context.Context, limit int) ([]InBodyAnalysis, error) {
	var rows []inBodyRow
	err := s.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query inbody analyses: %w", err)
	}

	analyses := make([]InBodyAnalysis, 0, len(rows))
	for _, row := range rows {
		analyses = append(analyses, rowToAnalysis(row))
	}
	return analyses, nil
}

func (s *Store) GetInBodyAnalysis(ctx context.Context, id string) (*InBodyAnalysis, error) {
	var row inBodyRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get inbody analysis: %w", err)
	}
	analysis := rowToAnalysis(row)
	return &analysis, nil
}

// CreateInBodyAnalysis inserts the analysis and, in the same transaction,
// deletes the oldest records beyond keep.
func (s *Store) CreateInBodyAnalysis(ctx context.Context, recommendedCalories int, analysis Analysis, keep int) (*InBodyAnalysis, error) {
	row := analysisToRow(recommendedCalories, analysis)
	row.UploadedAt = s.now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert inbody analysis: %w", err)
		}

		var count int64
		if err := tx.Model(&inBodyRow{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count inbody analyses: %w", err)
		}
		if count <= int64(keep) {
			return nil
		}

		var stale []string
		err := tx.Model(&inBodyRow{}).
			Order("uploaded_at ASC").
			Limit(int(count)-keep).
			Pluck("id", &stale).Error
		if err != nil {
			return fmt.Errorf("failed to select stale inbody analyses: %w", err)
		}
		if err := tx.Where("id IN ?", stale).Delete(&inBodyRow{}).Error; err != nil {
			return fmt.Errorf("failed to trim inbody analyses: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created := rowToAnalysis(row)
	return &created, nil
}

func (s *Store) DeleteInBodyAnalysis(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&inBodyRow{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete inbody analysis: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CountInBodyAnalyses(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&inBodyRow{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count inbody analyses: %w", err)
	}
	return count, nil
}
