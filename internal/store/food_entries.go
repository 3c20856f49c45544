package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// FoodEntryUpdate carries the fields of a partial edit; nil fields are kept.
type FoodEntryUpdate struct {
	Name      *string
	Calories  *int
	Meal      *Meal
	Nutrition *NutritionPatch
}

type DailyTotal struct {
	Date     string `json:"date"`
	Calories int    `json:"calories"`
	Entries  int    `json:"entries"`
}

func (s *Store) ListFoodEntries(ctx context.Context, date string) ([]FoodEntry, error) {
	var rows []foodEntryRow
	err := s.db.WithContext(ctx).
		Where("date = ?", date).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query food entries: %w", err)
	}

	entries := make([]FoodEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toEntry())
	}
	return entries, nil
}

func (s *Store) GetFoodEntry(ctx context.Context, id string) (*FoodEntry, error) {
	var row foodEntryRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get food entry: %w", err)
	}
	entry := row.toEntry()
	return &entry, nil
}

func (s *Store) CreateFoodEntry(ctx context.Context, entry FoodEntry) (*FoodEntry, error) {
	row := foodEntryRow{
		ID:       entry.ID,
		Name:     entry.Name,
		Calories: entry.Calories,
		Meal:     string(entry.Meal),
		Date:     entry.Date,
	}
	row.setNutrition(entry.Nutrition)

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to insert food entry: %w", err)
	}
	created := row.toEntry()
	return &created, nil
}

func (s *Store) UpdateFoodEntry(ctx context.Context, id string, update FoodEntryUpdate) (*FoodEntry, error) {
	var row foodEntryRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return err
		}
		if update.Name != nil {
			row.Name = *update.Name
		}
		if update.Calories != nil {
			row.Calories = *update.Calories
		}
		if update.Meal != nil {
			row.Meal = string(*update.Meal)
		}
		row.patchNutrition(update.Nutrition)
		return tx.Save(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update food entry: %w", err)
	}
	updated := row.toEntry()
	return &updated, nil
}

func (s *Store) DeleteFoodEntry(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&foodEntryRow{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete food entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEntryDates returns the distinct dates that have entries, newest first.
func (s *Store) ListEntryDates(ctx context.Context, limit int) ([]string, error) {
	var dates []string
	err := s.db.WithContext(ctx).
		Model(&foodEntryRow{}).
		Distinct("date").
		Order("date DESC").
		Limit(limit).
		Pluck("date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query entry dates: %w", err)
	}
	return dates, nil
}

func (s *Store) DailyTotals(ctx context.Context, limit int) ([]DailyTotal, error) {
	var totals []DailyTotal
	err := s.db.WithContext(ctx).
		Model(&foodEntryRow{}).
		Select("date, SUM(calories) AS calories, COUNT(*) AS entries").
		Group("date").
		Order("date DESC").
		Limit(limit).
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}
	return totals, nil
}
