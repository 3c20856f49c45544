package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/calcount/calcount/internal/store"
	"github.com/calcount/calcount/internal/utils"
)

const (
	DefaultHistoryLimit = 30

	// MaxCalories bounds a single entry or recommendation; the columns are
	// 32-bit integers.
	MaxCalories = 100000
)

// ValidationError marks bad caller input; handlers answer it with 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NewEntry is the input of AddEntry. An empty Meal defaults to lunch.
type NewEntry struct {
	Name      string
	Calories  int
	Meal      string
	Date      string
	Nutrition *store.Nutrition
}

// EntryUpdate is a partial edit; nil fields, including individual
// nutrients, are left untouched.
type EntryUpdate struct {
	Name      *string
	Calories  *int
	Meal      *string
	Nutrition *store.NutritionPatch
}

type DaySummary struct {
	Date          string           `json:"date"`
	Meals         MealEntries      `json:"meals"`
	MealCalories  MealCalories     `json:"mealCalories"`
	TotalCalories int              `json:"totalCalories"`
	Nutrition     *store.Nutrition `json:"nutrition"`
	CalorieGoal   int              `json:"goal"`
	MacroGoals    MacroGoals       `json:"macroGoals"`
	Calories      Progress         `json:"calorieProgress"`
	Macros        *MacroProgress   `json:"macroProgress"`
	PreviousDate  string           `json:"previousDate"`
	NextDate      string           `json:"nextDate"`
}

type HistorySummary struct {
	Date     string   `json:"date"`
	Entries  int      `json:"entries"`
	Calories Progress `json:"calories"`
}

type TrackerService struct {
	store *store.Store
}

func NewTrackerService(s *store.Store) *TrackerService {
	return &TrackerService{store: s}
}

func (s *TrackerService) ListEntries(ctx context.Context, date string) ([]store.FoodEntry, error) {
	if date == "" {
		return nil, invalid("Date parameter is required")
	}
	if !utils.ValidDate(date) {
		return nil, invalid("date must be YYYY-MM-DD")
	}
	return s.store.ListFoodEntries(ctx, date)
}

func (s *TrackerService) AddEntry(ctx context.Context, in NewEntry) (*store.FoodEntry, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Date == "" {
		return nil, invalid("Missing required fields: name, calories, meal, date")
	}
	if !utils.ValidDate(in.Date) {
		return nil, invalid("date must be YYYY-MM-DD")
	}
	if err := validateCalories(in.Calories); err != nil {
		return nil, err
	}
	meal := store.MealLunch
	if in.Meal != "" {
		m, ok := store.ParseMeal(in.Meal)
		if !ok {
			return nil, invalid("meal must be breakfast, lunch or dinner")
		}
		meal = m
	}
	if err := validateNutrition(in.Nutrition); err != nil {
		return nil, err
	}

	return s.store.CreateFoodEntry(ctx, store.FoodEntry{
		Name:      name,
		Calories:  in.Calories,
		Meal:      meal,
		Date:      in.Date,
		Nutrition: in.Nutrition,
	})
}

func (s *TrackerService) UpdateEntry(ctx context.Context, id string, in EntryUpdate) (*store.FoodEntry, error) {
	if id == "" {
		return nil, invalid("Missing required field: id")
	}

	upd := store.FoodEntryUpdate{Calories: in.Calories, Nutrition: in.Nutrition}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("name must not be empty")
		}
		upd.Name = &name
	}
	if in.Calories != nil {
		if err := validateCalories(*in.Calories); err != nil {
			return nil, err
		}
	}
	if in.Meal != nil {
		m, ok := store.ParseMeal(*in.Meal)
		if !ok {
			return nil, invalid("meal must be breakfast, lunch or dinner")
		}
		upd.Meal = &m
	}
	if err := validatePatch(in.Nutrition); err != nil {
		return nil, err
	}

	return s.store.UpdateFoodEntry(ctx, id, upd)
}

func (s *TrackerService) DeleteEntry(ctx context.Context, id string) error {
	if id == "" {
		return invalid("Missing required parameter: id")
	}
	return s.store.DeleteFoodEntry(ctx, id)
}

// HistoryDates lists distinct dates with entries, newest first. A limit of
// 0 yields nothing; a negative limit means DefaultHistoryLimit.
func (s *TrackerService) HistoryDates(ctx context.Context, limit int) ([]string, error) {
	if limit == 0 {
		return []string{}, nil
	}
	if limit < 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.ListEntryDates(ctx, limit)
}

func (s *TrackerService) HistorySummaries(ctx context.Context, limit int) ([]HistorySummary, error) {
	if limit == 0 {
		return []HistorySummary{}, nil
	}
	if limit < 0 {
		limit = DefaultHistoryLimit
	}
	goal, err := s.CalorieGoal(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.DailyTotals(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]HistorySummary, 0, len(totals))
	for _, t := range totals {
		out = append(out, HistorySummary{
			Date:     t.Date,
			Entries:  t.Entries,
			Calories: Compare(float64(t.Calories), float64(goal)),
		})
	}
	return out, nil
}

// GetSetting falls back to the built-in default when key was never saved.
func (s *TrackerService) GetSetting(ctx context.Context, key string) (*store.Setting, error) {
	setting, err := s.store.GetSetting(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return &store.Setting{Key: key, Value: defaultSetting(key)}, nil
	}
	return setting, err
}

func (s *TrackerService) ListSettings(ctx context.Context) ([]store.Setting, error) {
	return s.store.ListSettings(ctx)
}

func (s *TrackerService) SaveSetting(ctx context.Context, key, value string) (*store.Setting, error) {
	if key == "" {
		return nil, invalid("Missing required fields: key, value")
	}
	switch key {
	case SettingGoal:
		goal, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || goal <= 0 {
			return nil, invalid("goal must be a positive whole number")
		}
		value = strconv.Itoa(goal)
	case SettingMacroGoals:
		g, err := parseMacroGoals(value)
		if err != nil {
			return nil, invalid("macro_goals must be a JSON object with protein, carbs and fat")
		}
		if err := g.validate(); err != nil {
			return nil, invalid("%v", err)
		}
	}
	return s.store.UpsertSetting(ctx, key, value)
}

func (s *TrackerService) CalorieGoal(ctx context.Context) (int, error) {
	setting, err := s.GetSetting(ctx, SettingGoal)
	if err != nil {
		return 0, err
	}
	goal, err := strconv.Atoi(strings.TrimSpace(setting.Value))
	if err != nil || goal <= 0 {
		return DefaultCalorieGoal, nil
	}
	return goal, nil
}

func (s *TrackerService) MacroGoals(ctx context.Context) (MacroGoals, error) {
	setting, err := s.GetSetting(ctx, SettingMacroGoals)
	if err != nil {
		return MacroGoals{}, err
	}
	g, err := parseMacroGoals(setting.Value)
	if err != nil || g.validate() != nil {
		return DefaultMacroGoals, nil
	}
	return g, nil
}

func (s *TrackerService) DaySummary(ctx context.Context, date string) (*DaySummary, error) {
	entries, err := s.ListEntries(ctx, date)
	if err != nil {
		return nil, err
	}
	goal, err := s.CalorieGoal(ctx)
	if err != nil {
		return nil, err
	}
	macroGoals, err := s.MacroGoals(ctx)
	if err != nil {
		return nil, err
	}

	meals := PartitionByMeal(entries)
	total := TotalCalories(entries)
	nutrition := TotalNutrition(entries)

	summary := &DaySummary{
		Date:          date,
		Meals:         meals,
		MealCalories:  CaloriesByMeal(meals),
		TotalCalories: total,
		Nutrition:     nutrition,
		CalorieGoal:   goal,
		MacroGoals:    macroGoals,
		Calories:      Compare(float64(total), float64(goal)),
	}
	if nutrition != nil {
		summary.Macros = &MacroProgress{
			Protein: Compare(nutrition.Protein, macroGoals.Protein),
			Carbs:   Compare(nutrition.Carbs, macroGoals.Carbs),
			Fat:     Compare(nutrition.Fat, macroGoals.Fat),
		}
	}

	// date was validated by ListEntries.
	summary.PreviousDate, _ = utils.DateOffset(date, -1)
	summary.NextDate, _ = utils.DateOffset(date, 1)
	return summary, nil
}

func defaultSetting(key string) string {
	switch key {
	case SettingGoal:
		return strconv.Itoa(DefaultCalorieGoal)
	case SettingMacroGoals:
		b, _ := json.Marshal(DefaultMacroGoals)
		return string(b)
	}
	return ""
}

func validateCalories(calories int) error {
	if calories < 0 {
		return invalid("calories must not be negative")
	}
	if calories > MaxCalories {
		return invalid("calories must not exceed %d", MaxCalories)
	}
	return nil
}

func validatePatch(p *store.NutritionPatch) error {
	if p == nil {
		return nil
	}
	for _, v := range p.Values() {
		if v != nil && *v < 0 {
			return invalid("nutrition values must not be negative")
		}
	}
	return nil
}

func validateNutrition(n *store.Nutrition) error {
	if n == nil {
		return nil
	}
	if n.Protein < 0 || n.Carbs < 0 || n.Fat < 0 || n.Fiber < 0 || n.Sugar < 0 || n.Sodium < 0 {
		return invalid("nutrition values must not be negative")
	}
	return nil
}
