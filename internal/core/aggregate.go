package core

import "github.com/calcount/calcount/internal/store"

// MealEntries is one day's entries split by meal slot.
type MealEntries struct {
	Breakfast []store.FoodEntry `json:"breakfast"`
	Lunch     []store.FoodEntry `json:"lunch"`
	Dinner    []store.FoodEntry `json:"dinner"`
}

// All returns the entries in breakfast, lunch, dinner order.
func (m MealEntries) All() []store.FoodEntry {
	all := make([]store.FoodEntry, 0, len(m.Breakfast)+len(m.Lunch)+len(m.Dinner))
	all = append(all, m.Breakfast...)
	all = append(all, m.Lunch...)
	return append(all, m.Dinner...)
}

// MealCalories holds per-slot calorie totals.
type MealCalories struct {
	Breakfast int `json:"breakfast"`
	Lunch     int `json:"lunch"`
	Dinner    int `json:"dinner"`
}

// PartitionByMeal groups entries by meal, keeping input order inside each
// slot. Untagged entries land in lunch.
func PartitionByMeal(entries []store.FoodEntry) MealEntries {
	out := MealEntries{
		Breakfast: []store.FoodEntry{},
		Lunch:     []store.FoodEntry{},
		Dinner:    []store.FoodEntry{},
	}
	for _, e := range entries {
		switch e.Meal.Normalize() {
		case store.MealBreakfast:
			out.Breakfast = append(out.Breakfast, e)
		case store.MealDinner:
			out.Dinner = append(out.Dinner, e)
		default:
			out.Lunch = append(out.Lunch, e)
		}
	}
	return out
}

func TotalCalories(entries []store.FoodEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Calories
	}
	return total
}

// TotalNutrition sums only the entries that carry a breakdown. It returns
// nil when none do, meaning "unknown" rather than zero.
func TotalNutrition(entries []store.FoodEntry) *store.Nutrition {
	var total *store.Nutrition
	for _, e := range entries {
		if e.Nutrition == nil {
			continue
		}
		if total == nil {
			total = &store.Nutrition{}
		}
		total.Protein += e.Nutrition.Protein
		total.Carbs += e.Nutrition.Carbs
		total.Fat += e.Nutrition.Fat
		total.Fiber += e.Nutrition.Fiber
		total.Sugar += e.Nutrition.Sugar
		total.Sodium += e.Nutrition.Sodium
	}
	return total
}

func CaloriesByMeal(m MealEntries) MealCalories {
	return MealCalories{
		Breakfast: TotalCalories(m.Breakfast),
		Lunch:     TotalCalories(m.Lunch),
		Dinner:    TotalCalories(m.Dinner),
	}
}
