package core

import (
	"encoding/json"
	"fmt"
	"math"
)

const (
	SettingGoal       = "goal"
	SettingMacroGoals = "macro_goals"

	DefaultCalorieGoal = 2000
)

// Status is the progress band shared by calories and each macro.
type Status string

const (
	StatusCriticallyLow Status = "critically_low" // < 50%
	StatusApproaching   Status = "approaching"    // 50-79%
	StatusNearComplete  Status = "near_complete"  // 80-99%
	StatusOnTarget      Status = "on_target"      // 100-109%
	StatusOverTarget    Status = "over_target"    // >= 110%
)

// MacroGoals are daily gram targets.
type MacroGoals struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

var DefaultMacroGoals = MacroGoals{Protein: 150, Carbs: 250, Fat: 65}

func (g MacroGoals) validate() error {
	if g.Protein <= 0 || g.Carbs <= 0 || g.Fat <= 0 {
		return fmt.Errorf("macro goals must be positive")
	}
	return nil
}

func parseMacroGoals(value string) (MacroGoals, error) {
	var g MacroGoals
	if err := json.Unmarshal([]byte(value), &g); err != nil {
		return MacroGoals{}, fmt.Errorf("invalid macro goals: %w", err)
	}
	return g, nil
}

// PercentOf returns current as a percentage of goal. A non-positive goal
// yields 0.
func PercentOf(current, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return current / goal * 100
}

func StatusFor(percent float64) Status {
	switch {
	case percent < 50:
		return StatusCriticallyLow
	case percent < 80:
		return StatusApproaching
	case percent < 100:
		return StatusNearComplete
	case percent < 110:
		return StatusOnTarget
	default:
		return StatusOverTarget
	}
}

type Progress struct {
	Current float64 `json:"current"`
	Goal    float64 `json:"goal"`
	Percent float64 `json:"percent"` // rounded to one decimal
	Status  Status  `json:"status"`
}

// Compare builds a Progress. Status is taken from the unrounded percent.
func Compare(current, goal float64) Progress {
	pct := PercentOf(current, goal)
	return Progress{
		Current: current,
		Goal:    goal,
		Percent: math.Round(pct*10) / 10,
		Status:  StatusFor(pct),
	}
}

// MacroProgress is present only when the day's nutrition is known.
type MacroProgress struct {
	Protein Progress `json:"protein"`
	Carbs   Progress `json:"carbs"`
	Fat     Progress `json:"fat"`
}
