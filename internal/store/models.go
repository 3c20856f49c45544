package store

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode"
)

type Meal string

const (
	MealBreakfast Meal = "breakfast"
	MealLunch     Meal = "lunch"
	MealDinner    Meal = "dinner"
)

// ParseMeal accepts only the three meal slots.
func ParseMeal(s string) (Meal, bool) {
	switch m := Meal(s); m {
	case MealBreakfast, MealLunch, MealDinner:
		return m, true
	}
	return "", false
}

// Normalize maps a missing or unknown tag to lunch. Entries logged before
// meals were tracked carry no tag.
func (m Meal) Normalize() Meal {
	if parsed, ok := ParseMeal(string(m)); ok {
		return parsed
	}
	return MealLunch
}

// Nutrition is in grams except Sodium, which is in milligrams.
type Nutrition struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
	Fiber   float64 `json:"fiber"`
	Sugar   float64 `json:"sugar"`
	Sodium  float64 `json:"sodium"`
}

// NutritionPatch is a partial nutrition edit; nil nutrients keep their
// stored value.
type NutritionPatch struct {
	Protein *float64 `json:"protein"`
	Carbs   *float64 `json:"carbs"`
	Fat     *float64 `json:"fat"`
	Fiber   *float64 `json:"fiber"`
	Sugar   *float64 `json:"sugar"`
	Sodium  *float64 `json:"sodium"`
}

func (p NutritionPatch) Values() []*float64 {
	return []*float64{p.Protein, p.Carbs, p.Fat, p.Fiber, p.Sugar, p.Sodium}
}

type FoodEntry struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Calories  int        `json:"calories"`
	Meal      Meal       `json:"meal"`
	Date      string     `json:"date"` // YYYY-MM-DD
	Nutrition *Nutrition `json:"nutrition,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Rating string

const (
	RatingUnder  Rating = "under"
	RatingNormal Rating = "normal"
	RatingOver   Rating = "over"
)

// UnmarshalJSON lowercases the value; reports print "Under", "NORMAL" etc.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = Rating(strings.ToLower(strings.TrimSpace(s)))
	return nil
}

// Measure is one reading off a report. It decodes numbers, numeric strings
// such as "175" or "14.2 kg", and null. Anything else decodes as unset, and
// an unset Measure encodes as null.
type Measure struct {
	Value float64
	Valid bool
}

func MeasureOf(v float64) Measure {
	return Measure{Value: v, Valid: true}
}

func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Measure) UnmarshalJSON(data []byte) error {
	*m = Measure{}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*m = MeasureOf(x)
	case string:
		if f, ok := parseReading(x); ok {
			*m = MeasureOf(f)
		}
	}
	return nil
}

// parseReading drops thousands separators and a trailing unit.
func parseReading(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimRightFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

type RatedValue struct {
	Value  Measure  `json:"value"`
	Rating *Rating  `json:"rating"`
}

type MuscleFatAnalysis struct {
	Weight  RatedValue `json:"weight"`
	SMM     RatedValue `json:"smm"`
	BodyFat RatedValue `json:"bodyFat"`
}

type Segment struct {
	Mass    Measure `json:"mass"`
	Percent Measure `json:"percent"`
	Rating  *Rating `json:"rating"`
}

type Segments struct {
	RightArm Segment `json:"rightArm"`
	LeftArm  Segment `json:"leftArm"`
	Trunk    Segment `json:"trunk"`
	RightLeg Segment `json:"rightLeg"`
	LeftLeg  Segment `json:"leftLeg"`
}

type WeightControl struct {
	TargetWeight  Measure `json:"targetWeight"`
	WeightControl Measure `json:"weightControl"`
	FatControl    Measure `json:"fatControl"`
	MuscleControl Measure `json:"muscleControl"`
}

type MacroGrams struct {
	Protein Measure `json:"protein"`
	Carbs   Measure `json:"carbs"`
	Fat     Measure `json:"fat"`
}

// Analysis is the nested shape the AI returns and the API exposes. It is
// stored flat; see analysisToRow and rowToAnalysis.
type Analysis struct {
	TestDate           *string `json:"testDate"`
	Height             Measure `json:"height"`
	Age                Measure `json:"age"`
	Gender             *string `json:"gender"`
	Weight             Measure `json:"weight"`
	SkeletalMuscleMass Measure `json:"skeletalMuscleMass"`
	BodyFatMass        Measure `json:"bodyFatMass"`
	BMI                Measure `json:"bmi"`
	InbodyScore        Measure `json:"inbodyScore"`
	BodyWater          Measure `json:"bodyWater"`
	Protein            Measure `json:"protein"`
	Minerals           Measure `json:"minerals"`
	BodyFatPercentage  Measure `json:"bodyFatPercentage"`

	MuscleFatAnalysis *MuscleFatAnalysis `json:"muscleFatAnalysis,omitempty"`
	SegmentalLean     *Segments          `json:"segmentalLean,omitempty"`
	SegmentalFat      *Segments          `json:"segmentalFat,omitempty"`
	WeightControl     *WeightControl     `json:"weightControl,omitempty"`

	WaistHipRatio    Measure `json:"waistHipRatio"`
	VisceralFatLevel Measure `json:"visceralFatLevel"`
	BMR              Measure `json:"bmr"`
	FatFreeMass      Measure `json:"fatFreeMass"`
	ObesityDegree    Measure `json:"obesityDegree"`
	SMI              Measure `json:"smi"`

	Macros *MacroGrams `json:"macros"`

	Recommendations string   `json:"recommendations"`
	HealthSummary   *string  `json:"healthSummary,omitempty"`
	Strengths       []string `json:"strengths,omitempty"`
	Improvements    []string `json:"improvements,omitempty"`
	HealthRisks     []string `json:"healthRisks,omitempty"`
	ExercisePlan    *string  `json:"exercisePlan,omitempty"`
	ShortTermGoals  []string `json:"shortTermGoals,omitempty"`
	LongTermGoals   []string `json:"longTermGoals,omitempty"`
}

type InBodyAnalysis struct {
	ID                  string    `json:"id"`
	UploadedAt          time.Time `json:"uploadedAt"`
	RecommendedCalories int       `json:"recommendedCalories"`
	Analysis            Analysis  `json:"analysis"`
}
