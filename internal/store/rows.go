package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type foodEntryRow struct {
	ID        string `gorm:"column:id;primaryKey"`
	Name      string `gorm:"column:name;not null"`
	Calories  int    `gorm:"column:calories;not null"`
	Meal      string `gorm:"column:meal;not null"`
	Date      string `gorm:"column:date;index;not null"`
	Protein   *float64
	Carbs     *float64
	Fat       *float64
	Fiber     *float64
	Sugar     *float64
	Sodium    *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (foodEntryRow) TableName() string {
	return "food_entries"
}

func (r *foodEntryRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// An entry carries a breakdown once any nutrient column is set; the unset
// ones read as 0.
func (r foodEntryRow) toEntry() FoodEntry {
	entry := FoodEntry{
		ID:        r.ID,
		Name:      r.Name,
		Calories:  r.Calories,
		Meal:      Meal(r.Meal),
		Date:      r.Date,
		CreatedAt: r.CreatedAt,
	}
	if anySet(r.Protein, r.Carbs, r.Fat, r.Fiber, r.Sugar, r.Sodium) {
		entry.Nutrition = &Nutrition{
			Protein: deref(r.Protein),
			Carbs:   deref(r.Carbs),
			Fat:     deref(r.Fat),
			Fiber:   deref(r.Fiber),
			Sugar:   deref(r.Sugar),
			Sodium:  deref(r.Sodium),
		}
	}
	return entry
}

func (r *foodEntryRow) setNutrition(n *Nutrition) {
	if n == nil {
		return
	}
	r.Protein = ptr(n.Protein)
	r.Carbs = ptr(n.Carbs)
	r.Fat = ptr(n.Fat)
	r.Fiber = ptr(n.Fiber)
	r.Sugar = ptr(n.Sugar)
	r.Sodium = ptr(n.Sodium)
}

// patchNutrition overwrites only the nutrients present in p.
func (r *foodEntryRow) patchNutrition(p *NutritionPatch) {
	if p == nil {
		return
	}
	patchColumn(&r.Protein, p.Protein)
	patchColumn(&r.Carbs, p.Carbs)
	patchColumn(&r.Fat, p.Fat)
	patchColumn(&r.Fiber, p.Fiber)
	patchColumn(&r.Sugar, p.Sugar)
	patchColumn(&r.Sodium, p.Sodium)
}

func patchColumn(col **float64, v *float64) {
	if v != nil {
		*col = ptr(*v)
	}
}

type settingRow struct {
	Key       string `gorm:"column:key;primaryKey"`
	Value     string `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (settingRow) TableName() string {
	return "user_settings"
}

type inBodyRow struct {
	ID                  string    `gorm:"column:id;primaryKey"`
	UploadedAt          time.Time `gorm:"column:uploaded_at;index;not null"`
	RecommendedCalories int       `gorm:"column:recommended_calories;not null"`

	TestDate           *string
	Height             *float64
	Age                *float64
	Gender             *string
	Weight             *float64
	SkeletalMuscleMass *float64
	BodyFatMass        *float64
	BMI                *float64 `gorm:"column:bmi"`
	InbodyScore        *float64
	BodyWater          *float64
	Protein            *float64
	Minerals           *float64
	BodyFatPercentage  *float64

	WeightValue   *float64
	WeightRating  *string
	SMMValue      *float64 `gorm:"column:smm_value"`
	SMMRating     *string  `gorm:"column:smm_rating"`
	BodyFatValue  *float64
	BodyFatRating *string

	SegLeanRightArmMass *float64
	SegLeanRightArmPct  *float64
	SegLeanRightArmRate *string
	SegLeanLeftArmMass  *float64
	SegLeanLeftArmPct   *float64
	SegLeanLeftArmRate  *string
	SegLeanTrunkMass    *float64
	SegLeanTrunkPct     *float64
	SegLeanTrunkRate    *string
	SegLeanRightLegMass *float64
	SegLeanRightLegPct  *float64
	SegLeanRightLegRate *string
	SegLeanLeftLegMass  *float64
	SegLeanLeftLegPct   *float64
	SegLeanLeftLegRate  *string

	SegFatRightArmMass *float64
	SegFatRightArmPct  *float64
	SegFatRightArmRate *string
	SegFatLeftArmMass  *float64
	SegFatLeftArmPct   *float64
	SegFatLeftArmRate  *string
	SegFatTrunkMass    *float64
	SegFatTrunkPct     *float64
	SegFatTrunkRate    *string
	SegFatRightLegMass *float64
	SegFatRightLegPct  *float64
	SegFatRightLegRate *string
	SegFatLeftLegMass  *float64
	SegFatLeftLegPct   *float64
	SegFatLeftLegRate  *string

	TargetWeight  *float64
	WeightControl *float64
	FatControl    *float64
	MuscleControl *float64

	WaistHipRatio    *float64
	VisceralFatLevel *float64
	BMR              *float64 `gorm:"column:bmr"`
	FatFreeMass      *float64
	ObesityDegree    *float64
	SMI              *float64 `gorm:"column:smi"`

	MacroProtein *float64
	MacroCarbs   *float64
	MacroFat     *float64

	Recommendations string `gorm:"column:recommendations;not null"`
	HealthSummary   *string
	Strengths       datatypes.JSONSlice[string]
	Improvements    datatypes.JSONSlice[string]
	HealthRisks     datatypes.JSONSlice[string]
	ExercisePlan    *string
	ShortTermGoals  datatypes.JSONSlice[string]
	LongTermGoals   datatypes.JSONSlice[string]
}

func (inBodyRow) TableName() string {
	return "inbody_analyses"
}

func (r *inBodyRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.UploadedAt.IsZero() {
		r.UploadedAt = time.Now().UTC()
	}
	return nil
}

// analysisToRow and rowToAnalysis are the only translation between the
// nested analysis and its flat columns.
func analysisToRow(recommendedCalories int, a Analysis) inBodyRow {
	row := inBodyRow{
		RecommendedCalories: recommendedCalories,
		TestDate:            a.TestDate,
		Height:              a.Height.column(),
		Age:                 a.Age.column(),
		Gender:              a.Gender,
		Weight:              a.Weight.column(),
		SkeletalMuscleMass:  a.SkeletalMuscleMass.column(),
		BodyFatMass:         a.BodyFatMass.column(),
		BMI:                 a.BMI.column(),
		InbodyScore:         a.InbodyScore.column(),
		BodyWater:           a.BodyWater.column(),
		Protein:             a.Protein.column(),
		Minerals:            a.Minerals.column(),
		BodyFatPercentage:   a.BodyFatPercentage.column(),
		WaistHipRatio:       a.WaistHipRatio.column(),
		VisceralFatLevel:    a.VisceralFatLevel.column(),
		BMR:                 a.BMR.column(),
		FatFreeMass:         a.FatFreeMass.column(),
		ObesityDegree:       a.ObesityDegree.column(),
		SMI:                 a.SMI.column(),
		Recommendations:     a.Recommendations,
		HealthSummary:       a.HealthSummary,
		Strengths:           a.Strengths,
		Improvements:        a.Improvements,
		HealthRisks:         a.HealthRisks,
		ExercisePlan:        a.ExercisePlan,
		ShortTermGoals:      a.ShortTermGoals,
		LongTermGoals:       a.LongTermGoals,
	}

	if mf := a.MuscleFatAnalysis; mf != nil {
		row.WeightValue, row.WeightRating = mf.Weight.Value.column(), ratingToColumn(mf.Weight.Rating)
		row.SMMValue, row.SMMRating = mf.SMM.Value.column(), ratingToColumn(mf.SMM.Rating)
		row.BodyFatValue, row.BodyFatRating = mf.BodyFat.Value.column(), ratingToColumn(mf.BodyFat.Rating)
	}

	if s := a.SegmentalLean; s != nil {
		row.SegLeanRightArmMass, row.SegLeanRightArmPct, row.SegLeanRightArmRate = segmentColumns(s.RightArm)
		row.SegLeanLeftArmMass, row.SegLeanLeftArmPct, row.SegLeanLeftArmRate = segmentColumns(s.LeftArm)
		row.SegLeanTrunkMass, row.SegLeanTrunkPct, row.SegLeanTrunkRate = segmentColumns(s.Trunk)
		row.SegLeanRightLegMass, row.SegLeanRightLegPct, row.SegLeanRightLegRate = segmentColumns(s.RightLeg)
		row.SegLeanLeftLegMass, row.SegLeanLeftLegPct, row.SegLeanLeftLegRate = segmentColumns(s.LeftLeg)
	}

	if s := a.SegmentalFat; s != nil {
		row.SegFatRightArmMass, row.SegFatRightArmPct, row.SegFatRightArmRate = segmentColumns(s.RightArm)
		row.SegFatLeftArmMass, row.SegFatLeftArmPct, row.SegFatLeftArmRate = segmentColumns(s.LeftArm)
		row.SegFatTrunkMass, row.SegFatTrunkPct, row.SegFatTrunkRate = segmentColumns(s.Trunk)
		row.SegFatRightLegMass, row.SegFatRightLegPct, row.SegFatRightLegRate = segmentColumns(s.RightLeg)
		row.SegFatLeftLegMass, row.SegFatLeftLegPct, row.SegFatLeftLegRate = segmentColumns(s.LeftLeg)
	}

	if wc := a.WeightControl; wc != nil {
		row.TargetWeight = wc.TargetWeight.column()
		row.WeightControl = wc.WeightControl.column()
		row.FatControl = wc.FatControl.column()
		row.MuscleControl = wc.MuscleControl.column()
	}

	if m := a.Macros; m != nil {
		row.MacroProtein = m.Protein.column()
		row.MacroCarbs = m.Carbs.column()
		row.MacroFat = m.Fat.column()
	}

	return row
}

func rowToAnalysis(r inBodyRow) InBodyAnalysis {
	a := Analysis{
		TestDate:           r.TestDate,
		Height:             measure(r.Height),
		Age:                measure(r.Age),
		Gender:             r.Gender,
		Weight:             measure(r.Weight),
		SkeletalMuscleMass: measure(r.SkeletalMuscleMass),
		BodyFatMass:        measure(r.BodyFatMass),
		BMI:                measure(r.BMI),
		InbodyScore:        measure(r.InbodyScore),
		BodyWater:          measure(r.BodyWater),
		Protein:            measure(r.Protein),
		Minerals:           measure(r.Minerals),
		BodyFatPercentage:  measure(r.BodyFatPercentage),
		WaistHipRatio:      measure(r.WaistHipRatio),
		VisceralFatLevel:   measure(r.VisceralFatLevel),
		BMR:                measure(r.BMR),
		FatFreeMass:        measure(r.FatFreeMass),
		ObesityDegree:      measure(r.ObesityDegree),
		SMI:                measure(r.SMI),
		Recommendations:    r.Recommendations,
		HealthSummary:      r.HealthSummary,
		Strengths:          r.Strengths,
		Improvements:       r.Improvements,
		HealthRisks:        r.HealthRisks,
		ExercisePlan:       r.ExercisePlan,
		ShortTermGoals:     r.ShortTermGoals,
		LongTermGoals:      r.LongTermGoals,
	}

	if anySet(r.WeightValue, r.SMMValue, r.BodyFatValue) || anySet(r.WeightRating, r.SMMRating, r.BodyFatRating) {
		a.MuscleFatAnalysis = &MuscleFatAnalysis{
			Weight:  RatedValue{Value: measure(r.WeightValue), Rating: columnToRating(r.WeightRating)},
			SMM:     RatedValue{Value: measure(r.SMMValue), Rating: columnToRating(r.SMMRating)},
			BodyFat: RatedValue{Value: measure(r.BodyFatValue), Rating: columnToRating(r.BodyFatRating)},
		}
	}

	lean := Segments{
		RightArm: segmentFromColumns(r.SegLeanRightArmMass, r.SegLeanRightArmPct, r.SegLeanRightArmRate),
		LeftArm:  segmentFromColumns(r.SegLeanLeftArmMass, r.SegLeanLeftArmPct, r.SegLeanLeftArmRate),
		Trunk:    segmentFromColumns(r.SegLeanTrunkMass, r.SegLeanTrunkPct, r.SegLeanTrunkRate),
		RightLeg: segmentFromColumns(r.SegLeanRightLegMass, r.SegLeanRightLegPct, r.SegLeanRightLegRate),
		LeftLeg:  segmentFromColumns(r.SegLeanLeftLegMass, r.SegLeanLeftLegPct, r.SegLeanLeftLegRate),
	}
	if lean.set() {
		a.SegmentalLean = &lean
	}

	fat := Segments{
		RightArm: segmentFromColumns(r.SegFatRightArmMass, r.SegFatRightArmPct, r.SegFatRightArmRate),
		LeftArm:  segmentFromColumns(r.SegFatLeftArmMass, r.SegFatLeftArmPct, r.SegFatLeftArmRate),
		Trunk:    segmentFromColumns(r.SegFatTrunkMass, r.SegFatTrunkPct, r.SegFatTrunkRate),
		RightLeg: segmentFromColumns(r.SegFatRightLegMass, r.SegFatRightLegPct, r.SegFatRightLegRate),
		LeftLeg:  segmentFromColumns(r.SegFatLeftLegMass, r.SegFatLeftLegPct, r.SegFatLeftLegRate),
	}
	if fat.set() {
		a.SegmentalFat = &fat
	}

	if anySet(r.TargetWeight, r.WeightControl, r.FatControl, r.MuscleControl) {
		a.WeightControl = &WeightControl{
			TargetWeight:  measure(r.TargetWeight),
			WeightControl: measure(r.WeightControl),
			FatControl:    measure(r.FatControl),
			MuscleControl: measure(r.MuscleControl),
		}
	}

	if anySet(r.MacroProtein, r.MacroCarbs, r.MacroFat) {
		a.Macros = &MacroGrams{
			Protein: measure(r.MacroProtein),
			Carbs:   measure(r.MacroCarbs),
			Fat:     measure(r.MacroFat),
		}
	}

	return InBodyAnalysis{
		ID:                  r.ID,
		UploadedAt:          r.UploadedAt,
		RecommendedCalories: r.RecommendedCalories,
		Analysis:            a,
	}
}

func (s Segments) set() bool {
	for _, seg := range []Segment{s.RightArm, s.LeftArm, s.Trunk, s.RightLeg, s.LeftLeg} {
		if seg.Mass.Valid || seg.Percent.Valid || seg.Rating != nil {
			return true
		}
	}
	return false
}

func segmentColumns(s Segment) (*float64, *float64, *string) {
	return s.Mass.column(), s.Percent.column(), ratingToColumn(s.Rating)
}

func segmentFromColumns(mass, pct *float64, rate *string) Segment {
	return Segment{Mass: measure(mass), Percent: measure(pct), Rating: columnToRating(rate)}
}

func (m Measure) column() *float64 {
	if !m.Valid {
		return nil
	}
	return ptr(m.Value)
}

func measure(v *float64) Measure {
	if v == nil {
		return Measure{}
	}
	return MeasureOf(*v)
}

// Ratings read off a report arrive as "Under", "NORMAL" and so on.
func ratingToColumn(r *Rating) *string {
	if r == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(string(*r)))
	if v == "" {
		return nil
	}
	return &v
}

func columnToRating(s *string) *Rating {
	if s == nil {
		return nil
	}
	r := Rating(*s)
	return &r
}

func anySet[T any](values ...*T) bool {
	for _, v := range values {
		if v != nil {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T {
	return &v
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
