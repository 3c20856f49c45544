package core

import (
	"context"
	"errors"

	"github.com/calcount/calcount/internal/store"
)

//go:generate mockgen -destination=mocks/mock_analyzer.go -package=mocks github.com/calcount/calcount/internal/core Analyzer

// The messages reach clients verbatim.
var (
	ErrEmptyResponse = errors.New("No response from AI")
	ErrNoJSON        = errors.New("Invalid JSON response from AI")
)

// Analyzer is the external AI collaborator.
type Analyzer interface {
	EstimateFood(ctx context.Context, foodName string) (*FoodEstimate, error)
	AnalyzeInBody(ctx context.Context, image []byte, mimeType string) (*InBodyResult, error)
}

type FoodEstimate struct {
	Calories  int              `json:"calories"`
	Nutrition *store.Nutrition `json:"nutrition,omitempty"`
}

type InBodyResult struct {
	RecommendedCalories int            `json:"recommendedCalories"`
	Analysis            store.Analysis `json:"analysis"`
}
