package core

import (
	"context"

	"github.com/calcount/calcount/internal/store"
)

const DefaultInBodyHistoryLimit = 10

// InBodyService keeps the newest keep analyses; older ones are trimmed on
// every save.
type InBodyService struct {
	store *store.Store
	keep  int
}

func NewInBodyService(s *store.Store, keep int) *InBodyService {
	if keep <= 0 {
		keep = DefaultInBodyHistoryLimit
	}
	return &InBodyService{store: s, keep: keep}
}

func (s *InBodyService) List(ctx context.Context) ([]store.InBodyAnalysis, error) {
	return s.store.ListInBodyAnalyses(ctx, s.keep)
}

// Latest returns store.ErrNotFound when nothing has been saved.
func (s *InBodyService) Latest(ctx context.Context) (*store.InBodyAnalysis, error) {
	list, err := s.store.ListInBodyAnalyses(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return &list[0], nil
}

func (s *InBodyService) Save(ctx context.Context, recommendedCalories int, analysis store.Analysis) (*store.InBodyAnalysis, error) {
	if recommendedCalories <= 0 {
		return nil, invalid("Missing required fields: recommendedCalories, analysis")
	}
	if recommendedCalories > MaxCalories {
		return nil, invalid("recommendedCalories must not exceed %d", MaxCalories)
	}
	return s.store.CreateInBodyAnalysis(ctx, recommendedCalories, analysis, s.keep)
}

func (s *InBodyService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return invalid("Missing required parameter: id")
	}
	return s.store.DeleteInBodyAnalysis(ctx, id)
}
