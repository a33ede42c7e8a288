package service

import (
	"context"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/repository"
)

type PlanService interface {
	List(ctx context.Context) ([]domain.Plan, error)
	Get(ctx context.Context, id int64) (*domain.Plan, error)
	// ForOccupation lists the plans a client with this occupation may take.
	ForOccupation(ctx context.Context, occupation domain.Occupation) ([]domain.Plan, error)
}

type planService struct {
	planRepo repository.PlanRepository
}

func NewPlanService(planRepo repository.PlanRepository) PlanService {
	return &planService{planRepo: planRepo}
}

func (s *planService) List(ctx context.Context) ([]domain.Plan, error) {
	return s.planRepo.List(ctx)
}

func (s *planService) Get(ctx context.Context, id int64) (*domain.Plan, error) {
	return s.planRepo.GetByID(ctx, id)
}

func (s *planService) ForOccupation(ctx context.Context, occupation domain.Occupation) ([]domain.Plan, error) {
	plans, err := s.planRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.PlansForOccupation(plans, occupation), nil
}
