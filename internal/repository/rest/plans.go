package rest

import (
	"context"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/repository"
)

const plansPath = "/planes"

type planRepository struct {
	client *Client
}

func NewPlanRepository(client *Client) repository.PlanRepository {
	return &planRepository{client: client}
}

func (r *planRepository) List(ctx context.Context) ([]domain.Plan, error) {
	return getList[domain.Plan](ctx, r.client, plansPath, nil)
}

func (r *planRepository) GetByID(ctx context.Context, id int64) (*domain.Plan, error) {
	var plan domain.Plan
	if err := r.client.get(ctx, idPath(plansPath, id), nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
