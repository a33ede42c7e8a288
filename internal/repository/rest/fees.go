package rest

import (
	"context"
	"fmt"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/repository"
)

const feesPath = "/cuotas-mantenimiento"

type feeRepository struct {
	client *Client
}

func NewFeeRepository(client *Client) repository.FeeRepository {
	return &feeRepository{client: client}
}

func (r *feeRepository) ListByClient(ctx context.Context, clientID int64) ([]domain.MaintenanceFee, error) {
	var fees []domain.MaintenanceFee
	if err := r.client.get(ctx, fmt.Sprintf("%s/cliente/%d", feesPath, clientID), nil, &fees); err != nil {
		return nil, err
	}
	return fees, nil
}

func (r *feeRepository) PendingSummary(ctx context.Context, clientID int64) (*domain.PendingFeesResponse, error) {
	var summary domain.PendingFeesResponse
	if err := r.client.get(ctx, fmt.Sprintf("%s/cliente/%d/tiene-pendientes", feesPath, clientID), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *feeRepository) Create(ctx context.Context, fee domain.NewFee) (*domain.MaintenanceFee, error) {
	var created domain.MaintenanceFee
	if err := r.client.post(ctx, feesPath, fee, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *feeRepository) MarkPaid(ctx context.Context, id int64, settlement domain.FeeSettlement) (*domain.MaintenanceFee, error) {
	var updated domain.MaintenanceFee
	if err := r.client.patch(ctx, idPath(feesPath, id)+"/pagar", settlement, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *feeRepository) Update(ctx context.Context, id int64, patch domain.FeePatch) (*domain.MaintenanceFee, error) {
	var updated domain.MaintenanceFee
	if err := r.client.patch(ctx, idPath(feesPath, id), patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a fee. The backend refuses paid fees with 403.
func (r *feeRepository) Delete(ctx context.Context, id int64) error {
	return r.client.del(ctx, idPath(feesPath, id))
}
