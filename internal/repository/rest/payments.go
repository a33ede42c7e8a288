package rest

import (
	"context"
	"fmt"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/repository"
)

const paymentsPath = "/pagos"

// Payment listings are decoded strictly: a single malformed record rejects
// the whole response rather than silently changing a client's balance.
type paymentRepository struct {
	client *Client
}

func NewPaymentRepository(client *Client) repository.PaymentRepository {
	return &paymentRepository{client: client}
}

func (r *paymentRepository) List(ctx context.Context) ([]domain.Payment, error) {
	var payments []domain.Payment
	if err := r.client.get(ctx, paymentsPath, nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) ListByClient(ctx context.Context, clientID int64) ([]domain.Payment, error) {
	var payments []domain.Payment
	if err := r.client.get(ctx, fmt.Sprintf("%s/cliente/%d", paymentsPath, clientID), nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.client.get(ctx, idPath(paymentsPath, id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) Create(ctx context.Context, p domain.NewPayment) (*domain.Payment, error) {
	var created domain.Payment
	if err := r.client.post(ctx, paymentsPath, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *paymentRepository) Update(ctx context.Context, id int64, patch domain.PaymentPatch) (*domain.Payment, error) {
	var updated domain.Payment
	if err := r.client.patch(ctx, idPath(paymentsPath, id), patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *paymentRepository) Delete(ctx context.Context, id int64) error {
	return r.client.del(ctx, idPath(paymentsPath, id))
}

// Renew submits a renewal. The backend answers 403 when the current
// enrollment is not yet inside the renewal window.
func (r *paymentRepository) Renew(ctx context.Context, req domain.RenewalRequest) (*domain.RenewalResult, error) {
	var result domain.RenewalResult
	if err := r.client.post(ctx, paymentsPath+"/renovar", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
