package rest

import (
	"context"
	"fmt"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/repository"
)

const measurementsPath = "/medidas"

type measurementRepository struct {
	client *Client
}

func NewMeasurementRepository(client *Client) repository.MeasurementRepository {
	return &measurementRepository{client: client}
}

func (r *measurementRepository) List(ctx context.Context) ([]domain.Measurement, error) {
	return getList[domain.Measurement](ctx, r.client, measurementsPath, nil)
}

func (r *measurementRepository) ListByClient(ctx context.Context, clientID int64) ([]domain.Measurement, error) {
	return getList[domain.Measurement](ctx, r.client, fmt.Sprintf("%s/cliente/%d", measurementsPath, clientID), nil)
}

func (r *measurementRepository) Latest(ctx context.Context, clientID int64) (*domain.Measurement, error) {
	var m domain.Measurement
	if err := r.client.get(ctx, fmt.Sprintf("%s/cliente/%d/ultima", measurementsPath, clientID), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *measurementRepository) GetByID(ctx context.Context, id int64) (*domain.Measurement, error) {
	var m domain.Measurement
	if err := r.client.get(ctx, idPath(measurementsPath, id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *measurementRepository) Create(ctx context.Context, m *domain.Measurement) (*domain.Measurement, error) {
	var created domain.Measurement
	if err := r.client.post(ctx, measurementsPath, m, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *measurementRepository) Update(ctx context.Context, id int64, m *domain.Measurement) (*domain.Measurement, error) {
	var updated domain.Measurement
	if err := r.client.patch(ctx, idPath(measurementsPath, id), m, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *measurementRepository) Delete(ctx context.Context, id int64) error {
	return r.client.del(ctx, idPath(measurementsPath, id))
}
