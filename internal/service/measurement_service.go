package service

import (
	"context"

	"gymdesk/membership-app/internal/bodymetrics"
	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/repository"
	"gymdesk/membership-app/internal/validation"
)

// MeasurementResult is a written measurement and any readings that look off.
type MeasurementResult struct {
	Measurement *domain.Measurement   `json:"medida"`
	Warnings    []bodymetrics.Warning `json:"warnings,omitempty"`
}

type MeasurementService interface {
	List(ctx context.Context) ([]domain.Measurement, error)
	ListByClient(ctx context.Context, clientID int64) ([]domain.Measurement, error)
	// Latest returns nil without error when the client has no measurements.
	Latest(ctx context.Context, clientID int64) (*domain.Measurement, error)
	Get(ctx context.Context, id int64) (*domain.Measurement, error)
	Create(ctx context.Context, form validation.MeasurementForm) (*MeasurementResult, error)
	Update(ctx context.Context, id int64, form validation.MeasurementForm) (*MeasurementResult, error)
	Delete(ctx context.Context, id int64) error
}

type measurementService struct {
	measurementRepo repository.MeasurementRepository
	clientRepo      repository.ClientRepository
}

func NewMeasurementService(measurementRepo repository.MeasurementRepository, clientRepo repository.ClientRepository) MeasurementService {
	return &measurementService{measurementRepo: measurementRepo, clientRepo: clientRepo}
}

func (s *measurementService) List(ctx context.Context) ([]domain.Measurement, error) {
	return s.measurementRepo.List(ctx)
}

func (s *measurementService) ListByClient(ctx context.Context, clientID int64) ([]domain.Measurement, error) {
	return s.measurementRepo.ListByClient(ctx, clientID)
}

func (s *measurementService) Latest(ctx context.Context, clientID int64) (*domain.Measurement, error) {
	m, err := s.measurementRepo.Latest(ctx, clientID)
	if isNotFound(err) {
		return nil, nil
	}
	return m, err
}

func (s *measurementService) Get(ctx context.Context, id int64) (*domain.Measurement, error) {
	return s.measurementRepo.GetByID(ctx, id)
}

func (s *measurementService) Create(ctx context.Context, form validation.MeasurementForm) (*MeasurementResult, error) {
	if form.ClientID == 0 {
		r := validation.Ok()
		r.Add("idCliente", "is required")
		return nil, r.Err()
	}
	m, err := s.prepare(ctx, form.ClientID, form)
	if err != nil {
		return nil, err
	}
	created, err := s.measurementRepo.Create(ctx, &m)
	if err != nil {
		return nil, err
	}
	return &MeasurementResult{Measurement: created, Warnings: bodymetrics.Warnings(m)}, nil
}

func (s *measurementService) Update(ctx context.Context, id int64, form validation.MeasurementForm) (*MeasurementResult, error) {
	existing, err := s.measurementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m, err := s.prepare(ctx, existing.ClientID, form)
	if err != nil {
		return nil, err
	}
	m.ID = id
	updated, err := s.measurementRepo.Update(ctx, id, &m)
	if err != nil {
		return nil, err
	}
	return &MeasurementResult{Measurement: updated, Warnings: bodymetrics.Warnings(m)}, nil
}

// prepare trims the form to what the client's occupation measures, validates
// it and derives BMI.
func (s *measurementService) prepare(ctx context.Context, clientID int64, form validation.MeasurementForm) (domain.Measurement, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return domain.Measurement{}, err
	}
	form.ClientID = clientID
	form = form.ForOccupation(client.Occupation)
	if err := validation.CheckMeasurement(form).Err(); err != nil {
		return domain.Measurement{}, err
	}
	m := form.ToMeasurement()
	bodymetrics.Apply(&m)
	return m, nil
}

func (s *measurementService) Delete(ctx context.Context, id int64) error {
	return s.measurementRepo.Delete(ctx, id)
}
