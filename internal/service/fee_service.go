package service

import (
	"context"
	"errors"
	"fmt"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/reconcile"
	"gymdesk/membership-app/internal/repository"
	"gymdesk/membership-app/internal/validation"
)

// ClientFees is the maintenance fee tab of a client.
type ClientFees struct {
	Fees        []domain.MaintenanceFee `json:"cuotas"`
	Summary     reconcile.FeeSummary    `json:"summary"`
	NextOverdue *domain.MaintenanceFee  `json:"nextOverdue,omitempty"`
}

type FeeService interface {
	ListByClient(ctx context.Context, clientID int64) (*ClientFees, error)
	HasPending(ctx context.Context, clientID int64) (*domain.PendingFeesResponse, error)
	// Create adds a fee for a year the client has none for. A zero amount
	// takes the default fee.
	Create(ctx context.Context, form validation.FeeForm) (*domain.MaintenanceFee, error)
	MarkPaid(ctx context.Context, id, paymentID int64) (*domain.MaintenanceFee, error)
	Update(ctx context.Context, id int64, form validation.FeeEditForm) (*domain.MaintenanceFee, error)
	// Delete removes a pending fee. Paid fees cannot be deleted.
	Delete(ctx context.Context, id int64) error
	// EnsureAnnualFee creates the fee for year when the client has none.
	// It returns nil when a fee already existed.
	EnsureAnnualFee(ctx context.Context, clientID int64, year int) (*domain.MaintenanceFee, error)
}

type feeService struct {
	feeRepo repository.FeeRepository
}

func NewFeeService(feeRepo repository.FeeRepository) FeeService {
	return &feeService{feeRepo: feeRepo}
}

func (s *feeService) ListByClient(ctx context.Context, clientID int64) (*ClientFees, error) {
	fees, err := s.feeRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if fees == nil {
		fees = []domain.MaintenanceFee{}
	}
	return &ClientFees{
		Fees:        fees,
		Summary:     reconcile.SummarizeFees(fees),
		NextOverdue: reconcile.NextOverdue(fees, now()),
	}, nil
}

func (s *feeService) HasPending(ctx context.Context, clientID int64) (*domain.PendingFeesResponse, error) {
	return s.feeRepo.PendingSummary(ctx, clientID)
}

func (s *feeService) Create(ctx context.Context, form validation.FeeForm) (*domain.MaintenanceFee, error) {
	if form.Amount.IsZero() {
		form.Amount = domain.DefaultFeeAmount
	}
	if err := validation.CheckFee(form, now()).Err(); err != nil {
		return nil, err
	}
	fees, err := s.feeRepo.ListByClient(ctx, form.ClientID)
	if err != nil {
		return nil, err
	}
	if !reconcile.RequiresNewFeeForYear(fees, form.Year) {
		return nil, fmt.Errorf("%d: %w", form.Year, ErrFeeAlreadyExists)
	}
	return s.feeRepo.Create(ctx, domain.NewFee{
		ClientID: form.ClientID,
		Year:     form.Year,
		Amount:   form.Amount,
		Notes:    form.Notes,
	})
}

func (s *feeService) MarkPaid(ctx context.Context, id, paymentID int64) (*domain.MaintenanceFee, error) {
	return s.feeRepo.MarkPaid(ctx, id, domain.FeeSettlement{
		PaymentID: paymentID,
		State:     domain.FeePaid,
		PaidAt:    now(),
	})
}

func (s *feeService) Update(ctx context.Context, id int64, form validation.FeeEditForm) (*domain.MaintenanceFee, error) {
	if err := validation.CheckFeeEdit(form).Err(); err != nil {
		return nil, err
	}
	return s.feeRepo.Update(ctx, id, domain.FeePatch{
		Amount: form.Amount,
		State:  form.State,
		Notes:  form.Notes,
	})
}

func (s *feeService) Delete(ctx context.Context, id int64) error {
	err := s.feeRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrForbidden) {
		return ErrFeeAlreadyPaid
	}
	return err
}

func (s *feeService) EnsureAnnualFee(ctx context.Context, clientID int64, year int) (*domain.MaintenanceFee, error) {
	fees, err := s.feeRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !reconcile.RequiresNewFeeForYear(fees, year) {
		return nil, nil
	}
	return s.feeRepo.Create(ctx, domain.NewFee{
		ClientID: clientID,
		Year:     year,
		Amount:   domain.DefaultFeeAmount,
	})
}
