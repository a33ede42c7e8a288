package service

import (
	"context"
	"fmt"
	"strings"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/reconcile"
	"gymdesk/membership-app/internal/repository"
	"gymdesk/membership-app/internal/validation"

	"github.com/shopspring/decimal"
)

// PaymentView is a payment as shown in the console, priced by the engine.
type PaymentView struct {
	domain.Payment
	reconcile.Assessment
}

// ClientPayments is the payments tab of a client.
type ClientPayments struct {
	Payments []PaymentView   `json:"payments"`
	Ledger   reconcile.Ledger `json:"ledger"`
}

type PaymentService interface {
	List(ctx context.Context) ([]PaymentView, error)
	ListByClient(ctx context.Context, clientID int64) (*ClientPayments, error)
	Get(ctx context.Context, id int64) (*PaymentView, error)
	Create(ctx context.Context, form validation.PaymentForm) (*PaymentView, error)
	Update(ctx context.Context, id int64, form validation.PaymentEditForm) (*PaymentView, error)
	// Complete raises a pending payment to its expected total.
	Complete(ctx context.Context, id int64, note string) (*PaymentView, error)
	Delete(ctx context.Context, id int64) error
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	clientRepo  repository.ClientRepository
	planRepo    repository.PlanRepository
	feeRepo     repository.FeeRepository
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	clientRepo repository.ClientRepository,
	planRepo repository.PlanRepository,
	feeRepo repository.FeeRepository,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		clientRepo:  clientRepo,
		planRepo:    planRepo,
		feeRepo:     feeRepo,
	}
}

func viewOf(p domain.Payment) PaymentView {
	return PaymentView{Payment: p, Assessment: reconcile.Assess(p)}
}

func viewsOf(payments []domain.Payment) []PaymentView {
	views := make([]PaymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, viewOf(p))
	}
	return views
}

func (s *paymentService) List(ctx context.Context) ([]PaymentView, error) {
	payments, err := s.paymentRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return viewsOf(payments), nil
}

func (s *paymentService) ListByClient(ctx context.Context, clientID int64) (*ClientPayments, error) {
	payments, err := s.paymentRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &ClientPayments{
		Payments: viewsOf(payments),
		Ledger:   reconcile.BuildLedger(payments),
	}, nil
}

func (s *paymentService) Get(ctx context.Context, id int64) (*PaymentView, error) {
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := viewOf(*p)
	return &v, nil
}

// Create records a standalone payment. Its state is derived from the amount
// against the enrollment's plan and any fees bundled on it.
func (s *paymentService) Create(ctx context.Context, form validation.PaymentForm) (*PaymentView, error) {
	if err := validation.CheckPayment(form).Err(); err != nil {
		return nil, err
	}

	var enrollment *domain.Enrollment
	if form.EnrollmentID != nil {
		e, err := s.resolveEnrollment(ctx, form.ClientID, *form.EnrollmentID)
		if err != nil {
			return nil, err
		}
		enrollment = e
	}

	fees, err := s.bundledFees(ctx, form.ClientID, form.FeeIDs)
	if err != nil {
		return nil, err
	}

	candidate := domain.Payment{
		ClientID:          form.ClientID,
		EnrollmentID:      form.EnrollmentID,
		Amount:            form.Amount,
		IncludesAnnualFee: form.IncludesAnnualFee,
		MaintenanceFees:   fees,
		Enrollment:        enrollment,
	}
	if form.IncludesAnnualFee {
		candidate.AnnualFeeAmount = form.AnnualFeeAmount
	}

	paidAt := form.PaidAt.Time
	if paidAt.IsZero() {
		paidAt = now()
	}

	req := domain.NewPayment{
		ClientID:          form.ClientID,
		EnrollmentID:      form.EnrollmentID,
		Amount:            form.Amount,
		PaidAt:            paidAt,
		Method:            form.Method,
		State:             reconcile.CompletionState(form.Amount, candidate),
		Reference:         form.Reference,
		Notes:             form.Notes,
		IncludesAnnualFee: form.IncludesAnnualFee,
		FeeIDs:            form.FeeIDs,
	}
	if form.IncludesAnnualFee {
		amount := form.AnnualFeeAmount
		req.AnnualFeeAmount = &amount
	}

	created, err := s.paymentRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	if created.Enrollment == nil {
		created.Enrollment = enrollment
	}
	if created.MaintenanceFees == nil {
		created.MaintenanceFees = fees
	}
	v := viewOf(*created)
	return &v, nil
}

// resolveEnrollment finds the client's enrollment and makes sure its plan is
// loaded.
func (s *paymentService) resolveEnrollment(ctx context.Context, clientID, enrollmentID int64) (*domain.Enrollment, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for i := range client.Enrollments {
		e := client.Enrollments[i]
		if e.ID != enrollmentID {
			continue
		}
		if e.Plan == nil && e.PlanID != 0 {
			plan, err := s.planRepo.GetByID(ctx, e.PlanID)
			if err != nil {
				return nil, err
			}
			e.Plan = plan
		}
		return &e, nil
	}
	r := validation.Ok()
	r.Add("idInscripcion", "does not belong to this client")
	return nil, r.Err()
}

// bundledFees returns the client's pending fees named by ids.
func (s *paymentService) bundledFees(ctx context.Context, clientID int64, ids []int64) ([]domain.MaintenanceFee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	fees, err := s.feeRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.MaintenanceFee, len(fees))
	for _, f := range fees {
		byID[f.ID] = f
	}
	selected := make([]domain.MaintenanceFee, 0, len(ids))
	for _, id := range ids {
		f, ok := byID[id]
		if !ok || f.State != domain.FeePending {
			return nil, fmt.Errorf("fee %d: %w", id, ErrFeeNotPayable)
		}
		selected = append(selected, f)
	}
	return selected, nil
}

// Update edits a payment. The amount may not exceed what the payment is
// expected to cover. A voided payment keeps its state.
func (s *paymentService) Update(ctx context.Context, id int64, form validation.PaymentEditForm) (*PaymentView, error) {
	existing, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validation.CheckPaymentEdit(form, reconcile.ExpectedPlanTotal(*existing)).Err(); err != nil {
		return nil, err
	}

	patch := domain.PaymentPatch{
		Amount:    form.Amount,
		Method:    form.Method,
		Reference: form.Reference,
		Notes:     form.Notes,
	}
	if form.Amount != nil && existing.State != domain.PaymentVoided {
		patch.State = reconcile.CompletionState(*form.Amount, *existing)
	}

	updated, err := s.paymentRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.keepRelations(updated, existing)
	v := viewOf(*updated)
	return &v, nil
}

func (s *paymentService) Complete(ctx context.Context, id int64, note string) (*PaymentView, error) {
	existing, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.State == domain.PaymentVoided {
		return nil, ErrPaymentVoided
	}
	if existing.Plan() == nil {
		return nil, ErrPaymentWithoutPlan
	}

	total := reconcile.ExpectedPlanTotal(*existing)
	if note == "" {
		note = fmt.Sprintf("Payment completed - previous amount: %s, final amount: %s",
			existing.Amount.StringFixed(2), total.StringFixed(2))
	}
	notes := joinNotes(existing.Notes, note)

	updated, err := s.paymentRepo.Update(ctx, id, domain.PaymentPatch{
		Amount: &total,
		State:  domain.PaymentCompleted,
		Notes:  &notes,
	})
	if err != nil {
		return nil, err
	}
	s.keepRelations(updated, existing)
	v := viewOf(*updated)
	return &v, nil
}

func (s *paymentService) Delete(ctx context.Context, id int64) error {
	return s.paymentRepo.Delete(ctx, id)
}

// keepRelations carries the plan and bundled fees over when the backend
// answers a write with a bare record.
func (s *paymentService) keepRelations(updated, existing *domain.Payment) {
	if updated.Enrollment == nil {
		updated.Enrollment = existing.Enrollment
	}
	if updated.MaintenanceFees == nil {
		updated.MaintenanceFees = existing.MaintenanceFees
	}
	if updated.AnnualFeeAmount.IsZero() && updated.IncludesAnnualFee {
		updated.AnnualFeeAmount = existing.AnnualFeeAmount
	}
}

func joinNotes(existing, note string) string {
	existing = strings.TrimSpace(existing)
	if existing == "" {
		return note
	}
	return existing + ". " + note
}

// expectedWith prices a payment that has not been recorded yet.
func expectedWith(plan *domain.Plan, annualFee decimal.Decimal, fees []domain.MaintenanceFee) domain.Payment {
	p := domain.Payment{MaintenanceFees: fees}
	if plan != nil {
		p.Enrollment = &domain.Enrollment{PlanID: plan.ID, Plan: plan}
	}
	if annualFee.IsPositive() {
		p.IncludesAnnualFee = true
		p.AnnualFeeAmount = annualFee
	}
	return p
}
