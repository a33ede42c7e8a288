package service

import (
	"context"
	"errors"
	"fmt"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/reconcile"
	"gymdesk/membership-app/internal/repository"
	"gymdesk/membership-app/internal/validation"

	"golang.org/x/sync/errgroup"
)

// RenewalPreview is what the renewal form shows before submission.
type RenewalPreview struct {
	ClientID       int64                        `json:"idCliente"`
	Eligibility    reconcile.RenewalEligibility `json:"eligibility"`
	ApplyAnnualFee bool                         `json:"applyAnnualFee"`
	Plan           *domain.Plan                 `json:"plan,omitempty"`
	PlanEligible   bool                         `json:"planEligible"`
	Minimum        *reconcile.RenewalMinimum    `json:"minimum,omitempty"`
	PendingFees    []domain.MaintenanceFee      `json:"pendingFees"`
	EligiblePlans  []domain.Plan                `json:"eligiblePlans"`
	StartDate      domain.Day                   `json:"startDate"`
	EndDate        *domain.Day                  `json:"endDate,omitempty"`
	TargetYear     int                          `json:"targetYear"`
}

// RenewalOutcome is the backend's answer plus the re-fetched client state.
// Warnings list follow-up steps that failed after the renewal was recorded.
type RenewalOutcome struct {
	Result     *domain.RenewalResult  `json:"result"`
	Client     *ClientDetail          `json:"client,omitempty"`
	CreatedFee *domain.MaintenanceFee `json:"createdFee,omitempty"`
	Warnings   []string               `json:"warnings,omitempty"`
}

type RenewalService interface {
	// Preview prices a renewal of clientID. A zero planID previews the plan of
	// the active enrollment.
	Preview(ctx context.Context, clientID, planID int64) (*RenewalPreview, error)
	Submit(ctx context.Context, form validation.RenewalForm) (*RenewalOutcome, error)
}

type renewalService struct {
	clientRepo  repository.ClientRepository
	paymentRepo repository.PaymentRepository
	feeRepo     repository.FeeRepository
	planRepo    repository.PlanRepository
	fees        FeeService
	clients     ClientService
	log         *logger.Logger
}

func NewRenewalService(
	clientRepo repository.ClientRepository,
	paymentRepo repository.PaymentRepository,
	feeRepo repository.FeeRepository,
	planRepo repository.PlanRepository,
	fees FeeService,
	clients ClientService,
	log *logger.Logger,
) RenewalService {
	return &renewalService{
		clientRepo:  clientRepo,
		paymentRepo: paymentRepo,
		feeRepo:     feeRepo,
		planRepo:    planRepo,
		fees:        fees,
		clients:     clients,
		log:         log,
	}
}

// renewalState is the authoritative data a renewal is priced from.
type renewalState struct {
	client   *domain.Client
	payments []domain.Payment
	fees     []domain.MaintenanceFee
	plans    []domain.Plan
}

func (s *renewalService) load(ctx context.Context, clientID int64) (*renewalState, error) {
	st := &renewalState{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.client, err = s.clientRepo.GetByID(gctx, clientID)
		return err
	})
	g.Go(func() (err error) {
		st.payments, err = s.paymentRepo.ListByClient(gctx, clientID)
		return err
	})
	g.Go(func() (err error) {
		st.fees, err = s.feeRepo.ListByClient(gctx, clientID)
		return err
	})
	g.Go(func() (err error) {
		st.plans, err = s.planRepo.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return st, nil
}

func findPlan(plans []domain.Plan, id int64) *domain.Plan {
	for i := range plans {
		if plans[i].ID == id {
			p := plans[i]
			return &p
		}
	}
	return nil
}

func planAllowed(p domain.Plan, occupation domain.Occupation) bool {
	return len(domain.PlansForOccupation([]domain.Plan{p}, occupation)) == 1
}

func (s *renewalService) Preview(ctx context.Context, clientID, planID int64) (*RenewalPreview, error) {
	st, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}

	t := now()
	active := reconcile.ActiveEnrollment(st.client.Enrollments)
	applyFee := reconcile.ShouldApplyAnnualFee(st.payments, false, t)
	summary := reconcile.SummarizeFees(st.fees)

	p := &RenewalPreview{
		ClientID:       clientID,
		Eligibility:    reconcile.CanRenew(active, t),
		ApplyAnnualFee: applyFee,
		PendingFees:    summary.Pending,
		EligiblePlans:  domain.PlansForOccupation(st.plans, st.client.Occupation),
		StartDate:      domain.NewDay(t),
		TargetYear:     t.Year(),
	}

	if planID == 0 && active != nil {
		planID = active.PlanID
	}
	if planID != 0 {
		p.Plan = findPlan(st.plans, planID)
	}
	if p.Plan != nil {
		p.PlanEligible = planAllowed(*p.Plan, st.client.Occupation)
		minimum := reconcile.MinimumRenewalAmount(st.fees, *p.Plan, applyFee)
		p.Minimum = &minimum
		end := domain.NewDay(p.Plan.EndDateFor(p.StartDate.Time))
		p.EndDate = &end
	}
	return p, nil
}

// Submit checks a renewal locally and sends it to the backend. The annual fee
// is always included when it is due; otherwise the form's flag decides. While
// pending fees exist the amount must reach the full minimum and every pending
// fee is settled. Without them a partial amount is recorded as pending.
func (s *renewalService) Submit(ctx context.Context, form validation.RenewalForm) (*RenewalOutcome, error) {
	if err := validation.CheckRenewal(form).Err(); err != nil {
		return nil, err
	}
	st, err := s.load(ctx, form.ClientID)
	if err != nil {
		return nil, err
	}

	t := now()
	eligibility := reconcile.CanRenew(reconcile.ActiveEnrollment(st.client.Enrollments), t)
	if !eligibility.Allowed {
		if eligibility.Reason == reconcile.ReasonTooEarly {
			return nil, fmt.Errorf("%w: %d days remaining", ErrTooEarlyToRenew, eligibility.DaysRemaining)
		}
		return nil, fmt.Errorf("%w: %s", ErrRenewalNotAllowed, eligibility.Reason)
	}

	plan := findPlan(st.plans, form.PlanID)
	if plan == nil {
		return nil, fmt.Errorf("plan %d: %w", form.PlanID, repository.ErrNotFound)
	}
	if !planAllowed(*plan, st.client.Occupation) {
		r := validation.Ok()
		r.Add("idPlan", fmt.Sprintf("plan %q is not available for this client", plan.Name))
		return nil, r.Err()
	}

	includeFee := form.IncludesAnnualFee || reconcile.ShouldApplyAnnualFee(st.payments, false, t)
	minimum := reconcile.MinimumRenewalAmount(st.fees, *plan, includeFee)
	if minimum.PendingCount > 0 && form.Amount.LessThan(minimum.Minimum) {
		return nil, fmt.Errorf("%w: %s", ErrAmountBelowMinimum, minimum.Minimum.StringFixed(2))
	}
	settled, err := settledFees(st.fees, form.FeeIDs)
	if err != nil {
		return nil, err
	}

	start := form.StartDate
	if start.IsZero() {
		start = domain.NewDay(t)
	}
	candidate := domain.Payment{
		ClientID:          form.ClientID,
		Enrollment:        &domain.Enrollment{PlanID: plan.ID, Plan: plan},
		IncludesAnnualFee: includeFee,
		MaintenanceFees:   settled,
	}
	if includeFee {
		candidate.AnnualFeeAmount = reconcile.AnnualFee
	}
	feeIDs := make([]int64, 0, len(settled))
	for _, fee := range settled {
		feeIDs = append(feeIDs, fee.ID)
	}

	result, err := s.paymentRepo.Renew(ctx, domain.RenewalRequest{
		ClientID:          form.ClientID,
		PlanID:            plan.ID,
		Method:            form.Method,
		Amount:            form.Amount,
		State:             reconcile.CompletionState(form.Amount, candidate),
		StartDate:         start,
		Reference:         form.Reference,
		Notes:             form.Notes,
		IncludesAnnualFee: includeFee,
		PaysPendingFees:   len(feeIDs) > 0,
		FeeIDs:            feeIDs,
	})
	if err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return nil, fmt.Errorf("%w: %v", ErrTooEarlyToRenew, err)
		}
		return nil, err
	}

	out := &RenewalOutcome{Result: result}
	fee, err := s.fees.EnsureAnnualFee(ctx, form.ClientID, t.Year())
	if err != nil {
		s.log.Warn(ctx, "renewal recorded but annual fee check failed", err)
		out.Warnings = append(out.Warnings, fmt.Sprintf("maintenance fee for %d could not be verified", t.Year()))
	}
	out.CreatedFee = fee

	detail, err := s.clients.Detail(ctx, form.ClientID)
	if err != nil {
		s.log.Warn(ctx, "renewal recorded but client refresh failed", err)
		out.Warnings = append(out.Warnings, "client data could not be refreshed")
	}
	out.Client = detail
	return out, nil
}

// settledFees resolves the fees a renewal settles. An empty ids list takes
// every pending fee. A non-empty list must name each pending fee of the client
// exactly, since the minimum already charges for all of them.
func settledFees(fees []domain.MaintenanceFee, ids []int64) ([]domain.MaintenanceFee, error) {
	pending := reconcile.SummarizeFees(fees).Pending
	if len(ids) == 0 {
		return pending, nil
	}
	byID := make(map[int64]domain.MaintenanceFee, len(pending))
	for _, fee := range pending {
		byID[fee.ID] = fee
	}
	r := validation.Ok()
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			r.Add("idsCuotas", fmt.Sprintf("fee %d is not a pending fee of this client", id))
			continue
		}
		seen[id] = true
	}
	for _, fee := range pending {
		if !seen[fee.ID] {
			r.Add("idsCuotas", fmt.Sprintf("pending fee for %d must be settled with the renewal", fee.Year))
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return pending, nil
}
