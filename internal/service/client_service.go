package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gymdesk/membership-app/internal/bodymetrics"
	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/reconcile"
	"gymdesk/membership-app/internal/repository"
	"gymdesk/membership-app/internal/validation"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ClientRow is one line of the client list.
type ClientRow struct {
	domain.Client
	Membership reconcile.Membership `json:"membership"`
	PlanLabel  string               `json:"planLabel"`
	Contact    string               `json:"contact,omitempty"`
	HasContact bool                 `json:"hasContact"`
}

// ClientQuery filters the client list. Search matches name, national ID or
// phone, ignoring case.
type ClientQuery struct {
	Search string `form:"q"`
}

// ClientList splits clients by whether their membership is active.
type ClientList struct {
	Active   []ClientRow `json:"active"`
	Inactive []ClientRow `json:"inactive"`
}

// ClientDetail is everything the client page shows.
type ClientDetail struct {
	Client            domain.Client                `json:"cliente"`
	Membership        reconcile.Membership         `json:"membership"`
	PlanLabel         string                       `json:"planLabel"`
	Age               *int                         `json:"age,omitempty"`
	Minor             bool                         `json:"minor"`
	Contact           string                       `json:"contact,omitempty"`
	HasContact        bool                         `json:"hasContact"`
	Renewal           reconcile.RenewalEligibility `json:"renewal"`
	Payments          []PaymentView                `json:"payments"`
	Ledger            reconcile.Ledger             `json:"ledger"`
	Fees              reconcile.FeeSummary         `json:"fees"`
	NextOverdueFee    *domain.MaintenanceFee       `json:"nextOverdueFee,omitempty"`
	LatestMeasurement *domain.Measurement          `json:"latestMeasurement,omitempty"`
}

// RegistrationResult reports a completed sign-up.
type RegistrationResult struct {
	Client        *domain.Client        `json:"cliente"`
	PaymentState  domain.PaymentState   `json:"paymentState"`
	ExpectedTotal decimal.Decimal       `json:"expectedTotal"`
	EndDate       domain.Day            `json:"endDate"`
	Warnings      []bodymetrics.Warning `json:"warnings,omitempty"`
}

type ClientService interface {
	List(ctx context.Context, q ClientQuery) (*ClientList, error)
	Get(ctx context.Context, id int64) (*domain.Client, error)
	Detail(ctx context.Context, id int64) (*ClientDetail, error)
	GetByNationalID(ctx context.Context, nationalID string) (*domain.Client, error)
	// CheckNationalID reports whether a client with this national ID exists.
	CheckNationalID(ctx context.Context, nationalID string) (bool, error)
	Create(ctx context.Context, form validation.ClientForm) (*domain.Client, error)
	Update(ctx context.Context, id int64, form validation.ClientForm) (*domain.Client, error)
	Delete(ctx context.Context, id int64) error
	// Register signs up a new client with measurement, enrollment and first
	// payment in one backend call.
	Register(ctx context.Context, form validation.RegistrationForm) (*RegistrationResult, error)
}

type clientService struct {
	clientRepo      repository.ClientRepository
	planRepo        repository.PlanRepository
	paymentRepo     repository.PaymentRepository
	feeRepo         repository.FeeRepository
	measurementRepo repository.MeasurementRepository
}

func NewClientService(
	clientRepo repository.ClientRepository,
	planRepo repository.PlanRepository,
	paymentRepo repository.PaymentRepository,
	feeRepo repository.FeeRepository,
	measurementRepo repository.MeasurementRepository,
) ClientService {
	return &clientService{
		clientRepo:      clientRepo,
		planRepo:        planRepo,
		paymentRepo:     paymentRepo,
		feeRepo:         feeRepo,
		measurementRepo: measurementRepo,
	}
}

func (s *clientService) List(ctx context.Context, q ClientQuery) (*ClientList, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	t := now()
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	list := &ClientList{Active: []ClientRow{}, Inactive: []ClientRow{}}
	for _, c := range clients {
		if needle != "" && !matches(c, needle) {
			continue
		}
		row := rowOf(c, t)
		if row.Membership.Status == reconcile.StatusActive {
			list.Active = append(list.Active, row)
		} else {
			list.Inactive = append(list.Inactive, row)
		}
	}
	byName := func(rows []ClientRow) {
		sort.SliceStable(rows, func(i, j int) bool {
			return strings.ToLower(rows[i].FullName()) < strings.ToLower(rows[j].FullName())
		})
	}
	byName(list.Active)
	byName(list.Inactive)
	return list, nil
}

func matches(c domain.Client, needle string) bool {
	return containsFold(c.FullName(), needle) ||
		containsFold(c.NationalID, needle) ||
		containsFold(c.Phone, needle)
}

func rowOf(c domain.Client, t time.Time) ClientRow {
	m := reconcile.MembershipStatusOf(c, t)
	contact, ok := c.PrimaryContact()
	return ClientRow{
		Client:     c,
		Membership: m,
		PlanLabel:  m.PlanLabel(),
		Contact:    contact,
		HasContact: ok,
	}
}

func (s *clientService) Get(ctx context.Context, id int64) (*domain.Client, error) {
	return s.clientRepo.GetByID(ctx, id)
}

func (s *clientService) Detail(ctx context.Context, id int64) (*ClientDetail, error) {
	var (
		client   *domain.Client
		payments []domain.Payment
		fees     []domain.MaintenanceFee
		latest   *domain.Measurement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		client, err = s.clientRepo.GetByID(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		payments, err = s.paymentRepo.ListByClient(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		fees, err = s.feeRepo.ListByClient(gctx, id)
		return err
	})
	g.Go(func() error {
		m, err := s.measurementRepo.Latest(gctx, id)
		if err != nil && !isNotFound(err) {
			return err
		}
		latest = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t := now()
	m := reconcile.MembershipStatusOf(*client, t)
	contact, hasContact := client.PrimaryContact()
	d := &ClientDetail{
		Client:            *client,
		Membership:        m,
		PlanLabel:         m.PlanLabel(),
		Contact:           contact,
		HasContact:        hasContact,
		Renewal:           reconcile.CanRenew(m.Enrollment, t),
		Payments:          viewsOf(payments),
		Ledger:            reconcile.BuildLedger(payments),
		Fees:              reconcile.SummarizeFees(fees),
		NextOverdueFee:    reconcile.NextOverdue(fees, t),
		LatestMeasurement: latest,
	}
	if client.BirthDate != nil {
		age := reconcile.AgeAt(*client.BirthDate, t)
		d.Age = &age
		d.Minor = reconcile.IsMinor(*client.BirthDate, t)
	}
	return d, nil
}

func (s *clientService) GetByNationalID(ctx context.Context, nationalID string) (*domain.Client, error) {
	return s.clientRepo.GetByNationalID(ctx, strings.TrimSpace(nationalID))
}

func (s *clientService) CheckNationalID(ctx context.Context, nationalID string) (bool, error) {
	return s.clientRepo.NationalIDExists(ctx, strings.TrimSpace(nationalID))
}

func (s *clientService) Create(ctx context.Context, form validation.ClientForm) (*domain.Client, error) {
	if err := validation.CheckClient(form).Err(); err != nil {
		return nil, err
	}
	exists, err := s.clientRepo.NationalIDExists(ctx, form.NationalID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateNationalID
	}
	c := clientFromForm(form)
	return s.clientRepo.Create(ctx, &c)
}

func (s *clientService) Update(ctx context.Context, id int64, form validation.ClientForm) (*domain.Client, error) {
	if err := validation.CheckClient(form).Err(); err != nil {
		return nil, err
	}
	other, err := s.clientRepo.GetByNationalID(ctx, form.NationalID)
	switch {
	case err == nil && other.ID != id:
		return nil, ErrDuplicateNationalID
	case err != nil && !isNotFound(err):
		return nil, err
	}
	c := clientFromForm(form)
	c.ID = id
	return s.clientRepo.Update(ctx, id, &c)
}

func (s *clientService) Delete(ctx context.Context, id int64) error {
	return s.clientRepo.Delete(ctx, id)
}

func (s *clientService) Register(ctx context.Context, form validation.RegistrationForm) (*RegistrationResult, error) {
	t := now()
	if err := validation.CheckRegistration(form, t).Err(); err != nil {
		return nil, err
	}

	exists, err := s.clientRepo.NationalIDExists(ctx, form.Client.NationalID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateNationalID
	}

	plan, err := s.planRepo.GetByID(ctx, form.Enrollment.PlanID)
	if err != nil {
		return nil, err
	}
	if len(domain.PlansForOccupation([]domain.Plan{*plan}, form.Client.Occupation)) == 0 {
		r := validation.Ok()
		r.Add("inscripcion.idPlan", fmt.Sprintf("plan %q is not available for %s clients", plan.Name, form.Client.Occupation))
		return nil, r.Err()
	}

	measurement := form.Measurement.ForOccupation(form.Client.Occupation).ToMeasurement()
	bodymetrics.Apply(&measurement)

	start := form.Enrollment.StartDate
	end := domain.NewDay(plan.EndDateFor(start.Time))

	annualFee := decimal.Zero
	if reconcile.ShouldApplyAnnualFee(nil, true, t) {
		annualFee = reconcile.AnnualFee
	}
	var bundled []domain.MaintenanceFee
	if form.MaintenanceFee.PayNow {
		bundled = append(bundled, domain.MaintenanceFee{
			Year:   t.Year(),
			Amount: domain.DefaultFeeAmount,
			State:  domain.FeePending,
		})
	}
	expected := expectedWith(plan, annualFee, bundled)
	state := reconcile.CompletionState(form.Payment.Amount, expected)

	payment := domain.RegistrationPayment{
		Amount:            form.Payment.Amount,
		Method:            form.Payment.Method,
		State:             state,
		Reference:         form.Payment.Reference,
		Notes:             form.Payment.Notes,
		IncludesAnnualFee: annualFee.IsPositive(),
	}
	if annualFee.IsPositive() {
		payment.AnnualFeeAmount = &annualFee
	}

	created, err := s.clientRepo.Register(ctx, domain.Registration{
		Client:      clientFromForm(form.Client),
		Measurement: measurement,
		Enrollment: domain.RegistrationEnrollment{
			PlanID:    plan.ID,
			StartDate: start,
			EndDate:   end,
		},
		Payment: payment,
		MaintenanceFee: domain.RegistrationFee{
			PayNow: form.MaintenanceFee.PayNow,
			Notes:  form.MaintenanceFee.Notes,
		},
	})
	if err != nil {
		return nil, err
	}

	return &RegistrationResult{
		Client:        created,
		PaymentState:  state,
		ExpectedTotal: reconcile.ExpectedPlanTotal(expected),
		EndDate:       end,
		Warnings:      bodymetrics.Warnings(measurement),
	}, nil
}

func clientFromForm(f validation.ClientForm) domain.Client {
	c := domain.Client{
		FirstName:  strings.TrimSpace(f.FirstName),
		LastName:   strings.TrimSpace(f.LastName),
		NationalID: strings.TrimSpace(f.NationalID),
		Phone:      strings.TrimSpace(f.Phone),
		Address:    f.Address,
		City:       f.City,
		Country:    f.Country,
		Email:      strings.TrimSpace(f.Email),
		Occupation: f.Occupation,
	}
	if f.Occupation == domain.OccupationWorker {
		c.JobTitle = f.JobTitle
	}
	if !f.BirthDate.IsZero() {
		birth := f.BirthDate.Time
		c.BirthDate = &birth
	}
	return c
}
