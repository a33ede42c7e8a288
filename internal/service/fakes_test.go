package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"gymdesk/membership-app/internal/auth"
	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/repository"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func useClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func timePtr(t time.Time) *time.Time { return &t }

func int64Ptr(v int64) *int64 { return &v }

func floatPtr(v float64) *float64 { return &v }

var (
	monthlyPlan  = domain.Plan{ID: 1, Name: "Mensual", DurationMonths: 1, Price: dec("30"), Tag: domain.OccupationWorker}
	studentPlan  = domain.Plan{ID: 2, Name: "Estudiante", DurationMonths: 1, Price: dec("20"), Tag: domain.OccupationStudent}
	annualPlan   = domain.Plan{ID: 3, Name: "Anual", DurationMonths: 12, Price: dec("300"), Tag: domain.OccupationWorker}
	catalogPlans = []domain.Plan{monthlyPlan, studentPlan, annualPlan}
)

type fakePlans struct {
	plans []domain.Plan
	err   error
}

func (f *fakePlans) List(context.Context) ([]domain.Plan, error) {
	return f.plans, f.err
}

func (f *fakePlans) GetByID(_ context.Context, id int64) (*domain.Plan, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.plans {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeClients struct {
	mu         sync.Mutex
	clients    map[int64]*domain.Client
	getErr     error
	created    []domain.Client
	updated    []domain.Client
	registered []domain.Registration
}

func newFakeClients(clients ...domain.Client) *fakeClients {
	f := &fakeClients{clients: map[int64]*domain.Client{}}
	for i := range clients {
		c := clients[i]
		f.clients[c.ID] = &c
	}
	return f
}

func (f *fakeClients) List(context.Context) ([]domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Client, 0, len(f.clients))
	for _, c := range f.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeClients) GetByID(_ context.Context, id int64) (*domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClients) GetByNationalID(_ context.Context, nationalID string) (*domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.clients {
		if c.NationalID == nationalID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeClients) NationalIDExists(ctx context.Context, nationalID string) (bool, error) {
	_, err := f.GetByNationalID(ctx, nationalID)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeClients) Create(_ context.Context, c *domain.Client) (*domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *c)
	cp := *c
	cp.ID = int64(100 + len(f.created))
	return &cp, nil
}

func (f *fakeClients) Update(_ context.Context, id int64, c *domain.Client) (*domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, *c)
	cp := *c
	cp.ID = id
	return &cp, nil
}

func (f *fakeClients) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.clients, id)
	return nil
}

func (f *fakeClients) Register(_ context.Context, reg domain.Registration) (*domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, reg)
	c := reg.Client
	c.ID = 500
	return &c, nil
}

type fakePayments struct {
	mu       sync.Mutex
	payments []domain.Payment
	listErr  error
	created  []domain.NewPayment
	patches  []domain.PaymentPatch
	renewals []domain.RenewalRequest
	renewErr error
}

func (f *fakePayments) List(context.Context) ([]domain.Payment, error) {
	return f.payments, f.listErr
}

func (f *fakePayments) ListByClient(_ context.Context, clientID int64) ([]domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Payment
	for _, p := range f.payments {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePayments) GetByID(_ context.Context, id int64) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePayments) Create(_ context.Context, p domain.NewPayment) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	return &domain.Payment{
		ID:                900,
		ClientID:          p.ClientID,
		EnrollmentID:      p.EnrollmentID,
		Amount:            p.Amount,
		PaidAt:            p.PaidAt,
		Method:            p.Method,
		State:             p.State,
		IncludesAnnualFee: p.IncludesAnnualFee,
	}, nil
}

// Update answers with a bare record, as the backend does.
func (f *fakePayments) Update(_ context.Context, id int64, patch domain.PaymentPatch) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patch)
	for _, p := range f.payments {
		if p.ID != id {
			continue
		}
		out := domain.Payment{ID: id, ClientID: p.ClientID, Amount: p.Amount, State: p.State, Notes: p.Notes}
		if patch.Amount != nil {
			out.Amount = *patch.Amount
		}
		if patch.State != "" {
			out.State = patch.State
		}
		if patch.Notes != nil {
			out.Notes = *patch.Notes
		}
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakePayments) Delete(context.Context, int64) error { return nil }

func (f *fakePayments) Renew(_ context.Context, req domain.RenewalRequest) (*domain.RenewalResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.renewErr != nil {
		return nil, f.renewErr
	}
	f.renewals = append(f.renewals, req)
	return &domain.RenewalResult{
		Message: "Plan renovado",
		Data: domain.RenewalData{Payment: &domain.Payment{
			ID: 901, ClientID: req.ClientID, Amount: req.Amount, State: req.State,
		}},
	}, nil
}

type fakeFees struct {
	mu        sync.Mutex
	fees      []domain.MaintenanceFee
	listErr   error
	created   []domain.NewFee
	settled   []domain.FeeSettlement
	patches   []domain.FeePatch
	deleteErr error
}

func (f *fakeFees) ListByClient(_ context.Context, clientID int64) ([]domain.MaintenanceFee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.MaintenanceFee
	for _, fee := range f.fees {
		if fee.ClientID == clientID {
			out = append(out, fee)
		}
	}
	return out, nil
}

func (f *fakeFees) PendingSummary(ctx context.Context, clientID int64) (*domain.PendingFeesResponse, error) {
	fees, err := f.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	resp := &domain.PendingFeesResponse{}
	for _, fee := range fees {
		if fee.State == domain.FeePending {
			resp.Fees = append(resp.Fees, fee)
		}
	}
	resp.Count = len(resp.Fees)
	resp.HasPending = resp.Count > 0
	return resp, nil
}

func (f *fakeFees) Create(_ context.Context, fee domain.NewFee) (*domain.MaintenanceFee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, fee)
	created := domain.MaintenanceFee{
		ID: int64(700 + len(f.created)), ClientID: fee.ClientID, Year: fee.Year, Amount: fee.Amount, State: domain.FeePending,
	}
	f.fees = append(f.fees, created)
	return &created, nil
}

func (f *fakeFees) MarkPaid(_ context.Context, id int64, s domain.FeeSettlement) (*domain.MaintenanceFee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settled = append(f.settled, s)
	paidAt := s.PaidAt
	return &domain.MaintenanceFee{ID: id, State: s.State, PaidAt: &paidAt, PaymentID: &s.PaymentID}, nil
}

func (f *fakeFees) Update(_ context.Context, id int64, patch domain.FeePatch) (*domain.MaintenanceFee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patch)
	return &domain.MaintenanceFee{ID: id, State: patch.State}, nil
}

func (f *fakeFees) Delete(context.Context, int64) error {
	return f.deleteErr
}

type fakeMeasurements struct {
	mu      sync.Mutex
	latest  map[int64]domain.Measurement
	byID    map[int64]domain.Measurement
	written []domain.Measurement
}

func (f *fakeMeasurements) List(context.Context) ([]domain.Measurement, error) { return nil, nil }

func (f *fakeMeasurements) ListByClient(context.Context, int64) ([]domain.Measurement, error) {
	return nil, nil
}

func (f *fakeMeasurements) Latest(_ context.Context, clientID int64) (*domain.Measurement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.latest[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (f *fakeMeasurements) GetByID(_ context.Context, id int64) (*domain.Measurement, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (f *fakeMeasurements) Create(_ context.Context, m *domain.Measurement) (*domain.Measurement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, *m)
	cp := *m
	cp.ID = 300
	return &cp, nil
}

func (f *fakeMeasurements) Update(_ context.Context, id int64, m *domain.Measurement) (*domain.Measurement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, *m)
	cp := *m
	cp.ID = id
	return &cp, nil
}

func (f *fakeMeasurements) Delete(context.Context, int64) error { return nil }

type fakeStats struct {
	err          error
	summary      domain.DashboardSummary
	distribution []domain.PlanDistribution
	trend        domain.MonthlyTrend
	weekly       []domain.WeeklyActivity
}

func (f *fakeStats) Dashboard(context.Context) (*domain.DashboardSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := f.summary
	return &s, nil
}

func (f *fakeStats) Distribution(context.Context) ([]domain.PlanDistribution, error) {
	return f.distribution, f.err
}

func (f *fakeStats) Trend(context.Context, int) (*domain.MonthlyTrend, error) {
	if f.err != nil {
		return nil, f.err
	}
	t := f.trend
	return &t, nil
}

func (f *fakeStats) WeeklyActivity(context.Context, int, int) ([]domain.WeeklyActivity, error) {
	return f.weekly, f.err
}

func (f *fakeStats) Compare(_ context.Context, m1, m2, y1, y2 int) (*domain.MonthComparison, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.MonthComparison{Month: "Marzo", PreviousCount: 4, CurrentCount: 6, VariationPercent: 50}, nil
}

func (f *fakeStats) HealthCheck(context.Context) error { return f.err }

type fakeSnapshots struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{items: map[string][]byte{}}
}

func (f *fakeSnapshots) Put(_ context.Context, key string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.items[key] = b
	return nil
}

func (f *fakeSnapshots) Fetch(_ context.Context, key string, out any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

type fallback struct{ view, source string }

type fakeFallbacks struct {
	mu     sync.Mutex
	events []fallback
}

func (f *fakeFallbacks) IncStatsFallback(view, source string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, fallback{view, source})
}

type fakeWhatsApp struct {
	err  error
	sent []string
}

func (f *fakeWhatsApp) Status(context.Context) (*domain.WhatsAppStatus, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.WhatsAppStatus{Status: "connected", Message: "ok"}, nil
}

func (f *fakeWhatsApp) CheckConnection(context.Context) (*domain.WhatsAppConnection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.WhatsAppConnection{Connected: true, Message: "ok", Timestamp: fixedNow}, nil
}

func (f *fakeWhatsApp) Reset(context.Context) (*domain.WhatsAppResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.WhatsAppResult{Status: "success"}, nil
}

func (f *fakeWhatsApp) SendTestMessage(_ context.Context, phone string) (*domain.WhatsAppResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, phone)
	return &domain.WhatsAppResult{Status: "success"}, nil
}

type fakeStatements struct {
	created   []domain.Statement
	createErr error
}

func (f *fakeStatements) Create(_ context.Context, st *domain.Statement) (primitive.ObjectID, error) {
	if f.createErr != nil {
		return primitive.NilObjectID, f.createErr
	}
	id := primitive.NewObjectID()
	cp := *st
	cp.ID = id
	f.created = append(f.created, cp)
	return id, nil
}

func (f *fakeStatements) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Statement, error) {
	for _, st := range f.created {
		if st.ID == id {
			cp := st
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStatements) ListByClient(_ context.Context, clientID int64) ([]domain.Statement, error) {
	out := []domain.Statement{}
	for _, st := range f.created {
		if st.ClientID == clientID {
			out = append(out, st)
		}
	}
	return out, nil
}

type fakeStorage struct {
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) PutObject(_ context.Context, key, _ string, body []byte) error {
	f.objects[key] = body
	return nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.example.test/" + key + "?sig=1", nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

type fakeSessions struct {
	sessions map[string]domain.Session
	purged   []time.Time
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]domain.Session{}}
}

func (f *fakeSessions) Create(_ context.Context, s *domain.Session) error {
	f.sessions[s.SessionID] = *s
	return nil
}

func (f *fakeSessions) GetBySessionID(_ context.Context, id string) (*domain.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	if _, ok := f.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessions) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.purged = append(f.purged, before)
	var n int64
	for id, s := range f.sessions {
		if !s.ExpiresAt.After(before) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

type fakeProvider struct {
	exchanged []string
}

func (p *fakeProvider) AuthURL(state string) (string, string, error) {
	return "https://id.example.test/authorize?state=" + state, "verifier-" + state, nil
}

func (p *fakeProvider) Exchange(_ context.Context, code, verifier string) (*auth.Tokens, error) {
	p.exchanged = append(p.exchanged, code+"|"+verifier)
	return &auth.Tokens{AccessToken: "access-" + code, IDToken: "id-" + code}, nil
}

func (p *fakeProvider) Profile(idToken string) (domain.UserProfile, error) {
	return domain.UserProfile{Subject: "auth0|" + idToken, Name: "Front Desk"}, nil
}

func (p *fakeProvider) LogoutURL(returnTo string) string {
	return "https://id.example.test/v2/logout?returnTo=" + returnTo
}

// reverseSealer is a reversible stand-in for the secretbox sealer.
type reverseSealer struct{}

func (reverseSealer) Seal(b []byte) ([]byte, error) { return reverse(b), nil }

func (reverseSealer) Open(b []byte) ([]byte, error) { return reverse(b), nil }

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
