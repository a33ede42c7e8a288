package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gymdesk/membership-app/internal/auth"
	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/repository"
	"gymdesk/membership-app/internal/service"
	"gymdesk/membership-app/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// Each fake embeds its interface; calling a method the test did not
// override panics, which keeps the fakes honest about what a route touches.

type fakeSessions struct {
	service.SessionService
	live      map[string]*service.ActiveSession
	begin     *service.LoginStart
	completed *domain.Session
	signedOut []string
}

func (f *fakeSessions) Resolve(_ context.Context, sessionID string) (*service.ActiveSession, error) {
	if s, ok := f.live[sessionID]; ok {
		return s, nil
	}
	return nil, service.ErrUnauthenticated
}

func (f *fakeSessions) BeginLogin(_ context.Context, returnTo string) (*service.LoginStart, error) {
	start := *f.begin
	start.Flow.ReturnTo = returnTo
	return &start, nil
}

func (f *fakeSessions) CompleteLogin(_ context.Context, flow auth.Flow, state, _ string) (*domain.Session, error) {
	if state != flow.State {
		return nil, service.ErrStateMismatch
	}
	return f.completed, nil
}

func (f *fakeSessions) SignOut(_ context.Context, sessionID string) (string, error) {
	f.signedOut = append(f.signedOut, sessionID)
	return "https://id.example.com/v2/logout", nil
}

type fakeClients struct {
	service.ClientService
	list       *service.ClientList
	lastQuery  service.ClientQuery
	registerFn func(validation.RegistrationForm) (*service.RegistrationResult, error)
	deleteErr  error
}

func (f *fakeClients) List(_ context.Context, q service.ClientQuery) (*service.ClientList, error) {
	f.lastQuery = q
	return f.list, nil
}

func (f *fakeClients) Register(_ context.Context, form validation.RegistrationForm) (*service.RegistrationResult, error) {
	return f.registerFn(form)
}

func (f *fakeClients) Delete(context.Context, int64) error {
	return f.deleteErr
}

type fakePayments struct {
	service.PaymentService
	getErr       error
	completeNote string
}

func (f *fakePayments) Get(context.Context, int64) (*service.PaymentView, error) {
	return nil, f.getErr
}

func (f *fakePayments) Complete(_ context.Context, id int64, note string) (*service.PaymentView, error) {
	f.completeNote = note
	return &service.PaymentView{Payment: domain.Payment{ID: id, State: domain.PaymentCompleted}}, nil
}

type fakeRenewals struct {
	service.RenewalService
	submitErr error
	previewed [2]int64
}

func (f *fakeRenewals) Submit(context.Context, validation.RenewalForm) (*service.RenewalOutcome, error) {
	return nil, f.submitErr
}

func (f *fakeRenewals) Preview(_ context.Context, clientID, planID int64) (*service.RenewalPreview, error) {
	f.previewed = [2]int64{clientID, planID}
	return &service.RenewalPreview{ClientID: clientID}, nil
}

type fakeDashboard struct {
	service.DashboardService
	compared [4]int
	health   service.Health
}

func (f *fakeDashboard) Compare(_ context.Context, m1, m2, y1, y2 int) *service.Snapshot[domain.MonthComparison] {
	f.compared = [4]int{m1, m2, y1, y2}
	return &service.Snapshot[domain.MonthComparison]{Source: service.SourceBackend}
}

func (f *fakeDashboard) Health(context.Context) service.Health {
	return f.health
}

type fakeWhatsApp struct {
	service.WhatsAppService
}

func (fakeWhatsApp) Status(context.Context) service.WhatsAppStatusView {
	return service.WhatsAppStatusView{
		WhatsAppStatus: domain.WhatsAppStatus{Status: "disconnected", Message: "unreachable"},
		Degraded:       true,
	}
}

type testServer struct {
	router    *gin.Engine
	signer    *auth.CookieSigner
	sessions  *fakeSessions
	clients   *fakeClients
	payments  *fakePayments
	renewals  *fakeRenewals
	dashboard *fakeDashboard
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		signer: auth.NewCookieSigner(testSecret),
		sessions: &fakeSessions{
			live: map[string]*service.ActiveSession{
				"sess-1": {
					Session:     &domain.Session{SessionID: "sess-1", User: domain.UserProfile{Subject: "auth0|1", Email: "desk@gym.test"}},
					AccessToken: "access-token",
				},
			},
			begin: &service.LoginStart{
				RedirectURL: "https://id.example.com/authorize?state=abc",
				Flow:        auth.Flow{State: "abc", CodeVerifier: "verifier"},
			},
		},
		clients:   &fakeClients{list: &service.ClientList{Active: []service.ClientRow{}, Inactive: []service.ClientRow{}}},
		payments:  &fakePayments{},
		renewals:  &fakeRenewals{},
		dashboard: &fakeDashboard{health: service.Health{Available: true}},
	}

	router := gin.New()
	router.Use(RequestLogger(logger.Nop()))
	SetupRoutes(router, Services{
		Clients:   ts.clients,
		Payments:  ts.payments,
		Renewals:  ts.renewals,
		Dashboard: ts.dashboard,
		WhatsApp:  fakeWhatsApp{},
		Sessions:  ts.sessions,
	}, RouteOptions{Signer: ts.signer, PostLoginPath: "/clientes"}, logger.Nop())
	ts.router = router
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, signedIn bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if signedIn {
		cookie, err := ts.signer.SignSession("sess-1", time.Now().Add(time.Hour))
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPing(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/ping", "", false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", decodeBody(t, w)["message"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestSessionGuard(t *testing.T) {
	ts := newTestServer(t)

	t.Run("no cookie", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/clientes", "", false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "/auth/signin", decodeBody(t, w)["redirect"])
	})

	t.Run("tampered cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/clientes", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "not-a-token"})
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		cookie, err := ts.signer.SignSession("gone", time.Now().Add(time.Hour))
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: cookie})
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("live session", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/me", "", true)
		require.Equal(t, http.StatusOK, w.Code)
		user := decodeBody(t, w)["user"].(map[string]any)
		assert.Equal(t, "desk@gym.test", user["email"])
	})
}

func TestListClientsPassesSearch(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/v1/clientes?q=ana", "", true)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana", ts.clients.lastQuery.Search)
}

func TestRegisterClientValidationError(t *testing.T) {
	ts := newTestServer(t)
	ts.clients.registerFn = func(validation.RegistrationForm) (*service.RegistrationResult, error) {
		r := validation.Ok()
		r.Add("cliente.cedula", "is required")
		return nil, r.Err()
	}

	w := ts.do(t, http.MethodPost, "/api/v1/clientes/registro", `{"cliente":{}}`, true)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, map[string]any{"cliente.cedula": "is required"}, body["fieldErrors"])
}

func TestRegisterClientDuplicate(t *testing.T) {
	ts := newTestServer(t)
	ts.clients.registerFn = func(validation.RegistrationForm) (*service.RegistrationResult, error) {
		return nil, service.ErrDuplicateNationalID
	}

	w := ts.do(t, http.MethodPost, "/api/v1/clientes/registro", `{}`, true)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterClientMalformedBody(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/v1/clientes/registro", `{"cliente":`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteClient(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodDelete, "/api/v1/clientes/7", "", true)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/v1/clientes/abc", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPaymentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &repository.BackendError{Method: "GET", Path: "/pagos/9", StatusCode: 404}, http.StatusNotFound},
		{"backend down", repository.ErrUnavailable, http.StatusBadGateway},
		{"malformed", fmt.Errorf("decode: %w", repository.ErrMalformedResponse), http.StatusBadGateway},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.payments.getErr = tt.err
			w := ts.do(t, http.MethodGet, "/api/v1/pagos/9", "", true)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestCompletePayment(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/pagos/4/completar", `{"observaciones":"saldo en efectivo"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "saldo en efectivo", ts.payments.completeNote)

	w = ts.do(t, http.MethodPost, "/api/v1/pagos/4/completar", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, ts.payments.completeNote)
}

func TestRenewMembershipRejections(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"too early", fmt.Errorf("%w: 12 days remaining", service.ErrTooEarlyToRenew), http.StatusForbidden},
		{"below minimum", fmt.Errorf("%w: 40.00", service.ErrAmountBelowMinimum), http.StatusUnprocessableEntity},
		{"not allowed", service.ErrRenewalNotAllowed, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.renewals.submitErr = tt.err
			w := ts.do(t, http.MethodPost, "/api/v1/pagos/renovar", `{"idCliente":1}`, true)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.err.Error(), decodeBody(t, w)["error"])
		})
	}
}

func TestPreviewRenewal(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/clientes/3/renovacion?idPlan=2", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [2]int64{3, 2}, ts.renewals.previewed)

	w = ts.do(t, http.MethodGet, "/api/v1/clientes/3/renovacion", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [2]int64{3, 0}, ts.renewals.previewed)
}

func TestCompareDefaultsToLastMonth(t *testing.T) {
	original := now
	now = func() time.Time { return time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = original })

	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/v1/estadisticas/comparar-meses", "", true)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [4]int{12, 1, 2024, 2025}, ts.dashboard.compared)

	w = ts.do(t, http.MethodGet, "/api/v1/estadisticas/comparar-meses?mes1=13", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/v1/estadisticas/health-check", "", true)
	assert.Equal(t, http.StatusOK, w.Code)

	ts.dashboard.health = service.Health{Available: false, Message: "down"}
	w = ts.do(t, http.MethodGet, "/api/v1/estadisticas/health-check", "", true)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWhatsAppStatusDegraded(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/v1/whatsapp/status", "", true)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "disconnected", body["status"])
	assert.Equal(t, true, body["degraded"])
}
