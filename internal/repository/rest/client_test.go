package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveBackendRequest(resource, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, resource+":"+outcome)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	obs := &recordingObserver{}
	return NewClient(srv.URL, time.Second, logger.Nop(), WithObserver(obs)), obs
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestPaymentDecodeCoercesNumericStrings(t *testing.T) {
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pagos/7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"idPago": "7",
			"idCliente": 12,
			"monto": "45.50",
			"fechaPago": "2025-03-01T10:00:00",
			"metodoPago": "Efectivo",
			"estado": "Pendiente",
			"incluyeAnualidad": "true",
			"montoAnualidad": null,
			"inscripcion": {
				"idInscripcion": 3,
				"fechaInicio": "2025-01-01",
				"fechaFin": "2025-04-01",
				"plan": {"idPlan": 2, "nombre": "Trimestral", "duracionMeses": "3", "precio": "30.00"}
			}
		}`)
	})

	p, err := NewPaymentRepository(client).GetByID(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), p.ID)
	assertDecimal(t, "45.5", p.Amount)
	assertDecimal(t, "0", p.AnnualFeeAmount)
	assert.True(t, p.IncludesAnnualFee)
	assert.Equal(t, domain.PaymentState("Pendiente"), p.State)
	assert.True(t, p.PaidAt.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)))

	require.NotNil(t, p.Enrollment)
	require.NotNil(t, p.Enrollment.EndDate)
	assert.True(t, p.Enrollment.EndDate.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, p.Plan())
	assert.Equal(t, 3, p.Plan().DurationMonths)
	assertDecimal(t, "30", p.Plan().Price)

	assert.Equal(t, []string{"pagos:ok"}, obs.outcomes)
}

func TestPaymentListRejectsMalformedRecord(t *testing.T) {
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"idPago": 1, "monto": 10}, {"monto": "abc"}]`)
	})

	_, err := NewPaymentRepository(client).ListByClient(context.Background(), 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrMalformedResponse)
	assert.Contains(t, obs.outcomes, "pagos:malformed")
}

func TestPaymentMissingIDIsMalformed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"monto": 10, "estado": "Completado"}`)
	})

	_, err := NewPaymentRepository(client).GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, repository.ErrMalformedResponse)
}

func TestClientListQuarantinesBadItems(t *testing.T) {
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"idCliente": 1, "nombre": "Ana", "apellido": "Paz", "cedula": "0102"},
			{"nombre": "Sin", "apellido": "Id"},
			{"idCliente": "3", "nombre": "Luis", "apellido": "Mora", "cedula": 1718}
		]`)
	})

	clients, err := NewClientRepository(client).List(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, int64(1), clients[0].ID)
	assert.Equal(t, int64(3), clients[1].ID)
	assert.Equal(t, "1718", clients[1].NationalID)
	assert.Equal(t, []string{"clientes:ok", "clientes:malformed"}, obs.outcomes)
}

func TestRenewTooEarlyIsForbidden(t *testing.T) {
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pagos/renovar", r.URL.Path)
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message": "Aún no puede renovar"}`)
	})

	_, err := NewPaymentRepository(client).Renew(context.Background(), domain.RenewalRequest{ClientID: 1, PlanID: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	var backendErr *repository.BackendError
	require.True(t, errors.As(err, &backendErr))
	assert.Equal(t, "Aún no puede renovar", backendErr.Message)
	assert.Equal(t, []string{"pagos:rejected"}, obs.outcomes)
}

func TestUnreachableBackendIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, time.Second, logger.Nop())
	_, err := NewPlanRepository(client).List(context.Background())
	assert.ErrorIs(t, err, repository.ErrUnavailable)
}

func TestRequestCarriesTokenRequestIDAndNumericAmounts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "req-9", r.Header.Get("X-Request-ID"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"monto":45.5`)
		assert.Contains(t, string(body), `"anio":2025`)
		_, _ = io.WriteString(w, `{"idCuota": 5, "idCliente": 1, "anio": 2025, "monto": "45.50", "estado": "Pendiente"}`)
	})

	ctx := WithAccessToken(context.Background(), "tok-1")
	ctx = logger.Nop().WithRequestID(ctx, "req-9")

	fee, err := NewFeeRepository(client).Create(ctx, domain.NewFee{
		ClientID: 1,
		Year:     2025,
		Amount:   decimal.RequireFromString("45.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), fee.ID)
	assert.Equal(t, domain.FeeState("Pendiente"), fee.State)
}

func TestNationalIDCheckDecodesBoolean(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/clientes/chequeoCI/0102030405", r.URL.Path)
		_, _ = io.WriteString(w, `true`)
	})

	exists, err := NewClientRepository(client).NationalIDExists(context.Background(), "0102030405")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStatsQueryParameters(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/estadisticas/comparativa-mensual":
			assert.Equal(t, "2", r.URL.Query().Get("mes1"))
			assert.Equal(t, "3", r.URL.Query().Get("mes2"))
			assert.Equal(t, "2024", r.URL.Query().Get("anio1"))
			assert.Equal(t, "2025", r.URL.Query().Get("anio2"))
			_, _ = io.WriteString(w, `{"mes": "Marzo", "cantidadAnterior": "4", "cantidadActual": 6, "variacionPorcentaje": "50"}`)
		case "/estadisticas/tendencia-clientesingresos":
			assert.Equal(t, "2025", r.URL.Query().Get("anio"))
			_, _ = io.WriteString(w, `{"meses": ["Ene", "Feb"], "clientes": [3, "4"], "ingresos": ["120.50", 80]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	repo := NewStatsRepository(client)

	cmp, err := repo.Compare(context.Background(), 2, 3, 2024, 2025)
	require.NoError(t, err)
	assert.Equal(t, 4, cmp.PreviousCount)
	assert.Equal(t, 6, cmp.CurrentCount)
	assert.InDelta(t, 50.0, cmp.VariationPercent, 0.001)

	trend, err := repo.Trend(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, trend.Clients)
	require.Len(t, trend.Income, 2)
	assertDecimal(t, "120.5", trend.Income[0])
	assertDecimal(t, "80", trend.Income[1])
}

func TestDeleteFeeNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})

	err := NewFeeRepository(client).Delete(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResourceOf(t *testing.T) {
	assert.Equal(t, "cuotas-mantenimiento", resourceOf("/cuotas-mantenimiento/cliente/4"))
	assert.Equal(t, "planes", resourceOf("/planes"))
	assert.Equal(t, "root", resourceOf("/"))
}
