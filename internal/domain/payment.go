package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "Efectivo"
	MethodTransfer PaymentMethod = "Transferencia"
	MethodCard     PaymentMethod = "Tarjeta"
)

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	return m == MethodCash || m == MethodTransfer || m == MethodCard
}

type PaymentState string

const (
	PaymentCompleted PaymentState = "Completado"
	PaymentPending   PaymentState = "Pendiente"
	PaymentVoided    PaymentState = "Anulado"
)

// Payment is a single monetary transaction for a client. The embedded
// Enrollment (with its Plan) is what the reconciliation engine prices against.
type Payment struct {
	ID                int64            `json:"idPago" validate:"required"`
	ClientID          int64            `json:"idCliente"`
	EnrollmentID      *int64           `json:"idInscripcion,omitempty"`
	Amount            decimal.Decimal  `json:"monto"`
	PaidAt            time.Time        `json:"fechaPago"`
	Method            PaymentMethod    `json:"metodoPago,omitempty"`
	State             PaymentState     `json:"estado"`
	Reference         string           `json:"referencia,omitempty"`
	Notes             string           `json:"observaciones,omitempty"`
	IsRenewal         bool             `json:"esRenovacion,omitempty"`
	IncludesAnnualFee bool             `json:"incluyeAnualidad,omitempty"`
	AnnualFeeAmount   decimal.Decimal  `json:"montoAnualidad"`
	MaintenanceFees   []MaintenanceFee `json:"cuotasMantenimiento,omitempty"`
	Client            *Client          `json:"cliente,omitempty"`
	Enrollment        *Enrollment      `json:"inscripcion,omitempty"`
}

// Plan resolves the plan behind the payment's enrollment, or nil.
func (p Payment) Plan() *Plan {
	if p.Enrollment == nil {
		return nil
	}
	return p.Enrollment.Plan
}
