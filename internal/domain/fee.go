package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type FeeState string

const (
	FeePending FeeState = "Pendiente"
	FeePaid    FeeState = "Pagada"
)

// DefaultFeeAmount is the fixed yearly maintenance fee.
var DefaultFeeAmount = decimal.NewFromInt(10)

// MaintenanceFee (cuota de mantenimiento) is the yearly billing item of a
// client. At most one exists per client and year.
type MaintenanceFee struct {
	ID        int64           `json:"idCuota" validate:"required"`
	ClientID  int64           `json:"idCliente"`
	Year      int             `json:"anio"`
	Amount    decimal.Decimal `json:"monto"`
	State     FeeState        `json:"estado"`
	DueDate   *time.Time      `json:"fechaVencimiento,omitempty"`
	PaidAt    *time.Time      `json:"fechaPago,omitempty"`
	PaymentID *int64          `json:"idPago,omitempty"`
	Notes     string          `json:"observaciones,omitempty"`
}

// PendingFeesResponse mirrors the backend's has-pending summary.
type PendingFeesResponse struct {
	HasPending bool             `json:"tienePendientes"`
	Count      int              `json:"cantidad"`
	Fees       []MaintenanceFee `json:"cuotas,omitempty"`
}
