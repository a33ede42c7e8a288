package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// The types below are request bodies sent to the backend.

type NewPayment struct {
	ClientID          int64            `json:"idCliente"`
	EnrollmentID      *int64           `json:"idInscripcion,omitempty"`
	Amount            decimal.Decimal  `json:"monto"`
	PaidAt            time.Time        `json:"fechaPago"`
	Method            PaymentMethod    `json:"metodoPago"`
	State             PaymentState     `json:"estado"`
	Reference         string           `json:"referencia,omitempty"`
	Notes             string           `json:"observaciones,omitempty"`
	IncludesAnnualFee bool             `json:"incluyeAnualidad"`
	AnnualFeeAmount   *decimal.Decimal `json:"montoAnualidad,omitempty"`
	FeeIDs            []int64          `json:"idsCuotas,omitempty"`
}

type PaymentPatch struct {
	Amount    *decimal.Decimal `json:"monto,omitempty"`
	State     PaymentState     `json:"estado,omitempty"`
	Method    PaymentMethod    `json:"metodoPago,omitempty"`
	Reference *string          `json:"referencia,omitempty"`
	Notes     *string          `json:"observaciones,omitempty"`
}

// RenewalRequest is the renewal contract. FeeIDs lists exactly the
// maintenance fees settled by this transaction.
type RenewalRequest struct {
	ClientID          int64           `json:"idCliente"`
	PlanID            int64           `json:"idPlan"`
	Method            PaymentMethod   `json:"metodoPago"`
	Amount            decimal.Decimal `json:"monto"`
	State             PaymentState    `json:"estado"`
	StartDate         Day             `json:"fechaInicio"`
	Reference         string          `json:"referencia,omitempty"`
	Notes             string          `json:"observaciones,omitempty"`
	IncludesAnnualFee bool            `json:"incluyeAnualidad"`
	PaysPendingFees   bool            `json:"pagaCuotasPendientes"`
	FeeIDs            []int64         `json:"idsCuotas"`
}

type RenewalData struct {
	Client     *Client     `json:"cliente,omitempty"`
	Enrollment *Enrollment `json:"inscripcion,omitempty"`
	Plan       *Plan       `json:"plan,omitempty"`
	Payment    *Payment    `json:"pago,omitempty"`
}

type RenewalResult struct {
	Message string      `json:"mensaje"`
	Data    RenewalData `json:"datos"`
}

type NewFee struct {
	ClientID int64           `json:"idCliente"`
	Year     int             `json:"anio"`
	Amount   decimal.Decimal `json:"monto"`
	Notes    string          `json:"observaciones,omitempty"`
}

type FeeSettlement struct {
	PaymentID int64     `json:"idPago"`
	State     FeeState  `json:"estado"`
	PaidAt    time.Time `json:"fechaPago"`
}

type FeePatch struct {
	Amount *decimal.Decimal `json:"monto,omitempty"`
	State  FeeState         `json:"estado,omitempty"`
	Notes  *string          `json:"observaciones,omitempty"`
}

type RegistrationEnrollment struct {
	PlanID    int64 `json:"idPlan"`
	StartDate Day   `json:"fechaInicio"`
	EndDate   Day   `json:"fechaFin"`
}

type RegistrationPayment struct {
	Amount            decimal.Decimal  `json:"monto"`
	Method            PaymentMethod    `json:"metodoPago,omitempty"`
	State             PaymentState     `json:"estado"`
	Reference         string           `json:"referencia,omitempty"`
	Notes             string           `json:"observaciones,omitempty"`
	IncludesAnnualFee bool             `json:"incluyeAnualidad"`
	AnnualFeeAmount   *decimal.Decimal `json:"montoAnualidad,omitempty"`
}

type RegistrationFee struct {
	PayNow bool   `json:"pagarAhora"`
	Notes  string `json:"observaciones,omitempty"`
}

// Registration creates a client with its first measurement, enrollment and
// payment in one backend transaction.
type Registration struct {
	Client         Client                 `json:"cliente"`
	Measurement    Measurement            `json:"medidas"`
	Enrollment     RegistrationEnrollment `json:"inscripcion"`
	Payment        RegistrationPayment    `json:"pago"`
	MaintenanceFee RegistrationFee        `json:"cuotaMantenimiento"`
}
