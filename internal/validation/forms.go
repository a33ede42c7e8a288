package validation

import (
	"strconv"
	"time"

	"gymdesk/membership-app/internal/domain"

	"github.com/shopspring/decimal"
)

const minFeeYear = 2020

var maxFeeAmount = decimal.NewFromInt(100)

// ClientForm is the personal-data step of registration and the edit form.
type ClientForm struct {
	FirstName  string            `json:"nombre" validate:"required,max=100"`
	LastName   string            `json:"apellido" validate:"required,max=100"`
	NationalID string            `json:"cedula" validate:"required,min=10,max=20"`
	Phone      string            `json:"celular" validate:"required,min=10,max=20"`
	Address    string            `json:"direccion" validate:"required"`
	City       string            `json:"ciudad" validate:"required"`
	Country    string            `json:"pais" validate:"required"`
	Email      string            `json:"correo" validate:"required,email"`
	Occupation domain.Occupation `json:"ocupacion" validate:"required,oneof=Trabajo Estudiante Niño"`
	JobTitle   string            `json:"puestoTrabajo,omitempty"`
	BirthDate  domain.Day        `json:"fechaNacimiento" validate:"required"`
}

// CheckClient validates f. Workers must name their job.
func CheckClient(f ClientForm) Result {
	r := Struct(f)
	if f.Occupation == domain.OccupationWorker && f.JobTitle == "" {
		r.Add("puestoTrabajo", "is required for workers")
	}
	return r
}

// MeasurementForm carries body metrics in kg and cm.
type MeasurementForm struct {
	ClientID int64    `json:"idCliente,omitempty"`
	Weight   *float64 `json:"peso" validate:"required,gte=1,lte=300"`
	Height   *float64 `json:"altura" validate:"required,gte=30,lte=250"`
	Arms     *float64 `json:"brazos,omitempty" validate:"omitempty,gte=1,lte=200"`
	Calves   *float64 `json:"pantorrillas,omitempty" validate:"omitempty,gte=1,lte=200"`
	Glutes   *float64 `json:"gluteo,omitempty" validate:"omitempty,gte=1,lte=200"`
	Thighs   *float64 `json:"muslos,omitempty" validate:"omitempty,gte=1,lte=200"`
	Chest    *float64 `json:"pecho,omitempty" validate:"omitempty,gte=1,lte=200"`
	Waist    *float64 `json:"cintura,omitempty" validate:"omitempty,gte=1,lte=200"`
	Neck     *float64 `json:"cuello,omitempty" validate:"omitempty,gte=1,lte=100"`
}

// ForOccupation drops the circumferences children are not measured for.
func (f MeasurementForm) ForOccupation(o domain.Occupation) MeasurementForm {
	if o != domain.OccupationChild {
		return f
	}
	return MeasurementForm{ClientID: f.ClientID, Weight: f.Weight, Height: f.Height}
}

// ToMeasurement copies the form onto a measurement record.
func (f MeasurementForm) ToMeasurement() domain.Measurement {
	return domain.Measurement{
		ClientID: f.ClientID,
		Weight:   f.Weight,
		Height:   f.Height,
		Arms:     f.Arms,
		Calves:   f.Calves,
		Glutes:   f.Glutes,
		Thighs:   f.Thighs,
		Chest:    f.Chest,
		Waist:    f.Waist,
		Neck:     f.Neck,
	}
}

func CheckMeasurement(f MeasurementForm) Result {
	return Struct(f)
}

// EnrollmentForm picks the plan and start date of a registration.
type EnrollmentForm struct {
	PlanID    int64      `json:"idPlan" validate:"required"`
	StartDate domain.Day `json:"fechaInicio" validate:"required"`
}

// RegistrationPaymentForm is the payment step of registration. An empty
// amount is allowed and records a pending payment.
type RegistrationPaymentForm struct {
	Amount    decimal.Decimal      `json:"monto" validate:"gte=0"`
	Method    domain.PaymentMethod `json:"metodoPago,omitempty" validate:"omitempty,oneof=Efectivo Transferencia Tarjeta"`
	Reference string               `json:"referencia,omitempty" validate:"max=100"`
	Notes     string               `json:"observaciones,omitempty" validate:"max=150"`
}

// FeeOption says whether the current-year maintenance fee is settled at sign-up.
type FeeOption struct {
	PayNow bool   `json:"pagarAhora"`
	Notes  string `json:"observaciones,omitempty" validate:"max=150"`
}

// RegistrationForm bundles every step of a new client's sign-up.
type RegistrationForm struct {
	Client         ClientForm              `json:"cliente"`
	Measurement    MeasurementForm         `json:"medidas"`
	Enrollment     EnrollmentForm          `json:"inscripcion"`
	Payment        RegistrationPaymentForm `json:"pago"`
	MaintenanceFee FeeOption               `json:"cuotaMantenimiento"`
}

// CheckRegistration validates every step. The start date may not be before
// the date of now.
func CheckRegistration(f RegistrationForm, now time.Time) Result {
	r := Ok()
	r.Merge("cliente", CheckClient(f.Client))
	r.Merge("medidas", CheckMeasurement(f.Measurement.ForOccupation(f.Client.Occupation)))
	r.Merge("inscripcion", Struct(f.Enrollment))
	r.Merge("pago", Struct(f.Payment))
	r.Merge("cuotaMantenimiento", Struct(f.MaintenanceFee))
	if !f.Enrollment.StartDate.IsZero() && f.Enrollment.StartDate.BeforeDay(now) {
		r.Add("inscripcion.fechaInicio", "cannot be in the past")
	}
	checkCents(&r, "pago.monto", f.Payment.Amount)
	return r
}

// PaymentForm records a standalone payment.
type PaymentForm struct {
	ClientID          int64                `json:"idCliente" validate:"required"`
	EnrollmentID      *int64               `json:"idInscripcion,omitempty"`
	Amount            decimal.Decimal      `json:"monto" validate:"gte=1"`
	PaidAt            domain.Day           `json:"fechaPago"`
	Method            domain.PaymentMethod `json:"metodoPago" validate:"required,oneof=Efectivo Transferencia Tarjeta"`
	Reference         string               `json:"referencia,omitempty" validate:"max=100"`
	Notes             string               `json:"observaciones,omitempty" validate:"max=150"`
	IncludesAnnualFee bool                 `json:"incluyeAnualidad"`
	AnnualFeeAmount   decimal.Decimal      `json:"montoAnualidad"`
	FeeIDs            []int64              `json:"idsCuotas,omitempty"`
}

func CheckPayment(f PaymentForm) Result {
	r := Struct(f)
	checkCents(&r, "monto", f.Amount)
	checkAnnualFee(&r, f.IncludesAnnualFee, f.AnnualFeeAmount)
	return r
}

// PaymentEditForm changes an existing payment. Nil fields are left alone.
type PaymentEditForm struct {
	Amount    *decimal.Decimal     `json:"monto,omitempty"`
	Method    domain.PaymentMethod `json:"metodoPago,omitempty" validate:"omitempty,oneof=Efectivo Transferencia Tarjeta"`
	Reference *string              `json:"referencia,omitempty" validate:"omitempty,max=100"`
	Notes     *string              `json:"observaciones,omitempty" validate:"omitempty,max=150"`
}

// CheckPaymentEdit validates an edit against the most the payment may hold.
func CheckPaymentEdit(f PaymentEditForm, maxAmount decimal.Decimal) Result {
	r := Struct(f)
	if f.Amount != nil {
		switch {
		case f.Amount.LessThan(decimal.NewFromInt(1)):
			r.Add("monto", "must be at least 1")
		case maxAmount.IsPositive() && f.Amount.GreaterThan(maxAmount):
			r.Add("monto", "must not exceed "+maxAmount.StringFixed(2))
		}
		checkCents(&r, "monto", *f.Amount)
	}
	return r
}

// RenewalForm is the renewal submission. FeeIDs names the pending fees the
// renewal settles; when empty every pending fee is settled.
type RenewalForm struct {
	ClientID          int64                `json:"idCliente" validate:"required"`
	PlanID            int64                `json:"idPlan" validate:"required"`
	Method            domain.PaymentMethod `json:"metodoPago" validate:"required,oneof=Efectivo Transferencia Tarjeta"`
	Amount            decimal.Decimal      `json:"monto" validate:"gte=1"`
	StartDate         domain.Day           `json:"fechaInicio"`
	Reference         string               `json:"referencia,omitempty" validate:"max=100"`
	Notes             string               `json:"observaciones,omitempty" validate:"max=150"`
	IncludesAnnualFee bool                 `json:"incluyeAnualidad"`
	FeeIDs            []int64              `json:"idsCuotas,omitempty"`
}

func CheckRenewal(f RenewalForm) Result {
	r := Struct(f)
	checkCents(&r, "monto", f.Amount)
	return r
}

// FeeForm creates a maintenance fee.
type FeeForm struct {
	ClientID int64           `json:"idCliente" validate:"required"`
	Year     int             `json:"anio" validate:"required"`
	Amount   decimal.Decimal `json:"monto"`
	Notes    string          `json:"observaciones,omitempty" validate:"max=150"`
}

// CheckFee validates f. Years run from 2020 to next year.
func CheckFee(f FeeForm, now time.Time) Result {
	r := Struct(f)
	checkFeeYear(&r, f.Year, now)
	checkFeeAmount(&r, f.Amount)
	return r
}

// FeeEditForm changes an existing fee. A fee is only marked paid through a
// payment, so State may move a fee back to pending but never to paid.
type FeeEditForm struct {
	Amount *decimal.Decimal `json:"monto,omitempty"`
	State  domain.FeeState  `json:"estado,omitempty" validate:"omitempty,oneof=Pendiente Pagada"`
	Notes  *string          `json:"observaciones,omitempty" validate:"omitempty,max=150"`
}

func CheckFeeEdit(f FeeEditForm) Result {
	r := Struct(f)
	if f.State == domain.FeePaid {
		r.Add("estado", "a fee is paid by linking it to a payment")
	}
	if f.Amount != nil {
		checkFeeAmount(&r, *f.Amount)
	}
	return r
}

func checkFeeYear(r *Result, year int, now time.Time) {
	if year == 0 {
		return
	}
	if year < minFeeYear {
		r.Add("anio", "must be "+strconv.Itoa(minFeeYear)+" or later")
	}
	if next := now.Year() + 1; year > next {
		r.Add("anio", "must not be after "+strconv.Itoa(next))
	}
}

func checkFeeAmount(r *Result, amount decimal.Decimal) {
	if !amount.IsPositive() {
		r.Add("monto", "must be greater than 0")
		return
	}
	if amount.GreaterThan(maxFeeAmount) {
		r.Add("monto", "must not exceed 100")
	}
	checkCents(r, "monto", amount)
}

func checkAnnualFee(r *Result, included bool, amount decimal.Decimal) {
	if included && amount.LessThan(decimal.NewFromInt(1)) {
		r.Add("montoAnualidad", "is required when the annual fee is included")
	}
}
