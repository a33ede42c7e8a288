// Package bodymetrics derives BMI and weight category from a measurement and
// flags readings that look like typing mistakes.
package bodymetrics

import (
	"fmt"

	"gymdesk/membership-app/internal/domain"

	"github.com/shopspring/decimal"
)

// Weight categories, as stored by the backend.
const (
	CategoryUnderweight = "Bajo peso"
	CategoryNormal      = "Normal"
	CategoryOverweight  = "Sobrepeso"
	CategoryObese       = "Obesidad"
)

// Reading is a computed BMI with its category.
type Reading struct {
	BMI      float64 `json:"imc"`
	Category string  `json:"categoriaPeso"`
}

// Compute returns the BMI for weight in kg and height in metres or
// centimetres. Heights above 3 are taken as centimetres. ok is false when
// either value is missing or not positive.
func Compute(weight, height float64) (r Reading, ok bool) {
	if weight <= 0 || height <= 0 {
		return Reading{}, false
	}
	metres := height
	if height > 3 {
		metres = height / 100
	}
	bmi := weight / (metres * metres)

	switch {
	case bmi < 18.5:
		r.Category = CategoryUnderweight
	case bmi < 25:
		r.Category = CategoryNormal
	case bmi < 30:
		r.Category = CategoryOverweight
	default:
		r.Category = CategoryObese
	}
	r.BMI = decimal.NewFromFloat(bmi).Round(2).InexactFloat64()
	return r, true
}

// Apply recomputes BMI and category on m. Both are cleared when weight or
// height is missing.
func Apply(m *domain.Measurement) {
	m.BMI = nil
	m.WeightCategory = ""
	if m.Weight == nil || m.Height == nil {
		return
	}
	r, ok := Compute(*m.Weight, *m.Height)
	if !ok {
		return
	}
	bmi := r.BMI
	m.BMI = &bmi
	m.WeightCategory = r.Category
}

// Warning flags a value outside its plausible range. Warnings never block a
// write.
type Warning struct {
	Field   string  `json:"field"`
	Value   float64 `json:"value"`
	Message string  `json:"message"`
}

type bounds struct {
	field    string
	min, max float64
	unit     string
	value    func(domain.Measurement) *float64
}

var plausible = []bounds{
	{"peso", 20, 300, "kg", func(m domain.Measurement) *float64 { return m.Weight }},
	{"altura", 50, 250, "cm", func(m domain.Measurement) *float64 { return m.Height }},
	{"brazos", 15, 60, "cm", func(m domain.Measurement) *float64 { return m.Arms }},
	{"pantorrillas", 20, 80, "cm", func(m domain.Measurement) *float64 { return m.Calves }},
	{"gluteo", 60, 200, "cm", func(m domain.Measurement) *float64 { return m.Glutes }},
	{"muslos", 30, 100, "cm", func(m domain.Measurement) *float64 { return m.Thighs }},
	{"pecho", 60, 200, "cm", func(m domain.Measurement) *float64 { return m.Chest }},
	{"cintura", 40, 200, "cm", func(m domain.Measurement) *float64 { return m.Waist }},
	{"cuello", 20, 60, "cm", func(m domain.Measurement) *float64 { return m.Neck }},
}

// Warnings lists the fields of m that fall outside typical adult ranges.
func Warnings(m domain.Measurement) []Warning {
	var out []Warning
	for _, b := range plausible {
		v := b.value(m)
		if v == nil || *v == 0 {
			continue
		}
		if *v < b.min || *v > b.max {
			out = append(out, Warning{
				Field:   b.field,
				Value:   *v,
				Message: fmt.Sprintf("%s of %.1f %s is outside the usual %.0f-%.0f %s range", b.field, *v, b.unit, b.min, b.max, b.unit),
			})
		}
	}
	return out
}
