package domain

import "time"

// Measurement is a snapshot of a client's body metrics. BMI and WeightCategory
// are derived from weight and height whenever the record is written.
type Measurement struct {
	ID             int64      `json:"idMedida,omitempty" validate:"required"`
	ClientID       int64      `json:"idCliente,omitempty"`
	Weight         *float64   `json:"peso,omitempty"`
	Height         *float64   `json:"altura,omitempty"`
	Arms           *float64   `json:"brazos,omitempty"`
	Calves         *float64   `json:"pantorrillas,omitempty"`
	Neck           *float64   `json:"cuello,omitempty"`
	Thighs         *float64   `json:"muslos,omitempty"`
	Chest          *float64   `json:"pecho,omitempty"`
	Waist          *float64   `json:"cintura,omitempty"`
	Glutes         *float64   `json:"gluteo,omitempty"`
	BMI            *float64   `json:"imc,omitempty"`
	WeightCategory string     `json:"categoriaPeso,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}
