package domain

import (
	"strings"
	"time"
)

// Client is a gym member and the aggregate root for enrollments and measurements.
type Client struct {
	ID           int64         `json:"idCliente,omitempty" validate:"required"`
	FirstName    string        `json:"nombre"`
	LastName     string        `json:"apellido"`
	NationalID   string        `json:"cedula"`
	Phone        string        `json:"celular,omitempty"`
	Address      string        `json:"direccion,omitempty"`
	City         string        `json:"ciudad,omitempty"`
	Country      string        `json:"pais,omitempty"`
	Email        string        `json:"correo,omitempty"`
	Occupation   Occupation    `json:"ocupacion,omitempty"`
	JobTitle     string        `json:"puestoTrabajo,omitempty"`
	BirthDate    *time.Time    `json:"fechaNacimiento,omitempty"`
	CreatedAt    *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time    `json:"updatedAt,omitempty"`
	Enrollments  []Enrollment  `json:"inscripciones,omitempty"`
	Measurements []Measurement `json:"medidas,omitempty"`
}

// FullName joins first and last name.
func (c Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// PrimaryContact returns the phone number, falling back to the email.
// The second return value is false when the client has neither.
func (c Client) PrimaryContact() (string, bool) {
	if c.Phone != "" {
		return c.Phone, true
	}
	if c.Email != "" {
		return c.Email, true
	}
	return "", false
}
