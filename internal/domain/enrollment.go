package domain

import "time"

// Enrollment (inscripción) is the time-boxed link between a client and a plan.
type Enrollment struct {
	ID        int64      `json:"idInscripcion" validate:"required"`
	ClientID  int64      `json:"idCliente,omitempty"`
	PlanID    int64      `json:"idPlan,omitempty"`
	StartDate time.Time  `json:"fechaInicio"`
	EndDate   *time.Time `json:"fechaFin,omitempty"`
	Plan      *Plan      `json:"plan,omitempty"`
}
