package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Occupation classifies a client and doubles as a plan eligibility tag.
// Values are the backend's wire values.
type Occupation string

const (
	OccupationWorker  Occupation = "Trabajo"
	OccupationStudent Occupation = "Estudiante"
	OccupationChild   Occupation = "Niño"
)

// Valid reports whether o is one of the known occupations.
func (o Occupation) Valid() bool {
	switch o {
	case OccupationWorker, OccupationStudent, OccupationChild:
		return true
	}
	return false
}

// Plan is a membership tier. It is reference data owned by the backend.
type Plan struct {
	ID             int64           `json:"idPlan" validate:"required"`
	Name           string          `json:"nombre"`
	DurationMonths int             `json:"duracionMeses"`
	Price          decimal.Decimal `json:"precio"`
	Description    string          `json:"descripcion,omitempty"`
	Tag            Occupation      `json:"tag,omitempty"`
}

// EndDateFor returns the end date of an enrollment in p starting at start.
func (p Plan) EndDateFor(start time.Time) time.Time {
	return start.AddDate(0, p.DurationMonths, 0)
}

// PlansForOccupation keeps the plans tagged for occupation. An empty
// occupation is treated as a worker.
func PlansForOccupation(plans []Plan, occupation Occupation) []Plan {
	if occupation == "" {
		occupation = OccupationWorker
	}
	eligible := make([]Plan, 0, len(plans))
	for _, p := range plans {
		if p.Tag == occupation {
			eligible = append(eligible, p)
		}
	}
	return eligible
}
