package reconcile

import (
	"time"

	"gymdesk/membership-app/internal/domain"
)

// MembershipStatus is the standing of a client derived from their enrollments.
type MembershipStatus string

const (
	StatusActive       MembershipStatus = "Active"
	StatusExpired      MembershipStatus = "Expired"
	StatusNoMembership MembershipStatus = "NoMembership"
)

// Label is the text shown next to a client.
func (s MembershipStatus) Label() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusExpired:
		return "Expired"
	default:
		return "No membership"
	}
}

// Membership is the derived membership state of a client at a point in time.
type Membership struct {
	Status        MembershipStatus   `json:"status"`
	Label         string             `json:"label"`
	DaysRemaining int                `json:"daysRemaining"`
	Enrollment    *domain.Enrollment `json:"activeEnrollment,omitempty"`
}

// ActiveEnrollment picks the enrollment with the latest end date, breaking
// ties by the higher id. Enrollments without an end date are never picked.
// The result does not depend on the order of enrollments.
func ActiveEnrollment(enrollments []domain.Enrollment) *domain.Enrollment {
	var best *domain.Enrollment
	for i := range enrollments {
		e := &enrollments[i]
		if e.EndDate == nil {
			continue
		}
		if best == nil || later(e, best) {
			best = e
		}
	}
	return best
}

func later(a, b *domain.Enrollment) bool {
	if !a.EndDate.Equal(*b.EndDate) {
		return a.EndDate.After(*b.EndDate)
	}
	return a.ID > b.ID
}

// MembershipStatusOf derives the client's membership from its enrollments.
func MembershipStatusOf(c domain.Client, now time.Time) Membership {
	e := ActiveEnrollment(c.Enrollments)
	if e == nil {
		return Membership{Status: StatusNoMembership, Label: StatusNoMembership.Label()}
	}
	m := Membership{Enrollment: e, Status: StatusExpired}
	if e.EndDate.After(now) {
		m.Status = StatusActive
	}
	m.Label = m.Status.Label()
	if days := ceilDays(e.EndDate.Sub(now)); days > 0 {
		m.DaysRemaining = days
	}
	return m
}

// PlanLabel renders "Plan (Active)" style text for lists, or "" when the
// client has no membership or the plan is unknown.
func (m Membership) PlanLabel() string {
	if m.Enrollment == nil || m.Enrollment.Plan == nil {
		return ""
	}
	return m.Enrollment.Plan.Name + " (" + m.Label + ")"
}

// AgeAt returns the completed years between birth and now.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// IsMinor reports whether a client born on birth is under 18 at now.
func IsMinor(birth, now time.Time) bool {
	return AgeAt(birth, now) < 18
}
