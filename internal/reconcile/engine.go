// Package reconcile holds the membership payment reconciliation rules: what a
// payment is expected to cover, whether it covers it, what a renewal must
// collect, and how membership status follows from enrollments.
//
// Every function is pure. The current time is always passed in by the caller.
package reconcile

import (
	"time"

	"gymdesk/membership-app/internal/domain"

	"github.com/shopspring/decimal"
)

// AnnualFee is the fixed charge added to a renewal when the annual fee applies.
var AnnualFee = decimal.NewFromInt(10)

// RenewalWindowDays is how close to expiry an enrollment must be before it can
// be renewed.
const RenewalWindowDays = 5

const day = 24 * time.Hour

// ExpectedPlanTotal is the amount a payment must reach to be complete: the plan
// price, the annual fee when flagged, and any maintenance fees bundled on this
// same payment. A payment without a resolvable plan expects nothing.
func ExpectedPlanTotal(p domain.Payment) decimal.Decimal {
	plan := p.Plan()
	if plan == nil {
		return decimal.Zero
	}
	total := plan.Price
	if p.IncludesAnnualFee {
		total = total.Add(p.AnnualFeeAmount)
	}
	for _, fee := range p.MaintenanceFees {
		total = total.Add(fee.Amount)
	}
	return total
}

// RemainingBalance is what is still owed on p. Never negative.
func RemainingBalance(p domain.Payment) decimal.Decimal {
	remaining := ExpectedPlanTotal(p).Sub(p.Amount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// CompletionState reports whether candidate would settle p.
func CompletionState(candidate decimal.Decimal, p domain.Payment) domain.PaymentState {
	if candidate.GreaterThanOrEqual(ExpectedPlanTotal(p)) {
		return domain.PaymentCompleted
	}
	return domain.PaymentPending
}

// Breakdown itemises a renewal minimum.
type Breakdown struct {
	Plan        decimal.Decimal `json:"plan"`
	AnnualFee   decimal.Decimal `json:"annualFee"`
	PendingFees decimal.Decimal `json:"pendingFees"`
}

// RenewalMinimum is the least a renewal may collect.
type RenewalMinimum struct {
	Minimum      decimal.Decimal `json:"minimum"`
	Breakdown    Breakdown       `json:"breakdown"`
	PendingCount int             `json:"pendingCount"`
}

// MinimumRenewalAmount adds the plan price, the annual fee when requested and
// every pending maintenance fee found in clientFees. Paid fees are ignored.
func MinimumRenewalAmount(clientFees []domain.MaintenanceFee, plan domain.Plan, includeAnnualFee bool) RenewalMinimum {
	b := Breakdown{
		Plan:        plan.Price,
		AnnualFee:   decimal.Zero,
		PendingFees: decimal.Zero,
	}
	if includeAnnualFee {
		b.AnnualFee = AnnualFee
	}
	count := 0
	for _, fee := range clientFees {
		if fee.State != domain.FeePending {
			continue
		}
		b.PendingFees = b.PendingFees.Add(fee.Amount)
		count++
	}
	return RenewalMinimum{
		Minimum:      b.Plan.Add(b.AnnualFee).Add(b.PendingFees),
		Breakdown:    b,
		PendingCount: count,
	}
}

// RenewalReason says why CanRenew allowed or refused a renewal.
type RenewalReason string

const (
	ReasonAllowed            RenewalReason = "Allowed"
	ReasonTooEarly           RenewalReason = "TooEarly"
	ReasonNoActiveEnrollment RenewalReason = "NoActiveEnrollment"
	ReasonNoEndDate          RenewalReason = "NoEndDate"
)

// RenewalEligibility is the answer of CanRenew. DaysRemaining is signed: an
// expired enrollment reports a negative count.
type RenewalEligibility struct {
	Allowed       bool          `json:"allowed"`
	Reason        RenewalReason `json:"reasonCode"`
	DaysRemaining int           `json:"daysRemaining"`
}

// CanRenew allows renewal once the enrollment is within RenewalWindowDays of
// its end date, including after it has expired.
func CanRenew(e *domain.Enrollment, now time.Time) RenewalEligibility {
	if e == nil {
		return RenewalEligibility{Reason: ReasonNoActiveEnrollment}
	}
	if e.EndDate == nil {
		return RenewalEligibility{Reason: ReasonNoEndDate}
	}
	days := ceilDays(e.EndDate.Sub(now))
	if days > RenewalWindowDays {
		return RenewalEligibility{Reason: ReasonTooEarly, DaysRemaining: days}
	}
	return RenewalEligibility{Allowed: true, Reason: ReasonAllowed, DaysRemaining: days}
}

// ShouldApplyAnnualFee decides whether a new charge must carry the annual fee.
// New clients and clients without history always pay it; otherwise it is due
// unless a fee-bearing payment was made in the 365 days before now.
func ShouldApplyAnnualFee(past []domain.Payment, isNewClient bool, now time.Time) bool {
	if isNewClient || len(past) == 0 {
		return true
	}
	since := now.Add(-365 * day)
	for _, p := range past {
		if !feeBearing(p) {
			continue
		}
		if p.PaidAt.After(since) && !p.PaidAt.After(now) {
			return false
		}
	}
	return true
}

// feeBearing is true for an initial enrollment payment or a payment that
// carried the annual fee. Voided payments never count.
func feeBearing(p domain.Payment) bool {
	if p.State == domain.PaymentVoided {
		return false
	}
	if p.IncludesAnnualFee {
		return true
	}
	return !p.IsRenewal && (p.EnrollmentID != nil || p.Enrollment != nil)
}

// ceilDays rounds d up to whole days. Division truncates toward zero, so only
// a positive remainder needs the extra day.
func ceilDays(d time.Duration) int {
	days := d / day
	if d%day > 0 {
		days++
	}
	return int(days)
}
