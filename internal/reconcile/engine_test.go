package reconcile

import (
	"testing"
	"time"

	"gymdesk/membership-app/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func paymentWithPlan(price, amount string) domain.Payment {
	return domain.Payment{
		ID:     1,
		Amount: dec(amount),
		PaidAt: now,
		State:  domain.PaymentPending,
		Enrollment: &domain.Enrollment{
			ID:   7,
			Plan: &domain.Plan{ID: 3, Name: "Mensual", DurationMonths: 1, Price: dec(price)},
		},
	}
}

func TestExpectedPlanTotal(t *testing.T) {
	p := paymentWithPlan("30", "0")
	assertDecimal(t, "30", ExpectedPlanTotal(p))

	p.IncludesAnnualFee = true
	p.AnnualFeeAmount = dec("10")
	assertDecimal(t, "40", ExpectedPlanTotal(p))

	// the amount is ignored unless the flag is set
	p.IncludesAnnualFee = false
	assertDecimal(t, "30", ExpectedPlanTotal(p))
}

func TestExpectedPlanTotalBundledFees(t *testing.T) {
	for _, withAnnual := range []bool{false, true} {
		p := paymentWithPlan("30", "0")
		p.IncludesAnnualFee = withAnnual
		p.AnnualFeeAmount = dec("10")
		before := ExpectedPlanTotal(p)

		p.MaintenanceFees = []domain.MaintenanceFee{{Amount: dec("10")}}
		assertDecimal(t, before.Add(dec("10")).String(), ExpectedPlanTotal(p))
	}
}

func TestExpectedPlanTotalWithoutPlan(t *testing.T) {
	assertDecimal(t, "0", ExpectedPlanTotal(domain.Payment{Amount: dec("25")}))

	p := domain.Payment{Enrollment: &domain.Enrollment{ID: 1}}
	p.MaintenanceFees = []domain.MaintenanceFee{{Amount: dec("10")}}
	assertDecimal(t, "0", ExpectedPlanTotal(p))
}

func TestCompletionState(t *testing.T) {
	p := paymentWithPlan("30", "0")
	p.IncludesAnnualFee = true
	p.AnnualFeeAmount = dec("10")

	assert.Equal(t, domain.PaymentCompleted, CompletionState(dec("40"), p))
	assert.Equal(t, domain.PaymentCompleted, CompletionState(dec("40.00"), p))
	assert.Equal(t, domain.PaymentCompleted, CompletionState(dec("55"), p))
	assert.Equal(t, domain.PaymentPending, CompletionState(dec("39.99"), p))
	assert.Equal(t, domain.PaymentPending, CompletionState(decimal.Zero, p))
}

func TestRemainingBalanceNeverNegative(t *testing.T) {
	tests := []struct {
		name   string
		price  string
		amount string
		want   string
	}{
		{"unpaid", "30", "0", "30"},
		{"partial", "30", "12.50", "17.50"},
		{"exact", "30", "30", "0"},
		{"overpaid", "30", "45", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemainingBalance(paymentWithPlan(tt.price, tt.amount))
			assert.False(t, got.IsNegative())
			assertDecimal(t, tt.want, got)
		})
	}
	assertDecimal(t, "0", RemainingBalance(domain.Payment{Amount: dec("5")}))
}

func TestMinimumRenewalAmount(t *testing.T) {
	plan := domain.Plan{ID: 3, Price: dec("30")}
	fees := []domain.MaintenanceFee{
		{ID: 1, Year: 2023, Amount: dec("10"), State: domain.FeePending},
		{ID: 2, Year: 2024, Amount: dec("10"), State: domain.FeePending},
		{ID: 3, Year: 2022, Amount: dec("10"), State: domain.FeePaid},
	}

	got := MinimumRenewalAmount(fees, plan, false)
	assertDecimal(t, "50", got.Minimum)
	assertDecimal(t, "30", got.Breakdown.Plan)
	assertDecimal(t, "0", got.Breakdown.AnnualFee)
	assertDecimal(t, "20", got.Breakdown.PendingFees)
	assert.Equal(t, 2, got.PendingCount)

	withFee := MinimumRenewalAmount(fees, plan, true)
	assertDecimal(t, "60", withFee.Minimum)
	assertDecimal(t, "10", withFee.Breakdown.AnnualFee)

	none := MinimumRenewalAmount(nil, plan, false)
	assertDecimal(t, "30", none.Minimum)
	assert.Zero(t, none.PendingCount)
}

func endingIn(d time.Duration) *domain.Enrollment {
	end := now.Add(d)
	return &domain.Enrollment{ID: 1, StartDate: end.AddDate(0, -1, 0), EndDate: &end}
}

func TestCanRenew(t *testing.T) {
	tests := []struct {
		name    string
		e       *domain.Enrollment
		allowed bool
		reason  RenewalReason
		days    int
	}{
		{"six days left", endingIn(6 * day), false, ReasonTooEarly, 6},
		{"five days left", endingIn(5 * day), true, ReasonAllowed, 5},
		{"a few hours past five days", endingIn(5*day + time.Hour), false, ReasonTooEarly, 6},
		{"ends today", endingIn(2 * time.Hour), true, ReasonAllowed, 1},
		{"expired ten days ago", endingIn(-10 * day), true, ReasonAllowed, -10},
		{"no enrollment", nil, false, ReasonNoActiveEnrollment, 0},
		{"no end date", &domain.Enrollment{ID: 2}, false, ReasonNoEndDate, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanRenew(tt.e, now)
			assert.Equal(t, tt.allowed, got.Allowed)
			assert.Equal(t, tt.reason, got.Reason)
			assert.Equal(t, tt.days, got.DaysRemaining)
		})
	}
}

func TestShouldApplyAnnualFee(t *testing.T) {
	enrollmentID := int64(9)
	initial := func(paidAt time.Time) domain.Payment {
		return domain.Payment{ID: 1, EnrollmentID: &enrollmentID, PaidAt: paidAt, State: domain.PaymentCompleted}
	}

	assert.True(t, ShouldApplyAnnualFee(nil, true, now))
	assert.True(t, ShouldApplyAnnualFee([]domain.Payment{}, false, now))
	assert.True(t, ShouldApplyAnnualFee([]domain.Payment{initial(now.AddDate(0, -1, 0))}, true, now))

	assert.False(t, ShouldApplyAnnualFee([]domain.Payment{initial(now.AddDate(0, -1, 0))}, false, now))
	assert.True(t, ShouldApplyAnnualFee([]domain.Payment{initial(now.AddDate(0, -13, 0))}, false, now))

	renewal := initial(now.AddDate(0, -2, 0))
	renewal.IsRenewal = true
	assert.True(t, ShouldApplyAnnualFee([]domain.Payment{renewal}, false, now), "plain renewal carries no fee")

	renewal.IncludesAnnualFee = true
	assert.False(t, ShouldApplyAnnualFee([]domain.Payment{renewal}, false, now))

	voided := initial(now.AddDate(0, -1, 0))
	voided.State = domain.PaymentVoided
	assert.True(t, ShouldApplyAnnualFee([]domain.Payment{voided}, false, now))
}

func TestEngineIsIdempotent(t *testing.T) {
	p := paymentWithPlan("30", "35")
	p.IncludesAnnualFee = true
	p.AnnualFeeAmount = dec("10")
	fees := []domain.MaintenanceFee{{ID: 1, Amount: dec("10"), State: domain.FeePending}}
	e := endingIn(3 * day)

	first := []any{ExpectedPlanTotal(p), RemainingBalance(p), CompletionState(p.Amount, p),
		MinimumRenewalAmount(fees, *p.Plan(), true), CanRenew(e, now), ShouldApplyAnnualFee([]domain.Payment{p}, false, now)}
	second := []any{ExpectedPlanTotal(p), RemainingBalance(p), CompletionState(p.Amount, p),
		MinimumRenewalAmount(fees, *p.Plan(), true), CanRenew(e, now), ShouldApplyAnnualFee([]domain.Payment{p}, false, now)}
	require.Equal(t, first, second)
}
