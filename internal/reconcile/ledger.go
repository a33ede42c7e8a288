package reconcile

import (
	"gymdesk/membership-app/internal/domain"

	"github.com/shopspring/decimal"
)

// Assessment is the engine's view of one payment.
type Assessment struct {
	ExpectedTotal    decimal.Decimal     `json:"expectedTotal"`
	RemainingBalance decimal.Decimal     `json:"remainingBalance"`
	CompletionState  domain.PaymentState `json:"completionState"`
}

// Assess prices p against its plan.
func Assess(p domain.Payment) Assessment {
	return Assessment{
		ExpectedTotal:    ExpectedPlanTotal(p),
		RemainingBalance: RemainingBalance(p),
		CompletionState:  CompletionState(p.Amount, p),
	}
}

// Ledger summarises a client's payments.
type Ledger struct {
	Pending         []domain.Payment `json:"pending"`
	Completed       []domain.Payment `json:"completed"`
	TotalPaid       decimal.Decimal  `json:"totalPaid"`
	OutstandingDebt bool             `json:"outstandingDebt"`
	Latest          *domain.Payment  `json:"latest,omitempty"`
}

// BuildLedger groups payments by recorded state. Voided payments are left out
// of every total. Latest is the payment with the most recent payment date,
// ties going to the higher id.
func BuildLedger(payments []domain.Payment) Ledger {
	l := Ledger{
		Pending:   []domain.Payment{},
		Completed: []domain.Payment{},
		TotalPaid: decimal.Zero,
	}
	var latest *domain.Payment
	for i := range payments {
		p := &payments[i]
		switch p.State {
		case domain.PaymentVoided:
			continue
		case domain.PaymentPending:
			l.Pending = append(l.Pending, *p)
			if RemainingBalance(*p).IsPositive() {
				l.OutstandingDebt = true
			}
		default:
			l.Completed = append(l.Completed, *p)
		}
		l.TotalPaid = l.TotalPaid.Add(p.Amount)
		if latest == nil || p.PaidAt.After(latest.PaidAt) || (p.PaidAt.Equal(latest.PaidAt) && p.ID > latest.ID) {
			latest = p
		}
	}
	if latest != nil {
		found := *latest
		l.Latest = &found
	}
	return l
}
