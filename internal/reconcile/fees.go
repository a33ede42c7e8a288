package reconcile

import (
	"sort"
	"time"

	"gymdesk/membership-app/internal/domain"

	"github.com/shopspring/decimal"
)

// FeeSummary groups a client's maintenance fees.
type FeeSummary struct {
	Pending      []domain.MaintenanceFee `json:"pending"`
	Paid         []domain.MaintenanceFee `json:"paid"`
	TotalPending decimal.Decimal         `json:"totalPending"`
	NextDue      *domain.MaintenanceFee  `json:"nextDue,omitempty"`
}

// SummarizeFees splits fees by state, oldest year first, and totals what is
// pending. NextDue is the pending fee with the smallest year.
func SummarizeFees(fees []domain.MaintenanceFee) FeeSummary {
	s := FeeSummary{
		Pending:      []domain.MaintenanceFee{},
		Paid:         []domain.MaintenanceFee{},
		TotalPending: decimal.Zero,
	}
	for _, f := range fees {
		if f.State == domain.FeePending {
			s.Pending = append(s.Pending, f)
			s.TotalPending = s.TotalPending.Add(f.Amount)
		} else {
			s.Paid = append(s.Paid, f)
		}
	}
	byYear := func(list []domain.MaintenanceFee) func(i, j int) bool {
		return func(i, j int) bool {
			if list[i].Year != list[j].Year {
				return list[i].Year < list[j].Year
			}
			return list[i].ID < list[j].ID
		}
	}
	sort.SliceStable(s.Pending, byYear(s.Pending))
	sort.SliceStable(s.Paid, byYear(s.Paid))
	if len(s.Pending) > 0 {
		next := s.Pending[0]
		s.NextDue = &next
	}
	return s
}

// RequiresNewFeeForYear is true when no fee record exists for year, whatever
// its state.
func RequiresNewFeeForYear(fees []domain.MaintenanceFee, year int) bool {
	for _, f := range fees {
		if f.Year == year {
			return false
		}
	}
	return true
}

// NextOverdue returns the pending fee with the oldest due date that is already
// past at now, or nil.
func NextOverdue(fees []domain.MaintenanceFee, now time.Time) *domain.MaintenanceFee {
	var oldest *domain.MaintenanceFee
	for i := range fees {
		f := &fees[i]
		if f.State != domain.FeePending || f.DueDate == nil || !f.DueDate.Before(now) {
			continue
		}
		if oldest == nil || f.DueDate.Before(*oldest.DueDate) {
			oldest = f
		}
	}
	if oldest == nil {
		return nil
	}
	found := *oldest
	return &found
}

// PendingFeeIDs lists the ids of pending fees in year order.
func PendingFeeIDs(fees []domain.MaintenanceFee) []int64 {
	pending := SummarizeFees(fees).Pending
	ids := make([]int64, 0, len(pending))
	for _, f := range pending {
		ids = append(ids, f.ID)
	}
	return ids
}
