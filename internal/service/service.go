// Package service implements the console screens on top of the backend
// repositories. Every call returns a fresh view built for that request; no
// state is kept between calls.
package service

import (
	"errors"
	"strings"
	"time"

	"gymdesk/membership-app/internal/repository"
)

// Business-rule rejections surfaced to the user.
var (
	ErrTooEarlyToRenew     = errors.New("the current membership cannot be renewed yet")
	ErrRenewalNotAllowed   = errors.New("client has no enrollment that can be renewed")
	ErrAmountBelowMinimum  = errors.New("amount is below the minimum required")
	ErrDuplicateNationalID = errors.New("a client with this national ID already exists")
	ErrFeeAlreadyPaid      = errors.New("maintenance fee is already paid")
	ErrFeeAlreadyExists    = errors.New("a maintenance fee for this year already exists")
	ErrPaymentVoided       = errors.New("payment is voided")
	ErrPaymentWithoutPlan  = errors.New("payment has no plan to settle against")
	ErrFeeNotPayable       = errors.New("fee does not belong to this client or is not pending")
)

// now is the service clock. Tests replace it.
var now = func() time.Time {
	return time.Now().UTC()
}

// isNotFound reports a missing backend record.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
