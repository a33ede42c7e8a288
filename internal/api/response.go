package api

import (
	"errors"
	"net/http"
	"strconv"

	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/repository"
	"gymdesk/membership-app/internal/service"
	"gymdesk/membership-app/internal/validation"

	"github.com/gin-gonic/gin"
)

// statusOf maps service and repository errors onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, validation.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrTooEarlyToRenew),
		errors.Is(err, service.ErrRenewalNotAllowed),
		errors.Is(err, service.ErrFeeAlreadyPaid):
		return http.StatusForbidden
	case errors.Is(err, service.ErrDuplicateNationalID),
		errors.Is(err, service.ErrFeeAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrAmountBelowMinimum),
		errors.Is(err, service.ErrFeeNotPayable),
		errors.Is(err, service.ErrPaymentVoided),
		errors.Is(err, service.ErrPaymentWithoutPlan):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, repository.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrUnavailable),
		errors.Is(err, repository.ErrMalformedResponse),
		errors.Is(err, service.ErrStatementUpload),
		errors.Is(err, service.ErrStatementURL):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error", "fieldErrors"} and aborts. Internal
// errors are logged and hidden from the caller.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	_ = c.Error(err)
	code := statusOf(err)

	var verr *validation.Error
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(code, gin.H{"error": "Validation failed", "fieldErrors": verr.Fields})
		return
	}

	var berr *repository.BackendError
	switch {
	case code == http.StatusInternalServerError:
		log.Error(c.Request.Context(), "unexpected error", err)
		abortWithError(c, code, "An unexpected error occurred")
	case code == http.StatusBadGateway:
		abortWithError(c, code, "The gym backend is unavailable, try again later")
	case errors.As(err, &berr) && berr.Message != "":
		abortWithError(c, code, berr.Message)
	default:
		abortWithError(c, code, err.Error())
	}
}

// bindJSON decodes the request body into req, answering 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(err)
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// pathID parses a positive numeric path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return 0, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to def when absent.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" query parameter.")
		return 0, false
	}
	return v, true
}
