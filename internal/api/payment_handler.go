package api

import (
	"net/http"

	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/service"
	"gymdesk/membership-app/internal/validation"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentHandler struct {
	paymentService   service.PaymentService
	renewalService   service.RenewalService
	statementService service.StatementService
	log              *logger.Logger
}

func NewPaymentHandler(paymentService service.PaymentService, renewalService service.RenewalService, statementService service.StatementService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService:   paymentService,
		renewalService:   renewalService,
		statementService: statementService,
		log:              log,
	}
}

type CompletePaymentRequest struct {
	Notes string `json:"observaciones"`
}

// ListPayments godoc
// @Summary List payments
// @Tags Payments
// @Produce json
// @Success 200 {array} service.PaymentView
// @Router /api/v1/pagos [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.paymentService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// GetPayment godoc
// @Summary Get payment
// @Tags Payments
// @Produce json
// @Param id path int true "Payment ID"
// @Success 200 {object} service.PaymentView
// @Failure 404 {object} gin.H "Payment not found"
// @Router /api/v1/pagos/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	payment, err := h.paymentService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// ListClientPayments godoc
// @Summary List a client's payments
// @Description Payments newest first with the client's ledger.
// @Tags Payments
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {object} service.ClientPayments
// @Router /api/v1/clientes/{id}/pagos [get]
func (h *PaymentHandler) ListClientPayments(c *gin.Context) {
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	payments, err := h.paymentService.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// CreatePayment godoc
// @Summary Record a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment body validation.PaymentForm true "Payment"
// @Success 201 {object} service.PaymentView
// @Failure 400 {object} gin.H "Validation error"
// @Failure 422 {object} gin.H "Fee cannot be bundled"
// @Router /api/v1/pagos [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var form validation.PaymentForm
	if !bindJSON(c, &form) {
		return
	}
	payment, err := h.paymentService.Create(c.Request.Context(), form)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// UpdatePayment godoc
// @Summary Edit a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path int true "Payment ID"
// @Param payment body validation.PaymentEditForm true "Changes"
// @Success 200 {object} service.PaymentView
// @Failure 400 {object} gin.H "Validation error"
// @Failure 422 {object} gin.H "Payment is voided"
// @Router /api/v1/pagos/{id} [put]
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var form validation.PaymentEditForm
	if !bindJSON(c, &form) {
		return
	}
	payment, err := h.paymentService.Update(c.Request.Context(), id, form)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// CompletePayment godoc
// @Summary Complete a pending payment
// @Description Raises the payment to its expected total and marks it completed.
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path int true "Payment ID"
// @Param note body CompletePaymentRequest false "Note to append"
// @Success 200 {object} service.PaymentView
// @Failure 422 {object} gin.H "Payment has no plan or is voided"
// @Router /api/v1/pagos/{id}/completar [post]
func (h *PaymentHandler) CompletePayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CompletePaymentRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	payment, err := h.paymentService.Complete(c.Request.Context(), id, req.Notes)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// DeletePayment godoc
// @Summary Delete a payment
// @Tags Payments
// @Param id path int true "Payment ID"
// @Success 204 "No Content"
// @Router /api/v1/pagos/{id} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.paymentService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PreviewRenewal godoc
// @Summary Preview a renewal
// @Description Eligibility, minimum amount and dates of renewing the client's membership.
// @Tags Renewals
// @Produce json
// @Param id path int true "Client ID"
// @Param idPlan query int false "Plan to renew onto; defaults to the current plan"
// @Success 200 {object} service.RenewalPreview
// @Router /api/v1/clientes/{id}/renovacion [get]
func (h *PaymentHandler) PreviewRenewal(c *gin.Context) {
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	planID, ok := queryInt(c, "idPlan", 0)
	if !ok {
		return
	}
	preview, err := h.renewalService.Preview(c.Request.Context(), clientID, int64(planID))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// RenewMembership godoc
// @Summary Renew a membership
// @Tags Renewals
// @Accept json
// @Produce json
// @Param renewal body validation.RenewalForm true "Renewal"
// @Success 201 {object} service.RenewalOutcome
// @Failure 400 {object} gin.H "Validation error"
// @Failure 403 {object} gin.H "Too early to renew"
// @Failure 422 {object} gin.H "Amount below minimum"
// @Router /api/v1/pagos/renovar [post]
func (h *PaymentHandler) RenewMembership(c *gin.Context) {
	var form validation.RenewalForm
	if !bindJSON(c, &form) {
		return
	}
	outcome, err := h.renewalService.Submit(c.Request.Context(), form)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, outcome)
}

// ExportStatement godoc
// @Summary Export account statement
// @Description Writes the client's payment history as CSV and returns a download link.
// @Tags Statements
// @Produce json
// @Param id path int true "Client ID"
// @Success 201 {object} domain.Statement
// @Failure 502 {object} gin.H "Storage unavailable"
// @Router /api/v1/clientes/{id}/estados-cuenta [post]
func (h *PaymentHandler) ExportStatement(c *gin.Context) {
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var requestedBy string
	if active, ok := currentSession(c); ok {
		requestedBy = active.Session.User.Email
		if requestedBy == "" {
			requestedBy = active.Session.User.Subject
		}
	}
	statement, err := h.statementService.Export(c.Request.Context(), clientID, requestedBy)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, statement)
}

// ListStatements godoc
// @Summary List account statements
// @Tags Statements
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {array} domain.Statement
// @Router /api/v1/clientes/{id}/estados-cuenta [get]
func (h *PaymentHandler) ListStatements(c *gin.Context) {
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	statements, err := h.statementService.List(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, statements)
}

// GetStatement godoc
// @Summary Get account statement
// @Description Returns the statement with a fresh download link.
// @Tags Statements
// @Produce json
// @Param statementId path string true "Statement ID"
// @Success 200 {object} domain.Statement
// @Failure 404 {object} gin.H "Statement not found"
// @Router /api/v1/estados-cuenta/{statementId} [get]
func (h *PaymentHandler) GetStatement(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("statementId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid statementId format.")
		return
	}
	statement, err := h.statementService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, statement)
}
