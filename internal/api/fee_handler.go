package api

import (
	"net/http"

	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/service"
	"gymdesk/membership-app/internal/validation"

	"github.com/gin-gonic/gin"
)

type FeeHandler struct {
	feeService service.FeeService
	log        *logger.Logger
}

func NewFeeHandler(feeService service.FeeService, log *logger.Logger) *FeeHandler {
	return &FeeHandler{feeService: feeService, log: log}
}

type MarkFeePaidRequest struct {
	PaymentID int64 `json:"idPago" binding:"required"`
}

// ListClientFees godoc
// @Summary List a client's maintenance fees
// @Tags Fees
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {object} service.ClientFees
// @Router /api/v1/clientes/{id}/cuotas [get]
func (h *FeeHandler) ListClientFees(c *gin.Context) {
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	fees, err := h.feeService.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, fees)
}

// PendingFees godoc
// @Summary Pending fees of a client
// @Tags Fees
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {object} domain.PendingFeesResponse
// @Router /api/v1/clientes/{id}/cuotas/pendientes [get]
func (h *FeeHandler) PendingFees(c *gin.Context) {
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	pending, err := h.feeService.HasPending(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

// CreateFee godoc
// @Summary Create a maintenance fee
// @Tags Fees
// @Accept json
// @Produce json
// @Param fee body validation.FeeForm true "Fee"
// @Success 201 {object} domain.MaintenanceFee
// @Failure 400 {object} gin.H "Validation error"
// @Failure 409 {object} gin.H "Fee for this year already exists"
// @Router /api/v1/cuotas [post]
func (h *FeeHandler) CreateFee(c *gin.Context) {
	var form validation.FeeForm
	if !bindJSON(c, &form) {
		return
	}
	fee, err := h.feeService.Create(c.Request.Context(), form)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, fee)
}

// MarkFeePaid godoc
// @Summary Mark a fee paid
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path int true "Fee ID"
// @Param settlement body MarkFeePaidRequest true "Settling payment"
// @Success 200 {object} domain.MaintenanceFee
// @Router /api/v1/cuotas/{id}/pagar [post]
func (h *FeeHandler) MarkFeePaid(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req MarkFeePaidRequest
	if !bindJSON(c, &req) {
		return
	}
	fee, err := h.feeService.MarkPaid(c.Request.Context(), id, req.PaymentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, fee)
}

// UpdateFee godoc
// @Summary Edit a fee
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path int true "Fee ID"
// @Param fee body validation.FeeEditForm true "Changes"
// @Success 200 {object} domain.MaintenanceFee
// @Router /api/v1/cuotas/{id} [put]
func (h *FeeHandler) UpdateFee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var form validation.FeeEditForm
	if !bindJSON(c, &form) {
		return
	}
	fee, err := h.feeService.Update(c.Request.Context(), id, form)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, fee)
}

// DeleteFee godoc
// @Summary Delete a pending fee
// @Tags Fees
// @Param id path int true "Fee ID"
// @Success 204 "No Content"
// @Failure 403 {object} gin.H "Fee already paid"
// @Router /api/v1/cuotas/{id} [delete]
func (h *FeeHandler) DeleteFee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.feeService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
