package api

import (
	"net/http"

	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/service"
	"gymdesk/membership-app/internal/validation"

	"github.com/gin-gonic/gin"
)

type MeasurementHandler struct {
	measurementService service.MeasurementService
	log                *logger.Logger
}

func NewMeasurementHandler(measurementService service.MeasurementService, log *logger.Logger) *MeasurementHandler {
	return &MeasurementHandler{measurementService: measurementService, log: log}
}

// ListMeasurements godoc
// @Summary List measurements
// @Tags Measurements
// @Produce json
// @Success 200 {array} domain.Measurement
// @Router /api/v1/medidas [get]
func (h *MeasurementHandler) ListMeasurements(c *gin.Context) {
	measurements, err := h.measurementService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, measurements)
}

// ListClientMeasurements godoc
// @Summary List a client's measurements
// @Tags Measurements
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {array} domain.Measurement
// @Router /api/v1/clientes/{id}/medidas [get]
func (h *MeasurementHandler) ListClientMeasurements(c *gin.Context) {
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	measurements, err := h.measurementService.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, measurements)
}

// LatestMeasurement godoc
// @Summary Latest measurement of a client
// @Tags Measurements
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {object} domain.Measurement
// @Success 204 "Client has no measurements"
// @Router /api/v1/clientes/{id}/medidas/ultima [get]
func (h *MeasurementHandler) LatestMeasurement(c *gin.Context) {
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	measurement, err := h.measurementService.Latest(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if measurement == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, measurement)
}

// GetMeasurement godoc
// @Summary Get measurement
// @Tags Measurements
// @Produce json
// @Param id path int true "Measurement ID"
// @Success 200 {object} domain.Measurement
// @Failure 404 {object} gin.H "Measurement not found"
// @Router /api/v1/medidas/{id} [get]
func (h *MeasurementHandler) GetMeasurement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	measurement, err := h.measurementService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, measurement)
}

// CreateMeasurement godoc
// @Summary Record a measurement
// @Description Derives BMI, body fat and muscle mass and reports implausible values as warnings.
// @Tags Measurements
// @Accept json
// @Produce json
// @Param measurement body validation.MeasurementForm true "Measurement"
// @Success 201 {object} service.MeasurementResult
// @Failure 400 {object} gin.H "Validation error"
// @Router /api/v1/medidas [post]
func (h *MeasurementHandler) CreateMeasurement(c *gin.Context) {
	var form validation.MeasurementForm
	if !bindJSON(c, &form) {
		return
	}
	result, err := h.measurementService.Create(c.Request.Context(), form)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// UpdateMeasurement godoc
// @Summary Edit a measurement
// @Tags Measurements
// @Accept json
// @Produce json
// @Param id path int true "Measurement ID"
// @Param measurement body validation.MeasurementForm true "Measurement"
// @Success 200 {object} service.MeasurementResult
// @Router /api/v1/medidas/{id} [put]
func (h *MeasurementHandler) UpdateMeasurement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var form validation.MeasurementForm
	if !bindJSON(c, &form) {
		return
	}
	result, err := h.measurementService.Update(c.Request.Context(), id, form)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteMeasurement godoc
// @Summary Delete a measurement
// @Tags Measurements
// @Param id path int true "Measurement ID"
// @Success 204 "No Content"
// @Router /api/v1/medidas/{id} [delete]
func (h *MeasurementHandler) DeleteMeasurement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.measurementService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
