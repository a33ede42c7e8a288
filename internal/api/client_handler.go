package api

import (
	"net/http"

	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/service"
	"gymdesk/membership-app/internal/validation"

	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService service.ClientService
	log           *logger.Logger
}

func NewClientHandler(clientService service.ClientService, log *logger.Logger) *ClientHandler {
	return &ClientHandler{clientService: clientService, log: log}
}

// NationalIDCheckResponse answers whether a national ID is already taken.
type NationalIDCheckResponse struct {
	NationalID string `json:"cedula"`
	Exists     bool   `json:"existe"`
}

// ListClients godoc
// @Summary List clients
// @Description Lists clients split by active membership, optionally filtered by name, national ID or phone.
// @Tags Clients
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {object} service.ClientList
// @Failure 502 {object} gin.H "Backend unavailable"
// @Router /api/v1/clientes [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	var q service.ClientQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	list, err := h.clientService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetClient godoc
// @Summary Get client detail
// @Description Returns the client with membership, payments, fees and latest measurement.
// @Tags Clients
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {object} service.ClientDetail
// @Failure 404 {object} gin.H "Client not found"
// @Router /api/v1/clientes/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.clientService.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetClientByNationalID godoc
// @Summary Find client by national ID
// @Tags Clients
// @Produce json
// @Param cedula path string true "National ID"
// @Success 200 {object} domain.Client
// @Failure 404 {object} gin.H "Client not found"
// @Router /api/v1/clientes/cedula/{cedula} [get]
func (h *ClientHandler) GetClientByNationalID(c *gin.Context) {
	client, err := h.clientService.GetByNationalID(c.Request.Context(), c.Param("cedula"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// CheckNationalID godoc
// @Summary Check national ID
// @Tags Clients
// @Produce json
// @Param cedula path string true "National ID"
// @Success 200 {object} NationalIDCheckResponse
// @Router /api/v1/clientes/chequeoCI/{cedula} [get]
func (h *ClientHandler) CheckNationalID(c *gin.Context) {
	nationalID := c.Param("cedula")
	exists, err := h.clientService.CheckNationalID(c.Request.Context(), nationalID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, NationalIDCheckResponse{NationalID: nationalID, Exists: exists})
}

// CreateClient godoc
// @Summary Create client
// @Tags Clients
// @Accept json
// @Produce json
// @Param client body validation.ClientForm true "Client data"
// @Success 201 {object} domain.Client
// @Failure 400 {object} gin.H "Validation error"
// @Failure 409 {object} gin.H "National ID already registered"
// @Router /api/v1/clientes [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var form validation.ClientForm
	if !bindJSON(c, &form) {
		return
	}
	client, err := h.clientService.Create(c.Request.Context(), form)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// RegisterClient godoc
// @Summary Register a new member
// @Description Signs up a client with first measurement, enrollment and payment.
// @Tags Clients
// @Accept json
// @Produce json
// @Param registration body validation.RegistrationForm true "Registration"
// @Success 201 {object} service.RegistrationResult
// @Failure 400 {object} gin.H "Validation error"
// @Failure 409 {object} gin.H "National ID already registered"
// @Router /api/v1/clientes/registro [post]
func (h *ClientHandler) RegisterClient(c *gin.Context) {
	var form validation.RegistrationForm
	if !bindJSON(c, &form) {
		return
	}
	result, err := h.clientService.Register(c.Request.Context(), form)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// UpdateClient godoc
// @Summary Update client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path int true "Client ID"
// @Param client body validation.ClientForm true "Client data"
// @Success 200 {object} domain.Client
// @Failure 400 {object} gin.H "Validation error"
// @Failure 404 {object} gin.H "Client not found"
// @Router /api/v1/clientes/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var form validation.ClientForm
	if !bindJSON(c, &form) {
		return
	}
	client, err := h.clientService.Update(c.Request.Context(), id, form)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient godoc
// @Summary Delete client
// @Tags Clients
// @Param id path int true "Client ID"
// @Success 204 "No Content"
// @Failure 404 {object} gin.H "Client not found"
// @Router /api/v1/clientes/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.clientService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
