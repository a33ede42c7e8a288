package api

import (
	"net/http"

	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/service"

	"github.com/gin-gonic/gin"
)

type WhatsAppHandler struct {
	whatsAppService service.WhatsAppService
	log             *logger.Logger
}

func NewWhatsAppHandler(whatsAppService service.WhatsAppService, log *logger.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{whatsAppService: whatsAppService, log: log}
}

type TestMessageRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// Status godoc
// @Summary WhatsApp session status
// @Tags WhatsApp
// @Produce json
// @Success 200 {object} service.WhatsAppStatusView
// @Router /api/v1/whatsapp/status [get]
func (h *WhatsAppHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.whatsAppService.Status(c.Request.Context()))
}

// CheckConnection godoc
// @Summary Check WhatsApp connection
// @Tags WhatsApp
// @Produce json
// @Success 200 {object} service.WhatsAppConnectionView
// @Router /api/v1/whatsapp/check-connection [get]
func (h *WhatsAppHandler) CheckConnection(c *gin.Context) {
	c.JSON(http.StatusOK, h.whatsAppService.CheckConnection(c.Request.Context()))
}

// Reset godoc
// @Summary Reset the WhatsApp session
// @Tags WhatsApp
// @Produce json
// @Success 200 {object} domain.WhatsAppResult
// @Failure 502 {object} gin.H "Backend unavailable"
// @Router /api/v1/whatsapp/reset [post]
func (h *WhatsAppHandler) Reset(c *gin.Context) {
	result, err := h.whatsAppService.Reset(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SendTestMessage godoc
// @Summary Send a WhatsApp test message
// @Tags WhatsApp
// @Accept json
// @Produce json
// @Param message body TestMessageRequest true "Recipient"
// @Success 200 {object} domain.WhatsAppResult
// @Failure 400 {object} gin.H "Invalid phone number"
// @Router /api/v1/whatsapp/test-message [post]
func (h *WhatsAppHandler) SendTestMessage(c *gin.Context) {
	var req TestMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.whatsAppService.SendTestMessage(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
