package api

import (
	"net/http"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/service"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService service.PlanService
	log         *logger.Logger
}

func NewPlanHandler(planService service.PlanService, log *logger.Logger) *PlanHandler {
	return &PlanHandler{planService: planService, log: log}
}

// ListPlans godoc
// @Summary List plans
// @Description Lists every plan, or only those open to an occupation.
// @Tags Plans
// @Produce json
// @Param ocupacion query string false "Trabajo, Estudiante or Niño"
// @Success 200 {array} domain.Plan
// @Router /api/v1/planes [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	var (
		plans []domain.Plan
		err   error
	)
	if occupation := c.Query("ocupacion"); occupation != "" {
		plans, err = h.planService.ForOccupation(c.Request.Context(), domain.Occupation(occupation))
	} else {
		plans, err = h.planService.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// GetPlan godoc
// @Summary Get plan
// @Tags Plans
// @Produce json
// @Param id path int true "Plan ID"
// @Success 200 {object} domain.Plan
// @Failure 404 {object} gin.H "Plan not found"
// @Router /api/v1/planes/{id} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	plan, err := h.planService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
