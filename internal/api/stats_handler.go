package api

import (
	"net/http"
	"time"

	"gymdesk/membership-app/internal/service"

	"github.com/gin-gonic/gin"
)

var now = time.Now

// StatsHandler serves the dashboard. Views always answer 200; a degraded
// snapshot says where its figures came from.
type StatsHandler struct {
	dashboardService service.DashboardService
}

func NewStatsHandler(dashboardService service.DashboardService) *StatsHandler {
	return &StatsHandler{dashboardService: dashboardService}
}

// Summary godoc
// @Summary Dashboard summary
// @Tags Statistics
// @Produce json
// @Success 200 {object} service.Snapshot[domain.DashboardSummary]
// @Router /api/v1/estadisticas/dashboard [get]
func (h *StatsHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboardService.Summary(c.Request.Context()))
}

// Distribution godoc
// @Summary Clients per plan
// @Tags Statistics
// @Produce json
// @Success 200 {object} service.Snapshot[[]domain.PlanDistribution]
// @Router /api/v1/estadisticas/distribucion-planes [get]
func (h *StatsHandler) Distribution(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboardService.Distribution(c.Request.Context()))
}

// Trend godoc
// @Summary Monthly sign-ups and revenue
// @Tags Statistics
// @Produce json
// @Param anio query int false "Year, defaults to the current year"
// @Success 200 {object} service.Snapshot[domain.MonthlyTrend]
// @Router /api/v1/estadisticas/tendencia-mensual [get]
func (h *StatsHandler) Trend(c *gin.Context) {
	year, ok := queryInt(c, "anio", now().Year())
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.dashboardService.Trend(c.Request.Context(), year))
}

// Weekly godoc
// @Summary Weekly activity
// @Tags Statistics
// @Produce json
// @Param mes query int false "Month 1-12, defaults to the current month"
// @Param anio query int false "Year, defaults to the current year"
// @Success 200 {object} service.Snapshot[[]domain.WeeklyActivity]
// @Router /api/v1/estadisticas/actividad-semanal [get]
func (h *StatsHandler) Weekly(c *gin.Context) {
	today := now()
	month, ok := queryMonth(c, "mes", int(today.Month()))
	if !ok {
		return
	}
	year, ok := queryInt(c, "anio", today.Year())
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.dashboardService.Weekly(c.Request.Context(), month, year))
}

// Compare godoc
// @Summary Compare two months
// @Description Defaults to last month against this month.
// @Tags Statistics
// @Produce json
// @Param mes1 query int false "First month"
// @Param mes2 query int false "Second month"
// @Param anio1 query int false "Year of the first month"
// @Param anio2 query int false "Year of the second month"
// @Success 200 {object} service.Snapshot[domain.MonthComparison]
// @Router /api/v1/estadisticas/comparar-meses [get]
func (h *StatsHandler) Compare(c *gin.Context) {
	today := now()
	previous := today.AddDate(0, 0, -today.Day())
	month1, ok := queryMonth(c, "mes1", int(previous.Month()))
	if !ok {
		return
	}
	month2, ok := queryMonth(c, "mes2", int(today.Month()))
	if !ok {
		return
	}
	year1, ok := queryInt(c, "anio1", previous.Year())
	if !ok {
		return
	}
	year2, ok := queryInt(c, "anio2", today.Year())
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.dashboardService.Compare(c.Request.Context(), month1, month2, year1, year2))
}

// Complete godoc
// @Summary Whole dashboard
// @Description Loads every view of the statistics screen in one call.
// @Tags Statistics
// @Produce json
// @Success 200 {object} service.DashboardBundle
// @Router /api/v1/estadisticas/completo [get]
func (h *StatsHandler) Complete(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboardService.Complete(c.Request.Context()))
}

// Health godoc
// @Summary Statistics backend health
// @Tags Statistics
// @Produce json
// @Success 200 {object} service.Health
// @Failure 503 {object} service.Health
// @Router /api/v1/estadisticas/health-check [get]
func (h *StatsHandler) Health(c *gin.Context) {
	health := h.dashboardService.Health(c.Request.Context())
	if !health.Available {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	c.JSON(http.StatusOK, health)
}

func queryMonth(c *gin.Context, name string, def int) (int, bool) {
	month, ok := queryInt(c, name, def)
	if !ok {
		return 0, false
	}
	if month < 1 || month > 12 {
		abortWithError(c, http.StatusBadRequest, name+" must be between 1 and 12")
		return 0, false
	}
	return month, true
}
