package domain

import "github.com/shopspring/decimal"

// MonthlyComparison is the month-over-month block of the dashboard summary.
type MonthlyComparison struct {
	PreviousMonth    string  `json:"mesAnterior"`
	CurrentMonth     string  `json:"mesActual"`
	VariationPercent float64 `json:"variacionPorcentaje"`
}

// DashboardSummary is the headline block of the statistics screen.
type DashboardSummary struct {
	EnrolledThisMonth int               `json:"inscritosMes"`
	ActiveClients     int               `json:"clientesActivos"`
	Comparison        MonthlyComparison `json:"comparativaMensual"`
	IncomeThisMonth   decimal.Decimal   `json:"ingresosMes"`
}

type PlanDistribution struct {
	PlanName string  `json:"nombrePlan"`
	Count    int     `json:"cantidad"`
	Percent  float64 `json:"porcentaje"`
}

// MonthlyTrend holds parallel series indexed by month label.
type MonthlyTrend struct {
	Months  []string          `json:"meses"`
	Clients []int             `json:"clientes"`
	Income  []decimal.Decimal `json:"ingresos"`
}

type WeeklyActivity struct {
	Activity string `json:"nombreActividad"`
	Week1    int    `json:"semana1"`
	Week2    int    `json:"semana2"`
	Week3    int    `json:"semana3"`
	Week4    int    `json:"semana4"`
}

type MonthComparison struct {
	Month            string  `json:"mes"`
	PreviousCount    int     `json:"cantidadAnterior"`
	CurrentCount     int     `json:"cantidadActual"`
	VariationPercent float64 `json:"variacionPorcentaje"`
}
