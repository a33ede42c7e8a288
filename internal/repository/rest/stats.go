package rest

import (
	"context"
	"net/url"
	"strconv"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/repository"
)

const statsPath = "/estadisticas"

type statsRepository struct {
	client *Client
}

func NewStatsRepository(client *Client) repository.StatsRepository {
	return &statsRepository{client: client}
}

func (r *statsRepository) Dashboard(ctx context.Context) (*domain.DashboardSummary, error) {
	var summary domain.DashboardSummary
	if err := r.client.get(ctx, statsPath+"/dashboard", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *statsRepository) Distribution(ctx context.Context) ([]domain.PlanDistribution, error) {
	var dist []domain.PlanDistribution
	if err := r.client.get(ctx, statsPath+"/distribucion-membresias", nil, &dist); err != nil {
		return nil, err
	}
	return dist, nil
}

func (r *statsRepository) Trend(ctx context.Context, year int) (*domain.MonthlyTrend, error) {
	var trend domain.MonthlyTrend
	q := url.Values{"anio": {strconv.Itoa(year)}}
	if err := r.client.get(ctx, statsPath+"/tendencia-clientesingresos", q, &trend); err != nil {
		return nil, err
	}
	return &trend, nil
}

func (r *statsRepository) WeeklyActivity(ctx context.Context, month, year int) ([]domain.WeeklyActivity, error) {
	var activity []domain.WeeklyActivity
	q := url.Values{
		"mes":  {strconv.Itoa(month)},
		"anio": {strconv.Itoa(year)},
	}
	if err := r.client.get(ctx, statsPath+"/actividades-semanales", q, &activity); err != nil {
		return nil, err
	}
	return activity, nil
}

func (r *statsRepository) Compare(ctx context.Context, month1, month2, year1, year2 int) (*domain.MonthComparison, error) {
	var cmp domain.MonthComparison
	q := url.Values{
		"mes1":  {strconv.Itoa(month1)},
		"mes2":  {strconv.Itoa(month2)},
		"anio1": {strconv.Itoa(year1)},
		"anio2": {strconv.Itoa(year2)},
	}
	if err := r.client.get(ctx, statsPath+"/comparativa-mensual", q, &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

// HealthCheck succeeds when the statistics endpoint answers 2xx.
func (r *statsRepository) HealthCheck(ctx context.Context) error {
	return r.client.get(ctx, statsPath+"/health-check", nil, nil)
}
