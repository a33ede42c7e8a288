package service

import (
	"context"
	"testing"

	"gymdesk/membership-app/internal/cache"
	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryFromBackendIsCached(t *testing.T) {
	stats := &fakeStats{summary: domain.DashboardSummary{ActiveClients: 42, IncomeThisMonth: dec("1250.50")}}
	snaps := newFakeSnapshots()
	obs := &fakeFallbacks{}
	svc := NewDashboardService(stats, snaps, obs, logger.Nop())

	got := svc.Summary(context.Background())
	assert.Equal(t, SourceBackend, got.Source)
	assert.False(t, got.Degraded)
	assert.Equal(t, 42, got.Data.ActiveClients)
	assert.Equal(t, "Mes Anterior", got.Data.Comparison.PreviousMonth)
	assert.Contains(t, snaps.items, cache.DashboardKey())
	assert.Empty(t, obs.events)

	stats.err = repository.ErrUnavailable
	got = svc.Summary(context.Background())
	assert.Equal(t, SourceCache, got.Source)
	assert.True(t, got.Degraded)
	assert.Equal(t, 42, got.Data.ActiveClients)
	assert.True(t, got.Data.IncomeThisMonth.Equal(dec("1250.50")))
	assert.Equal(t, []fallback{{"dashboard", SourceCache}}, obs.events)
}

func TestSummaryPlaceholderWithoutCache(t *testing.T) {
	obs := &fakeFallbacks{}
	svc := NewDashboardService(&fakeStats{err: repository.ErrUnavailable}, nil, obs, logger.Nop())

	got := svc.Summary(context.Background())
	assert.Equal(t, SourcePlaceholder, got.Source)
	assert.True(t, got.Degraded)
	assert.Zero(t, got.Data.ActiveClients)
	assert.Equal(t, "Mes Actual", got.Data.Comparison.CurrentMonth)
	assert.Equal(t, []fallback{{"dashboard", SourcePlaceholder}}, obs.events)
}

func TestTrendPlaceholderCoversYear(t *testing.T) {
	svc := NewDashboardService(&fakeStats{err: repository.ErrMalformedResponse}, newFakeSnapshots(), nil, logger.Nop())

	got := svc.Trend(context.Background(), 2025)
	assert.True(t, got.Degraded)
	require.Len(t, got.Data.Months, 12)
	assert.Equal(t, "Ene", got.Data.Months[0])
	assert.Equal(t, "Dic", got.Data.Months[11])
	assert.Len(t, got.Data.Clients, 12)
	assert.True(t, got.Data.Income[5].IsZero())
}

func TestCompleteDashboardNeverFails(t *testing.T) {
	useClock(t, fixedNow)
	svc := NewDashboardService(&fakeStats{err: repository.ErrUnavailable}, nil, nil, logger.Nop())

	b := svc.Complete(context.Background())
	require.NotNil(t, b.Summary)
	require.NotNil(t, b.Distribution)
	require.NotNil(t, b.Trend)
	require.NotNil(t, b.Activity)
	assert.NotNil(t, b.Distribution.Data)
	assert.Empty(t, b.Activity.Data)
	assert.True(t, b.Trend.Degraded)
}

func TestRefreshSnapshots(t *testing.T) {
	useClock(t, fixedNow)
	snaps := newFakeSnapshots()
	stats := &fakeStats{
		distribution: []domain.PlanDistribution{{PlanName: "Mensual", Count: 3, Percent: 100}},
		weekly:       []domain.WeeklyActivity{{Activity: "Pesas", Week1: 2}},
	}
	svc := NewDashboardService(stats, snaps, nil, logger.Nop())

	require.NoError(t, svc.RefreshSnapshots(context.Background()))
	assert.Contains(t, snaps.items, cache.DashboardKey())
	assert.Contains(t, snaps.items, cache.DistributionKey())
	assert.Contains(t, snaps.items, cache.TrendKey(2025))
	assert.Contains(t, snaps.items, cache.WeeklyKey(3, 2025))

	stats.err = repository.ErrUnavailable
	err := svc.RefreshSnapshots(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard")
	assert.Contains(t, err.Error(), "weekly")

	weekly := svc.Weekly(context.Background(), 3, 2025)
	assert.Equal(t, SourceCache, weekly.Source)
	require.Len(t, weekly.Data, 1)
	assert.Equal(t, "Pesas", weekly.Data[0].Activity)
}

func TestHealth(t *testing.T) {
	svc := NewDashboardService(&fakeStats{}, nil, nil, logger.Nop())
	assert.True(t, svc.Health(context.Background()).Available)

	svc = NewDashboardService(&fakeStats{err: repository.ErrUnavailable}, nil, nil, logger.Nop())
	h := svc.Health(context.Background())
	assert.False(t, h.Available)
	assert.NotEmpty(t, h.Message)
}
