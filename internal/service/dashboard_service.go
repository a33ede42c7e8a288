package service

import (
	"context"
	"fmt"

	"gymdesk/membership-app/internal/cache"
	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Sources a statistics view can be served from.
const (
	SourceBackend     = "backend"
	SourceCache       = "cache"
	SourcePlaceholder = "placeholder"
)

var monthLabels = []string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// SnapshotCache keeps the last good copy of each statistics view.
type SnapshotCache interface {
	Put(ctx context.Context, key string, v any) error
	Fetch(ctx context.Context, key string, out any) (bool, error)
}

// FallbackObserver is told whenever a view is not served by the backend.
type FallbackObserver interface {
	IncStatsFallback(view, source string)
}

// Snapshot wraps a statistics view with where it came from.
type Snapshot[T any] struct {
	Data     T      `json:"data"`
	Source   string `json:"source"`
	Degraded bool   `json:"degraded"`
}

// DashboardBundle is the whole statistics screen.
type DashboardBundle struct {
	Summary      *Snapshot[domain.DashboardSummary]  `json:"resumen"`
	Distribution *Snapshot[[]domain.PlanDistribution] `json:"distribucion"`
	Trend        *Snapshot[domain.MonthlyTrend]       `json:"tendencia"`
	Activity     *Snapshot[[]domain.WeeklyActivity]   `json:"actividad"`
}

// Health is the statistics backend's availability.
type Health struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

// DashboardService serves read-only statistics. Its views never fail: a
// backend error falls back to the cached snapshot, then to zero figures.
type DashboardService interface {
	Summary(ctx context.Context) *Snapshot[domain.DashboardSummary]
	Distribution(ctx context.Context) *Snapshot[[]domain.PlanDistribution]
	Trend(ctx context.Context, year int) *Snapshot[domain.MonthlyTrend]
	Weekly(ctx context.Context, month, year int) *Snapshot[[]domain.WeeklyActivity]
	Compare(ctx context.Context, month1, month2, year1, year2 int) *Snapshot[domain.MonthComparison]
	// Complete loads every view of the screen for the current month.
	Complete(ctx context.Context) *DashboardBundle
	Health(ctx context.Context) Health
	// RefreshSnapshots pulls the current views from the backend into the cache.
	RefreshSnapshots(ctx context.Context) error
}

type dashboardService struct {
	statsRepo repository.StatsRepository
	cache     SnapshotCache
	observer  FallbackObserver
	log       *logger.Logger
}

// NewDashboardService builds the service. cache and observer may be nil.
func NewDashboardService(statsRepo repository.StatsRepository, snapshots SnapshotCache, observer FallbackObserver, log *logger.Logger) DashboardService {
	return &dashboardService{
		statsRepo: statsRepo,
		cache:     snapshots,
		observer:  observer,
		log:       log,
	}
}

// degradable runs fetch and keeps its result under key. On failure it falls
// back to the cached copy, then to placeholder.
func degradable[T any](ctx context.Context, s *dashboardService, view, key string, fetch func(context.Context) (T, error), placeholder func() T) *Snapshot[T] {
	data, err := fetch(ctx)
	if err == nil {
		if s.cache != nil {
			if perr := s.cache.Put(ctx, key, data); perr != nil {
				s.log.Warn(ctx, "failed to cache "+view+" snapshot", perr)
			}
		}
		return &Snapshot[T]{Data: data, Source: SourceBackend}
	}
	s.log.Warn(ctx, view+" statistics unavailable, degrading", err)

	if s.cache != nil {
		var cached T
		found, ferr := s.cache.Fetch(ctx, key, &cached)
		if ferr != nil {
			s.log.Warn(ctx, "failed to read "+view+" snapshot", ferr)
		}
		if found {
			s.fellBack(view, SourceCache)
			return &Snapshot[T]{Data: cached, Source: SourceCache, Degraded: true}
		}
	}
	s.fellBack(view, SourcePlaceholder)
	return &Snapshot[T]{Data: placeholder(), Source: SourcePlaceholder, Degraded: true}
}

func (s *dashboardService) fellBack(view, source string) {
	if s.observer != nil {
		s.observer.IncStatsFallback(view, source)
	}
}

func (s *dashboardService) Summary(ctx context.Context) *Snapshot[domain.DashboardSummary] {
	return degradable(ctx, s, "dashboard", cache.DashboardKey(), s.fetchSummary, placeholderSummary)
}

func (s *dashboardService) fetchSummary(ctx context.Context) (domain.DashboardSummary, error) {
	d, err := s.statsRepo.Dashboard(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	if d.Comparison.PreviousMonth == "" {
		d.Comparison.PreviousMonth = "Mes Anterior"
	}
	if d.Comparison.CurrentMonth == "" {
		d.Comparison.CurrentMonth = "Mes Actual"
	}
	return *d, nil
}

func placeholderSummary() domain.DashboardSummary {
	return domain.DashboardSummary{
		Comparison: domain.MonthlyComparison{
			PreviousMonth: "Mes Anterior",
			CurrentMonth:  "Mes Actual",
		},
		IncomeThisMonth: decimal.Zero,
	}
}

func (s *dashboardService) Distribution(ctx context.Context) *Snapshot[[]domain.PlanDistribution] {
	return degradable(ctx, s, "distribution", cache.DistributionKey(), s.statsRepo.Distribution, func() []domain.PlanDistribution {
		return []domain.PlanDistribution{}
	})
}

func (s *dashboardService) Trend(ctx context.Context, year int) *Snapshot[domain.MonthlyTrend] {
	fetch := func(ctx context.Context) (domain.MonthlyTrend, error) {
		t, err := s.statsRepo.Trend(ctx, year)
		if err != nil {
			return domain.MonthlyTrend{}, err
		}
		return *t, nil
	}
	return degradable(ctx, s, "trend", cache.TrendKey(year), fetch, placeholderTrend)
}

func placeholderTrend() domain.MonthlyTrend {
	t := domain.MonthlyTrend{
		Months:  append([]string(nil), monthLabels...),
		Clients: make([]int, len(monthLabels)),
		Income:  make([]decimal.Decimal, len(monthLabels)),
	}
	for i := range t.Income {
		t.Income[i] = decimal.Zero
	}
	return t
}

func (s *dashboardService) Weekly(ctx context.Context, month, year int) *Snapshot[[]domain.WeeklyActivity] {
	fetch := func(ctx context.Context) ([]domain.WeeklyActivity, error) {
		return s.statsRepo.WeeklyActivity(ctx, month, year)
	}
	return degradable(ctx, s, "weekly", cache.WeeklyKey(month, year), fetch, func() []domain.WeeklyActivity {
		return []domain.WeeklyActivity{}
	})
}

func (s *dashboardService) Compare(ctx context.Context, month1, month2, year1, year2 int) *Snapshot[domain.MonthComparison] {
	fetch := func(ctx context.Context) (domain.MonthComparison, error) {
		c, err := s.statsRepo.Compare(ctx, month1, month2, year1, year2)
		if err != nil {
			return domain.MonthComparison{}, err
		}
		return *c, nil
	}
	return degradable(ctx, s, "compare", cache.CompareKey(month1, month2, year1, year2), fetch, func() domain.MonthComparison {
		return domain.MonthComparison{Month: fmt.Sprintf("%02d/%d", month2, year2)}
	})
}

func (s *dashboardService) Complete(ctx context.Context) *DashboardBundle {
	t := now()
	month, year := int(t.Month()), t.Year()

	b := &DashboardBundle{}
	var g errgroup.Group
	g.Go(func() error { b.Summary = s.Summary(ctx); return nil })
	g.Go(func() error { b.Distribution = s.Distribution(ctx); return nil })
	g.Go(func() error { b.Trend = s.Trend(ctx, year); return nil })
	g.Go(func() error { b.Activity = s.Weekly(ctx, month, year); return nil })
	_ = g.Wait()
	return b
}

func (s *dashboardService) Health(ctx context.Context) Health {
	if err := s.statsRepo.HealthCheck(ctx); err != nil {
		return Health{Available: false, Message: err.Error()}
	}
	return Health{Available: true}
}

func (s *dashboardService) RefreshSnapshots(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	t := now()
	month, year := int(t.Month()), t.Year()

	var errs error
	refresh := func(view, key string, fetch func(context.Context) (any, error)) {
		data, err := fetch(ctx)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", view, err))
			return
		}
		if err := s.cache.Put(ctx, key, data); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", view, err))
		}
	}

	refresh("dashboard", cache.DashboardKey(), func(ctx context.Context) (any, error) {
		return s.fetchSummary(ctx)
	})
	refresh("distribution", cache.DistributionKey(), func(ctx context.Context) (any, error) {
		return s.statsRepo.Distribution(ctx)
	})
	refresh("trend", cache.TrendKey(year), func(ctx context.Context) (any, error) {
		return s.statsRepo.Trend(ctx, year)
	})
	refresh("weekly", cache.WeeklyKey(month, year), func(ctx context.Context) (any, error) {
		return s.statsRepo.WeeklyActivity(ctx, month, year)
	})
	return errs
}
