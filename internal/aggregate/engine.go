package aggregate

import (
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// DefaultRecentLimit is the size of the dashboard's recent activity list.
const DefaultRecentLimit = 5

// Engine memoizes dashboards per (snapshot version, reference day).
// Results are shared between callers and must be treated as read-only.
type Engine struct {
	dashboards cache.Cache[core.Dashboard]
	group      singleflight.Group
	recent     int
}

// NewEngine creates an Engine backed by c. A nil cache disables memoization.
func NewEngine(c cache.Cache[core.Dashboard], recent int) *Engine {
	if recent <= 0 {
		recent = DefaultRecentLimit
	}
	return &Engine{dashboards: c, recent: recent}
}

// Dashboard returns the dashboard for the given lists. version must change
// whenever either list changes; concurrent callers asking for the same key
// share a single computation.
func (e *Engine) Dashboard(version uint64, transactions []core.Transaction, budgets []core.Budget, ref time.Time) core.Dashboard {
	if e.dashboards == nil {
		return BuildDashboard(transactions, budgets, ref, e.recent)
	}

	key := fmt.Sprintf("v%d:%s", version, core.FormatDay(ref))
	if d, ok := e.dashboards.Get(key); ok {
		return d
	}

	v, _, _ := e.group.Do(key, func() (any, error) {
		// a previous flight may have filled the entry after our Get
		if d, ok := e.dashboards.Get(key); ok {
			return d, nil
		}
		d := BuildDashboard(transactions, budgets, ref, e.recent)
		e.dashboards.Set(key, d)
		return d, nil
	})
	return v.(core.Dashboard)
}

// BudgetProgress returns the budget progress part of the cached dashboard.
func (e *Engine) BudgetProgress(version uint64, transactions []core.Transaction, budgets []core.Budget, ref time.Time) []core.BudgetProgress {
	return e.Dashboard(version, transactions, budgets, ref).BudgetProgress
}

// CacheSize reports the number of memoized dashboards.
func (e *Engine) CacheSize() int {
	if e.dashboards == nil {
		return 0
	}
	return e.dashboards.Size()
}
