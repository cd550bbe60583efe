package stats

import (
	"context"
	"sync"
	"time"

	"github.com/axiomhq/hyperloglog"

	"github.com/alpenlabs/strata-dashboards/internal/config"
	"github.com/alpenlabs/strata-dashboards/internal/fetcher"
	"github.com/alpenlabs/strata-dashboards/internal/models"
	"github.com/alpenlabs/strata-dashboards/internal/utils"
)

// CycleOutcome classifies one refresh cycle.
type CycleOutcome int

const (
	// CycleFull means both sources drained completely.
	CycleFull CycleOutcome = iota
	// CyclePartial means at least one source stopped early; the snapshot
	// keeps whatever was accumulated before the failure.
	CyclePartial
)

// CycleResult reports what one refresh cycle managed to do. It exists to
// make the log-and-continue failure handling observable: callers can tell a
// full refresh from a partial one and which sub-source failed.
type CycleResult struct {
	Outcome     CycleOutcome
	UserOpsErr  error
	AccountsErr error
}

// CycleHook is invoked after every refresh cycle with the fresh snapshot.
type CycleHook func(Snapshot, CycleResult)

// Monitor periodically drains the user-operations and accounts sources and
// rebuilds the snapshot. One Monitor instance exists per served statistics
// surface (usage, activity).
type Monitor struct {
	name    string
	cfg     config.MonitoringConfig
	catalog *Catalog
	store   *Store
	client  *fetcher.Client

	onCycle CycleHook

	// lifetime unique senders across refresh cycles, estimated
	hllMu           sync.Mutex
	lifetimeSenders *hyperloglog.Sketch
}

// NewMonitor creates a monitor writing into store. The store is injected:
// the HTTP layer reads from the same store instance.
func NewMonitor(name string, cfg config.MonitoringConfig, catalog *Catalog, store *Store, client *fetcher.Client) *Monitor {
	return &Monitor{
		name:            name,
		cfg:             cfg,
		catalog:         catalog,
		store:           store,
		client:          client,
		lifetimeSenders: hyperloglog.New16(),
	}
}

// SetCycleHook registers a hook run after each refresh cycle. Must be called
// before Start.
func (m *Monitor) SetCycleHook(hook CycleHook) {
	m.onCycle = hook
}

// Snapshot returns a copy of the monitor's current snapshot.
func (m *Monitor) Snapshot() Snapshot {
	return m.store.Read()
}

// LifetimeUniqueSenders estimates the distinct senders seen since process
// start, across all refresh cycles.
func (m *Monitor) LifetimeUniqueSenders() uint64 {
	m.hllMu.Lock()
	defer m.hllMu.Unlock()
	return m.lifetimeSenders.Estimate()
}

// Start runs the refresh loop until ctx is cancelled. The first refresh
// happens immediately, then on every tick.
func (m *Monitor) Start(ctx context.Context) {
	utils.LogInfo(m.name, "Starting stats monitor (interval %s)", m.cfg.RefetchInterval)

	m.runCycle(ctx)

	ticker := time.NewTicker(m.cfg.RefetchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.LogInfo(m.name, "Stopping stats monitor")
			return
		case <-ticker.C:
			m.runCycle(ctx)
		}
	}
}

func (m *Monitor) runCycle(ctx context.Context) {
	result := m.refresh(ctx, time.Now().UTC())
	if result.Outcome == CyclePartial {
		utils.LogWarn(m.name, "Refresh cycle completed partially (user_ops err: %v, accounts err: %v)",
			result.UserOpsErr, result.AccountsErr)
	} else {
		utils.LogInfo(m.name, "Refresh cycle completed")
	}
	if m.onCycle != nil {
		m.onCycle(m.store.Read(), result)
	}
}

// refresh performs one full cycle: drain user ops into the aggregator,
// drain accounts into the recency ranking, derive the top gas consumers,
// and write all three into the snapshot. The store's write lock is held for
// the whole cycle. A source that fails on its first page leaves its portion
// of the snapshot at the pre-cycle value; a failure mid-stream keeps the
// partial counts.
func (m *Monitor) refresh(ctx context.Context, now time.Time) CycleResult {
	utils.LogInfo(m.name, "Refreshing stats...")

	var result CycleResult

	m.store.Update(func(snap *Snapshot) {
		agg := NewAggregator(m.catalog, now)
		start := agg.StartTime()

		opsPages := 0
		for token := ""; ; {
			ops, next, err := m.client.FetchUserOps(ctx, m.cfg.UserOpsQueryURL, start, now, m.cfg.QueryPageSize, token)
			if err != nil {
				utils.LogError(m.name, "Fetch user ops failed: %v", err)
				result.UserOpsErr = err
				break
			}
			utils.LogDebug(m.name, "user ops count %d", len(ops))
			for _, op := range ops {
				agg.Observe(op)
			}
			opsPages++
			if next == "" {
				break
			}
			token = next
		}

		if opsPages > 0 {
			agg.WriteStats(m.catalog, snap)
			snap.SelectedAccounts[m.catalog.SelectionLabel(SelectTopGasConsumers24h)] =
				SelectTopGasConsumers(agg.GasBySender())
			m.recordSenders(agg.Senders())
		}

		var accounts []models.Account
		accountsPages := 0
		for token := ""; ; {
			page, next, err := m.client.FetchAccounts(ctx, m.cfg.AccountsQueryURL, start, now, m.cfg.QueryPageSize, token)
			if err != nil {
				utils.LogError(m.name, "Fetch accounts failed: %v", err)
				result.AccountsErr = err
				break
			}
			utils.LogDebug(m.name, "accounts count %d", len(page))
			accounts = append(accounts, page...)
			accountsPages++
			if next == "" {
				break
			}
			token = next
		}

		if accountsPages > 0 {
			snap.SelectedAccounts[m.catalog.SelectionLabel(SelectRecent)] =
				SelectRecentAccounts(accounts)
		}
	})

	if result.UserOpsErr != nil || result.AccountsErr != nil {
		result.Outcome = CyclePartial
	}
	return result
}

func (m *Monitor) recordSenders(senders []string) {
	m.hllMu.Lock()
	defer m.hllMu.Unlock()
	for _, sender := range senders {
		m.lifetimeSenders.Insert([]byte(sender))
	}
}
