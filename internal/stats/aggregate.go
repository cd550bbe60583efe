package stats

import (
	"time"

	"github.com/alpenlabs/strata-dashboards/internal/models"
)

// Aggregator accumulates one refresh cycle's worth of user operations into
// per-window counters, per-window unique-sender sets and the 24h per-sender
// gas tally used for ranking. It is not safe for concurrent use; each cycle
// builds a fresh one.
type Aggregator struct {
	now     time.Time
	cutoffs map[TimeWindow]time.Time

	opCounts  map[TimeWindow]uint64
	gasCounts map[TimeWindow]uint64
	unique    map[TimeWindow]map[string]struct{}

	gasBySender map[string]uint64
}

// NewAggregator builds an aggregator for one cycle anchored at now.
func NewAggregator(catalog *Catalog, now time.Time) *Aggregator {
	a := &Aggregator{
		now:         now,
		cutoffs:     make(map[TimeWindow]time.Time),
		opCounts:    make(map[TimeWindow]uint64),
		gasCounts:   make(map[TimeWindow]uint64),
		unique:      make(map[TimeWindow]map[string]struct{}),
		gasBySender: make(map[string]uint64),
	}
	for _, window := range catalog.Windows() {
		a.cutoffs[window] = now.Add(-window.Duration(now))
		a.opCounts[window] = 0
		a.gasCounts[window] = 0
		a.unique[window] = make(map[string]struct{})
	}
	return a
}

// StartTime returns the widest range start needed by any configured window:
// the earlier of 30 days before now and January 1 of now's year.
func (a *Aggregator) StartTime() time.Time {
	startOfYear := time.Date(a.now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	back30d := a.now.Add(-30 * 24 * time.Hour)
	if back30d.Before(startOfYear) {
		return back30d
	}
	return startOfYear
}

// Observe buckets one user operation into every window it falls in.
// Records whose timestamp does not parse as RFC3339 are silently skipped.
// Duplicate records count twice; idempotence of the feed is assumed, not
// enforced.
func (a *Aggregator) Observe(op models.UserOp) {
	opTime, err := time.Parse(time.RFC3339, op.Timestamp)
	if err != nil {
		return
	}

	for window, cutoff := range a.cutoffs {
		if !opTime.Before(cutoff) {
			a.opCounts[window]++
			a.gasCounts[window] += op.GasUsed
			a.unique[window][op.Sender] = struct{}{}
		}
	}

	// 24h gas tally feeding the top-consumers ranking
	if !opTime.Before(a.now.Add(-24 * time.Hour)) {
		a.gasBySender[op.Sender] += op.GasUsed
	}
}

// WriteStats writes the accumulated counters into the snapshot under the
// catalog's labels. The unique-active count is the cardinality of each
// window's sender set.
func (a *Aggregator) WriteStats(catalog *Catalog, snap *Snapshot) {
	opLabel := catalog.StatLabel(StatUserOps)
	gasLabel := catalog.StatLabel(StatGasUsed)
	uniqueLabel := catalog.StatLabel(StatUniqueActiveAccounts)

	for window, count := range a.opCounts {
		windowLabel := catalog.WindowLabel(window)
		ensureStat(snap, opLabel)[windowLabel] = count
		ensureStat(snap, gasLabel)[windowLabel] = a.gasCounts[window]
		ensureStat(snap, uniqueLabel)[windowLabel] = uint64(len(a.unique[window]))
	}
}

// GasBySender exposes the 24h per-sender gas totals for ranking.
func (a *Aggregator) GasBySender() map[string]uint64 {
	return a.gasBySender
}

// Senders returns every sender observed in the widest window this cycle.
func (a *Aggregator) Senders() []string {
	widest := a.unique[YearToDate]
	if len(a.unique[Last30Days]) > len(widest) {
		widest = a.unique[Last30Days]
	}
	senders := make([]string, 0, len(widest))
	for sender := range widest {
		senders = append(senders, sender)
	}
	return senders
}

func ensureStat(snap *Snapshot, label string) map[string]uint64 {
	if snap.Stats[label] == nil {
		snap.Stats[label] = make(map[string]uint64)
	}
	return snap.Stats[label]
}
