// Package stats implements the time-windowed usage/activity statistics
// engine: paginated ingestion, multi-window bucketing, unique-account
// tracking, top-N account selection and the shared snapshot served over HTTP.
package stats

import "time"

// TimeWindow is a named rolling interval used to bucket events against "now".
type TimeWindow int

const (
	Last24Hours TimeWindow = iota
	Last30Days
	YearToDate
)

// allTimeWindows lists every window in catalog order.
var allTimeWindows = []TimeWindow{Last24Hours, Last30Days, YearToDate}

// Duration maps a window to its length at the given instant. YearToDate is
// the ordinal day number of now within its year; at a year boundary this
// yields 0 or 1 day depending on time-of-day, which is accepted behavior.
func (w TimeWindow) Duration(now time.Time) time.Duration {
	switch w {
	case Last24Hours:
		return 24 * time.Hour
	case Last30Days:
		return 30 * 24 * time.Hour
	case YearToDate:
		return time.Duration(now.YearDay()) * 24 * time.Hour
	default:
		return 0
	}
}

// StatName identifies a tracked metric.
type StatName int

const (
	StatUserOps StatName = iota
	StatGasUsed
	StatUniqueActiveAccounts
)

var allStatNames = []StatName{StatUserOps, StatGasUsed, StatUniqueActiveAccounts}

// Selection identifies a ranked account list.
type Selection int

const (
	SelectRecent Selection = iota
	SelectTopGasConsumers24h
)

var allSelections = []Selection{SelectRecent, SelectTopGasConsumers24h}
