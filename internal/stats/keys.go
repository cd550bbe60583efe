package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alpenlabs/strata-dashboards/internal/utils"
)

// Key-file tokens. Stat-name tokens are prefixed per instance
// (USAGE_STATS__ / ACTIVITY_STATS__); the suffix identifies the stat.
const (
	tokenUserOps              = "USER_OPS"
	tokenGasUsed              = "GAS_USED"
	tokenUniqueActiveAccounts = "UNIQUE_ACTIVE_ACCOUNTS"

	tokenLast24Hours = "TIME_WINDOW__LAST_24_HOURS"
	tokenLast30Days  = "TIME_WINDOW__LAST_30_DAYS"
	tokenYearToDate  = "TIME_WINDOW__YEAR_TO_DATE"

	tokenRecent             = "ACCOUNTS__RECENT"
	tokenTopGasConsumers24h = "ACCOUNTS__TOP_GAS_CONSUMERS_24H"
)

// keysFile mirrors the on-disk key-mapping JSON. Usage and activity files
// carry the same tables under a differently named stat-name field; the
// loader accepts either.
type keysFile struct {
	UsageStatNames    map[string]string `json:"usage_stat_names"`
	ActivityStatNames map[string]string `json:"activity_stat_names"`
	TimeWindows       map[string]string `json:"time_windows"`
	SelectAccountsBy  map[string]string `json:"select_accounts_by"`
}

// Catalog is the bidirectional enum <-> output-label lookup built once at
// startup from a key-mapping file. The enum is the internal key, the string
// is the serialization label; the two are never conflated.
type Catalog struct {
	statLabels      map[StatName]string
	windowLabels    map[TimeWindow]string
	selectionLabels map[Selection]string

	statsByLabel      map[string]StatName
	windowsByLabel    map[string]TimeWindow
	selectionsByLabel map[string]Selection
}

// LoadCatalog reads a key-mapping JSON file and builds the Catalog.
// A missing file, a missing enum entry or a duplicate label is a config
// error, fatal at startup by contract.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeConfig, "reading key-mapping file", "STATS")
	}

	var file keysFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeConfig, "parsing key-mapping file", "STATS")
	}

	statNames := file.UsageStatNames
	if statNames == nil {
		statNames = file.ActivityStatNames
	}
	if statNames == nil {
		return nil, utils.NewAppError(utils.ErrorTypeConfig,
			"key-mapping file has neither usage_stat_names nor activity_stat_names", "STATS")
	}

	c := &Catalog{
		statLabels:        make(map[StatName]string),
		windowLabels:      make(map[TimeWindow]string),
		selectionLabels:   make(map[Selection]string),
		statsByLabel:      make(map[string]StatName),
		windowsByLabel:    make(map[string]TimeWindow),
		selectionsByLabel: make(map[string]Selection),
	}

	for token, label := range statNames {
		stat, err := statFromToken(token)
		if err != nil {
			return nil, err
		}
		if _, dup := c.statsByLabel[label]; dup {
			return nil, utils.NewAppError(utils.ErrorTypeConfig, "duplicate stat label "+label, "STATS")
		}
		c.statLabels[stat] = label
		c.statsByLabel[label] = stat
	}

	for token, label := range file.TimeWindows {
		window, err := windowFromToken(token)
		if err != nil {
			return nil, err
		}
		if _, dup := c.windowsByLabel[label]; dup {
			return nil, utils.NewAppError(utils.ErrorTypeConfig, "duplicate window label "+label, "STATS")
		}
		c.windowLabels[window] = label
		c.windowsByLabel[label] = window
	}

	for token, label := range file.SelectAccountsBy {
		sel, err := selectionFromToken(token)
		if err != nil {
			return nil, err
		}
		if _, dup := c.selectionsByLabel[label]; dup {
			return nil, utils.NewAppError(utils.ErrorTypeConfig, "duplicate selection label "+label, "STATS")
		}
		c.selectionLabels[sel] = label
		c.selectionsByLabel[label] = sel
	}

	for _, stat := range allStatNames {
		if _, ok := c.statLabels[stat]; !ok {
			return nil, utils.NewAppError(utils.ErrorTypeConfig,
				fmt.Sprintf("key-mapping file missing stat entry %d", stat), "STATS")
		}
	}
	for _, window := range allTimeWindows {
		if _, ok := c.windowLabels[window]; !ok {
			return nil, utils.NewAppError(utils.ErrorTypeConfig,
				fmt.Sprintf("key-mapping file missing time window entry %d", window), "STATS")
		}
	}
	for _, sel := range allSelections {
		if _, ok := c.selectionLabels[sel]; !ok {
			return nil, utils.NewAppError(utils.ErrorTypeConfig,
				fmt.Sprintf("key-mapping file missing selection entry %d", sel), "STATS")
		}
	}

	return c, nil
}

func statFromToken(token string) (StatName, error) {
	idx := strings.Index(token, "__")
	if idx < 0 {
		return 0, utils.NewAppError(utils.ErrorTypeConfig, "unknown stat token "+token, "STATS")
	}
	switch token[idx+2:] {
	case tokenUserOps:
		return StatUserOps, nil
	case tokenGasUsed:
		return StatGasUsed, nil
	case tokenUniqueActiveAccounts:
		return StatUniqueActiveAccounts, nil
	default:
		return 0, utils.NewAppError(utils.ErrorTypeConfig, "unknown stat token "+token, "STATS")
	}
}

func windowFromToken(token string) (TimeWindow, error) {
	switch token {
	case tokenLast24Hours:
		return Last24Hours, nil
	case tokenLast30Days:
		return Last30Days, nil
	case tokenYearToDate:
		return YearToDate, nil
	default:
		return 0, utils.NewAppError(utils.ErrorTypeConfig, "unknown time window token "+token, "STATS")
	}
}

func selectionFromToken(token string) (Selection, error) {
	switch token {
	case tokenRecent:
		return SelectRecent, nil
	case tokenTopGasConsumers24h:
		return SelectTopGasConsumers24h, nil
	default:
		return 0, utils.NewAppError(utils.ErrorTypeConfig, "unknown selection token "+token, "STATS")
	}
}

// StatLabel returns the output label for a stat.
func (c *Catalog) StatLabel(s StatName) string { return c.statLabels[s] }

// WindowLabel returns the output label for a time window.
func (c *Catalog) WindowLabel(w TimeWindow) string { return c.windowLabels[w] }

// SelectionLabel returns the output label for a ranked selection.
func (c *Catalog) SelectionLabel(s Selection) string { return c.selectionLabels[s] }

// StatByLabel resolves an output label back to its stat.
func (c *Catalog) StatByLabel(label string) (StatName, bool) {
	s, ok := c.statsByLabel[label]
	return s, ok
}

// WindowByLabel resolves an output label back to its window.
func (c *Catalog) WindowByLabel(label string) (TimeWindow, bool) {
	w, ok := c.windowsByLabel[label]
	return w, ok
}

// Windows returns the catalog's windows in declaration order.
func (c *Catalog) Windows() []TimeWindow { return allTimeWindows }

// Stats returns the catalog's stats in declaration order.
func (c *Catalog) Stats() []StatName { return allStatNames }

// Selections returns the catalog's selections in declaration order.
func (c *Catalog) Selections() []Selection { return allSelections }
