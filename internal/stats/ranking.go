package stats

import (
	"sort"
	"time"

	"github.com/alpenlabs/strata-dashboards/internal/models"
)

// selectionLimit caps every ranked selection.
const selectionLimit = 5

// SelectRecentAccounts ranks accounts by creation time, most recent first,
// truncated to the selection limit. Accounts with an empty or unparseable
// creation timestamp are excluded from the ranking.
func SelectRecentAccounts(accounts []models.Account) []models.Account {
	type timed struct {
		account models.Account
		created time.Time
	}

	ranked := make([]timed, 0, len(accounts))
	for _, acc := range accounts {
		if acc.CreationTimestamp == "" {
			continue
		}
		created, err := time.Parse(time.RFC3339, acc.CreationTimestamp)
		if err != nil {
			continue
		}
		ranked = append(ranked, timed{account: acc, created: created})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].created.After(ranked[j].created)
	})

	if len(ranked) > selectionLimit {
		ranked = ranked[:selectionLimit]
	}

	selected := make([]models.Account, len(ranked))
	for i, r := range ranked {
		selected[i] = r.account
	}
	return selected
}

// SelectTopGasConsumers ranks the 24h per-sender gas totals descending,
// truncated to the selection limit. Equal totals order lexicographically by
// address so the selection is deterministic. The synthetic accounts carry no
// creation timestamp.
func SelectTopGasConsumers(gasBySender map[string]uint64) []models.Account {
	consumers := make([]models.Account, 0, len(gasBySender))
	for address, gasUsed := range gasBySender {
		consumers = append(consumers, models.Account{
			Address: address,
			GasUsed: gasUsed,
		})
	}

	sort.Slice(consumers, func(i, j int) bool {
		if consumers[i].GasUsed != consumers[j].GasUsed {
			return consumers[i].GasUsed > consumers[j].GasUsed
		}
		return consumers[i].Address < consumers[j].Address
	})

	if len(consumers) > selectionLimit {
		consumers = consumers[:selectionLimit]
	}
	return consumers
}
