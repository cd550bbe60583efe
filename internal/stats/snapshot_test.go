package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpenlabs/strata-dashboards/internal/models"
)

func TestNewSnapshotIsFullyZeroed(t *testing.T) {
	catalog := testCatalog(t)
	snap := NewSnapshot(catalog)

	require.Len(t, snap.Stats, 3)
	for _, stat := range catalog.Stats() {
		values := snap.Stats[catalog.StatLabel(stat)]
		require.Len(t, values, 3)
		for _, window := range catalog.Windows() {
			assert.Equal(t, uint64(0), values[catalog.WindowLabel(window)])
		}
	}

	require.Len(t, snap.SelectedAccounts, 2)
	for _, sel := range catalog.Selections() {
		accounts := snap.SelectedAccounts[catalog.SelectionLabel(sel)]
		assert.NotNil(t, accounts)
		assert.Empty(t, accounts)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	catalog := testCatalog(t)
	snap := NewSnapshot(catalog)
	snap.Stats["user_ops"]["last_24_hours"] = 7
	snap.SelectedAccounts["recent"] = []models.Account{{Address: "0xa"}}

	clone := snap.Clone()
	clone.Stats["user_ops"]["last_24_hours"] = 99
	clone.SelectedAccounts["recent"][0].Address = "0xb"

	assert.Equal(t, uint64(7), snap.Stats["user_ops"]["last_24_hours"])
	assert.Equal(t, "0xa", snap.SelectedAccounts["recent"][0].Address)
}

func TestStoreReadReturnsCopy(t *testing.T) {
	store := NewStore(testCatalog(t))

	first := store.Read()
	first.Stats["user_ops"]["last_24_hours"] = 42

	second := store.Read()
	assert.Equal(t, uint64(0), second.Stats["user_ops"]["last_24_hours"])
}

func TestStoreUpdateIsVisibleToReaders(t *testing.T) {
	store := NewStore(testCatalog(t))

	store.Update(func(snap *Snapshot) {
		snap.Stats["gas_used"]["last_30_days"] = 1234
	})

	assert.Equal(t, uint64(1234), store.Read().Stats["gas_used"]["last_30_days"])
}
