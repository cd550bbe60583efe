package stats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpenlabs/strata-dashboards/internal/config"
	"github.com/alpenlabs/strata-dashboards/internal/fetcher"
)

func testMonitor(t *testing.T, opsURL, accountsURL string) (*Monitor, *Store) {
	t.Helper()
	catalog := testCatalog(t)
	store := NewStore(catalog)
	cfg := config.MonitoringConfig{
		UserOpsQueryURL:  opsURL,
		AccountsQueryURL: accountsURL,
		RefetchInterval:  time.Minute,
		QueryPageSize:    100,
	}
	return NewMonitor("USAGE", cfg, catalog, store, fetcher.NewClient()), store
}

func opsPageHandler(t *testing.T, now time.Time) http.HandlerFunc {
	t.Helper()
	ts := func(age time.Duration) string {
		return now.Add(-age).Format(time.RFC3339)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page_token") {
		case "":
			w.Write([]byte(`{
				"items": [
					{"address":{"hash":"0xa"},"fee":"100","timestamp":"` + ts(time.Hour) + `"},
					{"address":{"hash":"0xb"},"fee":"200","timestamp":"` + ts(2*time.Hour) + `"}
				],
				"next_page_params": {"page_token": "tok1"}
			}`))
		case "tok1":
			w.Write([]byte(`{
				"items": [
					{"address":{"hash":"0xa"},"fee":"50","timestamp":"` + ts(40*24*time.Hour) + `"}
				]
			}`))
		default:
			t.Errorf("unexpected page token %q", r.URL.Query().Get("page_token"))
		}
	}
}

func accountsPageHandler(now time.Time) http.HandlerFunc {
	ts := func(age time.Duration) string {
		return now.Add(-age).Format(time.RFC3339)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"items": [
				{"address":{"hash":"0x1"},"creation_timestamp":"` + ts(time.Hour) + `","gas_used":10},
				{"address":{"hash":"0x2"},"creation_timestamp":"` + ts(48*time.Hour) + `","gas_used":20}
			]
		}`))
	}
}

func TestRefreshFullCycle(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	opsSrv := httptest.NewServer(opsPageHandler(t, now))
	defer opsSrv.Close()
	accSrv := httptest.NewServer(accountsPageHandler(now))
	defer accSrv.Close()

	monitor, store := testMonitor(t, opsSrv.URL, accSrv.URL)
	result := monitor.refresh(context.Background(), now)

	assert.Equal(t, CycleFull, result.Outcome)
	require.NoError(t, result.UserOpsErr)
	require.NoError(t, result.AccountsErr)

	snap := store.Read()

	// both pages drained: 2 recent ops plus 1 forty-day-old op
	assert.Equal(t, uint64(2), snap.Stats["user_ops"]["last_24_hours"])
	assert.Equal(t, uint64(2), snap.Stats["user_ops"]["last_30_days"])
	assert.Equal(t, uint64(3), snap.Stats["user_ops"]["year_to_date"])
	assert.Equal(t, uint64(300), snap.Stats["gas_used"]["last_24_hours"])
	assert.Equal(t, uint64(350), snap.Stats["gas_used"]["year_to_date"])
	assert.Equal(t, uint64(2), snap.Stats["unique_active_accounts"]["year_to_date"])

	recent := snap.SelectedAccounts["recent"]
	require.Len(t, recent, 2)
	assert.Equal(t, "0x1", recent[0].Address)
	assert.Equal(t, "0x2", recent[1].Address)

	top := snap.SelectedAccounts["top_gas_consumers_24h"]
	require.Len(t, top, 2)
	assert.Equal(t, "0xb", top[0].Address)
	assert.Equal(t, uint64(200), top[0].GasUsed)
}

func TestRefreshAccountsFailureKeepsOpsPortion(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	opsSrv := httptest.NewServer(opsPageHandler(t, now))
	defer opsSrv.Close()
	accSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer accSrv.Close()

	monitor, store := testMonitor(t, opsSrv.URL, accSrv.URL)
	result := monitor.refresh(context.Background(), now)

	assert.Equal(t, CyclePartial, result.Outcome)
	assert.NoError(t, result.UserOpsErr)
	assert.Error(t, result.AccountsErr)

	snap := store.Read()
	assert.Equal(t, uint64(3), snap.Stats["user_ops"]["year_to_date"])
	// accounts portion untouched: still the zero snapshot's empty list
	assert.Empty(t, snap.SelectedAccounts["recent"])
	assert.NotEmpty(t, snap.SelectedAccounts["top_gas_consumers_24h"])
}

func TestRefreshOpsFirstPageFailureKeepsPreviousStats(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	opsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer opsSrv.Close()
	accSrv := httptest.NewServer(accountsPageHandler(now))
	defer accSrv.Close()

	monitor, store := testMonitor(t, opsSrv.URL, accSrv.URL)

	// seed a previous cycle's value
	store.Update(func(snap *Snapshot) {
		snap.Stats["user_ops"]["last_24_hours"] = 42
	})

	result := monitor.refresh(context.Background(), now)

	assert.Equal(t, CyclePartial, result.Outcome)
	assert.Error(t, result.UserOpsErr)

	snap := store.Read()
	assert.Equal(t, uint64(42), snap.Stats["user_ops"]["last_24_hours"])
	// the accounts source still refreshed its portion
	assert.Len(t, snap.SelectedAccounts["recent"], 2)
}

func TestRefreshSendsWindowedTimeRange(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	var gotStart, gotEnd string
	opsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("start_time")
		gotEnd = r.URL.Query().Get("end_time")
		w.Write([]byte(`{"items":[]}`))
	}))
	defer opsSrv.Close()
	accSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))
	defer accSrv.Close()

	monitor, _ := testMonitor(t, opsSrv.URL, accSrv.URL)
	monitor.refresh(context.Background(), now)

	// mid-June: the year start is the wider bound
	assert.Equal(t, "2025-01-01 00:00:00", gotStart)
	assert.Equal(t, "2025-06-15 12:00:00", gotEnd)
}

func TestLifetimeUniqueSendersAccumulates(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	opsSrv := httptest.NewServer(opsPageHandler(t, now))
	defer opsSrv.Close()
	accSrv := httptest.NewServer(accountsPageHandler(now))
	defer accSrv.Close()

	monitor, _ := testMonitor(t, opsSrv.URL, accSrv.URL)
	assert.Equal(t, uint64(0), monitor.LifetimeUniqueSenders())

	monitor.refresh(context.Background(), now)
	assert.Equal(t, uint64(2), monitor.LifetimeUniqueSenders())

	// a second cycle over the same senders does not inflate the estimate
	monitor.refresh(context.Background(), now)
	assert.Equal(t, uint64(2), monitor.LifetimeUniqueSenders())
}
