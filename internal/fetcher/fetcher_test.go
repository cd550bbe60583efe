package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpenlabs/strata-dashboards/internal/utils"
)

var (
	testStart = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
)

func TestFetchUserOpsQueryParams(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"start_time": r.URL.Query().Get("start_time"),
			"end_time":   r.URL.Query().Get("end_time"),
			"page_size":  r.URL.Query().Get("page_size"),
			"page_token": r.URL.Query().Get("page_token"),
		}
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	client := NewClient()
	_, _, err := client.FetchUserOps(context.Background(), srv.URL, testStart, testEnd, 50, "tok1")
	require.NoError(t, err)

	assert.Equal(t, "2025-05-01 00:00:00", gotQuery["start_time"])
	assert.Equal(t, "2025-06-01 12:30:45", gotQuery["end_time"])
	assert.Equal(t, "50", gotQuery["page_size"])
	assert.Equal(t, "tok1", gotQuery["page_token"])
}

func TestFetchUserOpsOmitsOptionalParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("page_size"))
		assert.False(t, r.URL.Query().Has("page_token"))
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	_, _, err := NewClient().FetchUserOps(context.Background(), srv.URL, testStart, testEnd, 0, "")
	require.NoError(t, err)
}

func TestFetchUserOpsDecodesRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"items": [
				{"address":{"hash":"0xa"},"fee":"100","timestamp":"2025-06-01T10:00:00Z"},
				{"address":{"hash":"0xb"},"fee":"200","timestamp":"2025-06-01T11:00:00Z"}
			],
			"next_page_params": {"page_token": "next-tok"}
		}`))
	}))
	defer srv.Close()

	ops, token, err := NewClient().FetchUserOps(context.Background(), srv.URL, testStart, testEnd, 100, "")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "0xa", ops[0].Sender)
	assert.Equal(t, uint64(100), ops[0].GasUsed)
	assert.Equal(t, "next-tok", token)
}

func TestFetchAccountsLastPageHasNoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"address":{"hash":"0xa"},"gas_used":1}]}`))
	}))
	defer srv.Close()

	accounts, token, err := NewClient().FetchAccounts(context.Background(), srv.URL, testStart, testEnd, 100, "")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "", token)
}

func TestFetchNonStringTokenEndsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[],"next_page_params":{"page_token":42}}`))
	}))
	defer srv.Close()

	_, token, err := NewClient().FetchUserOps(context.Background(), srv.URL, testStart, testEnd, 100, "")
	require.NoError(t, err)
	assert.Equal(t, "", token)
}

func TestFetchMissingItemsIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"next_page_params":null}`))
	}))
	defer srv.Close()

	_, _, err := NewClient().FetchUserOps(context.Background(), srv.URL, testStart, testEnd, 100, "")
	require.Error(t, err)
	assert.True(t, utils.IsDecodeError(err))
}

func TestFetchNon2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, _, err := NewClient().FetchUserOps(context.Background(), srv.URL, testStart, testEnd, 100, "")
	require.Error(t, err)
	assert.True(t, utils.IsTransportError(err))
}

func TestFetchMalformedItemIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"fee":"1","timestamp":"t"}]}`))
	}))
	defer srv.Close()

	_, _, err := NewClient().FetchUserOps(context.Background(), srv.URL, testStart, testEnd, 100, "")
	require.Error(t, err)
	assert.True(t, utils.IsDecodeError(err))
}
