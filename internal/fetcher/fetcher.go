// Package fetcher reads pages from the account-abstraction indexer's
// paginated time-range endpoints.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alpenlabs/strata-dashboards/internal/models"
	"github.com/alpenlabs/strata-dashboards/internal/utils"
)

// timeFormat is the upstream's expected query-parameter layout (UTC, no zone).
const timeFormat = "2006-01-02 15:04:05"

// Client fetches record pages from the indexer over HTTP
type Client struct {
	httpClient *http.Client
}

// NewClient creates a fetcher client with sane connection pooling
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// page is the envelope every paginated endpoint responds with.
type page struct {
	Items          json.RawMessage `json:"items"`
	NextPageParams *struct {
		PageToken json.RawMessage `json:"page_token"`
	} `json:"next_page_params"`
}

// FetchUserOps fetches one page of user operations in [start, end].
// It returns the records, the next page token ("" when the stream is
// exhausted) and a typed error on transport or decode failure.
func (c *Client) FetchUserOps(ctx context.Context, queryURL string, start, end time.Time, pageSize uint64, pageToken string) ([]models.UserOp, string, error) {
	return fetchPage[models.UserOp](c, ctx, queryURL, start, end, pageSize, pageToken)
}

// FetchAccounts fetches one page of accounts in [start, end].
func (c *Client) FetchAccounts(ctx context.Context, queryURL string, start, end time.Time, pageSize uint64, pageToken string) ([]models.Account, string, error) {
	return fetchPage[models.Account](c, ctx, queryURL, start, end, pageSize, pageToken)
}

func fetchPage[T any](c *Client, ctx context.Context, queryURL string, start, end time.Time, pageSize uint64, pageToken string) ([]T, string, error) {
	body, err := c.get(ctx, queryURL, start, end, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	var p page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, "", utils.WrapError(err, utils.ErrorTypeDecode, "malformed response body", "FETCHER")
	}
	if p.Items == nil {
		return nil, "", utils.NewAppError(utils.ErrorTypeDecode, "missing 'items' in response", "FETCHER")
	}

	var items []T
	if err := json.Unmarshal(p.Items, &items); err != nil {
		return nil, "", utils.WrapError(err, utils.ErrorTypeDecode, "failed to deserialize items", "FETCHER")
	}

	return items, nextToken(&p), nil
}

// nextToken pulls page_token out of next_page_params. Only string tokens
// count; surrounding quote characters in the raw value are stripped.
func nextToken(p *page) string {
	if p.NextPageParams == nil || p.NextPageParams.PageToken == nil {
		return ""
	}
	var token string
	if err := json.Unmarshal(p.NextPageParams.PageToken, &token); err != nil {
		return ""
	}
	return strings.Trim(token, `"`)
}

func (c *Client) get(ctx context.Context, queryURL string, start, end time.Time, pageSize uint64, pageToken string) ([]byte, error) {
	params := url.Values{}
	params.Set("start_time", start.UTC().Format(timeFormat))
	params.Set("end_time", end.UTC().Format(timeFormat))
	if pageSize > 0 {
		params.Set("page_size", strconv.FormatUint(pageSize, 10))
	}
	if pageToken != "" {
		utils.LogDebug("FETCHER", "page token %s", pageToken)
		params.Set("page_token", pageToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeTransport, "failed to create request", "FETCHER")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeTransport, "request failed", "FETCHER")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, utils.NewAppError(utils.ErrorTypeTransport,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), "FETCHER")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeTransport, "reading response body", "FETCHER")
	}
	return body, nil
}
