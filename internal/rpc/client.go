// Package rpc is a minimal JSON-RPC 2.0 client over HTTP.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alpenlabs/strata-dashboards/internal/utils"
)

// Client talks JSON-RPC 2.0 to one endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a JSON-RPC client for the given endpoint
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
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

type request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) String() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Message)
}

// Call invokes method with params and unmarshals the result into result.
// Pass nil params for a parameterless call and nil result to discard.
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	if params == nil {
		params = []interface{}{}
	}

	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeInternal, "marshaling rpc request", "RPC")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeTransport, "creating rpc request", "RPC")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeTransport, "rpc request failed", "RPC")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return utils.NewAppError(utils.ErrorTypeTransport,
			fmt.Sprintf("rpc returned status %d", resp.StatusCode), "RPC")
	}

	var rpcResp response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return utils.WrapError(err, utils.ErrorTypeDecode, "decoding rpc response", "RPC")
	}
	if rpcResp.Error != nil {
		return utils.NewAppError(utils.ErrorTypeRPC, method+" failed", "RPC").WithDetails("%s", rpcResp.Error.String())
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return utils.WrapError(err, utils.ErrorTypeDecode, "decoding rpc result", "RPC")
		}
	}
	return nil
}
