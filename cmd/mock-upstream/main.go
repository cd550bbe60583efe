// Command mock-upstream serves fake explorer and RPC endpoints for local
// development: paginated user-operation and account feeds, a JSON-RPC
// surface for network/wallet/bridge queries, and a bundler health check.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	goflags "github.com/jessevdk/go-flags"

	"github.com/alpenlabs/strata-dashboards/internal/utils"
)

type options struct {
	Port     uint16 `long:"port" env:"MOCK_UPSTREAM_PORT" default:"8545" description:"Port to listen on"`
	Ops      int    `long:"ops" default:"250" description:"Number of user operations to serve"`
	Accounts int    `long:"accounts" default:"40" description:"Number of accounts to serve"`
}

type upstream struct {
	ops      []map[string]interface{}
	accounts []map[string]interface{}
}

func newUpstream(opCount, accountCount int) *upstream {
	if accountCount < 1 {
		accountCount = 1
	}
	now := time.Now().UTC()

	ops := make([]map[string]interface{}, 0, opCount)
	for i := 0; i < opCount; i++ {
		ops = append(ops, map[string]interface{}{
			"address":   map[string]interface{}{"hash": fmt.Sprintf("0x%040x", i%accountCount+1)},
			"fee":       strconv.Itoa(1000 + i*7),
			"timestamp": now.Add(-time.Duration(i) * time.Hour).Format(time.RFC3339),
		})
	}

	accounts := make([]map[string]interface{}, 0, accountCount)
	for i := 0; i < accountCount; i++ {
		accounts = append(accounts, map[string]interface{}{
			"address":            map[string]interface{}{"hash": fmt.Sprintf("0x%040x", i+1)},
			"creation_timestamp": now.Add(-time.Duration(i*36) * time.Hour).Format(time.RFC3339),
			"gas_used":           uint64(5000 * (i + 1)),
		})
	}

	return &upstream{ops: ops, accounts: accounts}
}

// servePage returns one page of items with a numeric page token carrying the
// next offset, the same shape the explorer API uses.
func servePage(w http.ResponseWriter, r *http.Request, items []map[string]interface{}) {
	pageSize := 50
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			pageSize = n
		}
	}

	offset := 0
	if raw := r.URL.Query().Get("page_token"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}

	end := offset + pageSize
	if end > len(items) {
		end = len(items)
	}
	if offset > len(items) {
		offset = len(items)
	}

	response := map[string]interface{}{
		"items": items[offset:end],
	}
	if end < len(items) {
		response["next_page_params"] = map[string]interface{}{
			"page_token": strconv.Itoa(end),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

type rpcRequest struct {
	ID     interface{}       `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func (u *upstream) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var result interface{}
	switch req.Method {
	case "strata_syncStatus":
		result = map[string]interface{}{"tip_height": 812345, "tip_block_id": "0xabc123"}

	case "eth_getBalance":
		result = "0xde0b6b3a7640000" // 1 ETH in wei

	case "strata_getActiveOperatorChainPubkeySet":
		result = map[string]string{
			"0": "02a1b2c3d4e5f60718293a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e",
			"1": "03b2c3d4e5f60718293a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f",
		}

	case "stratabridge_operatorStatus":
		result = true

	case "strata_getCurrentDeposits":
		result = []uint32{1, 2, 3}

	case "strata_getCurrentDepositById":
		var id uint32
		if len(req.Params) > 0 {
			json.Unmarshal(req.Params[0], &id)
		}
		result = map[string]interface{}{
			"deposit_idx": id,
			"output":      fmt.Sprintf("%064x:%d", id, id),
			"state":       map[string]interface{}{"accepted": map[string]interface{}{}},
			"amt":         uint64(1_000_000),
		}

	default:
		writeRPCError(w, req.ID, -32601, "method not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result":  result,
	})
}

func writeRPCError(w http.ResponseWriter, id interface{}, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]interface{}{"code": code, "message": message},
	})
}

func main() {
	var opts options
	if _, err := goflags.ParseArgs(&opts, os.Args[1:]); err != nil {
		if goflags.WroteHelp(err) {
			return
		}
		utils.LogError("MOCK", "Failed to parse flags: %v", err)
		os.Exit(1)
	}

	u := newUpstream(opts.Ops, opts.Accounts)

	mux := http.NewServeMux()
	mux.HandleFunc("/user_ops", func(w http.ResponseWriter, r *http.Request) {
		servePage(w, r, u.ops)
	})
	mux.HandleFunc("/accounts", func(w http.ResponseWriter, r *http.Request) {
		servePage(w, r, u.accounts)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/", u.handleRPC)

	addr := fmt.Sprintf(":%d", opts.Port)
	utils.LogInfo("MOCK", "Mock upstream listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		utils.LogError("MOCK", "Server failed: %v", err)
		os.Exit(1)
	}
}
