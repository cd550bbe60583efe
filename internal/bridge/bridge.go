// Package bridge polls the bridge operator network for operator liveness
// and deposit/withdrawal/reimbursement state.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alpenlabs/strata-dashboards/internal/config"
	"github.com/alpenlabs/strata-dashboards/internal/rpc"
	"github.com/alpenlabs/strata-dashboards/internal/utils"
)

// OperatorStatus is one bridge operator's liveness.
type OperatorStatus struct {
	OperatorID      string `json:"operator_id"`
	OperatorAddress string `json:"operator_address"`
	Status          string `json:"status"`
}

// DepositInfo is one tracked deposit.
type DepositInfo struct {
	DepositRequestTxid string  `json:"deposit_request_txid"`
	DepositTxid        *string `json:"deposit_txid"`
	Status             string  `json:"status"`
}

// WithdrawalInfo is one tracked withdrawal.
type WithdrawalInfo struct {
	WithdrawalRequestTxid string  `json:"withdrawal_request_txid"`
	FulfillmentTxid       *string `json:"fulfillment_txid"`
	Status                string  `json:"status"`
}

// ReimbursementInfo is one operator reimbursement claim.
type ReimbursementInfo struct {
	ClaimTxid     string  `json:"claim_txid"`
	ChallengeStep string  `json:"challenge_step"`
	PayoutTxid    *string `json:"payout_txid"`
	Status        string  `json:"status"`
}

// BridgeStatus is the full bridge view served on /api/bridge_status.
type BridgeStatus struct {
	Operators      []OperatorStatus    `json:"operators"`
	Deposits       []DepositInfo       `json:"deposits"`
	Withdrawals    []WithdrawalInfo    `json:"withdrawals"`
	Reimbursements []ReimbursementInfo `json:"reimbursements"`
}

func defaultStatus() BridgeStatus {
	return BridgeStatus{
		Operators:      []OperatorStatus{},
		Deposits:       []DepositInfo{},
		Withdrawals:    []WithdrawalInfo{},
		Reimbursements: []ReimbursementInfo{},
	}
}

// State holds the latest bridge status behind a read/write lock.
type State struct {
	mu     sync.RWMutex
	status BridgeStatus
}

// NewState returns an empty bridge state.
func NewState() *State {
	return &State{status: defaultStatus()}
}

// Read returns a deep copy of the current bridge status.
func (s *State) Read() BridgeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := BridgeStatus{
		Operators:      append([]OperatorStatus{}, s.status.Operators...),
		Deposits:       append([]DepositInfo{}, s.status.Deposits...),
		Withdrawals:    append([]WithdrawalInfo{}, s.status.Withdrawals...),
		Reimbursements: append([]ReimbursementInfo{}, s.status.Reimbursements...),
	}
	return out
}

func (s *State) set(status BridgeStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Poller refreshes the bridge state on a fixed interval.
type Poller struct {
	cfg          config.BridgeConfig
	state        *State
	strataClient *rpc.Client
	bridgeClient *rpc.Client
}

// NewPoller creates a bridge poller writing into state.
func NewPoller(cfg config.BridgeConfig, state *State) *Poller {
	return &Poller{
		cfg:          cfg,
		state:        state,
		strataClient: rpc.NewClient(cfg.StrataRPCURL),
		bridgeClient: rpc.NewClient(cfg.BridgeRPCURL),
	}
}

// Start refreshes on every tick until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	utils.LogInfo("BRIDGE", "Starting bridge monitor (interval %s)", p.cfg.RefetchInterval)

	ticker := time.NewTicker(p.cfg.RefetchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.LogInfo("BRIDGE", "Stopping bridge monitor")
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

// refresh rebuilds the whole bridge view. Each list is replaced wholesale;
// a failed sub-query leaves that list empty for the cycle and is logged.
func (p *Poller) refresh(ctx context.Context) {
	status := defaultStatus()

	operators, indexes, err := p.fetchOperators(ctx)
	if err != nil {
		utils.LogError("BRIDGE", "Bridge operator query failed: %v", err)
	} else {
		status.Operators = operators
	}

	deposits, err := p.fetchDeposits(ctx)
	if err != nil {
		utils.LogError("BRIDGE", "Current deposits query failed: %v", err)
	} else {
		status.Deposits = deposits
	}

	for _, idx := range indexes {
		withdrawals, err := p.fetchWithdrawals(ctx, idx)
		if err != nil {
			utils.LogError("BRIDGE", "Get withdrawals for operator %d failed: %v", idx, err)
			continue
		}
		status.Withdrawals = append(status.Withdrawals, withdrawals...)
	}

	reimbursements, err := p.fetchReimbursements(ctx)
	if err != nil {
		utils.LogError("BRIDGE", "Get reimbursements failed: %v", err)
	} else {
		status.Reimbursements = reimbursements
	}

	p.state.set(status)
}

// fetchOperators returns the operator statuses plus the sorted operator
// indexes for the follow-up withdrawal queries.
func (p *Poller) fetchOperators(ctx context.Context) ([]OperatorStatus, []uint32, error) {
	var table map[string]string
	if err := p.strataClient.Call(ctx, "strata_getActiveOperatorChainPubkeySet", nil, &table); err != nil {
		return nil, nil, err
	}

	indexes := make([]uint32, 0, len(table))
	for key := range table {
		idx, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return nil, nil, utils.WrapError(err, utils.ErrorTypeDecode, "bad operator index "+key, "BRIDGE")
		}
		indexes = append(indexes, uint32(idx))
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

	operators := make([]OperatorStatus, 0, len(indexes))
	for _, idx := range indexes {
		operators = append(operators, OperatorStatus{
			OperatorID:      fmt.Sprintf("Alpen Labs #%d", idx),
			OperatorAddress: table[strconv.FormatUint(uint64(idx), 10)],
			Status:          p.operatorStatus(ctx, idx),
		})
	}
	return operators, indexes, nil
}

// operatorStatus pings one operator with the configured timeout; any
// failure counts as offline.
func (p *Poller) operatorStatus(ctx context.Context, idx uint32) string {
	pingCtx, cancel := context.WithTimeout(ctx, p.cfg.PingTimeout)
	defer cancel()

	var online bool
	if err := p.bridgeClient.Call(pingCtx, "stratabridge_operatorStatus", []interface{}{idx}, &online); err != nil {
		online = false
	}
	if online {
		return "Online"
	}
	return "Offline"
}

func (p *Poller) fetchDeposits(ctx context.Context) ([]DepositInfo, error) {
	var depositIDs []uint32
	if err := p.strataClient.Call(ctx, "strata_getCurrentDeposits", nil, &depositIDs); err != nil {
		return nil, err
	}
	utils.LogDebug("BRIDGE", "current deposits %v", depositIDs)

	deposits := make([]DepositInfo, 0, len(depositIDs))
	for _, id := range depositIDs {
		info, err := p.depositInfo(ctx, id)
		if err != nil {
			utils.LogWarn("BRIDGE", "Skipping deposit %d due to RPC error: %v", id, err)
			continue
		}
		deposits = append(deposits, info)
	}
	return deposits, nil
}

func (p *Poller) depositInfo(ctx context.Context, id uint32) (DepositInfo, error) {
	var entry map[string]json.RawMessage
	if err := p.strataClient.Call(ctx, "strata_getCurrentDepositById", []interface{}{id}, &entry); err != nil {
		return DepositInfo{}, err
	}

	outpoint := strings.Trim(string(entry["output"]), `"`)
	status := depositStatus(entry["state"])

	// Placeholder txids derived from the outpoint; the bridge-side
	// stratabridge_depositInfo RPC is not live yet.
	prefix := outpoint
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	txid := "12345678" + prefix
	return DepositInfo{
		DepositRequestTxid: "abcdefgh" + prefix,
		DepositTxid:        &txid,
		Status:             status,
	}, nil
}

// depositStatus extracts a deposit's state: either a plain string or the
// single key of a state object, first letter capitalized, "-" if absent.
func depositStatus(raw json.RawMessage) string {
	if raw == nil {
		return "-"
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return capitalize(asString)
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err == nil {
		keys := make([]string, 0, len(asObject))
		for key := range asObject {
			keys = append(keys, key)
		}
		if len(keys) > 0 {
			sort.Strings(keys)
			return capitalize(keys[0])
		}
	}
	return "-"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// fetchWithdrawals returns placeholder withdrawal entries per operator; the
// stratabridge_bridgeDuties RPC is not live yet.
func (p *Poller) fetchWithdrawals(_ context.Context, idx uint32) ([]WithdrawalInfo, error) {
	fulfillment := fmt.Sprintf("ffcdbade%d", idx)
	return []WithdrawalInfo{
		{
			WithdrawalRequestTxid: fmt.Sprintf("aabbccddee%d", idx),
			FulfillmentTxid:       &fulfillment,
			Status:                "Accepted",
		},
	}, nil
}

// fetchReimbursements returns placeholder reimbursement entries; the
// stratabridge_getClaims RPC is not live yet.
func (p *Poller) fetchReimbursements(_ context.Context) ([]ReimbursementInfo, error) {
	reimbursements := make([]ReimbursementInfo, 0, 4)
	for i := 1; i <= 4; i++ {
		payout := fmt.Sprintf("123fedcbaabcdef%d", i)
		reimbursements = append(reimbursements, ReimbursementInfo{
			ClaimTxid:     fmt.Sprintf("fedcbaabcdef123%d", i),
			ChallengeStep: "N/A",
			PayoutTxid:    &payout,
			Status:        "Complete",
		})
	}
	return reimbursements, nil
}
