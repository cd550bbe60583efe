// Package wallets polls the paymaster wallet balances over JSON-RPC.
package wallets

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/alpenlabs/strata-dashboards/internal/config"
	"github.com/alpenlabs/strata-dashboards/internal/rpc"
	"github.com/alpenlabs/strata-dashboards/internal/utils"
)

// Wallet is one tracked wallet with its balance in Wei, as a decimal string.
type Wallet struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

// PaymasterWallets groups the two tracked paymaster wallets.
type PaymasterWallets struct {
	Deposit    Wallet `json:"deposit"`
	Validating Wallet `json:"validating"`
}

// State holds the latest wallet balances behind a read/write lock.
type State struct {
	mu      sync.RWMutex
	wallets PaymasterWallets
}

// NewState initializes both wallets from config with a zero balance.
func NewState(cfg config.WalletsConfig) *State {
	return &State{
		wallets: PaymasterWallets{
			Deposit:    Wallet{Address: cfg.DepositWallet, Balance: "0"},
			Validating: Wallet{Address: cfg.ValidatingWallet, Balance: "0"},
		},
	}
}

// Read returns a copy of the current wallets.
func (s *State) Read() PaymasterWallets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallets
}

func (s *State) setBalances(deposit, validating string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets.Deposit.Balance = deposit
	s.wallets.Validating.Balance = validating
}

// Poller fetches balances from the reth endpoint on a fixed interval.
type Poller struct {
	state     *State
	rpcClient *rpc.Client
}

// NewPoller creates a balance poller writing into state.
func NewPoller(cfg config.NetworkConfig, state *State) *Poller {
	return &Poller{
		state:     state,
		rpcClient: rpc.NewClient(cfg.RethURL),
	}
}

// Start polls every 10 seconds until ctx is cancelled. A failed lookup
// resets that wallet's balance to "0".
func (p *Poller) Start(ctx context.Context) {
	utils.LogInfo("WALLETS", "Fetching balances...")

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.LogInfo("WALLETS", "Stopping balance poller")
			return
		case <-ticker.C:
			wallets := p.state.Read()
			deposit := p.fetchBalance(ctx, wallets.Deposit.Address)
			validating := p.fetchBalance(ctx, wallets.Validating.Address)
			p.state.setBalances(deposit, validating)
		}
	}
}

// fetchBalance calls eth_getBalance and converts the hex result to a
// decimal Wei string, "0" on any failure.
func (p *Poller) fetchBalance(ctx context.Context, address string) string {
	utils.LogDebug("WALLETS", "Fetching balance for wallet %s", address)

	var result string
	if err := p.rpcClient.Call(ctx, "eth_getBalance", []interface{}{address, "latest"}, &result); err != nil {
		utils.LogWarn("WALLETS", "Error fetching balance for %s: %v", address, err)
		return "0"
	}

	balance, ok := hexToDecimal(result)
	if !ok {
		utils.LogWarn("WALLETS", "Unparseable balance %q for %s", result, address)
		return "0"
	}
	return balance
}

// hexToDecimal converts a 0x-prefixed hex quantity to a decimal string.
func hexToDecimal(hex string) (string, bool) {
	trimmed := strings.TrimPrefix(hex, "0x")
	if trimmed == hex || trimmed == "" {
		return "", false
	}
	n := new(big.Int)
	if _, ok := n.SetString(trimmed, 16); !ok {
		return "", false
	}
	return n.String(), true
}
