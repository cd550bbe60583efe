// Package network polls the chain node and the bundler for liveness and
// keeps the latest status for the /api/status endpoint.
package network

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/alpenlabs/strata-dashboards/internal/config"
	"github.com/alpenlabs/strata-dashboards/internal/rpc"
	"github.com/alpenlabs/strata-dashboards/internal/utils"
)

// Status is a single endpoint's liveness.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// NetworkStatus reports the liveness of every monitored endpoint.
type NetworkStatus struct {
	BatchProducer   Status `json:"batch_producer"`
	RPCEndpoint     Status `json:"rpc_endpoint"`
	BundlerEndpoint Status `json:"bundler_endpoint"`
}

// State holds the latest network status behind a read/write lock.
type State struct {
	mu     sync.RWMutex
	status NetworkStatus
}

// NewState starts everything offline until the first poll completes.
func NewState() *State {
	return &State{
		status: NetworkStatus{
			BatchProducer:   StatusOffline,
			RPCEndpoint:     StatusOffline,
			BundlerEndpoint: StatusOffline,
		},
	}
}

// Read returns a copy of the current status.
func (s *State) Read() NetworkStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *State) set(status NetworkStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Poller drives the periodic status checks
type Poller struct {
	cfg        config.NetworkConfig
	state      *State
	rpcClient  *rpc.Client
	httpClient *http.Client
	backoff    ExponentialBackoff
}

// NewPoller creates a network status poller writing into state.
func NewPoller(cfg config.NetworkConfig, state *State) *Poller {
	return &Poller{
		cfg:        cfg,
		state:      state,
		rpcClient:  rpc.NewClient(cfg.RPCURL),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		backoff:    NewExponentialBackoff(cfg.MaxRetries, cfg.TotalRetryTime, 1.5),
	}
}

// Start polls every 10 seconds until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	utils.LogInfo("NETWORK", "Fetching statuses...")

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.LogInfo("NETWORK", "Stopping status poller")
			return
		case <-ticker.C:
			status := NetworkStatus{
				BatchProducer:   p.syncStatus(ctx),
				RPCEndpoint:     p.syncStatus(ctx),
				BundlerEndpoint: p.bundlerHealth(ctx),
			}
			utils.LogInfo("NETWORK", "Updated status %+v", status)
			p.state.set(status)
		}
	}
}

// syncStatus calls strata_syncStatus with retries; the node is online when
// the response carries a tip_height field.
func (p *Poller) syncStatus(ctx context.Context) Status {
	var retryCount uint64

	for {
		var result map[string]json.RawMessage
		err := p.rpcClient.Call(ctx, "strata_syncStatus", nil, &result)
		if err == nil {
			if _, ok := result["tip_height"]; ok {
				return StatusOnline
			}
			return StatusOffline
		}

		if retryCount >= p.cfg.MaxRetries {
			utils.LogError("NETWORK", "Could not get sync status: %v", err)
			return StatusOffline
		}
		delay := p.backoff.Delay(retryCount)
		if delay > 0 {
			utils.LogInfo("NETWORK", "Retrying strata_syncStatus after %s", delay)
			select {
			case <-ctx.Done():
				return StatusOffline
			case <-time.After(delay):
			}
		}
		retryCount++
	}
}

// bundlerHealth checks the bundler health URL; online iff the body
// contains "ok".
func (p *Poller) bundlerHealth(ctx context.Context) Status {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BundlerURL, nil)
	if err != nil {
		return StatusOffline
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return StatusOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return StatusOffline
	}
	if strings.Contains(string(body), "ok") {
		return StatusOnline
	}
	return StatusOffline
}
