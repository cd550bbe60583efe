// Package server exposes the dashboard's HTTP API and WebSocket feed.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alpenlabs/strata-dashboards/internal/bridge"
	"github.com/alpenlabs/strata-dashboards/internal/broadcaster"
	"github.com/alpenlabs/strata-dashboards/internal/network"
	"github.com/alpenlabs/strata-dashboards/internal/stats"
	"github.com/alpenlabs/strata-dashboards/internal/utils"
	"github.com/alpenlabs/strata-dashboards/internal/wallets"
)

// Server represents the HTTP server
type Server struct {
	usageMonitor    *stats.Monitor
	activityMonitor *stats.Monitor
	networkState    *network.State
	walletsState    *wallets.State
	bridgeState     *bridge.State
	broadcaster     *broadcaster.Broadcaster
}

// NewServer creates a new server over the shared dashboard state.
func NewServer(
	usageMonitor, activityMonitor *stats.Monitor,
	networkState *network.State,
	walletsState *wallets.State,
	bridgeState *bridge.State,
	bcast *broadcaster.Broadcaster,
) *Server {
	return &Server{
		usageMonitor:    usageMonitor,
		activityMonitor: activityMonitor,
		networkState:    networkState,
		walletsState:    walletsState,
		bridgeState:     bridgeState,
		broadcaster:     bcast,
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.handleWebSocket)

	// API endpoints
	mux.HandleFunc("/api/usage_stats", s.handleUsageStats)
	mux.HandleFunc("/api/activity_stats", s.handleActivityStats)
	mux.HandleFunc("/api/status", s.handleNetworkStatus)
	mux.HandleFunc("/api/balances", s.handleBalances)
	mux.HandleFunc("/api/bridge_status", s.handleBridgeStatus)

	// Health check endpoint
	mux.HandleFunc("/health", s.handleHealth)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: corsMiddleware(mux),
	}

	utils.LogInfo("SERVER", "HTTP server listening on %s", server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return utils.WrapError(err, utils.ErrorTypeTransport, "HTTP server failed", "SERVER")
	case <-ctx.Done():
		utils.LogInfo("SERVER", "Shutting down HTTP server")
		return server.Shutdown(context.Background())
	}
}

// corsMiddleware allows any origin, mirroring the permissive policy of the
// public dashboard API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
