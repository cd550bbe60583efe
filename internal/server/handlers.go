package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.broadcaster.UpgradeConnection(w, r)
}

// handleUsageStats returns the current usage stats snapshot
func (s *Server) handleUsageStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.usageMonitor.Snapshot())
}

// handleActivityStats returns the current activity stats snapshot
func (s *Server) handleActivityStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.activityMonitor.Snapshot())
}

// handleNetworkStatus returns the online/offline view of the network
func (s *Server) handleNetworkStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.networkState.Read())
}

// handleBalances returns the paymaster wallet balances
func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.walletsState.Read())
}

// handleBridgeStatus returns the bridge operator and transaction view
func (s *Server) handleBridgeStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.bridgeState.Read())
}

// handleHealth returns liveness info plus lifetime unique-sender estimates
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"clients":   s.broadcaster.GetClientCount(),
		"lifetime_unique_senders": map[string]interface{}{
			"usage":    s.usageMonitor.LifetimeUniqueSenders(),
			"activity": s.activityMonitor.LifetimeUniqueSenders(),
		},
	}
	writeJSON(w, response)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
