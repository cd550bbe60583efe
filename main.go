package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alpenlabs/strata-dashboards/internal/bridge"
	"github.com/alpenlabs/strata-dashboards/internal/broadcaster"
	"github.com/alpenlabs/strata-dashboards/internal/config"
	"github.com/alpenlabs/strata-dashboards/internal/fetcher"
	"github.com/alpenlabs/strata-dashboards/internal/network"
	"github.com/alpenlabs/strata-dashboards/internal/server"
	"github.com/alpenlabs/strata-dashboards/internal/stats"
	"github.com/alpenlabs/strata-dashboards/internal/utils"
	"github.com/alpenlabs/strata-dashboards/internal/wallets"
)

func main() {
	utils.LogInfo("MAIN", "Starting Strata dashboard backend...")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		utils.LogError("MAIN", "Failed to load configuration: %v", err)
		os.Exit(1)
	}
	utils.LogInfo("MAIN", "Configuration loaded")

	usageCatalog, err := stats.LoadCatalog(cfg.Usage.KeysPath)
	if err != nil {
		utils.LogError("MAIN", "Failed to load usage stat keys: %v", err)
		os.Exit(1)
	}
	activityCatalog, err := stats.LoadCatalog(cfg.Activity.KeysPath)
	if err != nil {
		utils.LogError("MAIN", "Failed to load activity stat keys: %v", err)
		os.Exit(1)
	}

	client := fetcher.NewClient()
	usageStore := stats.NewStore(usageCatalog)
	activityStore := stats.NewStore(activityCatalog)
	usageMonitor := stats.NewMonitor("USAGE", cfg.Usage, usageCatalog, usageStore, client)
	activityMonitor := stats.NewMonitor("ACTIVITY", cfg.Activity, activityCatalog, activityStore, client)

	networkState := network.NewState()
	networkPoller := network.NewPoller(cfg.Network, networkState)

	walletsState := wallets.NewState(cfg.Wallets)
	walletsPoller := wallets.NewPoller(cfg.Network, walletsState)

	bridgeState := bridge.NewState()
	bridgePoller := bridge.NewPoller(cfg.Bridge, bridgeState)

	// New WebSocket clients get the full dashboard state on connect.
	bcast := broadcaster.NewBroadcaster(broadcaster.DefaultConfig(), func() map[string]interface{} {
		return map[string]interface{}{
			"usage_stats":    usageStore.Read(),
			"activity_stats": activityStore.Read(),
			"network_status": networkState.Read(),
			"balances":       walletsState.Read(),
			"bridge_status":  bridgeState.Read(),
		}
	})

	usageMonitor.SetCycleHook(func(snap stats.Snapshot, _ stats.CycleResult) {
		bcast.Broadcast("usage_stats", snap)
	})
	activityMonitor.SetCycleHook(func(snap stats.Snapshot, _ stats.CycleResult) {
		bcast.Broadcast("activity_stats", snap)
	})

	srv := server.NewServer(usageMonitor, activityMonitor, networkState, walletsState, bridgeState, bcast)

	var wg sync.WaitGroup

	start := func(name string, run func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(ctx)
		}()
		utils.LogDebug("MAIN", "%s started", name)
	}

	start("broadcaster", bcast.Start)
	start("usage monitor", usageMonitor.Start)
	start("activity monitor", activityMonitor.Start)
	start("network poller", networkPoller.Start)
	start("wallets poller", walletsPoller.Start)
	start("bridge poller", bridgePoller.Start)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Start(ctx, cfg.Port); err != nil {
			utils.LogError("MAIN", "Server error: %v", err)
		}
	}()

	utils.LogInfo("MAIN", "Dashboard backend started on port %s", cfg.Port)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	utils.LogInfo("MAIN", "Shutdown signal received...")

	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		utils.LogInfo("MAIN", "Graceful shutdown completed")
	case <-time.After(10 * time.Second):
		utils.LogWarn("MAIN", "Shutdown timeout reached")
	}
}
