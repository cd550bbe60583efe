// Package config loads process configuration from CLI flags, environment
// variables and an optional .env file. Flags win over environment, which
// wins over built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	goflags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Flags holds the command-line overrides.
type Flags struct {
	RPCURL           string `long:"rpc-url" description:"JSON-RPC endpoint for the Strata client"`
	RethURL          string `long:"reth-url" description:"JSON-RPC endpoint for Strata reth (wallet balances)"`
	BundlerURL       string `long:"bundler-url" description:"Bundler health check URL"`
	DepositWallet    string `long:"deposit-wallet" description:"Deposit paymaster wallet address"`
	ValidatingWallet string `long:"validating-wallet" description:"Validating paymaster wallet address"`
	Port             string `long:"port" description:"HTTP listen port"`
}

// NetworkConfig drives the chain-sync status poller.
type NetworkConfig struct {
	RPCURL         string
	RethURL        string
	BundlerURL     string
	MaxRetries     uint64
	TotalRetryTime time.Duration
}

// MonitoringConfig drives one instance of the windowed stats engine.
type MonitoringConfig struct {
	UserOpsQueryURL  string
	AccountsQueryURL string
	RefetchInterval  time.Duration
	QueryPageSize    uint64
	KeysPath         string
}

// BridgeConfig drives the bridge status poller.
type BridgeConfig struct {
	StrataRPCURL    string
	BridgeRPCURL    string
	RefetchInterval time.Duration
	PingTimeout     time.Duration
}

// WalletsConfig names the paymaster wallets whose balances are polled.
type WalletsConfig struct {
	DepositWallet    string
	ValidatingWallet string
}

// Config is the single source of truth for process configuration.
type Config struct {
	Port     string
	Network  NetworkConfig
	Wallets  WalletsConfig
	Usage    MonitoringConfig
	Activity MonitoringConfig
	Bridge   BridgeConfig
}

// Load parses CLI args and the environment into a Config.
// A flag parse failure or an unparseable numeric variable is fatal by
// contract: the caller is expected to exit.
func Load(args []string) (*Config, error) {
	// Best effort; absence of a .env file is not an error.
	_ = godotenv.Load()

	var flags Flags
	if _, err := goflags.ParseArgs(&flags, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	return fromFlags(&flags)
}

func fromFlags(flags *Flags) (*Config, error) {
	maxRetries, err := getEnvUint("NETWORK_STATUS_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	totalRetryTime, err := getEnvSeconds("NETWORK_STATUS_TOTAL_RETRY_TIME_S", 30*time.Second)
	if err != nil {
		return nil, err
	}

	usage, err := monitoringFromEnv("USER_OPS_QUERY_URL", "ACCOUNTS_QUERY_URL",
		"USAGE_STATS_REFETCH_INTERVAL_S", "USAGE_QUERY_PAGE_SIZE", "usage_keys.json")
	if err != nil {
		return nil, err
	}
	activity, err := monitoringFromEnv("ACTIVITY_USER_OPS_QUERY_URL", "ACTIVITY_ACCOUNTS_QUERY_URL",
		"ACTIVITY_STATS_REFETCH_INTERVAL_S", "ACTIVITY_QUERY_PAGE_SIZE", "activity_keys.json")
	if err != nil {
		return nil, err
	}

	bridgeInterval, err := getEnvSeconds("BRIDGE_STATUS_REFETCH_INTERVAL_S", 120*time.Second)
	if err != nil {
		return nil, err
	}
	pingTimeout, err := getEnvSeconds("BRIDGE_OPERATOR_PING_TIMEOUT_S", 120*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port: pick(flags.Port, "PORT", "3000"),
		Network: NetworkConfig{
			RPCURL:         pick(flags.RPCURL, "RPC_URL", "https://strataclient1ff4bc1df.devnet-annapurna.stratabtc.org"),
			RethURL:        pick(flags.RethURL, "RETH_URL", "https://reth1ff4bc1df.devnet-annapurna.stratabtc.org"),
			BundlerURL:     pick(flags.BundlerURL, "BUNDLER_URL", "https://bundler.devnet-annapurna.stratabtc.org/hth"),
			MaxRetries:     maxRetries,
			TotalRetryTime: totalRetryTime,
		},
		Wallets: WalletsConfig{
			DepositWallet:    pick(flags.DepositWallet, "DEPOSIT_PAYMASTER_WALLET", "0xCAFE"),
			ValidatingWallet: pick(flags.ValidatingWallet, "VALIDATING_PAYMASTER_WALLET", "0xC0FFEE"),
		},
		Usage:    *usage,
		Activity: *activity,
		Bridge: BridgeConfig{
			StrataRPCURL:    getEnvString("STRATA_RPC_URL", "https://strataclient1ff4bc1df.devnet-annapurna.stratabtc.org"),
			BridgeRPCURL:    getEnvString("STRATA_BRIDGE_RPC_URL", "https://strataclient1ff4bc1df.devnet-annapurna.stratabtc.org"),
			RefetchInterval: bridgeInterval,
			PingTimeout:     pingTimeout,
		},
	}

	return cfg, nil
}

func monitoringFromEnv(opsVar, accountsVar, intervalVar, pageSizeVar, keysFile string) (*MonitoringConfig, error) {
	interval, err := getEnvSeconds(intervalVar, 120*time.Second)
	if err != nil {
		return nil, err
	}
	pageSize, err := getEnvUint(pageSizeVar, 100)
	if err != nil {
		return nil, err
	}

	return &MonitoringConfig{
		UserOpsQueryURL:  getEnvString(opsVar, "http://localhost/api/v2/proxy/account-abstraction/operations"),
		AccountsQueryURL: getEnvString(accountsVar, "http://localhost/api/v2/proxy/account-abstraction/accounts"),
		RefetchInterval:  interval,
		QueryPageSize:    pageSize,
		KeysPath:         getEnvString(keysVarName(keysFile), keysFile),
	}, nil
}

// keysVarName maps a key-file name to its override variable,
// e.g. usage_keys.json -> USAGE_KEYS_PATH.
func keysVarName(keysFile string) string {
	switch keysFile {
	case "usage_keys.json":
		return "USAGE_KEYS_PATH"
	case "activity_keys.json":
		return "ACTIVITY_KEYS_PATH"
	default:
		return "KEYS_PATH"
	}
}

func pick(flagValue, envVar, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	return getEnvString(envVar, fallback)
}

func getEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvUint(key string, fallback uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s as uint64: %w", key, err)
	}
	return n, nil
}

func getEnvSeconds(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s as seconds: %w", key, err)
	}
	return time.Duration(n) * time.Second, nil
}
