package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Setenv("VALLEY_ENV", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8474, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, WalletModeDisconnected, cfg.Wallet.Mode)
	assert.Equal(t, PersistenceMemory, cfg.Persistence.Driver)
	assert.Equal(t, "valley/ledger", cfg.Persistence.StateKey)
	assert.Equal(t, BridgeModeSimulator, cfg.Bridge.Mode)
	assert.False(t, cfg.Archive.Enabled)
	assert.False(t, cfg.Nats.Enabled)
	assert.True(t, cfg.Metrics.Enabled)

	// raw numbers become durations
	assert.Equal(t, 60*time.Second, cfg.Lifecycle.ConfirmTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Lifecycle.Submit.Interval)
	assert.Equal(t, 5*time.Second, cfg.Lifecycle.Submit.MaxInterval)
	assert.Equal(t, 2*time.Second, cfg.Chains.Saga.PollInterval)
	assert.Equal(t, 8*time.Second, cfg.Bridge.Simulator.DeliverDelay)
	assert.Equal(t, 20*time.Minute, cfg.Bridge.Axelarscan.TransitEstimate)
	assert.Equal(t, 5*time.Second, cfg.Notifications.TTL)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("VALLEY_ENV", "test")
	t.Setenv("VALLEY_SAGA_RPC_URL", "https://rpc.valley.example/saga")
	t.Setenv("VALLEY_SERVER_PORT", "9000")
	t.Setenv("VALLEY_LOGGER_LEVEL", "debug")
	t.Setenv("VALLEY_WALLET_PRIVATE_KEY", "deadbeef")
	t.Setenv("VALLEY_NATS_TOKEN", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://rpc.valley.example/saga", cfg.Chains.Saga.RPCURL)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "deadbeef", cfg.Wallet.PrivateKey)
	assert.Equal(t, "s3cret", cfg.Nats.Token)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9100
  shutdownTimeout: 5
chains:
  saga:
    rpcUrl: https://chainlet.example/rpc
    chainId: 2751669528484000
    pollInterval: 3
  arbitrum:
    rpcUrl: https://arb.example/rpc
    chainId: 42161
contracts:
  sagaFarm: "0x1111111111111111111111111111111111111111"
  arbitrumFarm: "0x2222222222222222222222222222222222222222"
wallet:
  mode: key
  initialChain: saga
lifecycle:
  confirmTimeout: 90
persistence:
  driver: badger
  path: /tmp/valley-state
bridge:
  mode: axelarscan
  axelarscan:
    pollInterval: 7
seeds:
  - id: lettuce
    name: Lettuce
    minDeposit: "10000000"
    growthHours: 6
    yieldRateBps: 300
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(yaml), 0o644))

	old := ConfigPaths
	ConfigPaths = append([]string{dir}, old...)
	t.Cleanup(func() { ConfigPaths = old })

	t.Setenv("VALLEY_ENV", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "https://chainlet.example/rpc", cfg.Chains.Saga.RPCURL)
	assert.Equal(t, int64(2751669528484000), cfg.Chains.Saga.ChainID)
	assert.Equal(t, 3*time.Second, cfg.Chains.Saga.PollInterval)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", cfg.Contracts.SagaFarm)
	assert.Equal(t, WalletModeKey, cfg.Wallet.Mode)
	assert.Equal(t, 90*time.Second, cfg.Lifecycle.ConfirmTimeout)
	assert.Equal(t, PersistenceBadger, cfg.Persistence.Driver)
	assert.Equal(t, "/tmp/valley-state", cfg.Persistence.Path)
	assert.Equal(t, BridgeModeAxelarscan, cfg.Bridge.Mode)
	assert.Equal(t, 7*time.Second, cfg.Bridge.Axelarscan.PollInterval)

	require.Len(t, cfg.Seeds, 1)
	assert.Equal(t, "lettuce", cfg.Seeds[0].ID)
	assert.Equal(t, "10000000", cfg.Seeds[0].MinDeposit)
	assert.Equal(t, 6, cfg.Seeds[0].GrowthHours)
}
