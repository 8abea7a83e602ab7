package config

import "time"

// Config holds all configuration for the tracker daemon
type Config struct {
	Environment   string              `mapstructure:"environment"`
	Server        ServerConfig        `mapstructure:"server"`
	Logger        LoggerConfig        `mapstructure:"logger"`
	Chains        ChainsConfig        `mapstructure:"chains"`
	Contracts     ContractsConfig     `mapstructure:"contracts"`
	Wallet        WalletConfig        `mapstructure:"wallet"`
	Lifecycle     LifecycleConfig     `mapstructure:"lifecycle"`
	Seeds         []SeedTypeConfig    `mapstructure:"seeds"`
	Persistence   PersistenceConfig   `mapstructure:"persistence"`
	Archive       ArchiveConfig       `mapstructure:"archive"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Nats          NatsConfig          `mapstructure:"nats"`
	Bridge        BridgeConfig        `mapstructure:"bridge"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

// ServerConfig contains gateway HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

// ChainsConfig holds the RPC endpoints the tracker talks to. Axelar needs no
// endpoint here; the bridge tracker observes it through its own API.
type ChainsConfig struct {
	Saga     ChainEndpointConfig `mapstructure:"saga"`
	Arbitrum ChainEndpointConfig `mapstructure:"arbitrum"`
}

// ChainEndpointConfig describes one chain endpoint
type ChainEndpointConfig struct {
	RPCURL       string        `mapstructure:"rpcUrl"`
	ChainID      int64         `mapstructure:"chainId"`
	PollInterval time.Duration `mapstructure:"pollInterval"` // seconds
}

// ContractsConfig holds the farm contract addresses
type ContractsConfig struct {
	SagaFarm     string `mapstructure:"sagaFarm"`
	ArbitrumFarm string `mapstructure:"arbitrumFarm"`
}

// Wallet modes
const (
	WalletModeDisconnected = "disconnected"
	WalletModeKey          = "key"
)

// WalletConfig selects the wallet session the tracker acts for. The private
// key never appears in a config file; it is read from the environment.
type WalletConfig struct {
	Mode         string `mapstructure:"mode"`
	InitialChain string `mapstructure:"initialChain"`
	PrivateKey   string `mapstructure:"-"`
}

// LifecycleConfig tunes the record pipeline
type LifecycleConfig struct {
	ConfirmTimeout time.Duration     `mapstructure:"confirmTimeout"` // seconds
	Submit         SubmitRetryConfig `mapstructure:"submit"`
}

// SubmitRetryConfig controls automatic resubmission of transient failures
type SubmitRetryConfig struct {
	MaxAttempts  int           `mapstructure:"maxAttempts"`
	Interval     time.Duration `mapstructure:"interval"`    // milliseconds
	MaxInterval  time.Duration `mapstructure:"maxInterval"` // milliseconds
	JitterFactor float64       `mapstructure:"jitterFactor"`
}

// SeedTypeConfig describes one catalog entry. An empty seeds list falls back
// to the built-in catalog.
type SeedTypeConfig struct {
	ID           string `mapstructure:"id"`
	Name         string `mapstructure:"name"`
	MinDeposit   string `mapstructure:"minDeposit"` // minor units
	GrowthHours  int    `mapstructure:"growthHours"`
	YieldRateBps uint32 `mapstructure:"yieldRateBps"`
	Vault        string `mapstructure:"vault"`
}

// Persistence drivers
const (
	PersistenceMemory = "memory"
	PersistenceBadger = "badger"
	PersistenceRedis  = "redis"
)

// PersistenceConfig selects where ledger snapshots live
type PersistenceConfig struct {
	Driver   string      `mapstructure:"driver"`
	StateKey string      `mapstructure:"stateKey"`
	Path     string      `mapstructure:"path"` // badger directory, empty for in-memory
	Redis    RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains redis connection settings
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"keyPrefix"`
}

// ArchiveConfig contains the optional postgres archive settings
type ArchiveConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	LogLevel        string        `mapstructure:"logLevel"`
}

// NotificationsConfig tunes the toast feed
type NotificationsConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`           // seconds
	SweepInterval time.Duration `mapstructure:"sweepInterval"` // seconds
}

// NatsConfig contains the optional notification mirror settings
type NatsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Name    string `mapstructure:"name"`
	Token   string `mapstructure:"token"`
}

// Bridge modes
const (
	BridgeModeSimulator  = "simulator"
	BridgeModeAxelarscan = "axelarscan"
)

// BridgeConfig selects how the Axelar leg is observed
type BridgeConfig struct {
	Mode       string           `mapstructure:"mode"`
	Simulator  SimulatorConfig  `mapstructure:"simulator"`
	Axelarscan AxelarscanConfig `mapstructure:"axelarscan"`
}

// SimulatorConfig tunes the simulated bridge
type SimulatorConfig struct {
	ObserveDelay time.Duration `mapstructure:"observeDelay"` // seconds
	DeliverDelay time.Duration `mapstructure:"deliverDelay"` // seconds
}

// AxelarscanConfig tunes the Axelarscan GMP poller
type AxelarscanConfig struct {
	BaseURL         string        `mapstructure:"baseUrl"`
	PollInterval    time.Duration `mapstructure:"pollInterval"`    // seconds
	RequestTimeout  time.Duration `mapstructure:"requestTimeout"`  // seconds
	TransitEstimate time.Duration `mapstructure:"transitEstimate"` // minutes
}

// MetricsConfig toggles the prometheus endpoint
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
