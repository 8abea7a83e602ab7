package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"./.env",
	"../.env",
	"./configs/.env",
}

// LoadConfig loads configuration for the current environment. A missing
// config file is not an error; the tracker then runs on defaults plus
// environment overrides.
func LoadConfig() (*Config, error) {
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("VALLEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env
	config.Wallet.PrivateKey = os.Getenv("VALLEY_WALLET_PRIVATE_KEY")

	processDurations(&config)

	return &config, nil
}

// loadDotEnvFile attempts to load environment variables from .env files
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return nil
			} else {
				lastError = err
			}
		}
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	// Gateway defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8474)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 15)      // seconds
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds

	// Logger defaults
	v.SetDefault("logger.level", "info")

	// Chain endpoint defaults. The RPC URLs have no sensible default and
	// must come from the file or the environment.
	v.SetDefault("chains.saga.pollInterval", 2)     // seconds
	v.SetDefault("chains.arbitrum.pollInterval", 2) // seconds

	// Wallet defaults
	v.SetDefault("wallet.mode", WalletModeDisconnected)
	v.SetDefault("wallet.initialChain", "saga")

	// Lifecycle defaults
	v.SetDefault("lifecycle.confirmTimeout", 60)     // seconds
	v.SetDefault("lifecycle.submit.maxAttempts", 3)
	v.SetDefault("lifecycle.submit.interval", 500)     // milliseconds
	v.SetDefault("lifecycle.submit.maxInterval", 5000) // milliseconds
	v.SetDefault("lifecycle.submit.jitterFactor", 0.2)

	// Persistence defaults
	v.SetDefault("persistence.driver", PersistenceMemory)
	v.SetDefault("persistence.stateKey", "valley/ledger")
	v.SetDefault("persistence.redis.addr", "localhost:6379")
	v.SetDefault("persistence.redis.keyPrefix", "valley")

	// Archive defaults for non-sensitive settings
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.port", "5432")
	v.SetDefault("archive.sslMode", "disable")
	v.SetDefault("archive.maxOpenConns", 10)
	v.SetDefault("archive.maxIdleConns", 5)
	v.SetDefault("archive.connMaxLifetime", 30) // minutes
	v.SetDefault("archive.logLevel", "warn")

	// Notification defaults
	v.SetDefault("notifications.ttl", 5)           // seconds
	v.SetDefault("notifications.sweepInterval", 1) // seconds

	// NATS mirror defaults
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.address", "nats://localhost:4222")
	v.SetDefault("nats.name", "valleyd")

	// Bridge defaults
	v.SetDefault("bridge.mode", BridgeModeSimulator)
	v.SetDefault("bridge.simulator.observeDelay", 2)  // seconds
	v.SetDefault("bridge.simulator.deliverDelay", 8)  // seconds
	v.SetDefault("bridge.axelarscan.baseUrl", "https://api.axelarscan.io")
	v.SetDefault("bridge.axelarscan.pollInterval", 5)     // seconds
	v.SetDefault("bridge.axelarscan.requestTimeout", 10)  // seconds
	v.SetDefault("bridge.axelarscan.transitEstimate", 20) // minutes

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
}

// getEnvironment determines the environment based on VALLEY_ENV
func getEnvironment() string {
	env := os.Getenv("VALLEY_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides ensures environment variables override config values.
// Secrets and endpoints are the values most often supplied this way.
func processEnvOverrides(v *viper.Viper) {
	// Chain endpoints
	if rpc := os.Getenv("VALLEY_SAGA_RPC_URL"); rpc != "" {
		v.Set("chains.saga.rpcUrl", rpc)
	}
	if rpc := os.Getenv("VALLEY_ARBITRUM_RPC_URL"); rpc != "" {
		v.Set("chains.arbitrum.rpcUrl", rpc)
	}

	// Archive sensitive information
	if host := os.Getenv("VALLEY_ARCHIVE_HOST"); host != "" {
		v.Set("archive.host", host)
	}
	if user := os.Getenv("VALLEY_ARCHIVE_USERNAME"); user != "" {
		v.Set("archive.username", user)
	}
	if pass := os.Getenv("VALLEY_ARCHIVE_PASSWORD"); pass != "" {
		v.Set("archive.password", pass)
	}
	if name := os.Getenv("VALLEY_ARCHIVE_DATABASE"); name != "" {
		v.Set("archive.database", name)
	}

	// Redis credentials
	if pass := os.Getenv("VALLEY_REDIS_PASSWORD"); pass != "" {
		v.Set("persistence.redis.password", pass)
	}

	// NATS token
	if token := os.Getenv("VALLEY_NATS_TOKEN"); token != "" {
		v.Set("nats.token", token)
	}

	// Server settings
	if host := os.Getenv("VALLEY_SERVER_HOST"); host != "" {
		v.Set("server.host", host)
	}
	if port := os.Getenv("VALLEY_SERVER_PORT"); port != "" {
		v.Set("server.port", port)
	}

	// Logger settings
	if level := os.Getenv("VALLEY_LOGGER_LEVEL"); level != "" {
		v.Set("logger.level", level)
	}
}

// processDurations converts duration fields from their raw numeric values
func processDurations(config *Config) {
	// Seconds
	config.Server.ReadTimeout *= time.Second
	config.Server.WriteTimeout *= time.Second
	config.Server.IdleTimeout *= time.Second
	config.Server.ReadHeaderTimeout *= time.Second
	config.Server.ShutdownTimeout *= time.Second
	config.Chains.Saga.PollInterval *= time.Second
	config.Chains.Arbitrum.PollInterval *= time.Second
	config.Lifecycle.ConfirmTimeout *= time.Second
	config.Notifications.TTL *= time.Second
	config.Notifications.SweepInterval *= time.Second
	config.Bridge.Simulator.ObserveDelay *= time.Second
	config.Bridge.Simulator.DeliverDelay *= time.Second
	config.Bridge.Axelarscan.PollInterval *= time.Second
	config.Bridge.Axelarscan.RequestTimeout *= time.Second

	// Milliseconds
	config.Lifecycle.Submit.Interval *= time.Millisecond
	config.Lifecycle.Submit.MaxInterval *= time.Millisecond

	// Minutes
	config.Bridge.Axelarscan.TransitEstimate *= time.Minute
	config.Archive.ConnMaxLifetime *= time.Minute
}
