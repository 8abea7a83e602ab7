package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	fieldUseCase "github.com/LukeFost/defivalley-sub000/internal/domain/usecase/field"
	ledgerUseCase "github.com/LukeFost/defivalley-sub000/internal/domain/usecase/ledger"
	"github.com/LukeFost/defivalley-sub000/internal/domain/usecase/notify"
	"github.com/LukeFost/defivalley-sub000/internal/domain/usecase/orchestrator"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	chainport "github.com/LukeFost/defivalley-sub000/internal/domain/port/chain"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/persistence"

	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/announce"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/api/handler"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/api/routes"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/archive"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/bridge"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/chain"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/identifier"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/logger"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/statekeeper"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/statestore"
	timeProvider "github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/time"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/config"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/metrics"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// connectTimeout bounds every dial the gateway makes at startup
const connectTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the transaction lifecycle gateway",
		Long: `serve starts the HTTP gateway the game client talks to. It restores the
tracked records from the configured state store, connects the chain
clients and keeps following every in-flight transaction until shutdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configDir != "" {
				config.ConfigPaths = append([]string{configDir}, config.ConfigPaths...)
			}
			return runServe()
		},
	}
	cmd.Flags().StringVar(&configDir, "config-dir", "", "directory searched first for <environment>.yaml")
	return cmd
}

func runServe() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Validate essential configuration
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	appLogger.SetLevel(logger.ParseLevel(cfg.Logger.Level))

	tp := timeProvider.NewRealTimeProvider()
	ids := identifier.NewUUIDProvider()

	// Telemetry; the /metrics route is registered only when enabled
	var tele core.Telemetry = metrics.NewNoopTelemetry()
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		prom := metrics.NewPrometheusTelemetry()
		tele = prom
		metricsHandler = prom.Handler()
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), connectTimeout)
	defer cancelConnect()

	// Open the state store that keeps the ledger across restarts
	var store persistence.StateStore
	switch cfg.Persistence.Driver {
	case config.PersistenceBadger:
		store, err = statestore.NewBadgerStore(cfg.Persistence.Path, appLogger)
	case config.PersistenceRedis:
		store, err = statestore.NewRedisStore(connectCtx, statestore.RedisConfig{
			Addr:      cfg.Persistence.Redis.Addr,
			Password:  cfg.Persistence.Redis.Password,
			DB:        cfg.Persistence.Redis.DB,
			KeyPrefix: cfg.Persistence.Redis.KeyPrefix,
		}, appLogger)
	default:
		store = statestore.NewMemoryStore()
	}
	if err != nil {
		appLogger.Error("Failed to open state store", map[string]any{
			"driver": cfg.Persistence.Driver,
			"error":  err.Error(),
		})
		os.Exit(1)
	}

	// Connect the optional postgres archive for terminal records
	var archiveDB *gorm.DB
	var archiveRepo persistence.ArchiveRepository
	if cfg.Archive.Enabled {
		archiveDB, err = archive.Connect(archive.Config{
			Host:            cfg.Archive.Host,
			Port:            archive.ParsePort(cfg.Archive.Port),
			Username:        cfg.Archive.Username,
			Password:        cfg.Archive.Password,
			Database:        cfg.Archive.Database,
			SSLMode:         cfg.Archive.SSLMode,
			MaxOpenConns:    cfg.Archive.MaxOpenConns,
			MaxIdleConns:    cfg.Archive.MaxIdleConns,
			ConnMaxLifetime: cfg.Archive.ConnMaxLifetime,
			LogLevel:        cfg.Archive.LogLevel,
		}, appLogger)
		if err != nil {
			appLogger.Error("Failed to connect to archive database", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		archiveRepo = archive.NewRepository(archiveDB, appLogger)
	}

	// Wrap the ledger with write-through persistence and restore it
	recordLedger := statekeeper.NewKeeper(
		context.Background(),
		ledgerUseCase.NewLedger(ids, tp, appLogger),
		store,
		archiveRepo,
		cfg.Persistence.StateKey,
		appLogger,
	)
	if err := recordLedger.Load(); err != nil {
		appLogger.Error("Failed to restore ledger state", map[string]any{
			"key":   cfg.Persistence.StateKey,
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Connect the optional nats mirror for notifications
	var announcer *announce.NatsAnnouncer
	var mirror notify.Publisher
	if cfg.Nats.Enabled {
		announcer, err = announce.Connect(announce.Config{
			Address: cfg.Nats.Address,
			Name:    cfg.Nats.Name,
			Token:   cfg.Nats.Token,
		}, appLogger)
		if err != nil {
			appLogger.Error("Failed to connect notification announcer", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		mirror = announcer
	}

	notifier := notify.NewNotifier(notify.Config{
		TTL:           cfg.Notifications.TTL,
		SweepInterval: cfg.Notifications.SweepInterval,
	}, ids, tp, appLogger, tele, mirror)

	seedField := fieldUseCase.NewField(ids, tp, appLogger)

	// Dial one client per configured chain endpoint
	clients := make(chainport.Clients)
	ethClients := make(map[entity.ChainName]*chain.EthClient)
	endpoints := map[entity.ChainName]config.ChainEndpointConfig{
		entity.ChainSaga:     cfg.Chains.Saga,
		entity.ChainArbitrum: cfg.Chains.Arbitrum,
	}
	for chainName, endpoint := range endpoints {
		if endpoint.RPCURL == "" {
			continue
		}
		client, err := chain.Dial(connectCtx, chain.ClientConfig{
			Chain:        chainName,
			RPCURL:       endpoint.RPCURL,
			ChainID:      endpoint.ChainID,
			PollInterval: core.Duration(endpoint.PollInterval),
		}, tp, appLogger)
		if err != nil {
			appLogger.Error("Failed to connect chain client", map[string]any{
				"chain": string(chainName),
				"error": err.Error(),
			})
			os.Exit(1)
		}
		clients[chainName] = client
		ethClients[chainName] = client
	}

	// The wallet either signs with a local key or reports disconnected until
	// the player connects one
	var wallet chainport.WalletProvider
	switch cfg.Wallet.Mode {
	case config.WalletModeKey:
		wallet, err = chain.NewKeyWallet(cfg.Wallet.PrivateKey, ethClients, entity.ChainName(cfg.Wallet.InitialChain), appLogger)
		if err != nil {
			appLogger.Error("Failed to initialise key wallet", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	default:
		wallet = chain.NewDisconnectedWallet()
	}

	// Bridge milestones come from Axelarscan or the built-in simulator
	var tracker chainport.BridgeTracker
	switch cfg.Bridge.Mode {
	case config.BridgeModeAxelarscan:
		tracker, err = bridge.NewAxelarscanTracker(bridge.AxelarscanConfig{
			BaseURL:         cfg.Bridge.Axelarscan.BaseURL,
			PollInterval:    core.Duration(cfg.Bridge.Axelarscan.PollInterval),
			RequestTimeout:  core.Duration(cfg.Bridge.Axelarscan.RequestTimeout),
			TransitEstimate: core.Duration(cfg.Bridge.Axelarscan.TransitEstimate),
		}, tp, appLogger)
		if err != nil {
			appLogger.Error("Failed to initialise bridge tracker", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	default:
		tracker = bridge.NewSimulator(bridge.SimulatorConfig{
			ObserveDelay: core.Duration(cfg.Bridge.Simulator.ObserveDelay),
			DeliverDelay: core.Duration(cfg.Bridge.Simulator.DeliverDelay),
		}, tp, appLogger)
	}

	encoder, err := chain.NewFarmEncoder()
	if err != nil {
		appLogger.Error("Failed to initialise call encoder", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	catalog := entity.DefaultSeedCatalog()
	if len(cfg.Seeds) > 0 {
		catalog, err = seedCatalogFromConfig(cfg.Seeds)
		if err != nil {
			appLogger.Error("Invalid seed catalog configuration", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}

	// Initialize the lifecycle orchestrator
	lifecycle := orchestrator.NewService(orchestrator.Dependencies{
		Ledger:   recordLedger,
		Field:    seedField,
		Notifier: notifier,
		Wallet:   wallet,
		Clients:  clients,
		Bridge:   tracker,
		Encoder:  encoder,
		Catalog:  catalog,
		Contracts: orchestrator.Contracts{
			SagaFarm:     common.HexToAddress(cfg.Contracts.SagaFarm),
			ArbitrumFarm: common.HexToAddress(cfg.Contracts.ArbitrumFarm),
		},
		Logger:    appLogger,
		Time:      tp,
		Telemetry: tele,
	}, orchestrator.Config{
		ConfirmTimeout: core.Duration(cfg.Lifecycle.ConfirmTimeout),
		Submit: orchestrator.SubmitRetryConfig{
			MaxAttempts:  cfg.Lifecycle.Submit.MaxAttempts,
			Interval:     core.Duration(cfg.Lifecycle.Submit.Interval),
			MaxInterval:  core.Duration(cfg.Lifecycle.Submit.MaxInterval),
			JitterFactor: cfg.Lifecycle.Submit.JitterFactor,
		},
	})

	// Initialize API handlers
	actionHandler := handler.NewActionHandler(lifecycle, appLogger)
	recordHandler := handler.NewRecordHandler(recordLedger, archiveRepo, appLogger)
	farmHandler := handler.NewFarmHandler(seedField, wallet, catalog)
	notificationHandler := handler.NewNotificationHandler(notifier, appLogger)

	// Initialize Gin router
	router := gin.New()
	routes.SetupMiddlewares(router, appLogger)
	routes.SetupRoutes(router, actionHandler, recordHandler, farmHandler, notificationHandler, metricsHandler)

	// Create HTTP server with configurable timeout values
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		appLogger.Info("Starting gateway", map[string]any{
			"addr": server.Addr,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start gateway", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the gateway
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down gateway...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := lifecycle.Shutdown(ctx); err != nil {
		appLogger.Warn("Lifecycle followers did not drain in time", map[string]any{
			"error": err.Error(),
		})
	}

	// Closing the notifier ends the live event streams, which lets the server
	// drain their websocket handlers.
	notifier.Shutdown()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	if announcer != nil {
		if err := announcer.Disconnect(); err != nil {
			appLogger.Warn("Announcer disconnect failed", map[string]any{
				"error": err.Error(),
			})
		}
	}
	for _, client := range ethClients {
		client.Close()
	}
	if err := store.Close(); err != nil {
		appLogger.Warn("State store close failed", map[string]any{
			"error": err.Error(),
		})
	}
	if archiveDB != nil {
		if err := archive.Close(archiveDB); err != nil {
			appLogger.Warn("Archive close failed", map[string]any{
				"error": err.Error(),
			})
		}
	}

	appLogger.Info("Gateway exited gracefully", nil)
	return nil
}

// seedCatalogFromConfig builds the catalog from configured seed types,
// replacing the built-in crops entirely
func seedCatalogFromConfig(seeds []config.SeedTypeConfig) (*entity.SeedCatalog, error) {
	types := make([]entity.SeedType, 0, len(seeds))
	for _, sc := range seeds {
		minDeposit, err := decimal.NewFromString(sc.MinDeposit)
		if err != nil {
			return nil, fmt.Errorf("seed %q: invalid minDeposit %q: %w", sc.ID, sc.MinDeposit, err)
		}
		types = append(types, entity.SeedType{
			ID:             sc.ID,
			Name:           sc.Name,
			MinDeposit:     minDeposit,
			GrowthDuration: time.Duration(sc.GrowthHours) * time.Hour,
			YieldRateBps:   sc.YieldRateBps,
			Vault:          common.HexToAddress(sc.Vault),
		})
	}
	return entity.NewSeedCatalog(types)
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	// Validate server configuration
	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}

	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}

	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}

	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	// The gateway is useless without at least one chain endpoint
	if cfg.Chains.Saga.RPCURL == "" && cfg.Chains.Arbitrum.RPCURL == "" {
		missingConfigs = append(missingConfigs, "chains.saga.rpcUrl (or VALLEY_SAGA_RPC_URL environment variable)")
	}

	// Validate wallet configuration
	switch cfg.Wallet.Mode {
	case config.WalletModeDisconnected:
	case config.WalletModeKey:
		if cfg.Wallet.PrivateKey == "" {
			missingConfigs = append(missingConfigs, "wallet private key (VALLEY_WALLET_PRIVATE_KEY environment variable)")
		}
		if cfg.Wallet.InitialChain == "" {
			missingConfigs = append(missingConfigs, "wallet.initialChain")
		}
	default:
		return fmt.Errorf("invalid wallet mode: %s, must be %s or %s",
			cfg.Wallet.Mode, config.WalletModeDisconnected, config.WalletModeKey)
	}

	// Validate persistence configuration
	switch cfg.Persistence.Driver {
	case config.PersistenceMemory, config.PersistenceBadger:
	case config.PersistenceRedis:
		if cfg.Persistence.Redis.Addr == "" {
			missingConfigs = append(missingConfigs, "persistence.redis.addr")
		}
	default:
		return fmt.Errorf("invalid persistence driver: %s, must be one of: %s, %s, or %s",
			cfg.Persistence.Driver, config.PersistenceMemory, config.PersistenceBadger, config.PersistenceRedis)
	}

	// Validate bridge configuration
	switch cfg.Bridge.Mode {
	case config.BridgeModeSimulator:
	case config.BridgeModeAxelarscan:
		if cfg.Bridge.Axelarscan.BaseURL == "" {
			missingConfigs = append(missingConfigs, "bridge.axelarscan.baseUrl")
		}
	default:
		return fmt.Errorf("invalid bridge mode: %s, must be %s or %s",
			cfg.Bridge.Mode, config.BridgeModeSimulator, config.BridgeModeAxelarscan)
	}

	// Validate archive configuration when enabled
	if cfg.Archive.Enabled {
		if cfg.Archive.Host == "" {
			missingConfigs = append(missingConfigs, "archive.host (or VALLEY_ARCHIVE_HOST environment variable)")
		}
		if cfg.Archive.Username == "" {
			missingConfigs = append(missingConfigs, "archive.username (or VALLEY_ARCHIVE_USERNAME environment variable)")
		}
		if cfg.Archive.Database == "" {
			missingConfigs = append(missingConfigs, "archive.database (or VALLEY_ARCHIVE_DATABASE environment variable)")
		}
	}

	if cfg.Nats.Enabled && cfg.Nats.Address == "" {
		missingConfigs = append(missingConfigs, "nats.address")
	}

	// Contract addresses must parse when set
	for name, addr := range map[string]string{
		"contracts.sagaFarm":     cfg.Contracts.SagaFarm,
		"contracts.arbitrumFarm": cfg.Contracts.ArbitrumFarm,
	} {
		if addr != "" && !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid %s: %q is not a hex address", name, addr)
		}
	}

	// Environment should be set with a valid value
	if cfg.Environment == "" {
		missingConfigs = append(missingConfigs, "environment")
	} else if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	// Logger configuration
	if cfg.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}

	// Return error with list of missing configurations
	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	// If we're in production, do additional validation for risky settings
	if cfg.Environment == config.Production {
		var warnings []string

		if cfg.Bridge.Mode == config.BridgeModeSimulator {
			warnings = append(warnings, "bridge.mode is 'simulator'; bridge milestones will be invented, not observed")
		}

		if cfg.Persistence.Driver == config.PersistenceMemory {
			warnings = append(warnings, "persistence.driver is 'memory'; tracked transactions will not survive a restart")
		}

		if cfg.Archive.Enabled && strings.ToLower(cfg.Archive.SSLMode) == "disable" {
			warnings = append(warnings, "archive.sslMode should not be 'disable' in production")
		}

		if len(warnings) > 0 {
			log.Printf("Warning: potential issues in production configuration: %v", warnings)
		}
	}

	return nil
}
