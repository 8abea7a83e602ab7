package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	chainport "github.com/LukeFost/defivalley-sub000/internal/domain/port/chain"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
)

// Contracts holds the farm contract addresses the orchestrator submits to
type Contracts struct {
	SagaFarm     common.Address
	ArbitrumFarm common.Address
}

func (c Contracts) addressFor(chain entity.ChainName) (common.Address, error) {
	switch chain {
	case entity.ChainSaga:
		return c.SagaFarm, nil
	case entity.ChainArbitrum:
		return c.ArbitrumFarm, nil
	default:
		return common.Address{}, fmt.Errorf("%w: no farm contract on %s", errs.ErrChainUnsupported, chain)
	}
}

// Config tunes the lifecycle pipeline
type Config struct {
	// ConfirmTimeout bounds each receipt wait. A source-chain wait that
	// exceeds it leaves a note on the record instead of failing it.
	ConfirmTimeout core.Duration
	Submit         SubmitRetryConfig
}

// SubmitRetryConfig controls the automatic resubmission of transient
// wallet submission failures
type SubmitRetryConfig struct {
	MaxAttempts  int
	Interval     core.Duration
	MaxInterval  core.Duration
	JitterFactor float64
}

// DefaultConfig returns the pipeline defaults
func DefaultConfig() Config {
	return Config{
		ConfirmTimeout: 60 * core.Second,
		Submit: SubmitRetryConfig{
			MaxAttempts:  3,
			Interval:     500 * core.Millisecond,
			MaxInterval:  5 * core.Second,
			JitterFactor: 0.2, // spread resubmissions to avoid hammering a recovering RPC
		},
	}
}

// Dependencies bundles the ports the orchestrator drives
type Dependencies struct {
	Ledger    uport.RecordLedger
	Field     uport.SeedField
	Notifier  uport.Notifier
	Wallet    chainport.WalletProvider
	Clients   chainport.Clients
	Bridge    chainport.BridgeTracker
	Encoder   chainport.CallEncoder
	Catalog   *entity.SeedCatalog
	Contracts Contracts
	Logger    core.Logger
	Time      core.TimeProvider
	Telemetry core.Telemetry
}

// Service drives transaction records through their cross-chain lifecycle.
// The synchronous leg runs validation, wallet confirmation and submission;
// one follower goroutine per record then tracks confirmations and bridge
// milestones in the background. Records are independent; there is no
// cross-record ordering.
type Service struct {
	ledger    uport.RecordLedger
	field     uport.SeedField
	notifier  uport.Notifier
	wallet    chainport.WalletProvider
	clients   chainport.Clients
	bridge    chainport.BridgeTracker
	encoder   chainport.CallEncoder
	catalog   *entity.SeedCatalog
	contracts Contracts

	logger       core.Logger
	timeProvider core.TimeProvider
	telemetry    core.Telemetry
	cfg          Config

	baseCtx  context.Context
	cancel   context.CancelFunc
	followWG sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewService creates the lifecycle orchestrator
func NewService(deps Dependencies, cfg Config) *Service {
	mustHave := map[string]any{
		"Ledger":    deps.Ledger,
		"Field":     deps.Field,
		"Notifier":  deps.Notifier,
		"Wallet":    deps.Wallet,
		"Bridge":    deps.Bridge,
		"Encoder":   deps.Encoder,
		"Logger":    deps.Logger,
		"Time":      deps.Time,
		"Telemetry": deps.Telemetry,
	}
	for name, dep := range mustHave {
		if dep == nil {
			panic("orchestrator: missing dependency " + name)
		}
	}
	if deps.Catalog == nil {
		panic("orchestrator: missing dependency Catalog")
	}
	if len(deps.Clients) == 0 {
		panic("orchestrator: missing dependency Clients")
	}

	defaults := DefaultConfig()
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = defaults.ConfirmTimeout
	}
	if cfg.Submit.MaxAttempts <= 0 {
		cfg.Submit.MaxAttempts = defaults.Submit.MaxAttempts
	}
	if cfg.Submit.Interval <= 0 {
		cfg.Submit.Interval = defaults.Submit.Interval
	}
	if cfg.Submit.MaxInterval <= 0 {
		cfg.Submit.MaxInterval = defaults.Submit.MaxInterval
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	return &Service{
		ledger:       deps.Ledger,
		field:        deps.Field,
		notifier:     deps.Notifier,
		wallet:       deps.Wallet,
		clients:      deps.Clients,
		bridge:       deps.Bridge,
		encoder:      deps.Encoder,
		catalog:      deps.Catalog,
		contracts:    deps.Contracts,
		logger:       deps.Logger,
		timeProvider: deps.Time,
		telemetry:    deps.Telemetry,
		cfg:          cfg,
		baseCtx:      baseCtx,
		cancel:       cancel,
	}
}

// PlantSeed starts a deposit on the chainlet that grows into a seed on the
// DeFi chain. The returned result reports only the synchronous leg; the
// record keeps advancing in the background.
func (s *Service) PlantSeed(ctx context.Context, req uport.PlantRequest) (*uport.ActionResult, error) {
	if err := s.accepting(); err != nil {
		return resultFromError("", err), err
	}

	farmer, err := s.connectedWallet()
	if err != nil {
		return s.reject(entity.KindPlantSeed, err)
	}
	payload, seedType, err := s.validatePlant(req)
	if err != nil {
		return s.reject(entity.KindPlantSeed, err)
	}

	rec, err := s.ledger.Add(entity.KindPlantSeed, farmer, payload)
	if err != nil {
		return s.reject(entity.KindPlantSeed, err)
	}
	s.telemetry.RecordStarted(string(rec.Kind))
	s.gaugeActive()

	// The seed shows up on the field immediately; the chain catches up later.
	s.field.Plant(rec.ID, farmer, seedType.ID, payload.Amount)

	s.logger.Info("plant requested", map[string]any{
		"record_id": rec.ID,
		"seed_type": seedType.ID,
		"amount":    payload.Amount.String(),
		"farmer":    farmer.Hex(),
	})
	return s.runSubmission(ctx, rec)
}

// HarvestSeed starts the withdrawal of one grown seed
func (s *Service) HarvestSeed(ctx context.Context, req uport.HarvestRequest) (*uport.ActionResult, error) {
	if err := s.accepting(); err != nil {
		return resultFromError("", err), err
	}

	farmer, err := s.connectedWallet()
	if err != nil {
		return s.reject(entity.KindHarvestSeed, err)
	}
	if req.SeedID == "" {
		return s.reject(entity.KindHarvestSeed, fmt.Errorf("%w: missing seed id", errs.ErrValidation))
	}

	rec, err := s.ledger.Add(entity.KindHarvestSeed, farmer, entity.HarvestPayload(req.SeedID, req.GasEstimate))
	if err != nil {
		return s.reject(entity.KindHarvestSeed, err)
	}
	s.telemetry.RecordStarted(string(rec.Kind))
	s.gaugeActive()

	s.logger.Info("harvest requested", map[string]any{
		"record_id": rec.ID,
		"seed_id":   req.SeedID,
		"farmer":    farmer.Hex(),
	})
	return s.runSubmission(ctx, rec)
}

// BatchHarvest harvests a set of seeds as independent records. One seed
// failing never blocks the others; each result stands alone.
func (s *Service) BatchHarvest(ctx context.Context, req uport.BatchHarvestRequest) ([]*uport.ActionResult, error) {
	if err := s.accepting(); err != nil {
		return nil, err
	}
	if len(req.SeedIDs) == 0 {
		_, err := s.reject(entity.KindHarvestSeed, errs.ErrEmptyBatch)
		return nil, err
	}

	results := make([]*uport.ActionResult, 0, len(req.SeedIDs))
	for _, seedID := range req.SeedIDs {
		res, err := s.HarvestSeed(ctx, uport.HarvestRequest{SeedID: seedID, GasEstimate: req.GasEstimate})
		if res == nil {
			res = resultFromError("", err)
		}
		results = append(results, res)
	}
	return results, nil
}

// ClaimYield claims the accrued yield on the DeFi chain. No bridge leg is
// involved; the claim settles on the chain it is submitted to.
func (s *Service) ClaimYield(ctx context.Context, req uport.ClaimRequest) (*uport.ActionResult, error) {
	if err := s.accepting(); err != nil {
		return resultFromError("", err), err
	}

	farmer, err := s.connectedWallet()
	if err != nil {
		return s.reject(entity.KindClaimYield, err)
	}

	rec, err := s.ledger.Add(entity.KindClaimYield, farmer, entity.ClaimPayload(req.GasEstimate))
	if err != nil {
		return s.reject(entity.KindClaimYield, err)
	}
	s.telemetry.RecordStarted(string(rec.Kind))
	s.gaugeActive()

	s.logger.Info("claim requested", map[string]any{
		"record_id": rec.ID,
		"farmer":    farmer.Hex(),
	})
	return s.runSubmission(ctx, rec)
}

// Retry rewinds a failed record and replays its submission with the
// original payload. The attempt counter moves on, so anything still in
// flight from the failed attempt is ignored when it lands.
func (s *Service) Retry(ctx context.Context, recordID string) (*uport.ActionResult, error) {
	if err := s.accepting(); err != nil {
		return resultFromError(recordID, err), err
	}

	if _, err := s.connectedWallet(); err != nil {
		return s.reject("", err)
	}

	rec, err := s.ledger.Retry(recordID)
	if err != nil {
		s.logger.Warn("retry refused", map[string]any{
			"record_id": recordID,
			"error":     err.Error(),
		})
		return resultFromError(recordID, err), err
	}

	if rec.Kind == entity.KindPlantSeed {
		s.field.Reinstate(rec.ID)
	}
	s.telemetry.RecordRetried(string(rec.Kind))
	s.notifier.Push(entity.NotificationInfo, "Retrying", retryMessage(rec.Kind), false)

	s.logger.Info("retrying record", map[string]any{
		"record_id": rec.ID,
		"kind":      string(rec.Kind),
		"attempt":   rec.RetryCount,
	})
	return s.runSubmission(ctx, rec)
}

// Shutdown stops accepting work, cancels the followers and waits for them
// up to the context deadline
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Info("shutting down lifecycle orchestrator", nil)
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.followWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("lifecycle orchestrator stopped", nil)
		return nil
	case <-ctx.Done():
		s.logger.Warn("shutdown aborted before followers finished", map[string]any{
			"error": ctx.Err().Error(),
		})
		return ctx.Err()
	}
}

// accepting reports whether new work may start
func (s *Service) accepting() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: orchestrator is shutting down", errs.ErrInternalServer)
	}
	return nil
}

// connectedWallet returns the active wallet address or the rejection error
func (s *Service) connectedWallet() (common.Address, error) {
	if !s.wallet.Connected() {
		return common.Address{}, errs.ErrNoWalletConnected
	}
	return s.wallet.Address()
}

// reject turns a preflight failure into a result, a log line and exactly
// one auto-dismissing notification. No record exists at this point.
func (s *Service) reject(kind entity.TransactionKind, err error) (*uport.ActionResult, error) {
	fields := map[string]any{"error": err.Error()}
	if logged, ok := err.(interface{ LogFields() map[string]any }); ok {
		fields = logged.LogFields()
	}
	if kind != "" {
		fields["kind"] = string(kind)
	}
	s.logger.Warn("action rejected", fields)

	s.notifier.Push(entity.NotificationError, rejectTitle(kind), playerMessage(err), false)
	return resultFromError("", err), err
}

// gaugeActive refreshes the active-records gauge from the ledger
func (s *Service) gaugeActive() {
	active, _ := s.ledger.Counts()
	s.telemetry.SetActiveRecords(active)
}

func resultFromError(recordID string, err error) *uport.ActionResult {
	return &uport.ActionResult{
		Success:       false,
		RecordID:      recordID,
		FailureReason: errs.FailureReason(err),
		ErrorMessage:  err.Error(),
		ErrorCode:     errs.ErrorCode(err),
	}
}
