package main

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	fieldUseCase "github.com/LukeFost/defivalley-sub000/internal/domain/usecase/field"
	ledgerUseCase "github.com/LukeFost/defivalley-sub000/internal/domain/usecase/ledger"
	"github.com/LukeFost/defivalley-sub000/internal/domain/usecase/notify"
	"github.com/LukeFost/defivalley-sub000/internal/domain/usecase/orchestrator"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	chainport "github.com/LukeFost/defivalley-sub000/internal/domain/port/chain"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"

	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/bridge"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/chain"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/identifier"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/logger"
	timeProvider "github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/time"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/metrics"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Fixed addresses for the scripted session
var (
	simFarmer       = common.HexToAddress("0x7a3b8bd8c28f1e7a9bd58e44c3a175e5dde2c5b9")
	simSagaFarm     = common.HexToAddress("0x51f3c2b9b1a7b9d4a52d9c56e3f2a1b35c1d2e3f")
	simArbitrumFarm = common.HexToAddress("0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0")
)

const simTerminalWait = 30 * time.Second

func newSimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Run a scripted farming session against a simulated chain",
		Long: `simulate drives the full lifecycle pipeline in memory: a plant that
crosses the simulated bridge, a harvest that fails at the wallet and is
retried, and a yield claim. No real endpoint is touched. The command
exits non-zero when the session deviates from the script.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation()
		},
	}
}

func runSimulation() error {
	appLogger := logger.NewNoopLogger() // pterm carries the session narration
	tp := timeProvider.NewRealTimeProvider()
	ids := identifier.NewUUIDProvider()
	tele := metrics.NewNoopTelemetry()

	recordLedger := ledgerUseCase.NewLedger(ids, tp, appLogger)
	seedField := fieldUseCase.NewField(ids, tp, appLogger)
	notifier := notify.NewNotifier(notify.Config{
		TTL:           30 * time.Second,
		SweepInterval: 0,
	}, ids, tp, appLogger, tele, nil)

	// Print every toast the pipeline emits, as the game client would show it
	subID, events := notifier.Subscribe(32)
	var printerWG sync.WaitGroup
	printerWG.Add(1)
	go func() {
		defer printerWG.Done()
		for ev := range events {
			if ev.Type != uport.NotificationPosted {
				continue
			}
			printToast(ev.Notification)
		}
	}()

	wallet := &simWallet{active: entity.ChainSaga, address: simFarmer}
	clients := chainport.Clients{
		entity.ChainSaga:     &simChain{name: entity.ChainSaga},
		entity.ChainArbitrum: &simChain{name: entity.ChainArbitrum},
	}

	encoder, err := chain.NewFarmEncoder()
	if err != nil {
		return fmt.Errorf("initialise call encoder: %w", err)
	}

	lifecycle := orchestrator.NewService(orchestrator.Dependencies{
		Ledger:   recordLedger,
		Field:    seedField,
		Notifier: notifier,
		Wallet:   wallet,
		Clients:  clients,
		Bridge: bridge.NewSimulator(bridge.SimulatorConfig{
			ObserveDelay: 1 * core.Second,
			DeliverDelay: 2 * core.Second,
		}, tp, appLogger),
		Encoder: encoder,
		Catalog: entity.DefaultSeedCatalog(),
		Contracts: orchestrator.Contracts{
			SagaFarm:     simSagaFarm,
			ArbitrumFarm: simArbitrumFarm,
		},
		Logger:    appLogger,
		Time:      tp,
		Telemetry: tele,
	}, orchestrator.Config{
		ConfirmTimeout: 10 * core.Second,
		Submit: orchestrator.SubmitRetryConfig{
			// One attempt per submission so the scripted rpc refusal fails the
			// record instead of being resubmitted under the hood
			MaxAttempts: 1,
			Interval:    100 * core.Millisecond,
		},
	})

	scriptErr := runScript(lifecycle, recordLedger, seedField, wallet)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := lifecycle.Shutdown(shutdownCtx); err != nil {
		pterm.Warning.Printf("Lifecycle followers did not drain, %s\n", err)
	}
	notifier.Unsubscribe(subID)
	printerWG.Wait()
	notifier.Shutdown()

	if scriptErr != nil {
		return scriptErr
	}

	active, history := recordLedger.Counts()
	pterm.Info.Printf("Session complete with [ %d ] active and [ %d ] settled record(s).\n", active, history)
	return nil
}

// runScript walks the session: plant, bridge transit, scripted harvest
// failure, retry, claim
func runScript(
	lifecycle uport.Orchestrator,
	recordLedger uport.RecordLedger,
	seedField uport.SeedField,
	wallet *simWallet,
) error {
	ctx := context.Background()
	deposit := decimal.NewFromInt(10_000_000)

	pterm.Info.Printf("Planting lettuce with a %s deposit as [ %s ].\n",
		entity.FormatUSDC(deposit), simFarmer.Hex())
	plant, err := lifecycle.PlantSeed(ctx, uport.PlantRequest{
		SeedTypeID: "lettuce",
		Amount:     deposit.String(),
	})
	if err != nil || !plant.Success {
		return fmt.Errorf("plant rejected: %s", describeResult(plant, err))
	}

	pterm.Info.Printf("Record [ %s ] accepted, following the bridge transit.\n", plant.RecordID)
	rec := waitForTerminal(recordLedger, plant.RecordID)
	if rec == nil || rec.Status != entity.StatusCompleted {
		return fmt.Errorf("plant record did not complete: %s", describeRecord(rec))
	}

	// The field confirmation trails the ledger move by a moment
	var seedID string
	posDeadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(posDeadline) {
		if positions := seedField.Positions(); len(positions) > 0 && positions[0].State == entity.PositionConfirmed {
			seedID = positions[0].ID
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if seedID == "" {
		return fmt.Errorf("field shows no confirmed position after the plant settled")
	}
	pterm.Info.Printf("Field confirmed position [ %s ].\n", seedID)

	// One refused broadcast; the record must fail and stay retryable
	wallet.FailNext(1)
	pterm.Info.Printf("Harvesting seed [ %s ] while the chainlet rpc refuses the broadcast.\n", seedID)
	harvest, err := lifecycle.HarvestSeed(ctx, uport.HarvestRequest{SeedID: seedID})
	if err == nil && harvest.Success {
		return fmt.Errorf("harvest was expected to fail under the scripted rpc refusal")
	}
	if harvest == nil || harvest.RecordID == "" {
		return fmt.Errorf("failed harvest lost its record: %s", describeResult(harvest, err))
	}
	pterm.Warning.Printf("Harvest failed as scripted with reason [ %s ].\n", harvest.FailureReason)

	retried, err := lifecycle.Retry(ctx, harvest.RecordID)
	if err != nil || !retried.Success {
		return fmt.Errorf("retry rejected: %s", describeResult(retried, err))
	}
	rec = waitForTerminal(recordLedger, retried.RecordID)
	if rec == nil || rec.Status != entity.StatusCompleted {
		return fmt.Errorf("retried harvest did not complete: %s", describeRecord(rec))
	}

	claim, err := lifecycle.ClaimYield(ctx, uport.ClaimRequest{})
	if err != nil || !claim.Success {
		return fmt.Errorf("claim rejected: %s", describeResult(claim, err))
	}
	rec = waitForTerminal(recordLedger, claim.RecordID)
	if rec == nil || rec.Status != entity.StatusCompleted {
		return fmt.Errorf("claim record did not complete: %s", describeRecord(rec))
	}

	// The completion toast trails the ledger move; give it a beat to print.
	time.Sleep(200 * time.Millisecond)
	return nil
}

// waitForTerminal polls the ledger until the record settles either way
func waitForTerminal(recordLedger uport.RecordLedger, id string) *entity.TransactionRecord {
	deadline := time.Now().Add(simTerminalWait)
	for time.Now().Before(deadline) {
		rec, err := recordLedger.Get(id)
		if err == nil && (rec.Status == entity.StatusCompleted || rec.Status == entity.StatusFailed) {
			return rec
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}

func printToast(n entity.Notification) {
	switch n.Level {
	case entity.NotificationSuccess:
		pterm.Success.Printf("%s, %s\n", n.Title, n.Message)
	case entity.NotificationWarning:
		pterm.Warning.Printf("%s, %s\n", n.Title, n.Message)
	case entity.NotificationError:
		pterm.Error.Printf("%s, %s\n", n.Title, n.Message)
	default:
		pterm.Info.Printf("%s, %s\n", n.Title, n.Message)
	}
}

func describeResult(res *uport.ActionResult, err error) string {
	if res != nil && res.FailureReason != "" {
		return res.FailureReason
	}
	if err != nil {
		return err.Error()
	}
	return "no result"
}

func describeRecord(rec *entity.TransactionRecord) string {
	if rec == nil {
		return "record never settled"
	}
	return fmt.Sprintf("status %s, reason %q", rec.Status, rec.FailureReason)
}

// simChain answers reads instantly and confirms every transaction on the
// first receipt poll
type simChain struct {
	name   entity.ChainName
	blocks atomic.Uint64
}

func (c *simChain) Chain() entity.ChainName {
	return c.name
}

func (c *simChain) NativeBalance(ctx context.Context, owner common.Address) (decimal.Decimal, error) {
	return decimal.New(1, 18), nil
}

func (c *simChain) TokenBalance(ctx context.Context, token, owner common.Address) (decimal.Decimal, error) {
	return decimal.NewFromInt(1_000_000_000), nil
}

func (c *simChain) CallView(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	// Any uint256 view reads as 42 USDC
	return common.BigToHash(big.NewInt(42_000_000)).Bytes(), nil
}

func (c *simChain) EstimateGas(ctx context.Context, from common.Address, call chainport.ContractCall) (uint64, error) {
	return 120_000, nil
}

func (c *simChain) WaitForReceipt(ctx context.Context, txHash common.Hash) (*chainport.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &chainport.Receipt{
		TxHash:      txHash,
		BlockNumber: c.blocks.Add(1),
		GasUsed:     71_000,
		Success:     true,
	}, nil
}

// simWallet signs nothing; it fabricates transaction hashes and can be told
// to refuse the next broadcasts to exercise the failure path
type simWallet struct {
	mu       sync.Mutex
	active   entity.ChainName
	address  common.Address
	nonce    uint64
	failNext int
}

// FailNext makes the following n submissions fail with a network error
func (w *simWallet) FailNext(n int) {
	w.mu.Lock()
	w.failNext = n
	w.mu.Unlock()
}

func (w *simWallet) Connected() bool {
	return true
}

func (w *simWallet) Address() (common.Address, error) {
	return w.address, nil
}

func (w *simWallet) ActiveChain() entity.ChainName {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *simWallet) SwitchChain(ctx context.Context, chainName entity.ChainName) error {
	w.mu.Lock()
	w.active = chainName
	w.mu.Unlock()
	return nil
}

func (w *simWallet) SubmitCall(ctx context.Context, call chainport.ContractCall) (common.Hash, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failNext > 0 {
		w.failNext--
		return common.Hash{}, fmt.Errorf("%w: chainlet rpc refused the broadcast", errs.ErrNetwork)
	}
	w.nonce++
	return crypto.Keccak256Hash([]byte(fmt.Sprintf("%s/%d", call.Chain, w.nonce))), nil
}
