package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	chainport "github.com/LukeFost/defivalley-sub000/internal/domain/port/chain"
)

// fakeWallet scripts wallet behavior per test. Submission outcomes are
// consumed in order; an exhausted script submits successfully.
type fakeWallet struct {
	mu         sync.Mutex
	connected  bool
	address    common.Address
	activeOn   entity.ChainName
	switchErr  error
	submitErrs []error
	submitted  []chainport.ContractCall
	hashSeq    int
}

func newFakeWallet(address common.Address) *fakeWallet {
	return &fakeWallet{connected: true, address: address, activeOn: entity.ChainArbitrum}
}

func (w *fakeWallet) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

func (w *fakeWallet) Address() (common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.connected {
		return common.Address{}, errs.ErrNoWalletConnected
	}
	return w.address, nil
}

func (w *fakeWallet) ActiveChain() entity.ChainName {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeOn
}

func (w *fakeWallet) SwitchChain(_ context.Context, chain entity.ChainName) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.switchErr != nil {
		return w.switchErr
	}
	w.activeOn = chain
	return nil
}

func (w *fakeWallet) SubmitCall(_ context.Context, call chainport.ContractCall) (common.Hash, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitted = append(w.submitted, call)
	if len(w.submitErrs) > 0 {
		err := w.submitErrs[0]
		w.submitErrs = w.submitErrs[1:]
		if err != nil {
			return common.Hash{}, err
		}
	}
	w.hashSeq++
	return crypto.Keccak256Hash([]byte(fmt.Sprintf("%s-tx-%d", call.Chain, w.hashSeq))), nil
}

func (w *fakeWallet) submitCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.submitted)
}

func (w *fakeWallet) lastSubmitted() (chainport.ContractCall, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.submitted) == 0 {
		return chainport.ContractCall{}, false
	}
	return w.submitted[len(w.submitted)-1], true
}

// fakeClient serves scripted receipts for one chain. Unscripted hashes
// settle successfully.
type fakeClient struct {
	mu          sync.Mutex
	chain       entity.ChainName
	receipts    map[common.Hash]*chainport.Receipt
	receiptErrs map[common.Hash]error
	anyErr      error
	revert      bool
	waits       int
}

func newFakeClient(chain entity.ChainName) *fakeClient {
	return &fakeClient{
		chain:       chain,
		receipts:    make(map[common.Hash]*chainport.Receipt),
		receiptErrs: make(map[common.Hash]error),
	}
}

func (c *fakeClient) Chain() entity.ChainName { return c.chain }

func (c *fakeClient) NativeBalance(context.Context, common.Address) (decimal.Decimal, error) {
	return decimal.NewFromInt(1_000_000_000_000_000_000), nil
}

func (c *fakeClient) TokenBalance(context.Context, common.Address, common.Address) (decimal.Decimal, error) {
	return decimal.NewFromInt(500_000_000), nil
}

func (c *fakeClient) CallView(context.Context, common.Address, []byte) ([]byte, error) {
	return nil, nil
}

func (c *fakeClient) EstimateGas(context.Context, common.Address, chainport.ContractCall) (uint64, error) {
	return 210_000, nil
}

func (c *fakeClient) WaitForReceipt(_ context.Context, txHash common.Hash) (*chainport.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits++
	if c.anyErr != nil {
		return nil, c.anyErr
	}
	if err, ok := c.receiptErrs[txHash]; ok {
		return nil, err
	}
	if receipt, ok := c.receipts[txHash]; ok {
		return receipt, nil
	}
	return &chainport.Receipt{TxHash: txHash, BlockNumber: 100, GasUsed: 90_000, Success: !c.revert}, nil
}

// revertAll makes every wait on this client settle as reverted
func (c *fakeClient) revertAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revert = true
}

// failAllWaits makes every wait on this client fail with err
func (c *fakeClient) failAllWaits(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anyErr = err
}

// fakeBridge replays a scripted signal sequence for every followed leg.
// Signals are buffered ahead of time so followers never block on the fake.
type fakeBridge struct {
	mu        sync.Mutex
	legs      []chainport.Leg
	script    []chainport.Signal
	followErr error
	transit   time.Duration
}

func newFakeBridge() *fakeBridge {
	b := &fakeBridge{transit: 30 * time.Second}
	b.script = []chainport.Signal{
		{Phase: chainport.PhaseSourceObserved},
		{Phase: chainport.PhaseDelivered, DeliveryHash: crypto.Keccak256Hash([]byte("delivery"))},
	}
	return b
}

func (b *fakeBridge) Follow(_ context.Context, leg chainport.Leg) (<-chan chainport.Signal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.followErr != nil {
		return nil, b.followErr
	}
	b.legs = append(b.legs, leg)
	ch := make(chan chainport.Signal, len(b.script))
	for _, sig := range b.script {
		ch <- sig
	}
	close(ch)
	return ch, nil
}

func (b *fakeBridge) EstimateTransit(chainport.Leg) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transit
}

func (b *fakeBridge) followedLegs() []chainport.Leg {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]chainport.Leg(nil), b.legs...)
}

func (b *fakeBridge) deliveryHash() common.Hash {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sig := range b.script {
		if sig.Phase == chainport.PhaseDelivered {
			return sig.DeliveryHash
		}
	}
	return common.Hash{}
}

// fakeEncoder returns recognizable calldata per operation
type fakeEncoder struct{}

func (fakeEncoder) PlantSeed(seedTypeID string, amount decimal.Decimal) ([]byte, error) {
	return []byte("plant:" + seedTypeID + ":" + amount.String()), nil
}

func (fakeEncoder) HarvestSeed(seedID string) ([]byte, error) {
	return []byte("harvest:" + seedID), nil
}

func (fakeEncoder) ClaimYield(farmer common.Address) ([]byte, error) {
	return []byte("claim:" + farmer.Hex()), nil
}

func (fakeEncoder) ClaimableYield(farmer common.Address) ([]byte, error) {
	return []byte("claimable:" + farmer.Hex()), nil
}

func (fakeEncoder) DecodeAmount([]byte) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
