package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	chainport "github.com/LukeFost/defivalley-sub000/internal/domain/port/chain"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
)

// DisconnectedWallet is the wallet state before any session exists. Every
// operation reports ErrNoWalletConnected, which the orchestrator turns into
// a player-facing prompt.
type DisconnectedWallet struct{}

// NewDisconnectedWallet creates the no-session wallet provider
func NewDisconnectedWallet() chainport.WalletProvider {
	return &DisconnectedWallet{}
}

// Connected reports whether a wallet session is available
func (w *DisconnectedWallet) Connected() bool {
	return false
}

// Address returns the active wallet address
func (w *DisconnectedWallet) Address() (common.Address, error) {
	return common.Address{}, errs.ErrNoWalletConnected
}

// ActiveChain returns the chain the wallet is currently on
func (w *DisconnectedWallet) ActiveChain() entity.ChainName {
	return ""
}

// SwitchChain asks the wallet to move to the given chain
func (w *DisconnectedWallet) SwitchChain(ctx context.Context, chain entity.ChainName) error {
	return errs.ErrNoWalletConnected
}

// SubmitCall signs and broadcasts a call
func (w *DisconnectedWallet) SubmitCall(ctx context.Context, call chainport.ContractCall) (common.Hash, error) {
	return common.Hash{}, errs.ErrNoWalletConnected
}

// KeyWallet signs with a locally held private key. It stands in for the
// player wallet in headless runs; no human is present to decline a
// signature, so ErrUserRejected never originates here.
type KeyWallet struct {
	mu      sync.Mutex
	active  entity.ChainName
	key     *ecdsa.PrivateKey
	address common.Address
	clients map[entity.ChainName]*EthClient
	logger  core.Logger
}

// NewKeyWallet parses a hex-encoded private key and binds it to the given
// chain clients. initial must name one of the configured chains.
func NewKeyWallet(hexKey string, clients map[entity.ChainName]*EthClient, initial entity.ChainName, logger core.Logger) (*KeyWallet, error) {
	priv, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse wallet key: %w", err)
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("key wallet needs at least one chain client")
	}
	if _, ok := clients[initial]; !ok {
		return nil, fmt.Errorf("%w: no client for initial chain %s", errs.ErrChainUnsupported, initial)
	}
	return &KeyWallet{
		active:  initial,
		key:     priv,
		address: crypto.PubkeyToAddress(priv.PublicKey),
		clients: clients,
		logger:  logger,
	}, nil
}

// Connected reports whether a wallet session is available
func (w *KeyWallet) Connected() bool {
	return true
}

// Address returns the signer address
func (w *KeyWallet) Address() (common.Address, error) {
	return w.address, nil
}

// ActiveChain returns the chain the wallet is currently on
func (w *KeyWallet) ActiveChain() entity.ChainName {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// SwitchChain moves the wallet to the given chain
func (w *KeyWallet) SwitchChain(ctx context.Context, chain entity.ChainName) error {
	if _, ok := w.clients[chain]; !ok {
		return errs.ErrChainUnsupported
	}
	w.mu.Lock()
	w.active = chain
	w.mu.Unlock()
	return nil
}

// SubmitCall signs the call with the local key and broadcasts it
func (w *KeyWallet) SubmitCall(ctx context.Context, call chainport.ContractCall) (common.Hash, error) {
	client, ok := w.clients[call.Chain]
	if !ok {
		return common.Hash{}, errs.ErrChainUnsupported
	}
	rpc := client.Raw()

	nonce, err := rpc.PendingNonceAt(ctx, w.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: nonce on %s: %v", errs.ErrNetwork, call.Chain, err)
	}
	gasPrice, err := rpc.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: gas price on %s: %v", errs.ErrNetwork, call.Chain, err)
	}

	value := call.Value
	if value == nil {
		value = big.NewInt(0)
	}
	tx := types.NewTransaction(nonce, call.To, value, call.GasLimit, gasPrice, call.Data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(client.ChainID()), w.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign call on %s: %w", call.Chain, err)
	}
	if err := rpc.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("%w: broadcast on %s: %v", errs.ErrNetwork, call.Chain, err)
	}

	w.logger.Debug("call broadcast", map[string]any{
		"chain":   string(call.Chain),
		"tx_hash": signed.Hash().Hex(),
		"nonce":   nonce,
	})
	return signed.Hash(), nil
}
