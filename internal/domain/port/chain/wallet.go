package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
)

// ContractCall is a prepared invocation of a farm contract on one chain
type ContractCall struct {
	Chain    entity.ChainName
	To       common.Address
	Data     []byte
	Value    *big.Int // native value attached to the call, nil for none
	GasLimit uint64
}

// WalletProvider is the boundary to the player's wallet. Connection and
// chain-switching mechanics live on the other side of this port; the
// orchestrator only consumes the outcomes.
type WalletProvider interface {
	// Connected reports whether a wallet session is available
	Connected() bool
	// Address returns the active wallet address, or ErrNoWalletConnected
	Address() (common.Address, error)
	// ActiveChain returns the chain the wallet is currently on
	ActiveChain() entity.ChainName
	// SwitchChain asks the wallet to move to the given chain
	SwitchChain(ctx context.Context, chain entity.ChainName) error
	// SubmitCall signs and broadcasts a call, returning the transaction hash.
	// A declined signature surfaces as ErrUserRejected.
	SubmitCall(ctx context.Context, call ContractCall) (common.Hash, error)
}
