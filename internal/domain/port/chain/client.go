package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
)

// Receipt is the settled outcome of a transaction on one chain
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Success     bool
}

// Client reads one chain. Implementations wrap an RPC endpoint; tests use
// in-memory fakes.
type Client interface {
	// Chain identifies which chain this client serves
	Chain() entity.ChainName
	// NativeBalance returns the gas-token balance in wei
	NativeBalance(ctx context.Context, owner common.Address) (decimal.Decimal, error)
	// TokenBalance returns an ERC-20 balance in minor units
	TokenBalance(ctx context.Context, token, owner common.Address) (decimal.Decimal, error)
	// CallView executes a read-only contract call
	CallView(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	// EstimateGas estimates the gas limit for a prepared call
	EstimateGas(ctx context.Context, from common.Address, call ContractCall) (uint64, error)
	// WaitForReceipt blocks until the transaction settles or ctx expires.
	// A deadline expiry surfaces as ErrConfirmationTimeout.
	WaitForReceipt(ctx context.Context, txHash common.Hash) (*Receipt, error)
}

// Clients indexes chain clients by chain name
type Clients map[entity.ChainName]Client

// For returns the client for a chain, or ErrChainUnsupported
func (c Clients) For(chain entity.ChainName) (Client, error) {
	client, ok := c[chain]
	if !ok {
		return nil, errs.ErrChainUnsupported
	}
	return client, nil
}
