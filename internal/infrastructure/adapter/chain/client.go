package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	chainport "github.com/LukeFost/defivalley-sub000/internal/domain/port/chain"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
)

// erc20ABI covers the single read the client needs from token contracts
const erc20ABI = `[{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}]`

const defaultPollInterval = 2 * core.Second

// ClientConfig describes one RPC endpoint
type ClientConfig struct {
	// Chain names the logical chain this endpoint serves
	Chain entity.ChainName
	// RPCURL is the JSON-RPC endpoint
	RPCURL string
	// ChainID is the expected chain id; zero skips the dial-time check
	ChainID int64
	// PollInterval paces the receipt wait loop
	PollInterval core.Duration
}

// EthClient implements the chain Client port over a go-ethereum RPC
// connection. One instance serves one chain.
type EthClient struct {
	chain        entity.ChainName
	rpc          *ethclient.Client
	chainID      *big.Int
	erc20        abi.ABI
	pollInterval core.Duration
	timeProvider core.TimeProvider
	logger       core.Logger
}

// Dial connects to an RPC endpoint and verifies it serves the expected chain
func Dial(ctx context.Context, cfg ClientConfig, timeProvider core.TimeProvider, logger core.Logger) (*EthClient, error) {
	rpc, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", errs.ErrNetwork, cfg.Chain, err)
	}
	chainID, err := rpc.ChainID(ctx)
	if err != nil {
		rpc.Close()
		return nil, fmt.Errorf("%w: chain id of %s: %v", errs.ErrNetwork, cfg.Chain, err)
	}
	if cfg.ChainID != 0 && chainID.Int64() != cfg.ChainID {
		rpc.Close()
		return nil, fmt.Errorf("endpoint for %s serves chain id %d, expected %d", cfg.Chain, chainID.Int64(), cfg.ChainID)
	}
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		rpc.Close()
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	logger.Info("chain client connected", map[string]any{
		"chain":    string(cfg.Chain),
		"chain_id": chainID.Int64(),
	})
	return &EthClient{
		chain:        cfg.Chain,
		rpc:          rpc,
		chainID:      chainID,
		erc20:        parsed,
		pollInterval: cfg.PollInterval,
		timeProvider: timeProvider,
		logger:       logger,
	}, nil
}

// Chain identifies which chain this client serves
func (c *EthClient) Chain() entity.ChainName {
	return c.chain
}

// ChainID returns the chain id reported by the endpoint
func (c *EthClient) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Raw exposes the underlying go-ethereum client for adapters that need to
// sign and broadcast through the same connection
func (c *EthClient) Raw() *ethclient.Client {
	return c.rpc
}

// Close releases the RPC connection
func (c *EthClient) Close() {
	c.rpc.Close()
}

// NativeBalance returns the gas-token balance in wei
func (c *EthClient) NativeBalance(ctx context.Context, owner common.Address) (decimal.Decimal, error) {
	bal, err := c.rpc.BalanceAt(ctx, owner, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: native balance on %s: %v", errs.ErrNetwork, c.chain, err)
	}
	return decimal.NewFromBigInt(bal, 0), nil
}

// TokenBalance returns an ERC-20 balance in minor units
func (c *EthClient) TokenBalance(ctx context.Context, token, owner common.Address) (decimal.Decimal, error) {
	data, err := c.erc20.Pack("balanceOf", owner)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pack balanceOf: %w", err)
	}
	out, err := c.CallView(ctx, token, data)
	if err != nil {
		return decimal.Zero, err
	}
	vals, err := c.erc20.Unpack("balanceOf", out)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unpack balanceOf: %w", err)
	}
	bal, ok := vals[0].(*big.Int)
	if !ok {
		return decimal.Zero, fmt.Errorf("unexpected balanceOf output type %T", vals[0])
	}
	return decimal.NewFromBigInt(bal, 0), nil
}

// CallView executes a read-only contract call
func (c *EthClient) CallView(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := c.rpc.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: view call on %s: %v", errs.ErrNetwork, c.chain, err)
	}
	return out, nil
}

// EstimateGas estimates the gas limit for a prepared call
func (c *EthClient) EstimateGas(ctx context.Context, from common.Address, call chainport.ContractCall) (uint64, error) {
	gas, err := c.rpc.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &call.To,
		Data:  call.Data,
		Value: call.Value,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: gas estimate on %s: %v", errs.ErrNetwork, c.chain, err)
	}
	return gas, nil
}

// WaitForReceipt polls until the transaction settles or ctx expires. Lookup
// errors keep the loop alive; only the context bounds the wait.
func (c *EthClient) WaitForReceipt(ctx context.Context, txHash common.Hash) (*chainport.Receipt, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, c.translateWaitErr(err, txHash)
		}

		receipt, err := c.rpc.TransactionReceipt(ctx, txHash)
		if err == nil {
			return &chainport.Receipt{
				TxHash:      receipt.TxHash,
				BlockNumber: receipt.BlockNumber.Uint64(),
				GasUsed:     receipt.GasUsed,
				Success:     receipt.Status == types.ReceiptStatusSuccessful,
			}, nil
		}
		if errors.Is(err, ethereum.NotFound) {
			c.logger.Debug("transaction not yet mined", map[string]any{
				"chain":   string(c.chain),
				"tx_hash": txHash.Hex(),
			})
		} else if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("receipt lookup failed, polling again", map[string]any{
				"chain":   string(c.chain),
				"tx_hash": txHash.Hex(),
				"error":   err.Error(),
			})
		}

		c.timeProvider.Sleep(c.pollInterval)
	}
}

func (c *EthClient) translateWaitErr(err error, txHash common.Hash) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: no receipt for %s on %s", errs.ErrConfirmationTimeout, txHash.Hex(), c.chain)
	}
	return err
}
