package chain

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	chainport "github.com/LukeFost/defivalley-sub000/internal/domain/port/chain"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/logger"
)

// hardhat's first well-known development key
const testHexKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestDisconnectedWalletRefusesEverything(t *testing.T) {
	w := NewDisconnectedWallet()

	assert.False(t, w.Connected())
	assert.Equal(t, entity.ChainName(""), w.ActiveChain())

	_, err := w.Address()
	assert.ErrorIs(t, err, errs.ErrNoWalletConnected)

	err = w.SwitchChain(context.Background(), entity.ChainSaga)
	assert.ErrorIs(t, err, errs.ErrNoWalletConnected)

	_, err = w.SubmitCall(context.Background(), chainport.ContractCall{Chain: entity.ChainSaga})
	assert.ErrorIs(t, err, errs.ErrNoWalletConnected)
}

func TestKeyWalletIdentity(t *testing.T) {
	clients := map[entity.ChainName]*EthClient{
		entity.ChainSaga: nil,
	}
	w, err := NewKeyWallet(testHexKey, clients, entity.ChainSaga, logger.NewNoopLogger())
	require.NoError(t, err)

	assert.True(t, w.Connected())
	assert.Equal(t, entity.ChainSaga, w.ActiveChain())

	addr, err := w.Address()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), addr)
}

func TestKeyWalletAcceptsPrefixedKey(t *testing.T) {
	clients := map[entity.ChainName]*EthClient{
		entity.ChainArbitrum: nil,
	}
	w, err := NewKeyWallet("0x"+testHexKey, clients, entity.ChainArbitrum, logger.NewNoopLogger())
	require.NoError(t, err)

	addr, err := w.Address()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), addr)
}

func TestKeyWalletSwitchChain(t *testing.T) {
	clients := map[entity.ChainName]*EthClient{
		entity.ChainSaga:     nil,
		entity.ChainArbitrum: nil,
	}
	w, err := NewKeyWallet(testHexKey, clients, entity.ChainSaga, logger.NewNoopLogger())
	require.NoError(t, err)

	require.NoError(t, w.SwitchChain(context.Background(), entity.ChainArbitrum))
	assert.Equal(t, entity.ChainArbitrum, w.ActiveChain())

	err = w.SwitchChain(context.Background(), entity.ChainAxelar)
	assert.ErrorIs(t, err, errs.ErrChainUnsupported)
	assert.Equal(t, entity.ChainArbitrum, w.ActiveChain(), "failed switch must not move the wallet")
}

func TestKeyWalletRejectsBadConfiguration(t *testing.T) {
	clients := map[entity.ChainName]*EthClient{
		entity.ChainSaga: nil,
	}

	tests := []struct {
		name    string
		hexKey  string
		clients map[entity.ChainName]*EthClient
		initial entity.ChainName
	}{
		{
			name:    "malformed key",
			hexKey:  "not-a-key",
			clients: clients,
			initial: entity.ChainSaga,
		},
		{
			name:    "no clients",
			hexKey:  testHexKey,
			clients: map[entity.ChainName]*EthClient{},
			initial: entity.ChainSaga,
		},
		{
			name:    "initial chain not configured",
			hexKey:  testHexKey,
			clients: clients,
			initial: entity.ChainArbitrum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKeyWallet(tt.hexKey, tt.clients, tt.initial, logger.NewNoopLogger())
			assert.Error(t, err)
		})
	}
}

func TestKeyWalletSubmitRequiresConfiguredChain(t *testing.T) {
	clients := map[entity.ChainName]*EthClient{
		entity.ChainSaga: nil,
	}
	w, err := NewKeyWallet(testHexKey, clients, entity.ChainSaga, logger.NewNoopLogger())
	require.NoError(t, err)

	_, err = w.SubmitCall(context.Background(), chainport.ContractCall{Chain: entity.ChainArbitrum})
	assert.ErrorIs(t, err, errs.ErrChainUnsupported)
}
