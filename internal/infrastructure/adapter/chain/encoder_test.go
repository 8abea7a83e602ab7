package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

func TestFarmEncoderPacksKnownSelectors(t *testing.T) {
	enc, err := NewFarmEncoder()
	require.NoError(t, err)

	farmer := common.HexToAddress("0x1111111111111111111111111111111111111111")

	tests := []struct {
		name      string
		encode    func() ([]byte, error)
		signature string
	}{
		{
			name: "plant seed",
			encode: func() ([]byte, error) {
				return enc.PlantSeed("corn", decimal.RequireFromString("50000000"))
			},
			signature: "plantSeed(string,uint256)",
		},
		{
			name:      "harvest seed",
			encode:    func() ([]byte, error) { return enc.HarvestSeed("seed-42") },
			signature: "harvestSeed(string)",
		},
		{
			name:      "claim yield",
			encode:    func() ([]byte, error) { return enc.ClaimYield(farmer) },
			signature: "claimYield(address)",
		},
		{
			name:      "claimable yield",
			encode:    func() ([]byte, error) { return enc.ClaimableYield(farmer) },
			signature: "claimableYield(address)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.encode()
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(data), 4)
			assert.Equal(t, selector(tt.signature), data[:4])
		})
	}
}

func TestFarmEncoderAmountSurvivesBeyond64Bits(t *testing.T) {
	enc, err := NewFarmEncoder()
	require.NoError(t, err)

	huge := decimal.RequireFromString("340282366920938463463374607431768211456") // 2^128
	data, err := enc.PlantSeed("pumpkin", huge)
	require.NoError(t, err)

	// Head layout after the selector: word 0 is the string offset, word 1 the amount
	require.GreaterOrEqual(t, len(data), 4+64)
	amountWord := new(big.Int).SetBytes(data[4+32 : 4+64])
	assert.Equal(t, huge.String(), amountWord.String())
}

func TestFarmEncoderDecodeAmountRoundTrip(t *testing.T) {
	enc, err := NewFarmEncoder()
	require.NoError(t, err)

	raw, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	out, err := enc.abi.Methods["claimableYield"].Outputs.Pack(raw)
	require.NoError(t, err)

	got, err := enc.DecodeAmount(out)
	require.NoError(t, err)
	assert.Equal(t, raw.String(), got.String())
}

func TestFarmEncoderDecodeAmountRejectsGarbage(t *testing.T) {
	enc, err := NewFarmEncoder()
	require.NoError(t, err)

	_, err = enc.DecodeAmount([]byte{0x01, 0x02})
	assert.Error(t, err)
}
