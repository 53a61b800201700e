package paywall

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExecution() *OutsideExecution {
	return &OutsideExecution{
		Caller:        SNIP12_CALLER_ANY,
		Nonce:         "0x42",
		ExecuteAfter:  "0",
		ExecuteBefore: "1735689600",
		Calls: []StarknetCall{
			{
				To:       TEST_ASSET_ADDRESS,
				Selector: "0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e",
				Calldata: []string{TEST_PAYTO_ADDRESS, "10000", "0"},
			},
		},
	}
}

func TestStarknetTypedDataMessageHash(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		td := NewStarknetTypedData(CHAIN_ID_STARKNET_SEPOLIA, testExecution())

		first, err := td.MessageHash(TEST_PAYER_ADDRESS)
		require.NoError(t, err)
		second, err := td.MessageHash(TEST_PAYER_ADDRESS)
		require.NoError(t, err)

		assert.True(t, first.Equal(second))
	})

	t.Run("account address binds the hash", func(t *testing.T) {
		td := NewStarknetTypedData(CHAIN_ID_STARKNET_SEPOLIA, testExecution())

		first, err := td.MessageHash(TEST_PAYER_ADDRESS)
		require.NoError(t, err)
		second, err := td.MessageHash(TEST_PAYTO_ADDRESS)
		require.NoError(t, err)

		assert.False(t, first.Equal(second))
	})

	t.Run("chain id binds the hash", func(t *testing.T) {
		sepolia := NewStarknetTypedData(CHAIN_ID_STARKNET_SEPOLIA, testExecution())
		mainnet := NewStarknetTypedData(CHAIN_ID_STARKNET_MAINNET, testExecution())

		first, err := sepolia.MessageHash(TEST_PAYER_ADDRESS)
		require.NoError(t, err)
		second, err := mainnet.MessageHash(TEST_PAYER_ADDRESS)
		require.NoError(t, err)

		assert.False(t, first.Equal(second))
	})

	t.Run("nonce binds the hash", func(t *testing.T) {
		first := testExecution()
		second := testExecution()
		second.Nonce = "0x43"

		hashOne, err := NewStarknetTypedData(CHAIN_ID_STARKNET_SEPOLIA, first).MessageHash(TEST_PAYER_ADDRESS)
		require.NoError(t, err)
		hashTwo, err := NewStarknetTypedData(CHAIN_ID_STARKNET_SEPOLIA, second).MessageHash(TEST_PAYER_ADDRESS)
		require.NoError(t, err)

		assert.False(t, hashOne.Equal(hashTwo))
	})

	t.Run("calldata binds the hash", func(t *testing.T) {
		first := testExecution()
		second := testExecution()
		second.Calls[0].Calldata[1] = "20000"

		hashOne, err := NewStarknetTypedData(CHAIN_ID_STARKNET_SEPOLIA, first).MessageHash(TEST_PAYER_ADDRESS)
		require.NoError(t, err)
		hashTwo, err := NewStarknetTypedData(CHAIN_ID_STARKNET_SEPOLIA, second).MessageHash(TEST_PAYER_ADDRESS)
		require.NoError(t, err)

		assert.False(t, hashOne.Equal(hashTwo))
	})

	t.Run("invalid account address", func(t *testing.T) {
		td := NewStarknetTypedData(CHAIN_ID_STARKNET_SEPOLIA, testExecution())
		_, err := td.MessageHash("not-an-address")
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})

	t.Run("invalid caller address", func(t *testing.T) {
		execution := testExecution()
		execution.Caller = "bogus"
		td := NewStarknetTypedData(CHAIN_ID_STARKNET_SEPOLIA, execution)
		_, err := td.MessageHash(TEST_PAYER_ADDRESS)
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})
}

func TestStarknetTypedDataJSON(t *testing.T) {
	td := NewStarknetTypedData(CHAIN_ID_STARKNET_SEPOLIA, testExecution())

	raw, err := json.Marshal(td)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, SNIP12_PRIMARY_TYPE, doc["primaryType"])

	domain, ok := doc["domain"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, SNIP12_DOMAIN_NAME, domain["name"])
	assert.Equal(t, SNIP12_DOMAIN_VERSION, domain["version"])
	assert.Equal(t, CHAIN_ID_STARKNET_SEPOLIA, domain["chainId"])
	assert.Equal(t, SNIP12_REVISION, domain["revision"])

	types, ok := doc["types"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, types, "StarknetDomain")
	assert.Contains(t, types, "OutsideExecution")
	assert.Contains(t, types, "Call")

	message, ok := doc["message"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, SNIP12_CALLER_ANY, message["caller"])
}

func TestShortString(t *testing.T) {
	// Cairo short string is ASCII bytes as a big-endian field element.
	assert.Equal(t, "0x31", shortString("1").String())
	assert.Equal(t, "0x534e5f4d41494e", shortString("SN_MAIN").String())
}

func TestFeltFromDecimalOrHex(t *testing.T) {
	t.Run("hex", func(t *testing.T) {
		value, err := feltFromDecimalOrHex("0xff")
		require.NoError(t, err)
		assert.Equal(t, "0xff", value.String())
	})

	t.Run("decimal", func(t *testing.T) {
		value, err := feltFromDecimalOrHex("255")
		require.NoError(t, err)
		assert.Equal(t, "0xff", value.String())
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := feltFromDecimalOrHex("not-a-number")
		assert.Error(t, err)
	})

	t.Run("negative rejected", func(t *testing.T) {
		_, err := feltFromDecimalOrHex("-5")
		assert.Error(t, err)
	})
}
