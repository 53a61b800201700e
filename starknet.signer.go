// Package paywall provides x402 payment middleware for Go web applications.
//
// This file adapts Starknet account signing to the x402 client Signer
// interface. The signer builds a SNIP-9 OutsideExecution with a single
// ERC-20 transfer, hashes it per SNIP-12 revision 1 and signs on the Stark
// curve.
package paywall

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/curve"
	"github.com/NethermindEth/starknet.go/utils"
	x402 "github.com/mark3labs/x402-go"
	"go.uber.org/zap"
)

// StarknetSignerConfig configures a StarknetSigner.
type StarknetSignerConfig struct {
	// PrivateKey is the Stark curve private key as a 0x hex string.
	PrivateKey string

	// AccountAddress is the payer's account contract address.
	AccountAddress string

	// Network is the CAIP-2 network id ("starknet:SN_MAIN" or
	// "starknet:SN_SEPOLIA").
	Network string

	// Tokens lists the ERC-20 tokens this signer will pay with. Empty means
	// the signer accepts any asset the server requires.
	Tokens []x402.TokenConfig

	// MaxAmount is the per-call spending limit in base units. Nil means no
	// limit.
	MaxAmount *big.Int

	// Priority orders this signer among others. Lower is tried first.
	Priority int

	// Logger is optional. Defaults to zap.NewNop.
	Logger *zap.Logger
}

// StarknetSigner signs x402 payments on Starknet. It implements the x402
// client Signer interface, so it plugs into any client that selects signers
// from a server's accepts list.
type StarknetSigner struct {
	privateKey *big.Int
	address    string
	network    string
	chainID    string
	tokens     []x402.TokenConfig
	maxAmount  *big.Int
	priority   int
	logger     *zap.Logger
}

// NewStarknetSigner creates a Starknet payment signer.
func NewStarknetSigner(config StarknetSignerConfig) (*StarknetSigner, error) {
	if config.PrivateKey == "" {
		return nil, NewValidationError("private_key", "cannot be empty")
	}
	if err := ValidateStarknetAddress(config.AccountAddress); err != nil {
		return nil, err
	}
	if !IsSupportedNetwork(config.Network) {
		return nil, WrapError(ErrUnsupportedNetwork, config.Network)
	}

	key, ok := new(big.Int).SetString(strings.TrimPrefix(config.PrivateKey, "0x"), 16)
	if !ok || key.Sign() <= 0 {
		return nil, NewValidationError("private_key", "not a valid hex scalar")
	}

	chainID, ok := ChainIDForNetwork(config.Network)
	if !ok {
		return nil, WrapError(ErrUnsupportedNetwork, config.Network)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StarknetSigner{
		privateKey: key,
		address:    config.AccountAddress,
		network:    config.Network,
		chainID:    chainID,
		tokens:     config.Tokens,
		maxAmount:  config.MaxAmount,
		priority:   config.Priority,
		logger:     logger.Named(CLASS_STARKNET_SIGNER),
	}, nil
}

// Network returns the CAIP-2 network id this signer pays on.
func (s *StarknetSigner) Network() string {
	return s.network
}

// Scheme returns the payment scheme id.
func (s *StarknetSigner) Scheme() string {
	return SCHEME_EXACT
}

// CanSign reports whether this signer can satisfy the requirement: matching
// scheme and network, a configured token for the required asset, and an
// amount inside the spending limit.
func (s *StarknetSigner) CanSign(requirements *x402.PaymentRequirement) bool {
	if requirements == nil {
		return false
	}
	if requirements.Scheme != SCHEME_EXACT || requirements.Network != s.network {
		return false
	}
	if !s.supportsAsset(requirements.Asset) {
		return false
	}
	amount, err := ParseAmount(requirements.MaxAmountRequired)
	if err != nil {
		return false
	}
	if s.maxAmount != nil && amount.Cmp(s.maxAmount) > 0 {
		return false
	}
	return true
}

// Sign builds and signs the payment payload for the requirement.
func (s *StarknetSigner) Sign(requirements *x402.PaymentRequirement) (*x402.PaymentPayload, error) {
	if requirements == nil {
		return nil, NewValidationError("requirements", "cannot be nil")
	}
	if requirements.Scheme != SCHEME_EXACT {
		return nil, WrapError(ErrUnsupportedScheme, requirements.Scheme)
	}
	if requirements.Network != s.network {
		return nil, WrapError(ErrUnsupportedNetwork, requirements.Network)
	}
	if !s.supportsAsset(requirements.Asset) {
		return nil, WrapError(ErrNoMatchingToken, requirements.Asset)
	}

	amount, err := ParseAmount(requirements.MaxAmountRequired)
	if err != nil {
		return nil, err
	}
	if s.maxAmount != nil && amount.Cmp(s.maxAmount) > 0 {
		return nil, WrapErrorf(ErrAmountExceedsLimit, "%s > %s", amount, s.maxAmount)
	}
	if err := ValidateStarknetAddress(requirements.PayTo); err != nil {
		return nil, err
	}
	if err := ValidateStarknetAddress(requirements.Asset); err != nil {
		return nil, err
	}

	execution, err := s.buildExecution(requirements, amount)
	if err != nil {
		return nil, err
	}

	typedData := NewStarknetTypedData(s.chainID, execution)
	messageHash, err := typedData.MessageHash(s.address)
	if err != nil {
		return nil, err
	}

	r, sig, err := curve.Curve.Sign(utils.FeltToBigInt(messageHash), s.privateKey)
	if err != nil {
		return nil, NewInternalError("stark_curve_sign", err)
	}

	s.logger.Debug("Signed payment",
		zap.String(LOG_FIELD_NETWORK, s.network),
		zap.String(LOG_FIELD_AMOUNT, requirements.MaxAmountRequired),
		zap.String(LOG_FIELD_RESOURCE, requirements.Resource))

	return &x402.PaymentPayload{
		X402Version: X402_VERSION,
		Scheme:      SCHEME_EXACT,
		Network:     s.network,
		Payload: &StarknetExactPayload{
			Signature: []string{
				utils.BigIntToFelt(r).String(),
				utils.BigIntToFelt(sig).String(),
			},
			OutsideExecution: execution,
		},
	}, nil
}

// GetPriority returns the signer's priority. Lower is tried first.
func (s *StarknetSigner) GetPriority() int {
	return s.priority
}

// GetTokens returns the configured token list.
func (s *StarknetSigner) GetTokens() []x402.TokenConfig {
	return s.tokens
}

// GetMaxAmount returns the per-call spending limit, nil when unlimited.
func (s *StarknetSigner) GetMaxAmount() *big.Int {
	return s.maxAmount
}

// Address returns the payer's account address.
func (s *StarknetSigner) Address() string {
	return s.address
}

// buildExecution assembles the SNIP-9 OutsideExecution carrying one ERC-20
// transfer of amount to the server's PayTo address.
func (s *StarknetSigner) buildExecution(requirements *x402.PaymentRequirement, amount *big.Int) (*OutsideExecution, error) {
	nonce, err := randomFelt()
	if err != nil {
		return nil, NewInternalError("nonce_generation", err)
	}

	timeout := requirements.MaxTimeoutSeconds
	if timeout <= 0 {
		timeout = DEFAULT_MAX_TIMEOUT_S
	}
	now := time.Now().UTC()
	executeBefore := now.Add(time.Duration(timeout) * time.Second).Unix()

	// u256 amount as two felt limbs, low first.
	low := new(big.Int).And(amount, u128Mask)
	high := new(big.Int).Rsh(amount, 128)

	return &OutsideExecution{
		Caller:        SNIP12_CALLER_ANY,
		Nonce:         nonce.String(),
		ExecuteAfter:  "0",
		ExecuteBefore: big.NewInt(executeBefore).String(),
		Calls: []StarknetCall{
			{
				To:       requirements.Asset,
				Selector: utils.GetSelectorFromNameFelt(SNIP12_TRANSFER_ENTRY).String(),
				Calldata: []string{
					requirements.PayTo,
					low.String(),
					high.String(),
				},
			},
		},
	}, nil
}

// supportsAsset reports whether the required asset is in the token list.
// An empty token list accepts any asset.
func (s *StarknetSigner) supportsAsset(asset string) bool {
	if len(s.tokens) == 0 {
		return true
	}
	required, err := utils.HexToFelt(asset)
	if err != nil {
		return false
	}
	for _, token := range s.tokens {
		configured, err := utils.HexToFelt(token.Address)
		if err != nil {
			continue
		}
		if configured.Equal(required) {
			return true
		}
	}
	return false
}

var u128Mask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// randomFelt draws a random field element for use as an execution nonce.
func randomFelt() (*felt.Felt, error) {
	buf := make([]byte, 31)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	value := new(felt.Felt)
	value.SetBytes(buf)
	return value, nil
}
