// Package paywall provides x402 payment middleware for Go web applications.
//
// This file implements SNIP-12 revision 1 typed-data hashing for the
// Starknet payment scheme. The signed message is a SNIP-9 OutsideExecution
// carrying a single ERC-20 transfer call, which the facilitator can submit
// on the payer's behalf.
package paywall

import (
	"encoding/json"
	"math/big"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/curve"
	"github.com/NethermindEth/starknet.go/utils"
)

// SNIP-12 revision 1 encoded type strings. The type hash of each struct is
// starknet_keccak of its encoded type string.
const (
	typeStringDomain           = `"StarknetDomain"("name":"shortstring","version":"shortstring","chainId":"shortstring","revision":"shortstring")`
	typeStringOutsideExecution = `"OutsideExecution"("Caller":"ContractAddress","Nonce":"felt","Execute After":"u128","Execute Before":"u128","Calls":"Call*")"Call"("To":"ContractAddress","Selector":"selector","Calldata":"felt*")`
	typeStringCall             = `"Call"("To":"ContractAddress","Selector":"selector","Calldata":"felt*")`
)

// StarknetCall is a single contract call inside an OutsideExecution.
type StarknetCall struct {
	To       string   `json:"to"`
	Selector string   `json:"selector"`
	Calldata []string `json:"calldata"`
}

// OutsideExecution is the SNIP-9 message signed by the payer. The
// facilitator submits it to the payer's account contract, which validates
// the signature and executes the calls.
type OutsideExecution struct {
	Caller        string         `json:"caller"`
	Nonce         string         `json:"nonce"`
	ExecuteAfter  string         `json:"executeAfter"`
	ExecuteBefore string         `json:"executeBefore"`
	Calls         []StarknetCall `json:"calls"`
}

// StarknetExactPayload is the scheme payload placed in the x402 payment
// envelope for Starknet networks.
type StarknetExactPayload struct {
	Signature        []string          `json:"signature"`
	OutsideExecution *OutsideExecution `json:"outsideExecution"`
}

// StarknetTypedData is the SNIP-12 document for an OutsideExecution. Wallets
// can render and sign it directly; MessageHash produces the digest signed by
// StarknetSigner.
type StarknetTypedData struct {
	ChainID   string
	Execution *OutsideExecution
}

// NewStarknetTypedData builds the typed data for an OutsideExecution on the
// given chain. chainID is the Cairo short string ("SN_MAIN", "SN_SEPOLIA").
func NewStarknetTypedData(chainID string, execution *OutsideExecution) *StarknetTypedData {
	return &StarknetTypedData{
		ChainID:   chainID,
		Execution: execution,
	}
}

// MessageHash returns the SNIP-12 revision 1 digest for the given account:
//
//	poseidon("StarkNet Message", domain_hash, account, struct_hash)
func (td *StarknetTypedData) MessageHash(accountAddress string) (*felt.Felt, error) {
	account, err := utils.HexToFelt(accountAddress)
	if err != nil {
		return nil, WrapError(ErrInvalidAddress, accountAddress)
	}

	domainHash, err := td.domainHash()
	if err != nil {
		return nil, err
	}
	structHash, err := td.structHash()
	if err != nil {
		return nil, err
	}

	prefix := shortString(SNIP12_MESSAGE_PREFIX)
	return curve.PoseidonArray(prefix, domainHash, account, structHash), nil
}

// domainHash hashes the StarknetDomain struct. All four fields are Cairo
// short strings under revision 1.
func (td *StarknetTypedData) domainHash() (*felt.Felt, error) {
	typeHash := utils.GetSelectorFromNameFelt(typeStringDomain)
	return curve.PoseidonArray(
		typeHash,
		shortString(SNIP12_DOMAIN_NAME),
		shortString(SNIP12_DOMAIN_VERSION),
		shortString(td.ChainID),
		shortString(SNIP12_REVISION),
	), nil
}

// structHash hashes the OutsideExecution struct. The Calls array hashes as
// poseidon over the struct hashes of its elements.
func (td *StarknetTypedData) structHash() (*felt.Felt, error) {
	caller, err := utils.HexToFelt(td.Execution.Caller)
	if err != nil {
		return nil, WrapError(ErrInvalidAddress, td.Execution.Caller)
	}
	nonce, err := feltFromDecimalOrHex(td.Execution.Nonce)
	if err != nil {
		return nil, err
	}
	after, err := feltFromDecimalOrHex(td.Execution.ExecuteAfter)
	if err != nil {
		return nil, err
	}
	before, err := feltFromDecimalOrHex(td.Execution.ExecuteBefore)
	if err != nil {
		return nil, err
	}

	callHashes := make([]*felt.Felt, 0, len(td.Execution.Calls))
	for i := range td.Execution.Calls {
		hash, err := callStructHash(&td.Execution.Calls[i])
		if err != nil {
			return nil, err
		}
		callHashes = append(callHashes, hash)
	}

	typeHash := utils.GetSelectorFromNameFelt(typeStringOutsideExecution)
	return curve.PoseidonArray(
		typeHash,
		caller,
		nonce,
		after,
		before,
		curve.PoseidonArray(callHashes...),
	), nil
}

func callStructHash(call *StarknetCall) (*felt.Felt, error) {
	to, err := utils.HexToFelt(call.To)
	if err != nil {
		return nil, WrapError(ErrInvalidAddress, call.To)
	}
	selector, err := utils.HexToFelt(call.Selector)
	if err != nil {
		return nil, NewValidationError("selector", call.Selector)
	}

	calldata := make([]*felt.Felt, 0, len(call.Calldata))
	for _, item := range call.Calldata {
		value, err := feltFromDecimalOrHex(item)
		if err != nil {
			return nil, err
		}
		calldata = append(calldata, value)
	}

	typeHash := utils.GetSelectorFromNameFelt(typeStringCall)
	return curve.PoseidonArray(
		typeHash,
		to,
		selector,
		curve.PoseidonArray(calldata...),
	), nil
}

// MarshalJSON renders the full SNIP-12 document so the typed data can be
// handed to a wallet for out-of-band signing.
func (td *StarknetTypedData) MarshalJSON() ([]byte, error) {
	type field struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		Contains string `json:"contains,omitempty"`
	}
	doc := map[string]interface{}{
		"types": map[string][]field{
			"StarknetDomain": {
				{Name: "name", Type: "shortstring"},
				{Name: "version", Type: "shortstring"},
				{Name: "chainId", Type: "shortstring"},
				{Name: "revision", Type: "shortstring"},
			},
			"OutsideExecution": {
				{Name: "Caller", Type: "ContractAddress"},
				{Name: "Nonce", Type: "felt"},
				{Name: "Execute After", Type: "u128"},
				{Name: "Execute Before", Type: "u128"},
				{Name: "Calls", Type: "Call*"},
			},
			"Call": {
				{Name: "To", Type: "ContractAddress"},
				{Name: "Selector", Type: "selector"},
				{Name: "Calldata", Type: "felt*"},
			},
		},
		"primaryType": SNIP12_PRIMARY_TYPE,
		"domain": map[string]string{
			"name":     SNIP12_DOMAIN_NAME,
			"version":  SNIP12_DOMAIN_VERSION,
			"chainId":  td.ChainID,
			"revision": SNIP12_REVISION,
		},
		"message": td.Execution,
	}
	return json.Marshal(doc)
}

// shortString encodes a Cairo short string (ASCII bytes as a big-endian
// field element, max 31 characters).
func shortString(s string) *felt.Felt {
	value := new(felt.Felt)
	value.SetBytes([]byte(s))
	return value
}

// feltFromDecimalOrHex parses a felt from either a 0x hex string or a
// decimal string. Wire values show up in both forms.
func feltFromDecimalOrHex(s string) (*felt.Felt, error) {
	if len(s) > 1 && (s[0:2] == "0x" || s[0:2] == "0X") {
		value, err := utils.HexToFelt(s)
		if err != nil {
			return nil, NewValidationError("felt", s)
		}
		return value, nil
	}
	number, ok := new(big.Int).SetString(s, 10)
	if !ok || number.Sign() < 0 {
		return nil, NewValidationError("felt", s)
	}
	return utils.BigIntToFelt(number), nil
}
