// Package paywall provides x402 payment middleware for Go web applications.
//
// This file contains configuration validation and sanitation.
package paywall

import (
	"strings"

	"github.com/NethermindEth/starknet.go/utils"
)

// ValidateConfig performs deep validation of a Config after defaults were
// applied. Structural checks (required fields) live in Config.Validate.
func ValidateConfig(c *Config) error {
	if err := ValidateStarknetAddress(c.PayTo); err != nil {
		return WrapErrorf(err, "pay_to %q", c.PayTo)
	}
	if !IsSupportedNetwork(c.Network) {
		return WrapErrorf(ErrUnsupportedNetwork, "network %q", c.Network)
	}
	for i := range c.Routes {
		if err := ValidateRouteConfig(&c.Routes[i]); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRouteConfig validates one protected route declaration.
func ValidateRouteConfig(route *RouteConfig) error {
	if route == nil {
		return NewValidationError("route", "cannot be nil")
	}

	SanitizeRouteConfig(route)

	if _, err := compileRoutePattern(route); err != nil {
		return err
	}
	if _, err := ParseAmount(route.Price); err != nil {
		return WrapErrorf(ErrInvalidPrice, "route %q price %q", route.Pattern, route.Price)
	}
	if err := ValidateStarknetAddress(route.Asset); err != nil {
		return WrapErrorf(err, "route %q asset %q", route.Pattern, route.Asset)
	}
	if route.Network != "" && !IsSupportedNetwork(route.Network) {
		return WrapErrorf(ErrUnsupportedNetwork, "route %q network %q", route.Pattern, route.Network)
	}
	if len(route.Description) > MAX_DESCRIPTION_LEN {
		return NewValidationError("description", "too long")
	}
	return nil
}

// SanitizeRouteConfig trims whitespace from all configured strings.
func SanitizeRouteConfig(route *RouteConfig) {
	route.Pattern = strings.TrimSpace(route.Pattern)
	route.Price = strings.TrimSpace(route.Price)
	route.Asset = strings.TrimSpace(route.Asset)
	route.Network = strings.TrimSpace(route.Network)
	route.Description = strings.TrimSpace(route.Description)
	route.MimeType = strings.TrimSpace(route.MimeType)
}

// ValidateStarknetAddress checks that an address parses as a felt.
func ValidateStarknetAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" || !strings.HasPrefix(address, "0x") {
		return ErrInvalidAddress
	}
	if _, err := utils.HexToFelt(address); err != nil {
		return WrapError(ErrInvalidAddress, err.Error())
	}
	return nil
}

// IsSupportedNetwork reports whether the CAIP-2 network id belongs to the
// Starknet family this module supports.
func IsSupportedNetwork(network string) bool {
	switch network {
	case NETWORK_STARKNET_MAINNET, NETWORK_STARKNET_SEPOLIA:
		return true
	}
	return false
}

// ChainIDForNetwork maps a CAIP-2 network id to the SNIP-12 domain chain id.
func ChainIDForNetwork(network string) (string, bool) {
	switch network {
	case NETWORK_STARKNET_MAINNET:
		return CHAIN_ID_STARKNET_MAINNET, true
	case NETWORK_STARKNET_SEPOLIA:
		return CHAIN_ID_STARKNET_SEPOLIA, true
	}
	return "", false
}
