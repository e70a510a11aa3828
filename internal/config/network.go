package config

import (
	"github.com/pkg/errors"
)

// Network kinds.
const (
	NetworkKindEVM  = "evm"
	NetworkKindICON = "icon"
)

// Network presets selectable via LEDGER_NETWORK_NAME.
const (
	NetworkICONMainnet = "icon-mainnet"
	NetworkICONTestnet = "icon-testnet"
	NetworkEthereum    = "ethereum"
	NetworkCustom      = "custom"
)

const (
	iconDerivationBase     = "m/44'/4801368'/0'/0'"
	ethereumDerivationBase = "m/44'/60'/0'/0"
	defaultDecimals        = 18
)

var networkPresets = map[string]Network{
	NetworkICONMainnet: {
		Kind:           NetworkKindICON,
		ID:             1,
		RPCURLs:        []string{"https://ctz.solidwallet.io/api/v3"},
		Decimals:       defaultDecimals,
		DerivationBase: iconDerivationBase,
		HardenedLeaf:   true,
	},
	NetworkICONTestnet: {
		Kind:           NetworkKindICON,
		ID:             53,
		RPCURLs:        []string{"https://sejong.net.solidwallet.io/api/v3"},
		Decimals:       defaultDecimals,
		DerivationBase: iconDerivationBase,
		HardenedLeaf:   true,
	},
	NetworkEthereum: {
		Kind:           NetworkKindEVM,
		ID:             1,
		Decimals:       defaultDecimals,
		DerivationBase: ethereumDerivationBase,
		HardenedLeaf:   false,
	},
	NetworkCustom: {
		Decimals: defaultDecimals,
	},
}

// applyPreset fills every unset field from the preset named by n.Name.
// hardenedLeafSet reports whether HardenedLeaf was configured explicitly.
func (n *Network) applyPreset(hardenedLeafSet bool) error {
	preset, ok := networkPresets[n.Name]
	if !ok {
		return errors.Errorf("unknown network %q", n.Name)
	}

	if n.Kind == "" {
		n.Kind = preset.Kind
	}
	if n.ID == 0 {
		n.ID = preset.ID
	}
	if len(n.RPCURLs) == 0 && len(preset.RPCURLs) > 0 {
		n.RPCURLs = append([]string(nil), preset.RPCURLs...)
	}
	if n.Decimals == 0 {
		n.Decimals = preset.Decimals
	}
	if n.DerivationBase == "" {
		n.DerivationBase = preset.DerivationBase
	}
	if !hardenedLeafSet {
		n.HardenedLeaf = preset.HardenedLeaf
	}

	if n.DerivationBase == "" {
		if n.Kind == NetworkKindICON {
			n.DerivationBase = iconDerivationBase
		} else {
			n.DerivationBase = ethereumDerivationBase
		}
	}

	return nil
}
