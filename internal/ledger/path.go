package ledger

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/pkg/errors"
)

const hardenedOffset = 0x80000000

// Base paths of the supported derivation schemes.
const (
	// EthereumBasePath is the BIP44 Ethereum account chain, leaf not hardened: m/44'/60'/0'/0/{index}
	EthereumBasePath = "m/44'/60'/0'/0"
	// ICONBasePath is the ICON ledger app chain, leaf hardened: m/44'/4801368'/0'/0'/{index}'
	ICONBasePath = "m/44'/4801368'/0'/0'"
)

// PathScheme maps an address index to its derivation path.
type PathScheme struct {
	base         accounts.DerivationPath
	hardenedLeaf bool
}

// NewPathScheme parses base and returns a scheme appending the index as last
// component. Relative paths are treated as rooted at m.
func NewPathScheme(base string, hardenedLeaf bool) (PathScheme, error) {
	base = strings.TrimSpace(base)
	if !strings.HasPrefix(base, "m/") {
		base = "m/" + strings.TrimPrefix(base, "/")
	}

	path, err := accounts.ParseDerivationPath(base)
	if err != nil {
		return PathScheme{}, errors.Wrapf(err, "invalid derivation base path %q", base)
	}

	return PathScheme{base: path, hardenedLeaf: hardenedLeaf}, nil
}

// EthereumPathScheme returns the m/44'/60'/0'/0/{index} scheme.
func EthereumPathScheme() PathScheme {
	return PathScheme{base: accounts.DerivationPath{44 + hardenedOffset, 60 + hardenedOffset, hardenedOffset, 0}}
}

// ICONPathScheme returns the m/44'/4801368'/0'/0'/{index}' scheme.
func ICONPathScheme() PathScheme {
	return PathScheme{
		base:         accounts.DerivationPath{44 + hardenedOffset, 4801368 + hardenedOffset, hardenedOffset, hardenedOffset},
		hardenedLeaf: true,
	}
}

// MaxIndex is the largest address index. Leaf values from 2^31 on are
// reserved for hardened derivation in either scheme.
const MaxIndex = hardenedOffset - 1

// Path returns the derivation path for index. It panics on an index outside
// [0, MaxIndex]; the fetcher validates pages before deriving paths.
func (s PathScheme) Path(index int) string {
	return s.DerivationPath(index).String()
}

// DerivationPath returns the parsed derivation path for index.
func (s PathScheme) DerivationPath(index int) accounts.DerivationPath {
	if index < 0 || index > MaxIndex {
		panic(fmt.Sprintf("derivation index %d out of range", index))
	}

	leaf := uint32(index)
	if s.hardenedLeaf {
		leaf += hardenedOffset
	}

	path := make(accounts.DerivationPath, 0, len(s.base)+1)
	path = append(path, s.base...)

	return append(path, leaf)
}

// String returns the scheme as a template, e.g. m/44'/60'/0'/0/{index}.
func (s PathScheme) String() string {
	leaf := "{index}"
	if s.hardenedLeaf {
		leaf += "'"
	}

	if len(s.base) == 0 {
		return "m/" + leaf
	}

	return s.base.String() + "/" + leaf
}
