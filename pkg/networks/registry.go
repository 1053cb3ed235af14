// Package networks holds the static registry of supported EVM networks and the
// stablecoin contracts the scanner panel offers on each of them.
package networks

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"safescan/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
)

// Token is an ERC-20 contract on a specific network
type Token struct {
	Symbol  string         `json:"symbol"`
	Address common.Address `json:"address"`
}

// Network describes one selectable chain
type Network struct {
	Name    string   `json:"name"`
	ChainID *big.Int `json:"chain_id"`
	Tokens  []Token  `json:"tokens"` // fixed approval order
}

// Token returns the token with the given symbol
func (n Network) Token(symbol string) (Token, bool) {
	for _, t := range n.Tokens {
		if strings.EqualFold(t.Symbol, symbol) {
			return t, true
		}
	}
	return Token{}, false
}

// ChainIDHex returns the chain id as a 0x-prefixed quantity
func (n Network) ChainIDHex() string {
	return "0x" + n.ChainID.Text(16)
}

type entry struct {
	chainID int64
	usdt    string
	usdc    string
}

var registry = map[string]entry{
	"ethereum": {
		chainID: 1,
		usdt:    "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		usdc:    "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
	},
	"polygon": {
		chainID: 137,
		usdt:    "0xc2132D05D31c914a87C6611C10748AEb04B58e8F",
		usdc:    "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
	},
	"bsc": {
		chainID: 56,
		usdt:    "0x55d398326f99059fF775485246999027B3197955",
		usdc:    "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d",
	},
}

func (e entry) network(name string) Network {
	return Network{
		Name:    name,
		ChainID: big.NewInt(e.chainID),
		Tokens: []Token{
			{Symbol: "USDT", Address: common.HexToAddress(e.usdt)},
			{Symbol: "USDC", Address: common.HexToAddress(e.usdc)},
		},
	}
}

// Lookup finds a network by name, case-insensitively
func Lookup(name string) (Network, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	e, ok := registry[key]
	if !ok {
		return Network{}, fmt.Errorf("%w: %q", errno.ErrUnknownNetwork, name)
	}
	return e.network(key), nil
}

// All returns every network, sorted by name
func All() []Network {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Network, 0, len(names))
	for _, name := range names {
		out = append(out, registry[name].network(name))
	}
	return out
}
