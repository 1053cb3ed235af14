// Package erc20 packs and unpacks the handful of ERC-20 calls the scanner needs
// and converts between raw token units and human-readable amounts.
package erc20

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
)

const abiJSON = `[
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

var parsed abi.ABI

var (
	ErrInvalidAmount = errors.New("invalid token amount")
)

func init() {
	var err error
	parsed, err = abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(fmt.Sprintf("erc20: bad abi: %v", err))
	}
}

func PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return parsed.Pack("approve", spender, amount)
}

func PackAllowance(owner, spender common.Address) ([]byte, error) {
	return parsed.Pack("allowance", owner, spender)
}

func PackBalanceOf(account common.Address) ([]byte, error) {
	return parsed.Pack("balanceOf", account)
}

func PackDecimals() ([]byte, error) {
	return parsed.Pack("decimals")
}

// UnpackUint256 decodes the return value of balanceOf or allowance
func UnpackUint256(method string, data []byte) (*big.Int, error) {
	out, err := parsed.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unpack %s: unexpected type %T", method, out[0])
	}
	return v, nil
}

func UnpackDecimals(data []byte) (uint8, error) {
	out, err := parsed.Unpack("decimals", data)
	if err != nil {
		return 0, fmt.Errorf("unpack decimals: %w", err)
	}
	v, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unpack decimals: unexpected type %T", out[0])
	}
	return v, nil
}

// ParseUnits converts a human amount such as "12.5" to raw units for a token
// with the given decimals. Negative values, values with more fractional digits
// than the token supports and values above uint256 are rejected.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: negative amount %s", ErrInvalidAmount, amount)
	}

	raw := d.Shift(int32(decimals))
	if !raw.Equal(raw.Truncate(0)) {
		return nil, fmt.Errorf("%w: %s has more than %d decimals", ErrInvalidAmount, amount, decimals)
	}

	out := raw.BigInt()
	if out.Cmp(math.MaxBig256) > 0 {
		return nil, fmt.Errorf("%w: %s exceeds uint256", ErrInvalidAmount, amount)
	}
	return out, nil
}

// FormatUnits renders raw token units with the token's decimals
func FormatUnits(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}
