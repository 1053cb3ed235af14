package session

import (
	"fmt"
	"strings"

	"safescan/pkg/errno"
	"safescan/pkg/networks"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ApprovalRequest is what the user asks to approve. Spender and amount always
// come from the user; there is no default for either.
type ApprovalRequest struct {
	Network string
	Spender string
	Amount  string
	Confirm bool
}

// PlannedApproval is one approve call the flow will submit
type PlannedApproval struct {
	Symbol   string         `json:"symbol"`
	Contract common.Address `json:"contract"`
	Spender  common.Address `json:"spender"`
	Amount   string         `json:"amount"`
}

// ApprovalPlan is shown to the user before they confirm
type ApprovalPlan struct {
	Network   string            `json:"network"`
	ChainID   string            `json:"chain_id"`
	Approvals []PlannedApproval `json:"approvals"`
	Revoke    bool              `json:"revoke"`

	network networks.Network
	spender common.Address
	amount  decimal.Decimal
}

// ApprovalResult is kept locally and returned to the caller only
type ApprovalResult struct {
	Symbol  string      `json:"symbol"`
	TxHash  common.Hash `json:"tx_hash"`
	Balance string      `json:"balance"`
}

// Plan validates req without touching the network
func Plan(req ApprovalRequest) (*ApprovalPlan, error) {
	network, err := networks.Lookup(req.Network)
	if err != nil {
		return nil, err
	}

	spenderHex := strings.TrimSpace(req.Spender)
	if !common.IsHexAddress(spenderHex) {
		return nil, fmt.Errorf("%w: spender %q is not an address", errno.ErrInvalidApproval, req.Spender)
	}
	spender := common.HexToAddress(spenderHex)
	if spender == (common.Address{}) {
		return nil, fmt.Errorf("%w: spender is the zero address", errno.ErrInvalidApproval)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q", errno.ErrInvalidApproval, req.Amount)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", errno.ErrInvalidApproval)
	}

	plan := &ApprovalPlan{
		Network: network.Name,
		ChainID: network.ChainIDHex(),
		Revoke:  amount.IsZero(),
		network: network,
		spender: spender,
		amount:  amount,
	}
	for _, tok := range network.Tokens {
		plan.Approvals = append(plan.Approvals, PlannedApproval{
			Symbol:   tok.Symbol,
			Contract: tok.Address,
			Spender:  spender,
			Amount:   amount.String(),
		})
	}
	return plan, nil
}

func (p *ApprovalPlan) symbols() string {
	syms := make([]string, 0, len(p.Approvals))
	for _, a := range p.Approvals {
		syms = append(syms, a.Symbol)
	}
	return strings.Join(syms, " & ")
}
