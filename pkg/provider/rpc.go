package provider

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// RPCProvider talks to a wallet's JSON-RPC endpoint (Frame, a browser-extension
// bridge, or a dev node with unlocked accounts).
type RPCProvider struct {
	rpc *rpc.Client
	eth *ethclient.Client
}

func Dial(ctx context.Context, url string) (*RPCProvider, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial wallet provider: %w", err)
	}
	return NewRPCProvider(c), nil
}

func NewRPCProvider(c *rpc.Client) *RPCProvider {
	return &RPCProvider{
		rpc: c,
		eth: ethclient.NewClient(c),
	}
}

func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.rpc.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

type switchChainParams struct {
	ChainID *hexutil.Big `json:"chainId"`
}

func (p *RPCProvider) SwitchChain(ctx context.Context, chainID *big.Int) error {
	return p.rpc.CallContext(ctx, nil, "wallet_switchEthereumChain", switchChainParams{ChainID: (*hexutil.Big)(chainID)})
}

func (p *RPCProvider) SendTransaction(ctx context.Context, args TxArgs) (common.Hash, error) {
	var hash common.Hash
	if err := p.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

func (p *RPCProvider) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return p.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}

func (p *RPCProvider) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return p.eth.TransactionReceipt(ctx, hash)
}

func (p *RPCProvider) Close() {
	p.rpc.Close()
}
