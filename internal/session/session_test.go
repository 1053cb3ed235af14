package session

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"safescan/pkg/erc20"
	"safescan/pkg/errno"
	"safescan/pkg/networks"
	"safescan/pkg/provider"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob     = common.HexToAddress("0x2222222222222222222222222222222222222222")
	spender = "0x00000000000000000000000000000000000000Aa"
)

// fakeWallet is a scripted provider.Provider that records every call
type fakeWallet struct {
	mu          sync.Mutex
	accounts    []common.Address
	accountsErr error
	switchErr   error
	sendErr     error
	decimals    uint8
	balance     *big.Int

	// when set, SwitchChain signals entered and waits for release
	entered chan struct{}
	release chan struct{}

	calls   []string
	chainID *big.Int
	sent    []provider.TxArgs
}

func (f *fakeWallet) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeWallet) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	f.record("eth_requestAccounts")
	return f.accounts, f.accountsErr
}

func (f *fakeWallet) SwitchChain(ctx context.Context, chainID *big.Int) error {
	f.record("wallet_switchEthereumChain")
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	f.chainID = chainID
	f.mu.Unlock()
	return f.switchErr
}

func (f *fakeWallet) SendTransaction(ctx context.Context, args provider.TxArgs) (common.Hash, error) {
	f.record("eth_sendTransaction")
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, args)
	return common.BigToHash(big.NewInt(int64(len(f.sent)))), nil
}

func (f *fakeWallet) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	f.record("eth_call")
	decimalsSel, _ := erc20.PackDecimals()
	if bytes.Equal(data[:4], decimalsSel[:4]) {
		return common.LeftPadBytes([]byte{f.decimals}, 32), nil
	}
	bal := f.balance
	if bal == nil {
		bal = new(big.Int)
	}
	return common.LeftPadBytes(bal.Bytes(), 32), nil
}

func (f *fakeWallet) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	f.record("eth_getTransactionReceipt")
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash}, nil
}

func newTestSession(p provider.Provider, seed Stats) *Session {
	score := 0
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return New(p, seed,
		WithPollInterval(time.Millisecond),
		WithScorer(func() int { score++; return score }),
		WithClock(func() time.Time { clock = clock.Add(time.Second); return clock }),
	)
}

func connected(t *testing.T, f *fakeWallet, seed Stats) *Session {
	t.Helper()
	if f.accounts == nil {
		f.accounts = []common.Address{alice}
	}
	s := newTestSession(f, seed)
	_, err := s.Connect(context.Background())
	require.NoError(t, err)
	return s
}

func confirmedRequest(network, amount string) ApprovalRequest {
	return ApprovalRequest{Network: network, Spender: spender, Amount: amount, Confirm: true}
}

func TestConnectWithoutProvider(t *testing.T) {
	s := newTestSession(nil, Stats{})

	_, err := s.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errno.ErrProviderUnavailable))

	snap := s.Snapshot()
	assert.Equal(t, StatusConnectionFailed, snap.Status)
	assert.Nil(t, snap.Account)
	assert.False(t, snap.Connected)
}

func TestConnectStoresFirstAccount(t *testing.T) {
	f := &fakeWallet{accounts: []common.Address{bob, alice}}
	s := newTestSession(f, Stats{})

	got, err := s.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bob, got)

	snap := s.Snapshot()
	require.NotNil(t, snap.Account)
	assert.Equal(t, bob, *snap.Account)
	assert.Equal(t, StatusConnected, snap.Status)
	assert.Equal(t, []string{"eth_requestAccounts"}, f.callLog())
}

func TestConnectFailures(t *testing.T) {
	tests := []struct {
		name   string
		wallet *fakeWallet
	}{
		{"User rejected", &fakeWallet{accountsErr: errors.New("User rejected the request.")}},
		{"No accounts", &fakeWallet{accounts: []common.Address{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(tt.wallet, Stats{})

			_, err := s.Connect(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errno.ErrConnectionFailed))

			snap := s.Snapshot()
			assert.Equal(t, StatusConnectionFailed, snap.Status)
			assert.Nil(t, snap.Account)
			// single attempt, no retry
			assert.Equal(t, []string{"eth_requestAccounts"}, tt.wallet.callLog())
		})
	}
}

func TestDisconnectClearsAccount(t *testing.T) {
	t.Run("Connected", func(t *testing.T) {
		f := &fakeWallet{}
		s := connected(t, f, Stats{})
		s.Disconnect()

		snap := s.Snapshot()
		assert.Nil(t, snap.Account)
		assert.Equal(t, StatusDisconnected, snap.Status)
		// the wallet is not told about it
		assert.Equal(t, []string{"eth_requestAccounts"}, f.callLog())
	})

	t.Run("Never connected", func(t *testing.T) {
		s := newTestSession(nil, Stats{})
		s.Disconnect()

		snap := s.Snapshot()
		assert.Nil(t, snap.Account)
		assert.Equal(t, StatusDisconnected, snap.Status)
	})
}

func TestApproveRequiresAccount(t *testing.T) {
	f := &fakeWallet{}
	s := newTestSession(f, Stats{})

	_, err := s.Approve(context.Background(), confirmedRequest("ethereum", "10"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errno.ErrNotConnected))
	assert.Empty(t, f.callLog())
	assert.Equal(t, StatusNotConnected, s.Snapshot().Status)
}

func TestApproveRequiresConfirmation(t *testing.T) {
	f := &fakeWallet{}
	s := connected(t, f, Stats{})

	req := confirmedRequest("ethereum", "10")
	req.Confirm = false
	_, err := s.Approve(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errno.ErrConfirmRequired))
	assert.Equal(t, []string{"eth_requestAccounts"}, f.callLog())
}

func TestApproveRejectsInvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  ApprovalRequest
		want error
	}{
		{"Missing spender", ApprovalRequest{Network: "bsc", Amount: "1", Confirm: true}, errno.ErrInvalidApproval},
		{"Zero spender", ApprovalRequest{Network: "bsc", Spender: common.Address{}.Hex(), Amount: "1", Confirm: true}, errno.ErrInvalidApproval},
		{"Negative amount", ApprovalRequest{Network: "bsc", Spender: spender, Amount: "-1", Confirm: true}, errno.ErrInvalidApproval},
		{"Word amount", ApprovalRequest{Network: "bsc", Spender: spender, Amount: "max", Confirm: true}, errno.ErrInvalidApproval},
		{"Unknown network", ApprovalRequest{Network: "tron", Spender: spender, Amount: "1", Confirm: true}, errno.ErrUnknownNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeWallet{}
			s := connected(t, f, Stats{})

			_, err := s.Approve(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			assert.Equal(t, []string{"eth_requestAccounts"}, f.callLog())
		})
	}
}

func TestApproveSuccess(t *testing.T) {
	f := &fakeWallet{decimals: 6, balance: big.NewInt(1_234_500_000)}
	s := connected(t, f, Stats{Scanned: 10, Compromised: 3, Safe: 7})

	results, err := s.Approve(context.Background(), confirmedRequest("polygon", "25"))
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, Stats{Scanned: 11, Compromised: 3, Safe: 8}, snap.Stats)
	assert.Equal(t, "Approved USDT & USDC on POLYGON", snap.Status)
	require.Len(t, snap.RecentScans, 1)
	assert.Equal(t, alice, snap.RecentScans[0].Address)
	assert.Equal(t, ScanSafe, snap.RecentScans[0].Status)
	assert.NotEmpty(t, snap.RecentScans[0].ID)

	assert.Equal(t, int64(137), f.chainID.Int64())

	polygon, err := networks.Lookup("polygon")
	require.NoError(t, err)
	wantData, err := erc20.PackApprove(common.HexToAddress(spender), big.NewInt(25_000_000))
	require.NoError(t, err)

	require.Len(t, f.sent, 2)
	for i, tok := range polygon.Tokens {
		assert.Equal(t, alice, f.sent[i].From)
		require.NotNil(t, f.sent[i].To)
		assert.Equal(t, tok.Address, *f.sent[i].To)
		assert.Equal(t, wantData, []byte(f.sent[i].Data))
	}

	require.Len(t, results, 2)
	assert.Equal(t, "USDT", results[0].Symbol)
	assert.Equal(t, "USDC", results[1].Symbol)
	assert.Equal(t, "1234.5", results[0].Balance)

	// the wallet is the only party contacted, in this order
	assert.Equal(t, "wallet_switchEthereumChain", f.callLog()[1])
}

func TestApproveZeroAmountRevokes(t *testing.T) {
	f := &fakeWallet{decimals: 18}
	s := connected(t, f, Stats{})

	_, err := s.Approve(context.Background(), confirmedRequest("bsc", "0"))
	require.NoError(t, err)
	assert.Equal(t, "Revoked USDT & USDC on BSC", s.Snapshot().Status)

	wantData, err := erc20.PackApprove(common.HexToAddress(spender), big.NewInt(0))
	require.NoError(t, err)
	require.Len(t, f.sent, 2)
	assert.Equal(t, wantData, []byte(f.sent[0].Data))
}

func TestRecentScansCappedMostRecentFirst(t *testing.T) {
	f := &fakeWallet{decimals: 6}
	s := connected(t, f, Stats{})

	for i := 0; i < MaxRecentScans+2; i++ {
		_, err := s.Approve(context.Background(), confirmedRequest("ethereum", "1"))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(s.Snapshot().RecentScans), MaxRecentScans)
	}

	scans := s.Snapshot().RecentScans
	require.Len(t, scans, MaxRecentScans)
	for i, want := range []int{7, 6, 5, 4, 3} {
		assert.Equal(t, want, scans[i].Score)
	}
	for i := 1; i < len(scans); i++ {
		assert.True(t, scans[i-1].Timestamp.After(scans[i].Timestamp))
	}
	assert.Equal(t, Stats{Scanned: 7, Safe: 7}, s.Snapshot().Stats)
}

func TestApproveFailureSetsStatus(t *testing.T) {
	tests := []struct {
		name     string
		wallet   *fakeWallet
		amount   string
		wantSent int
	}{
		{"Switch rejected", &fakeWallet{switchErr: errors.New("User rejected the request.")}, "1", 0},
		{"Send rejected", &fakeWallet{decimals: 6, sendErr: errors.New("User denied transaction signature.")}, "1", 0},
		{"Too precise for token", &fakeWallet{decimals: 6}, "0.0000001", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := Stats{Scanned: 5, Compromised: 1, Safe: 4}
			s := connected(t, tt.wallet, seed)

			_, err := s.Approve(context.Background(), confirmedRequest("ethereum", tt.amount))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errno.ErrApprovalFailed))

			snap := s.Snapshot()
			assert.Equal(t, StatusApprovalFailed, snap.Status)
			assert.Equal(t, seed, snap.Stats)
			assert.Empty(t, snap.RecentScans)
			assert.Len(t, tt.wallet.sent, tt.wantSent)
		})
	}
}

func TestApproveRejectsOverlap(t *testing.T) {
	f := &fakeWallet{
		decimals: 6,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	s := connected(t, f, Stats{})

	done := make(chan error, 1)
	go func() {
		_, err := s.Approve(context.Background(), confirmedRequest("ethereum", "1"))
		done <- err
	}()

	<-f.entered
	assert.Equal(t, "Approval pending on ETHEREUM", s.Snapshot().Status)

	_, err := s.Approve(context.Background(), confirmedRequest("ethereum", "1"))
	assert.True(t, errors.Is(err, errno.ErrApprovalInProgress))

	close(f.release)
	require.NoError(t, <-done)
	assert.Equal(t, Stats{Scanned: 1, Safe: 1}, s.Snapshot().Stats)
}

func TestNegativeSeedClamped(t *testing.T) {
	s := newTestSession(nil, Stats{Scanned: -1, Compromised: -2, Safe: 3})
	assert.Equal(t, Stats{Safe: 3}, s.Snapshot().Stats)
}

func TestPreviewShowsEveryApproval(t *testing.T) {
	s := newTestSession(nil, Stats{})

	plan, err := s.Preview(ApprovalRequest{Network: "Ethereum", Spender: spender, Amount: "100.5"})
	require.NoError(t, err)
	assert.Equal(t, "ethereum", plan.Network)
	assert.Equal(t, "0x1", plan.ChainID)
	assert.False(t, plan.Revoke)
	require.Len(t, plan.Approvals, 2)
	for _, a := range plan.Approvals {
		assert.Equal(t, common.HexToAddress(spender), a.Spender)
		assert.Equal(t, "100.5", a.Amount)
	}
	assert.Equal(t, "USDT", plan.Approvals[0].Symbol)
}
