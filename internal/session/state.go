package session

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// MaxRecentScans caps the recent scan list shown on the panel
const MaxRecentScans = 5

const (
	StatusNotConnected     = "Not connected"
	StatusConnected        = "Wallet connected"
	StatusConnectionFailed = "Connection failed"
	StatusDisconnected     = "Wallet disconnected"
	StatusApprovalFailed   = "Approval request failed or rejected"
)

const (
	ScanSafe        = "Safe"
	ScanCompromised = "Compromised"
)

// ScanRecord is one row of the recent scans list
type ScanRecord struct {
	ID        string         `json:"id"`
	Address   common.Address `json:"address"`
	Timestamp time.Time      `json:"timestamp"`
	Status    string         `json:"status"`
	Score     int            `json:"score"`
}

// Stats are the panel's aggregate counters
type Stats struct {
	Scanned     int64 `json:"scanned"`
	Compromised int64 `json:"compromised"`
	Safe        int64 `json:"safe"`
}

func (s Stats) clamp() Stats {
	if s.Scanned < 0 {
		s.Scanned = 0
	}
	if s.Compromised < 0 {
		s.Compromised = 0
	}
	if s.Safe < 0 {
		s.Safe = 0
	}
	return s
}

// Snapshot is a copy of the session for rendering
type Snapshot struct {
	Account     *common.Address `json:"account"`
	Connected   bool            `json:"connected"`
	Status      string          `json:"status"`
	Stats       Stats           `json:"stats"`
	RecentScans []ScanRecord    `json:"recent_scans"`
}

// prependScan returns list with rec in front, trimmed to MaxRecentScans
func prependScan(list []ScanRecord, rec ScanRecord) []ScanRecord {
	n := len(list) + 1
	if n > MaxRecentScans {
		n = MaxRecentScans
	}
	out := make([]ScanRecord, n)
	out[0] = rec
	copy(out[1:], list)
	return out
}
