package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Business metrics. Collectors exist before Init so recording from tests or
// before the router is built never panics; Init only registers them.
var (
	WalletConnectTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "safescan_wallet_connect_total",
		Help: "Wallet connection attempts by result",
	}, []string{"result"})

	ApprovalTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "safescan_approval_total",
		Help: "Approval flows by network and result",
	}, []string{"network", "result"})

	PanelCounters = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "safescan_panel_counter",
		Help: "Aggregate counters shown on the scanner panel",
	}, []string{"counter"})
)

func registerBusinessMetrics() {
	prometheus.MustRegister(WalletConnectTotal, ApprovalTotal, PanelCounters)
}

func ObserveConnect(result string) {
	WalletConnectTotal.WithLabelValues(result).Inc()
}

func ObserveApproval(network, result string) {
	ApprovalTotal.WithLabelValues(network, result).Inc()
}

func SetStats(scanned, compromised, safe int64) {
	PanelCounters.WithLabelValues("scanned").Set(float64(scanned))
	PanelCounters.WithLabelValues("compromised").Set(float64(compromised))
	PanelCounters.WithLabelValues("safe").Set(float64(safe))
}
