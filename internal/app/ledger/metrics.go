package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mutuelle_operations_total",
		Help: "Core operations applied, by operation.",
	}, []string{"op"})

	opErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mutuelle_operation_errors_total",
		Help: "Core operations rejected or failed, by operation.",
	}, []string{"op"})

	fundBalanceGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mutuelle_fund_balance",
		Help: "Cached balance of the active period's fund account.",
	})
)

// observe records the outcome of one operation.
func observe(op string, err error) {
	opsTotal.WithLabelValues(op).Inc()
	if err != nil {
		opErrorsTotal.WithLabelValues(op).Inc()
	}
}
