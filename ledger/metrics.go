package ledger

import (
	"time"

	"github.com/pandodao/vault/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vault_ledger_transactions_total",
		Help: "Number of executed transactions by instruction and status",
	}, []string{"instruction", "status"})

	metricRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vault_ledger_transactions_rejected_total",
		Help: "Number of transactions rejected before execution",
	}, []string{"reason"})

	metricDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vault_ledger_transaction_duration_seconds",
		Help:    "Transaction execution latency",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"instruction"})

	metricAirdropLamports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vault_ledger_airdrop_lamports_total",
		Help: "Lamports credited by the faucet",
	})
)

func observe(record *core.Transaction, start time.Time) {
	metricTransactions.WithLabelValues(record.Instruction, record.Status.String()).Inc()
	metricDuration.WithLabelValues(record.Instruction).Observe(time.Since(start).Seconds())
}

func reason(err error) string {
	if s := Sentinel(err); s != nil {
		return s.Error()
	}

	return "other"
}
