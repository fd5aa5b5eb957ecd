package auditor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricStates = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vault_auditor_states",
		Help: "Number of vault states seen by the last audit",
	})

	metricLockedLamports = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vault_auditor_locked_lamports",
		Help: "Lamports held by vault accounts at the last audit",
	})

	metricViolations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vault_auditor_violations",
		Help: "Number of vaults breaking custody rules at the last audit",
	})
)
