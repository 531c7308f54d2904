// Package metrics defines the Prometheus collectors for the split service.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Settlement results recorded by SettlementsTotal.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics groups the collectors for one service instance. Each instance owns
// its registry so tests and multiple hosts never collide on the default one.
type Metrics struct {
	Registry *prometheus.Registry

	UsersRegistered  prometheus.Counter
	ExpensesCreated  *prometheus.CounterVec
	SettlementsTotal *prometheus.CounterVec
	SettledAmount    prometheus.Counter
	LedgerPairs      prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		UsersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "users_registered_total",
			Help:      "Number of users registered.",
		}),
		ExpensesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "expenses_created_total",
			Help:      "Number of expenses created, by split strategy.",
		}, []string{"strategy"}),
		SettlementsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "settlements_total",
			Help:      "Settlement attempts, by result.",
		}, []string{"result"}),
		SettledAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "settled_amount_total",
			Help:      "Sum of expense totals applied to the ledger.",
		}),
		LedgerPairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "splitledger",
			Name:      "ledger_pairs",
			Help:      "Number of user pairs with a ledger entry.",
		}),
	}
	m.Registry.MustRegister(
		m.UsersRegistered,
		m.ExpensesCreated,
		m.SettlementsTotal,
		m.SettledAmount,
		m.LedgerPairs,
	)
	return m
}

// WriteText dumps every registered metric in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.Registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
