// Package prom exports cocache hook events as Prometheus metrics.
//
//	h, err := prom.New(prometheus.DefaultRegisterer, "app")
//	cache, _ := cocache.New[Slide](cocache.Options[Slide]{DisplayName: "slides", Hooks: h})
package prom

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/cocache"
)

// Hooks is a cocache.Hooks backed by counters and gauges labeled by cache
// display name.
type Hooks struct {
	commits   *prometheus.CounterVec
	history   *prometheus.GaugeVec
	rejected  *prometheus.CounterVec
	swept     *prometheus.CounterVec
	rollbacks *prometheus.CounterVec
	aborted   *prometheus.CounterVec
}

var _ cocache.Hooks = (*Hooks)(nil)

// New creates the collectors and registers them with reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	h := &Hooks{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cocache", Name: "commits_total",
			Help: "State changes installed, by operation.",
		}, []string{"cache", "op"}),
		history: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "cocache", Name: "history_snapshots",
			Help: "Snapshots held in history, the initial one included.",
		}, []string{"cache"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cocache", Name: "records_rejected_total",
			Help: "Writes aborted because a record failed validation.",
		}, []string{"cache"}),
		swept: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cocache", Name: "orphans_swept_total",
			Help: "Records discarded after no collection referenced them.",
		}, []string{"cache"}),
		rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cocache", Name: "rollbacks_total",
			Help: "Rollback calls, by whether the state changed.",
		}, []string{"cache", "changed"}),
		aborted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cocache", Name: "transactions_aborted_total",
			Help: "Transactions whose worker failed.",
		}, []string{"cache"}),
	}
	if reg != nil {
		for _, c := range h.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return h, nil
}

// MustNew is like New but panics on a registration error.
func MustNew(reg prometheus.Registerer, namespace string) *Hooks {
	h, err := New(reg, namespace)
	if err != nil {
		panic(err)
	}
	return h
}

func (h *Hooks) collectors() []prometheus.Collector {
	return []prometheus.Collector{h.commits, h.history, h.rejected, h.swept, h.rollbacks, h.aborted}
}

func (h *Hooks) Committed(cache, op string, historyLen int) {
	h.commits.WithLabelValues(cache, op).Inc()
	h.history.WithLabelValues(cache).Set(float64(historyLen))
}

func (h *Hooks) RecordRejected(cache, _ string, _ error) {
	h.rejected.WithLabelValues(cache).Inc()
}

func (h *Hooks) OrphansSwept(cache, _ string, n int) {
	h.swept.WithLabelValues(cache).Add(float64(n))
}

func (h *Hooks) RolledBack(cache string, _ int, changed bool) {
	h.rollbacks.WithLabelValues(cache, strconv.FormatBool(changed)).Inc()
}

func (h *Hooks) TransactionAborted(cache string, _ int, _ error) {
	h.aborted.WithLabelValues(cache).Inc()
}
