package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/cocache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	CommitEvery uint64
	RejectEvery uint64
	// Optional record id redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	commitCtr atomic.Uint64
	rejectCtr atomic.Uint64
}

var _ cocache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(id string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(id)
	}
	if id == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Committed(cache, op string, historyLen int) {
	if h.l == nil || !sample(h.opts.CommitEvery, &h.commitCtr) {
		return
	}
	h.l.Debug("cocache.commit",
		"cache", cache,
		"op", op,
		"history", historyLen)
}

func (h *Hooks) RecordRejected(cache, id string, err error) {
	if h.l == nil || !sample(h.opts.RejectEvery, &h.rejectCtr) {
		return
	}
	h.l.Warn("cocache.record_rejected",
		"cache", cache,
		"id", h.redact(id),
		"err", err)
}

func (h *Hooks) OrphansSwept(cache, collection string, n int) {
	if h.l == nil {
		return
	}
	h.l.Info("cocache.orphans_swept",
		"cache", cache,
		"collection", collection,
		"count", n)
}

func (h *Hooks) RolledBack(cache string, steps int, changed bool) {
	if h.l == nil {
		return
	}
	h.l.Info("cocache.rolled_back",
		"cache", cache,
		"steps", steps,
		"changed", changed)
}

func (h *Hooks) TransactionAborted(cache string, steps int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("cocache.transaction_aborted",
		"cache", cache,
		"steps", steps,
		"err", err)
}
