// Package zap adapts a *zap.Logger to cocache.Logger.
package zap

import (
	"maps"
	"slices"

	"github.com/unkn0wn-root/cocache"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ cocache.Logger = Logger{}

// Logger writes cache events to L. A nil L discards everything.
type Logger struct{ L *zap.Logger }

// New wraps l, naming the child logger "cocache".
func New(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return Logger{L: l.Named("cocache")}
}

func (z Logger) Debug(msg string, f cocache.Fields) { z.log(zap.DebugLevel, msg, f) }
func (z Logger) Info(msg string, f cocache.Fields)  { z.log(zap.InfoLevel, msg, f) }
func (z Logger) Warn(msg string, f cocache.Fields)  { z.log(zap.WarnLevel, msg, f) }
func (z Logger) Error(msg string, f cocache.Fields) { z.log(zap.ErrorLevel, msg, f) }

func (z Logger) log(lvl zapcore.Level, msg string, f cocache.Fields) {
	if z.L == nil {
		return
	}
	if ce := z.L.Check(lvl, msg); ce != nil {
		ce.Write(zf(f)...)
	}
}

// zf converts fields in key order so output is stable.
func zf(f cocache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for _, k := range slices.Sorted(maps.Keys(f)) {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
