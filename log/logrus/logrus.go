// Package logrus adapts a *logrus.Entry to cocache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/cocache"
)

var _ cocache.Logger = Logger{}

// Logger writes cache events to E. A nil E discards everything.
type Logger struct{ E *logrus.Entry }

// New wraps l and tags every entry with component=cocache.
func New(l *logrus.Logger) Logger {
	if l == nil {
		return Logger{}
	}
	return Logger{E: l.WithField("component", "cocache")}
}

func (l Logger) Debug(msg string, f cocache.Fields) { l.log(logrus.DebugLevel, msg, f) }
func (l Logger) Info(msg string, f cocache.Fields)  { l.log(logrus.InfoLevel, msg, f) }
func (l Logger) Warn(msg string, f cocache.Fields)  { l.log(logrus.WarnLevel, msg, f) }
func (l Logger) Error(msg string, f cocache.Fields) { l.log(logrus.ErrorLevel, msg, f) }

func (l Logger) log(lvl logrus.Level, msg string, f cocache.Fields) {
	if l.E == nil || !l.E.Logger.IsLevelEnabled(lvl) {
		return
	}
	e := l.E
	if len(f) > 0 {
		// "err" goes through WithError so formatters render it as logrus.ErrorKey
		if err, ok := f["err"].(error); ok {
			e = e.WithError(err)
			f = cloneWithout(f, "err")
		}
		e = e.WithFields(logrus.Fields(f))
	}
	e.Log(lvl, msg)
}

func cloneWithout(f cocache.Fields, key string) cocache.Fields {
	out := make(cocache.Fields, len(f))
	for k, v := range f {
		if k != key {
			out[k] = v
		}
	}
	return out
}
