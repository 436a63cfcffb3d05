package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/fontcache"
)

var _ fontcache.Logger = LogrusLogger{}

// LogrusLogger adapts a *logrus.Entry to fontcache.Logger.
type LogrusLogger struct{ E *logrus.Entry }

func (l LogrusLogger) Debug(msg string, f fontcache.Fields) { l.with(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f fontcache.Fields)  { l.with(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f fontcache.Fields)  { l.with(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f fontcache.Fields) { l.with(f).Error(msg) }

func (l LogrusLogger) with(f fontcache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	return l.E.WithFields(logrus.Fields(f))
}
