package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/unicache"
)

var _ unicache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New tags every entry with component=unicache.
func New(l *logrus.Logger) LogrusLogger {
	return LogrusLogger{E: l.WithField("component", "unicache")}
}

func (l LogrusLogger) Debug(msg string, f unicache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f unicache.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f unicache.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f unicache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
