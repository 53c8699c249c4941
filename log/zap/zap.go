package zap

import (
	"sort"

	"github.com/unkn0wn-root/unicache"
	"go.uber.org/zap"
)

var _ unicache.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

// New adapts l; a nil l yields a no-op logger.
func New(l *zap.Logger) ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return ZapLogger{L: l.Named("unicache")}
}

func (z ZapLogger) Debug(msg string, f unicache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f unicache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f unicache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f unicache.Fields) { z.L.Error(msg, zf(f)...) }

// zf emits fields in key order so output is stable.
func zf(f unicache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
