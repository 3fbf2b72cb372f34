package transform

import (
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"time"
)

// Middleware wraps a Func. It may call next or return a reply on its own.
type Middleware func(next Func) Func

// Chain applies the middlewares to final. The first middleware is the outermost,
// so it sees the request first.
func Chain(final Func, mws ...Middleware) Func {
	fn := final
	for i := len(mws) - 1; i >= 0; i-- {
		fn = mws[i](fn)
	}
	return fn
}

// Logging logs payload sizes and the time the transform took at debug level
func Logging(log logger.ILogger) Middleware {
	return func(next Func) Func {
		return func(payload []byte) []byte {
			start := time.Now()
			reply := next(payload)
			log.Debugf("transformed %d bytes into %d bytes in %s", len(payload), len(reply), time.Since(start))
			return reply
		}
	}
}

// Metrics records the transform duration in a histogram labeled with name
func Metrics(name string) Middleware {
	h := metrics.GetOrCreateHistogram(fmt.Sprintf(`oneshot_transform_duration_seconds{transform=%q}`, name))
	return func(next Func) Func {
		return func(payload []byte) []byte {
			start := time.Now()
			defer h.UpdateDuration(start)
			return next(payload)
		}
	}
}
