// Package metrics holds the Prometheus collectors of the accounts API.
// Collectors register with the default registry on import; the debug module
// serves them on /debug/metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crm_accounts"

// AccountOperationsTotal counts use-case outcomes.
// Labels:
//   - operation: create, list, toggle_active, delete, change_password, avatar, search
//   - result: ok or the error code returned to the client (forbidden, validation_error, ...)
var AccountOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_operations_total",
		Help:      "Account lifecycle operations by outcome.",
	},
	[]string{"operation", "result"},
)

// LoginAttemptsTotal counts login outcomes (ok, invalid_credentials, inactive_account, validation_error, error).
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Login attempts by outcome.",
	},
	[]string{"result"},
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// Instrument records request latency under the matched route template.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
