package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tutoradmin", Name: "sessions_generated_total", Help: "Sessions materialized from timetables",
	})
	SessionTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutoradmin", Name: "session_transitions_total", Help: "Session lifecycle transitions",
	}, []string{"action", "result"})
	AllowanceFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tutoradmin", Name: "allowance_fallbacks_total", Help: "Sessions completed with zero allowance due to missing billing config",
	})
	PayslipsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tutoradmin", Name: "payslips_generated_total", Help: "Payslips generated",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tutoradmin", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(SessionsGenerated, SessionTransitions, AllowanceFallbacks, PayslipsGenerated, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

// Transition — учёт исходов переходов: result ∈ {ok, conflict}.
func Transition(action string, won bool) {
	result := "ok"
	if !won {
		result = "conflict"
	}
	SessionTransitions.WithLabelValues(action, result).Inc()
}
