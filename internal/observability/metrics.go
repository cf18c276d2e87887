package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperations counts persistent store reads and writes by outcome.
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devblog_store_operations_total",
		Help: "Total number of persistent store operations by slot and result",
	}, []string{"operation", "slot", "result"})

	// EngagementToggles counts like and bookmark toggles by resulting state.
	EngagementToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devblog_engagement_toggles_total",
		Help: "Total number of like/bookmark toggles by resulting state",
	}, []string{"kind", "state"})

	// AuthAttempts counts signup and login attempts by result.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devblog_auth_attempts_total",
		Help: "Total number of signup/login attempts by result",
	}, []string{"operation", "result"})
)

// Store operation results.
const (
	ResultOK       = "ok"
	ResultMissing  = "missing"
	ResultError    = "error"
	ResultRejected = "rejected"
)

// RecordStoreOp increments the store operation counter.
func RecordStoreOp(operation, slot, result string) {
	StoreOperations.WithLabelValues(operation, slot, result).Inc()
}

// RecordToggle increments the engagement counter; on is the state after the toggle.
func RecordToggle(kind string, on bool) {
	state := "off"
	if on {
		state = "on"
	}
	EngagementToggles.WithLabelValues(kind, state).Inc()
}

// RecordAuth increments the auth attempt counter.
func RecordAuth(operation, result string) {
	AuthAttempts.WithLabelValues(operation, result).Inc()
}
