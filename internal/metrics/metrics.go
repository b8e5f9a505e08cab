package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_appended_total",
		Help: "Messages durably appended to the log.",
	})

	MessagesRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_revoked_total",
		Help: "Messages deleted through the revoke protocol.",
	})

	RevokeRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_revoke_rejected_total",
		Help: "Revoke requests rejected with an invalid ordinal.",
	})

	EvictedSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_broadcast_evicted_sessions_total",
		Help: "Sessions dropped because their send buffer was full.",
	})

	ConnectedSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_sessions",
		Help: "Currently registered realtime sessions.",
	})

	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_store_errors_total",
		Help: "Message store failures by operation.",
	}, []string{"op"})
)
