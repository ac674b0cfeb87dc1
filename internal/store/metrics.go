package store

import "github.com/prometheus/client_golang/prometheus"

var (
	// storeChatrooms gauges the number of chatrooms after the last mutation.
	storeChatrooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatstore_chatrooms",
			Help: "Number of chatrooms held by the store.",
		},
	)

	// pendingReplies gauges reply tasks that have not finished.
	pendingReplies = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatstore_pending_replies",
			Help: "Reply tasks scheduled but not yet finished.",
		},
	)

	// messagesAppended counts appended messages by sender (user|ai).
	messagesAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatstore_messages_appended_total",
			Help: "Messages appended to chatroom buckets.",
		},
		[]string{"sender"},
	)

	// repliesTotal counts finished reply tasks by outcome (delivered|cancelled|failed).
	repliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatstore_replies_total",
			Help: "Finished reply tasks by outcome.",
		},
		[]string{"outcome"},
	)

	// persistFailures counts state blob writes that failed.
	persistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chatstore_persist_failures_total",
			Help: "State blob writes that failed.",
		},
	)
)

func init() {
	prometheus.MustRegister(storeChatrooms, pendingReplies, messagesAppended, repliesTotal, persistFailures)
}
