package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrorsRegistered counts RegisterError calls that reached the store write, per queue
	ErrorsRegistered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errtrack_errors_registered_total",
			Help: "Total number of handling errors registered",
		},
		[]string{"queue"},
	)

	// MarkedFinal counts MarkAsFinal calls per queue
	MarkedFinal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errtrack_marked_final_total",
			Help: "Total number of messages explicitly marked as final",
		},
		[]string{"queue"},
	)

	// LostUpdates counts conditional writes the store refused
	LostUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errtrack_lost_updates_total",
			Help: "Total number of tracking writes dropped by the existence condition",
		},
		[]string{"queue", "op"},
	)

	// StoreErrors counts failed store calls per operation
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errtrack_store_errors_total",
			Help: "Total number of failed record store calls",
		},
		[]string{"queue", "op"},
	)

	// CorruptRecords counts stored records that failed to decode
	CorruptRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errtrack_corrupt_records_total",
			Help: "Total number of tracking records that could not be decoded",
		},
		[]string{"queue"},
	)

	// GiveUpAnswers counts HasFailedTooManyTimes queries that answered true.
	// A caller asking more than once per delivery is counted each time.
	GiveUpAnswers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errtrack_give_up_answers_total",
			Help: "Total number of failed-too-many-times queries that answered true",
		},
		[]string{"queue"},
	)
)
