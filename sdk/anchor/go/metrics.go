package anchor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Metrics names.
	MetricNameTransactionsSent   = "anchor_transactions_sent_total"
	MetricNameTransactionsFailed = "anchor_transactions_failed_total"
	MetricNameAccountReads       = "anchor_account_reads_total"
	MetricNameEventsDelivered    = "anchor_events_delivered_total"
	MetricNameEventsDropped      = "anchor_events_dropped_total"

	// Labels.
	LabelProgram = "program"
	LabelResult  = "result"
	LabelReason  = "reason"

	// Account read results.
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultDecode   = "decode_error"
	ResultError    = "error"

	// Drop reasons.
	DropReasonDecode      = "decode"
	DropReasonFailedTx    = "failed_transaction"
	DropReasonUnsubscribe = "unsubscribed"
)

var (
	TransactionsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTransactionsSent,
			Help: "Number of transactions that reached the requested commitment",
		},
		[]string{LabelProgram},
	)

	TransactionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTransactionsFailed,
			Help: "Number of transactions that failed to build, sign, submit or confirm",
		},
		[]string{LabelProgram},
	)

	AccountReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameAccountReads,
			Help: "Number of typed account reads by result",
		},
		[]string{LabelProgram, LabelResult},
	)

	EventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsDelivered,
			Help: "Number of decoded events handed to subscription handlers",
		},
		[]string{LabelProgram},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsDropped,
			Help: "Number of event payloads dropped before reaching a handler",
		},
		[]string{LabelProgram, LabelReason},
	)
)
