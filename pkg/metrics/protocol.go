package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ampere"

var (
	LinesInTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lines_in_total",
		Help:      "Total lines read from the venue",
	})
	LinesOutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lines_out_total",
		Help:      "Total command lines written to the venue",
	}, []string{"cmd"}) // HELLO/ADD/CONVERT/CANCEL

	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Decoded venue events, partitioned by message kind",
	}, []string{"kind"})
	DecodeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decode_errors_total",
		Help:      "Venue lines discarded because they failed to decode",
	})
	NoopTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "noop_total",
		Help:      "Venue lines with an unrecognized tag (silently ignored)",
	})

	RejectedIntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_intents_total",
		Help:      "Commands suppressed by local validation",
	}, []string{"cmd", "reason"})
	WriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "write_errors_total",
		Help:      "Command writes that failed on the line sink",
	})
	WriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "write_duration_seconds",
		Help:      "Duration of one locked write+flush of a command line",
		Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14), // 50us -> ~0.4s
	})

	RelayDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relay_dropped_total",
		Help:      "Events the relay failed to encode or publish",
	}, []string{"why"})
)

func ObserveWrite(cmd string, dur time.Duration, err error) {
	WriteDuration.Observe(dur.Seconds())
	if err != nil {
		WriteErrorsTotal.Inc()
		return
	}
	LinesOutTotal.WithLabelValues(cmd).Inc()
}

func OnEvent(kind string) {
	EventsTotal.WithLabelValues(kind).Inc()
}

func OnRejectedIntent(cmd, reason string) {
	RejectedIntentsTotal.WithLabelValues(cmd, reason).Inc()
}
