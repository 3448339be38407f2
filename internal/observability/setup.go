package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
)

var (
	roundsStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_rounds_started_total",
			Help: "Total number of quiz rounds started",
		},
	)

	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Total number of answer submissions by outcome",
		},
		[]string{"outcome"},
	)

	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_deliveries_total",
			Help: "Total number of per-chat question deliveries by status",
		},
		[]string{"status"},
	)

	documentHealsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_document_heals_total",
			Help: "Total number of documents reset to defaults after corruption",
		},
		[]string{"document"},
	)

	submissionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_submission_duration_seconds",
			Help:    "Time spent arbitrating answer submissions",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func Init(ctx context.Context, addr string) error {
	prometheus.MustRegister(roundsStartedTotal)
	prometheus.MustRegister(submissionsTotal)
	prometheus.MustRegister(deliveriesTotal)
	prometheus.MustRegister(documentHealsTotal)
	prometheus.MustRegister(submissionDuration)

	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.WithError(err).Error("metrics server failed")
		}
	}()

	return nil
}

func RecordRoundStarted() {
	roundsStartedTotal.Inc()
}

func RecordSubmission(outcome string) {
	submissionsTotal.WithLabelValues(outcome).Inc()
}

func RecordDelivery(status string) {
	deliveriesTotal.WithLabelValues(status).Inc()
}

func RecordDocumentHeal(document string) {
	documentHealsTotal.WithLabelValues(document).Inc()
}

// StartSubmissionTimer returns a function that records the elapsed
// arbitration time when called.
func StartSubmissionTimer() func() {
	timer := prometheus.NewTimer(submissionDuration)
	return func() {
		timer.ObserveDuration()
	}
}
