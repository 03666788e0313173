package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	BookingsCreated        *prometheus.CounterVec
	BookingTransitions     *prometheus.CounterVec
	PaymentUpdates         *prometheus.CounterVec
	AvailabilityRejections *prometheus.CounterVec

	ReviewsSubmitted prometheus.Counter
	RatingRecomputes *prometheus.CounterVec

	SearchCache *prometheus.CounterVec

	KafkaMessages       *prometheus.CounterVec
	KafkaProcessingTime *prometheus.HistogramVec

	ErrorsCount *prometheus.CounterVec
}

// NewMetrics creates the metrics on a private registry so several instances
// can coexist in one process.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		BookingsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of bookings created",
		}, []string{"resource_type"}),
		BookingTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "The total number of booking status transitions",
		}, []string{"from", "to"}),
		PaymentUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_payment_updates_total",
			Help:      "The total number of booking payment status changes",
		}, []string{"status"}),
		AvailabilityRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_rejections_total",
			Help:      "The total number of booking requests rejected for lack of inventory",
		}, []string{"resource_type"}),
		ReviewsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_submitted_total",
			Help:      "The total number of reviews submitted",
		}),
		RatingRecomputes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rating_recomputes_total",
			Help:      "The total number of property rating recomputations",
		}, []string{"source"}),
		SearchCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_lookups_total",
			Help:      "Search cache lookups by result",
		}, []string{"result"}),
		KafkaMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Kafka messages by topic, direction and outcome",
		}, []string{"topic", "direction", "outcome"}),
		KafkaProcessingTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_processing_time_seconds",
			Help:      "Time taken to handle a consumed kafka message",
			Buckets:   prometheus.DefBuckets,
		}, []string{"topic"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
