package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"tourism/pkg/kafka"
	"tourism/pkg/logger"
	"tourism/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsProducerMiddleware_CountsOutcome(t *testing.T) {
	m := metrics.NewMetrics("test")
	mw := MetricsProducerMiddleware(m)
	msg := kafka.Message{Topic: "bookings"}

	_ = mw(context.Background(), msg, func(context.Context, kafka.Message) error { return nil })
	_ = mw(context.Background(), msg, func(context.Context, kafka.Message) error { return errors.New("boom") })
	_ = mw(context.Background(), msg, func(context.Context, kafka.Message) error { return nil })

	assert.Equal(t, 2.0, testutil.ToFloat64(m.KafkaMessages.WithLabelValues("bookings", directionPublish, outcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaMessages.WithLabelValues("bookings", directionPublish, outcomeFailure)))
}

func TestMetricsConsumerMiddleware_PropagatesError(t *testing.T) {
	m := metrics.NewMetrics("test")
	mw := MetricsConsumerMiddleware(m)
	want := errors.New("handler failed")

	err := mw(context.Background(), kafka.Message{Topic: "reviews"}, func(context.Context, kafka.Message) error { return want })

	assert.ErrorIs(t, err, want)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaMessages.WithLabelValues("reviews", directionConsume, outcomeFailure)))
}

func TestLoggingMiddleware_PassesThrough(t *testing.T) {
	log := logger.Discard()
	called := false

	err := LoggingConsumerMiddleware(log)(context.Background(), kafka.Message{Headers: map[string]string{}}, func(context.Context, kafka.Message) error {
		called = true
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, called)
}
