package kafka_middleware

import (
	"context"
	"time"

	"tourism/pkg/kafka"
	"tourism/pkg/metrics"
)

const (
	directionPublish = "publish"
	directionConsume = "consume"
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
)

func outcome(err error) string {
	if err != nil {
		return outcomeFailure
	}
	return outcomeSuccess
}

func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		err := next(ctx, msg)
		m.KafkaMessages.WithLabelValues(msg.Topic, directionPublish, outcome(err)).Inc()
		return err
	}
}

func MetricsConsumerMiddleware(m *metrics.Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.KafkaProcessingTime.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())
		m.KafkaMessages.WithLabelValues(msg.Topic, directionConsume, outcome(err)).Inc()
		return err
	}
}
