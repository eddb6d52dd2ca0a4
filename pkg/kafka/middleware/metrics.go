package kafka_middleware

import (
	"context"
	"staydesk/pkg/kafka"
	"time"
)

const (
	DirectionPublish = "publish"
	DirectionConsume = "consume"
)

// Recorder receives one observation per produced or consumed message.
type Recorder interface {
	KafkaMessage(direction string, err error, duration time.Duration)
}

func MetricsProducerMiddleware(rec Recorder) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		rec.KafkaMessage(DirectionPublish, err, time.Since(start))
		return err
	}
}

func MetricsConsumerMiddleware(rec Recorder) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		rec.KafkaMessage(DirectionConsume, err, time.Since(start))
		return err
	}
}
