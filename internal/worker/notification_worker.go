package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/querydesk/internal/config"
	"github.com/spec-kit/querydesk/internal/events"
	"github.com/spec-kit/querydesk/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to the
// dispatcher, forwarding to RabbitMQ when an AMQP URL is configured. The
// returned stop function releases the broker connection.
func StartNotificationWorker(dispatcher events.Dispatcher, cfg config.NotificationConfig, logger *zap.Logger) (stop func()) {
	stop = func() {}
	if dispatcher == nil {
		return stop
	}

	var forwarder service.EventForwarder
	if cfg.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("amqp unavailable; events stay in-process", zap.Error(err))
		} else {
			logger.Info("forwarding events to amqp", zap.String("exchange", cfg.AMQPExchange))
			forwarder = publisher
			stop = func() {
				if err := publisher.Close(); err != nil {
					logger.Warn("close amqp publisher", zap.Error(err))
				}
			}
		}
	}

	service.NewNotificationService(dispatcher, forwarder, logger).RegisterHandlers()
	return stop
}
