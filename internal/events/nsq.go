package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"
)

// NSQPublisher publishes domain events to NSQ.
type NSQPublisher struct {
	producer *nsq.Producer
	logger   *logrus.Logger
}

// NewNSQPublisher creates a publisher connected to one nsqd instance.
func NewNSQPublisher(address string, logger *logrus.Logger) (*NSQPublisher, error) {
	config := nsq.NewConfig()
	producer, err := nsq.NewProducer(address, config)
	if err != nil {
		return nil, fmt.Errorf("create nsq producer: %w", err)
	}

	if err := producer.Ping(); err != nil {
		return nil, fmt.Errorf("ping nsqd: %w", err)
	}

	return &NSQPublisher{producer: producer, logger: logger}, nil
}

var _ Publisher = (*NSQPublisher)(nil)

// PublishDriverApproved publishes a DriverApproved event.
func (p *NSQPublisher) PublishDriverApproved(_ context.Context, event DriverApproved) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.producer.Publish(TopicDriverApproved, body); err != nil {
		return fmt.Errorf("publish %s: %w", TopicDriverApproved, err)
	}

	p.logger.WithFields(logrus.Fields{
		"topic":     TopicDriverApproved,
		"driver_id": event.DriverID,
		"user_id":   event.UserID,
	}).Info("event published")
	return nil
}

// Stop gracefully stops the producer.
func (p *NSQPublisher) Stop() {
	p.producer.Stop()
}

// DriverApprovedHandler reacts to a DriverApproved event.
type DriverApprovedHandler func(ctx context.Context, event DriverApproved) error

// DriverApprovedConsumer consumes DriverApproved events from NSQ.
type DriverApprovedConsumer struct {
	consumer *nsq.Consumer
	logger   *logrus.Logger
}

// NewDriverApprovedConsumer creates a consumer on the given channel and wires
// the handler. A handler error requeues the message.
func NewDriverApprovedConsumer(channel, address string, handler DriverApprovedHandler, logger *logrus.Logger) (*DriverApprovedConsumer, error) {
	config := nsq.NewConfig()
	consumer, err := nsq.NewConsumer(TopicDriverApproved, channel, config)
	if err != nil {
		return nil, fmt.Errorf("create nsq consumer: %w", err)
	}

	consumer.AddHandler(nsq.HandlerFunc(func(message *nsq.Message) error {
		var event DriverApproved
		if err := json.Unmarshal(message.Body, &event); err != nil {
			// A malformed event never becomes parseable; drop it.
			logger.WithError(err).Warn("dropping malformed driver_approved event")
			return nil
		}

		if err := handler(context.Background(), event); err != nil {
			logger.WithError(err).WithField("driver_id", event.DriverID).Error("driver_approved handler failed")
			return err
		}
		return nil
	}))

	if err := consumer.ConnectToNSQD(address); err != nil {
		return nil, fmt.Errorf("connect to nsqd: %w", err)
	}

	return &DriverApprovedConsumer{consumer: consumer, logger: logger}, nil
}

// Stop gracefully stops the consumer.
func (c *DriverApprovedConsumer) Stop() {
	c.consumer.Stop()
}
