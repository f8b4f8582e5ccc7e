package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// EventPublisher announces record changes to other systems. Publishing
// failures are reported to the caller, which logs and carries on.
type EventPublisher interface {
	PublishGPARecalculated(ctx context.Context, event *models.GPARecalculatedEvent) error
	PublishImportCompleted(ctx context.Context, event *models.ImportCompletedEvent) error
	Close() error
}

type rabbitMQClient struct {
	conn             *amqp091.Connection
	channel          *amqp091.Channel
	exchange         string
	gpaRoutingKey    string
	importRoutingKey string
	logger           zerolog.Logger
}

func NewRabbitMQClient(url, exchange, gpaRoutingKey, importRoutingKey string, logger zerolog.Logger) (EventPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info().
		Str("exchange", exchange).
		Str("gpa_routing_key", gpaRoutingKey).
		Str("import_routing_key", importRoutingKey).
		Msg("Connected to RabbitMQ")

	return &rabbitMQClient{
		conn:             conn,
		channel:          channel,
		exchange:         exchange,
		gpaRoutingKey:    gpaRoutingKey,
		importRoutingKey: importRoutingKey,
		logger:           logger,
	}, nil
}

func (c *rabbitMQClient) PublishGPARecalculated(ctx context.Context, event *models.GPARecalculatedEvent) error {
	if err := c.publish(ctx, c.gpaRoutingKey, event); err != nil {
		return err
	}

	c.logger.Debug().
		Str("student_id", event.StudentID).
		Str("level", event.Level.String()).
		Str("semester", event.Semester.String()).
		Str("academic_year", event.AcademicYear).
		Bool("removed", event.Removed).
		Msg("GPA recalculated event published")

	return nil
}

func (c *rabbitMQClient) PublishImportCompleted(ctx context.Context, event *models.ImportCompletedEvent) error {
	if err := c.publish(ctx, c.importRoutingKey, event); err != nil {
		return err
	}

	c.logger.Info().
		Str("job_id", event.JobID).
		Str("kind", event.Kind).
		Bool("success", event.Success).
		Msg("Import completed event published")

	return nil
}

func (c *rabbitMQClient) publish(ctx context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (c *rabbitMQClient) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	return nil
}

// NoopPublisher drops events. It stands in when RabbitMQ is disabled or
// unreachable at startup.
type NoopPublisher struct{}

func (NoopPublisher) PublishGPARecalculated(context.Context, *models.GPARecalculatedEvent) error {
	return nil
}

func (NoopPublisher) PublishImportCompleted(context.Context, *models.ImportCompletedEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
