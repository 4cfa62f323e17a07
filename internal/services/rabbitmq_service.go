package services

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/slidecraft/slidecraft-backend/internal/utils"
)

const eventQueueName = "presentation_events"

// RabbitMQService mirrors generation lifecycle events onto a durable queue so
// internal consumers can react without registering an HTTP webhook.
type RabbitMQService struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQService() (*RabbitMQService, error) {
	host := utils.GetEnv("RABBITMQ_HOST", "localhost")
	port := utils.GetEnv("RABBITMQ_PORT", "5672")
	user := utils.GetEnv("RABBITMQ_USER", "guest")
	pass := utils.GetEnv("RABBITMQ_PASS", "guest")

	url := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		eventQueueName, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	logrus.Info("RabbitMQ service initialized successfully")
	return &RabbitMQService{
		conn:    conn,
		channel: channel,
	}, nil
}

// PublishEvent publishes a lifecycle event to the presentation events queue.
func (s *RabbitMQService) PublishEvent(event string, data interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = s.channel.Publish(
		"",             // exchange
		eventQueueName, // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	logrus.Infof("Event %s published to queue %s", event, eventQueueName)
	return nil
}

// Close closes the RabbitMQ connection
func (s *RabbitMQService) Close() error {
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			logrus.Errorf("Error closing channel: %v", err)
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			logrus.Errorf("Error closing connection: %v", err)
		}
	}
	return nil
}
