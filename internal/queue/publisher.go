package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/notify"
)

// Publisher is a notify.Dispatcher that publishes each email to
// RabbitMQ.  When the broker cannot be reached the email is handed to
// the fallback dispatcher instead.
type Publisher struct {
	url      string
	queue    string
	fallback notify.Dispatcher
	log      *logrus.Logger
}

func NewPublisher(url, queue string, fallback notify.Dispatcher, log *logrus.Logger) *Publisher {
	if queue == "" {
		queue = DefaultMailQueue
	}
	return &Publisher{url: url, queue: queue, fallback: fallback, log: log}
}

// Dispatch publishes in the background.  The caller's context is not
// used because it usually ends with the HTTP request.
func (p *Publisher) Dispatch(_ context.Context, m notify.Email) {
	ev := NewMailEvent(m.Kind, m, time.Now())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.Publish(ctx, ev); err != nil {
			p.log.WithError(err).WithField("to", m.To).Warn("rabbitmq: publish failed, sending directly")
			if p.fallback != nil {
				p.fallback.Dispatch(ctx, m)
			}
		}
	}()
}

// Publish sends one event to the mail queue.  Messages are persistent
// and the queue durable so they survive broker restarts.
func (p *Publisher) Publish(ctx context.Context, ev MailEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	return ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	)
}
