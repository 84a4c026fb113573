package queue

import (
	"context"
	"encoding/json"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Bilal-32/movie-api/internal/logging"
)

const dialTimeout = 2 * time.Second

// Publisher sends UserEvents to the user.events queue. Each Publish dials
// its own connection; a Publisher with an empty URL drops events silently.
type Publisher struct {
	URL string
}

// NewPublisher returns a Publisher for url. An empty url disables publishing.
func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// Publish marshals the event and publishes it as a persistent message.
// Errors are logged and returned so the caller can choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, event UserEvent) error {
	if p == nil || p.URL == "" {
		return nil
	}
	log := logging.Ctx(ctx)

	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: dialContext(ctx)})
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(UserEventsQueue, true, false, false, false, nil); err != nil {
		log.Warn().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         event.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", UserEventsQueue, false, false, pub); err != nil {
		log.Warn().Err(err).Str("event", event.Type).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}

// dialContext connects within ctx and at most dialTimeout. The deadline also
// covers the AMQP handshake; the client clears it once the connection opens.
func dialContext(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		deadline := time.Now().Add(dialTimeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		dialer := net.Dialer{Deadline: deadline}
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}
