package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Bilal-32/movie-api/internal/logging"
)

// StartUserEventConsumer connects to RabbitMQ, declares the user.events
// queue and appends each delivered event to logPath as one line. It
// reconnects with exponential backoff and returns only when ctx is done.
func StartUserEventConsumer(ctx context.Context, url, logPath string) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logging.Warn().Err(err).Dur("retry_in", backoff).Msg("user-events consumer: dial failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, logPath)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Warn().Err(err).Msg("user-events consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

// sleep waits d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// consumeLoop drains the queue over one connection until ctx ends or the
// broker closes the delivery channel.
func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// bound unacked deliveries so a slow disk does not buffer the whole queue
	if err := ch.Qos(50, 0, false); err != nil {
		logging.Warn().Err(err).Msg("user-events consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(UserEventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(UserEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(d.Body, logPath); err != nil {
				logging.Error().Err(err).Msg("user-events consumer: handle message failed")
				_ = d.Nack(false, false) // do not requeue poison messages
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// handleMessage decodes one delivery and appends it to logPath. Events
// without a type or username are rejected.
func handleMessage(body []byte, logPath string) error {
	var ev UserEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.Username == "" {
		return errors.New("event missing type or username")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatEvent(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// formatEvent renders ev as one log line:
//
//	[2024-01-01T00:00:00Z] user.updated | username="bobby02" | previous_username="bobby01"
func formatEvent(ev UserEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | username=%q", ev.OccurredAt, ev.Type, ev.Username)
	if ev.PreviousUsername != "" {
		fmt.Fprintf(&b, " | previous_username=%q", ev.PreviousUsername)
	}
	if ev.MovieID != "" {
		fmt.Fprintf(&b, " | movie_id=%q", ev.MovieID)
	}
	b.WriteString("\n")
	return b.String()
}
