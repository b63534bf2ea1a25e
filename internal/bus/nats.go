package bus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Conn wraps a NATS connection with a JetStream context. It backs the queue
// publisher, the durable consumers, and (elsewhere) the KV/object buckets.
type Conn struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// Connect dials the NATS server and initializes JetStream.
func Connect(url string) (*Conn, error) {
	nc, err := nats.Connect(url, nats.Name("signalstock"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	return &Conn{nc: nc, js: js}, nil
}

// Close drains and closes the underlying connection.
func (c *Conn) Close() {
	if c.nc != nil {
		c.nc.Close()
	}
}

// JetStream exposes the JetStream context for bucket construction.
func (c *Conn) JetStream() jetstream.JetStream { return c.js }

// StreamName derives the stream name for a subject
// ("signal.messages" -> "SIGNAL_MESSAGES").
func StreamName(subject string) string {
	return strings.ToUpper(strings.ReplaceAll(subject, ".", "_"))
}

// EnsureStream creates (or updates) the stream holding one pipeline subject.
func (c *Conn) EnsureStream(ctx context.Context, subject string) error {
	name := StreamName(subject)
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      name,
		Subjects:  []string{subject},
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", name, err)
	}
	return nil
}

// Publish publishes one payload and returns the queue-assigned message ID
// once the server acknowledges it.
func (c *Conn) Publish(ctx context.Context, subject string, payload []byte) (string, error) {
	ack, err := c.js.Publish(ctx, subject, payload)
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", subject, err)
	}
	return fmt.Sprintf("%s/%d", ack.Stream, ack.Sequence), nil
}

// Consume attaches a durable consumer to the subject's stream and feeds every
// delivery to handler. Handler errors are logged and the message is acked
// anyway — redelivery of a failed message would only repeat its side effects.
// Blocks until ctx is cancelled.
func (c *Conn) Consume(ctx context.Context, subject, durable string, handler Handler) error {
	stream, err := c.js.Stream(ctx, StreamName(subject))
	if err != nil {
		return fmt.Errorf("lookup stream for %s: %w", subject, err)
	}

	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:   durable,
		AckPolicy: jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("consumer %s: %w", durable, err)
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		msgID := ""
		if meta, err := msg.Metadata(); err == nil {
			msgID = fmt.Sprintf("%s/%d", meta.Stream, meta.Sequence.Stream)
		}
		if err := handler(ctx, msgID, msg.Data()); err != nil {
			slog.Error("bus: handler failed", "subject", subject, "msg_id", msgID, "error", err)
		}
		if err := msg.Ack(); err != nil {
			slog.Warn("bus: ack failed", "subject", subject, "msg_id", msgID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("consume %s: %w", subject, err)
	}

	slog.Info("bus: consumer started", "subject", subject, "durable", durable)
	<-ctx.Done()
	cc.Stop()
	return nil
}
