package respond

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mvngu/signalstock/internal/bus"
)

// Sender sends one message through the verified identity.
// Satisfied by *identity.Bridge.
type Sender interface {
	Send(ctx context.Context, recipient, groupID, message string) error
}

// Consumer drains the responses queue and pushes each reply through the
// Signal transport. Delivery failures are logged and the reply is dropped;
// there is no one upstream to answer.
type Consumer struct {
	sender Sender
}

// NewConsumer wraps a sender.
func NewConsumer(s Sender) *Consumer {
	return &Consumer{sender: s}
}

// HandleReply is the bus handler for the responses queue.
func (c *Consumer) HandleReply(ctx context.Context, msgID string, payload []byte) error {
	var reply bus.OutboundReply
	if err := json.Unmarshal(payload, &reply); err != nil {
		slog.Error("respond: bad reply payload", "msg_id", msgID, "error", err)
		return nil
	}

	if err := c.sender.Send(ctx, reply.Recipient, reply.GroupID, reply.Message); err != nil {
		slog.Error("respond: delivery failed",
			"recipient", reply.Recipient, "group_id", reply.GroupID, "error", err)
	}
	return nil
}
