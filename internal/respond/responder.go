// Package respond carries formatted replies back toward the chat transport.
package respond

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mvngu/signalstock/internal/bus"
)

// Responder delivers one reply to a direct recipient or a group.
// Implementations never let a delivery fault escape to the caller's control
// flow beyond the returned error; callers treat failures as advisory.
type Responder interface {
	Deliver(ctx context.Context, recipient, text, groupID string) error
}

// QueueResponder publishes replies onto the responses queue, where the
// response consumer sends them through the verified Signal identity.
type QueueResponder struct {
	pub     bus.Publisher
	subject string
}

// NewQueueResponder creates a responder publishing to subject via pub.
func NewQueueResponder(pub bus.Publisher, subject string) *QueueResponder {
	return &QueueResponder{pub: pub, subject: subject}
}

// Deliver implements Responder.
func (r *QueueResponder) Deliver(ctx context.Context, recipient, text, groupID string) error {
	payload, err := json.Marshal(bus.OutboundReply{
		Recipient: recipient,
		GroupID:   groupID,
		Message:   text,
	})
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	msgID, err := r.pub.Publish(ctx, r.subject, payload)
	if err != nil {
		return fmt.Errorf("publish reply: %w", err)
	}
	slog.Debug("respond: reply queued", "recipient", recipient, "group_id", groupID, "msg_id", msgID)
	return nil
}

// LogResponder only logs replies. Used where no Signal identity is
// registered yet; callers must not assume delivery occurs.
type LogResponder struct{}

// Deliver implements Responder.
func (LogResponder) Deliver(_ context.Context, recipient, text, groupID string) error {
	slog.Info("respond: reply (log only)", "recipient", recipient, "group_id", groupID, "text", text)
	return nil
}
