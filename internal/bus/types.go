package bus

import "context"

// InboundMessage is one normalized chat message lifted out of the transport
// envelope by the webhook and carried on the messages queue.
type InboundMessage struct {
	Timestamp int64  `json:"timestamp"`
	Source    string `json:"source"`
	Message   string `json:"message"`
	GroupID   string `json:"group_id,omitempty"`
}

// StockRequest is a validated ticker lookup produced by the command router
// and carried on the stock-requests queue. Ticker is always upper-case.
type StockRequest struct {
	Sender  string `json:"sender"`
	Ticker  string `json:"ticker"`
	GroupID string `json:"group_id,omitempty"`
}

// OutboundReply is a formatted reply awaiting delivery, carried on the
// responses queue.
type OutboundReply struct {
	Recipient string `json:"recipient,omitempty"`
	GroupID   string `json:"group_id,omitempty"`
	Message   string `json:"message"`
}

// Publisher publishes one payload to a subject and returns the
// queue-assigned message ID once the publish is acknowledged.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) (string, error)
}

// Handler processes one delivered message. The returned error is logged by
// the consumer; the message is acked either way so the queue never retries
// non-idempotent side effects.
type Handler func(ctx context.Context, msgID string, payload []byte) error
