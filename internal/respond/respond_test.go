package respond

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mvngu/signalstock/internal/bus"
)

type capturePublisher struct {
	subject string
	payload []byte
}

func (p *capturePublisher) Publish(_ context.Context, subject string, payload []byte) (string, error) {
	p.subject = subject
	p.payload = payload
	return "SIGNAL_RESPONSES/1", nil
}

func TestQueueResponder_Deliver(t *testing.T) {
	pub := &capturePublisher{}
	r := NewQueueResponder(pub, "signal.responses")

	if err := r.Deliver(context.Background(), "+1555", "hello", "g=="); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if pub.subject != "signal.responses" {
		t.Errorf("subject = %q", pub.subject)
	}
	var reply bus.OutboundReply
	json.Unmarshal(pub.payload, &reply)
	if reply.Recipient != "+1555" || reply.Message != "hello" || reply.GroupID != "g==" {
		t.Errorf("reply = %+v", reply)
	}
}

type captureSender struct {
	recipient, groupID, message string
	calls                       int
	err                         error
}

func (s *captureSender) Send(_ context.Context, recipient, groupID, message string) error {
	s.calls++
	s.recipient, s.groupID, s.message = recipient, groupID, message
	return s.err
}

func TestConsumer_HandleReply(t *testing.T) {
	sender := &captureSender{}
	c := NewConsumer(sender)

	payload, _ := json.Marshal(bus.OutboundReply{Recipient: "+1555", Message: "hi"})
	if err := c.HandleReply(context.Background(), "m1", payload); err != nil {
		t.Fatalf("HandleReply() error = %v", err)
	}
	if sender.calls != 1 || sender.recipient != "+1555" || sender.message != "hi" {
		t.Errorf("sender = %+v", sender)
	}
}

func TestConsumer_DeliveryFailureIsSwallowed(t *testing.T) {
	c := NewConsumer(&captureSender{err: errors.New("cli failed")})
	payload, _ := json.Marshal(bus.OutboundReply{Recipient: "+1555", Message: "hi"})
	if err := c.HandleReply(context.Background(), "m1", payload); err != nil {
		t.Errorf("delivery failure must be swallowed, got %v", err)
	}
}

func TestConsumer_MalformedPayload(t *testing.T) {
	sender := &captureSender{}
	c := NewConsumer(sender)
	if err := c.HandleReply(context.Background(), "m1", []byte("{bad")); err != nil {
		t.Errorf("malformed payload must be swallowed, got %v", err)
	}
	if sender.calls != 0 {
		t.Error("malformed payload must not reach the sender")
	}
}
