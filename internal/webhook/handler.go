// Package webhook receives the transport's inbound envelopes over HTTP and
// forwards normalized messages to the messages queue.
package webhook

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mvngu/signalstock/internal/bus"
)

// envelopePayload mirrors the transport's nested webhook body.
type envelopePayload struct {
	Envelope struct {
		Timestamp   int64  `json:"timestamp"`
		Source      string `json:"source"`
		DataMessage struct {
			Message   string `json:"message"`
			GroupInfo struct {
				GroupID string `json:"groupId"`
			} `json:"groupInfo"`
		} `json:"dataMessage"`
	} `json:"envelope"`
}

// Handler publishes normalized inbound messages.
type Handler struct {
	pub     bus.Publisher
	subject string
}

// NewHandler creates the webhook handler publishing to subject via pub.
func NewHandler(pub bus.Publisher, subject string) *Handler {
	return &Handler{pub: pub, subject: subject}
}

// ServeHTTP handles POST (ingest) and GET (health). OPTIONS pre-flights are
// handled by the CORS middleware when enabled.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "webhook"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	}
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	var body envelopePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		slog.Warn("webhook: no JSON payload", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No JSON payload"})
		return
	}

	env := body.Envelope
	if env.DataMessage.Message == "" {
		// Receipts, typing indicators, attachments-only messages. Not an error.
		slog.Debug("webhook: ignoring non-text message", "source", env.Source)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	payload, err := json.Marshal(bus.InboundMessage{
		Timestamp: env.Timestamp,
		Source:    env.Source,
		Message:   env.DataMessage.Message,
		GroupID:   env.DataMessage.GroupInfo.GroupID,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	msgID, err := h.pub.Publish(r.Context(), h.subject, payload)
	if err != nil {
		// No retry here: the transport retries the HTTP delivery.
		slog.Error("webhook: publish failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	slog.Info("webhook: message published", "msg_id", msgID, "source", env.Source)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message_id": msgID})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
