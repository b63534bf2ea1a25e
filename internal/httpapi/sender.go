package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/mvngu/signalstock/internal/identity"
)

// SenderHandler sends one message through the verified identity.
type SenderHandler struct {
	bridge *identity.Bridge
}

// NewSenderHandler wraps the identity bridge.
func NewSenderHandler(b *identity.Bridge) *SenderHandler {
	return &SenderHandler{bridge: b}
}

type sendRequest struct {
	Recipient string `json:"recipient"`
	GroupID   string `json:"group_id"`
	Message   string `json:"message"`
}

// ServeHTTP handles POST (send) and GET (health).
func (h *SenderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "signal-sender"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	}
}

func (h *SenderHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No JSON payload"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}
	if req.Recipient == "" && req.GroupID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Either recipient or group_id is required"})
		return
	}

	if err := h.bridge.Send(r.Context(), req.Recipient, req.GroupID, req.Message); err != nil {
		writeBridgeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "success",
		"message":   "Message sent successfully",
		"recipient": req.Recipient,
		"group_id":  req.GroupID,
	})
}
