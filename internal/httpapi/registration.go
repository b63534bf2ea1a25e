// Package httpapi exposes the registration and sender bridge over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mvngu/signalstock/internal/identity"
)

// RegistrationHandler drives identity registration and verification.
type RegistrationHandler struct {
	bridge *identity.Bridge
}

// NewRegistrationHandler wraps the identity bridge.
func NewRegistrationHandler(b *identity.Bridge) *RegistrationHandler {
	return &RegistrationHandler{bridge: b}
}

type registrationRequest struct {
	Action           string `json:"action"`
	PhoneNumber      string `json:"phone_number"`
	VerificationCode string `json:"verification_code"`
}

// ServeHTTP handles POST (register/verify) and GET (health).
func (h *RegistrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "signal-registration"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	}
}

func (h *RegistrationHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No JSON payload"})
		return
	}
	if req.PhoneNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone_number is required"})
		return
	}

	switch req.Action {
	case "register":
		if err := h.bridge.Register(r.Context(), req.PhoneNumber); err != nil {
			writeBridgeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":       "success",
			"message":      "Verification code sent to " + req.PhoneNumber,
			"phone_number": req.PhoneNumber,
		})
	case "verify":
		if req.VerificationCode == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "verification_code is required"})
			return
		}
		if err := h.bridge.Verify(r.Context(), req.PhoneNumber, req.VerificationCode); err != nil {
			writeBridgeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":       "success",
			"message":      "Phone number " + req.PhoneNumber + " verified successfully",
			"phone_number": req.PhoneNumber,
		})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": `Invalid action. Use "register" or "verify"`})
	}
}

// writeBridgeError maps bridge failure kinds onto the HTTP taxonomy:
// CLI rejection 400, timeout 408, everything else 500.
func writeBridgeError(w http.ResponseWriter, err error) {
	var bridgeErr *identity.Error
	status := http.StatusInternalServerError
	if errors.As(err, &bridgeErr) {
		switch bridgeErr.Kind {
		case identity.FailCLI:
			status = http.StatusBadRequest
		case identity.FailTimeout:
			status = http.StatusRequestTimeout
		}
	}
	slog.Error("httpapi: bridge operation failed", "status", status, "error", err)
	writeJSON(w, status, map[string]string{"status": "error", "message": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
