package stocks

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mvngu/signalstock/internal/bus"
	"github.com/mvngu/signalstock/internal/respond"
)

// Handler consumes stock requests, fetches the quote, and replies with the
// formatted result. Lookup failures become a failure-shaped reply; nothing
// ever escapes the handler.
type Handler struct {
	provider  Provider
	responder respond.Responder
}

// NewHandler wires a provider and a responder.
func NewHandler(p Provider, r respond.Responder) *Handler {
	return &Handler{provider: p, responder: r}
}

// HandleRequest is the bus handler for the stock-requests queue.
func (h *Handler) HandleRequest(ctx context.Context, msgID string, payload []byte) error {
	var req bus.StockRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		slog.Error("stocks: bad request payload", "msg_id", msgID, "error", err)
		return nil
	}

	var reply string
	quote, err := h.provider.Quote(ctx, req.Ticker)
	if err != nil {
		slog.Warn("stocks: lookup failed", "ticker", req.Ticker, "error", err)
		reply = FormatError(req.Ticker, err)
	} else {
		reply = FormatQuote(quote)
	}

	if err := h.responder.Deliver(ctx, req.Sender, reply, req.GroupID); err != nil {
		slog.Error("stocks: reply delivery failed", "ticker", req.Ticker, "error", err)
	}
	return nil
}
