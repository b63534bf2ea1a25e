// Package router consumes normalized chat messages, parses slash commands,
// and dispatches them: valid stock lookups go to the stock-requests queue,
// everything else answers directly.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mvngu/signalstock/internal/bus"
	"github.com/mvngu/signalstock/internal/config"
	"github.com/mvngu/signalstock/internal/respond"
	"github.com/mvngu/signalstock/internal/store"
)

var tickerRe = regexp.MustCompile(`^[A-Z]{1,5}$`)

const (
	stockUsageText    = "Usage: /stock <ticker>\nExample: /stock AAPL"
	invalidTickerText = "Invalid ticker symbol. Please use 1-5 letters."
	rateLimitedText   = "You're sending commands too quickly. Please slow down."

	helpText = `Available commands:
/stock <ticker> - Get current stock price (e.g., /stock AAPL)
/help - Show this help message

Example: /stock TSLA`

	helpGroupSuffix = "\n\nCommands in this group chat are visible to everyone."
)

// Router dispatches commands parsed from inbound messages.
type Router struct {
	pub          bus.Publisher
	stockSubject string
	responder    respond.Responder
	usage        store.UsageStore
	cfg          config.RouterConfig
	dedupe       *bus.DedupeCache

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a router. usage may be nil (usage logging disabled).
func New(pub bus.Publisher, stockSubject string, responder respond.Responder, usage store.UsageStore, cfg config.RouterConfig) *Router {
	r := &Router{
		pub:          pub,
		stockSubject: stockSubject,
		responder:    responder,
		usage:        usage,
		cfg:          cfg,
		limiters:     make(map[string]*rate.Limiter),
	}
	if cfg.DedupeMessages {
		r.dedupe = bus.NewDedupeCache(20*time.Minute, 5000)
	}
	return r
}

// HandleMessage is the bus handler for the messages queue. Faults never
// escape: they are logged and the message is considered handled, so the
// queue never retries the side effects.
func (r *Router) HandleMessage(ctx context.Context, msgID string, payload []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("router: panic recovered", "msg_id", msgID, "panic", rec)
			err = nil
		}
	}()

	if r.dedupe != nil && r.dedupe.Seen(msgID) {
		slog.Debug("router: duplicate delivery dropped", "msg_id", msgID)
		return nil
	}

	var msg bus.InboundMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		slog.Error("router: bad message payload", "msg_id", msgID, "error", err)
		return nil
	}

	text := strings.TrimSpace(msg.Message)
	if !strings.HasPrefix(text, "/") {
		slog.Debug("router: not a command, ignoring", "sender", msg.Source)
		return nil
	}

	parts := strings.Fields(text)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	if !r.allow(msg.Source) {
		r.reply(ctx, msg, rateLimitedText)
		return nil
	}

	if r.cfg.GroupAck && msg.GroupID != "" {
		r.reply(ctx, msg, fmt.Sprintf("Processing %s command...", command))
	}

	switch command {
	case "/stock":
		r.handleStock(ctx, msg, args)
	case "/help":
		r.handleHelp(ctx, msg)
	default:
		r.reply(ctx, msg, fmt.Sprintf("Unknown command: %s\nType /help for available commands.", command))
	}

	r.logUsage(ctx, msg, command, args)
	return nil
}

func (r *Router) handleStock(ctx context.Context, msg bus.InboundMessage, args []string) {
	if len(args) == 0 {
		r.reply(ctx, msg, stockUsageText)
		return
	}

	ticker := strings.ToUpper(args[0])
	if !tickerRe.MatchString(ticker) {
		r.reply(ctx, msg, invalidTickerText)
		return
	}

	payload, err := json.Marshal(bus.StockRequest{
		Sender:  msg.Source,
		Ticker:  ticker,
		GroupID: msg.GroupID,
	})
	if err != nil {
		slog.Error("router: marshal stock request", "error", err)
		return
	}

	msgID, err := r.pub.Publish(ctx, r.stockSubject, payload)
	if err != nil {
		slog.Error("router: stock request publish failed", "ticker", ticker, "error", err)
		return
	}
	slog.Info("router: stock request published", "ticker", ticker, "msg_id", msgID)
}

func (r *Router) handleHelp(ctx context.Context, msg bus.InboundMessage) {
	text := helpText
	if msg.GroupID != "" {
		text += helpGroupSuffix
	}
	r.reply(ctx, msg, text)
}

func (r *Router) reply(ctx context.Context, msg bus.InboundMessage, text string) {
	if err := r.responder.Deliver(ctx, msg.Source, text, msg.GroupID); err != nil {
		slog.Error("router: reply delivery failed", "recipient", msg.Source, "error", err)
	}
}

// logUsage appends a usage row. Best effort: failures are logged, never
// propagated, and never block command processing.
func (r *Router) logUsage(ctx context.Context, msg bus.InboundMessage, command string, args []string) {
	if r.usage == nil {
		return
	}
	err := r.usage.Append(ctx, store.UsageRecord{
		Sender:  msg.Source,
		Command: command,
		Args:    args,
		GroupID: msg.GroupID,
	})
	if err != nil {
		slog.Error("router: usage log write failed", "command", command, "error", err)
	}
}

// allow checks the per-sender rate limit. Unlimited unless configured.
func (r *Router) allow(sender string) bool {
	max := r.cfg.MaxCommandsPerMinute
	if max <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lim, ok := r.limiters[sender]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(float64(max)/60), max)
		r.limiters[sender] = lim
	}
	return lim.Allow()
}
