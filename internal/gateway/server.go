// Package gateway hosts the HTTP surface and the queue consumers in one
// process. Every stage stays stateless; they communicate only through the
// JetStream queues, so the stages can also run as separate processes.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/mvngu/signalstock/internal/bus"
	"github.com/mvngu/signalstock/internal/config"
	"github.com/mvngu/signalstock/internal/httpapi"
	"github.com/mvngu/signalstock/internal/identity"
	"github.com/mvngu/signalstock/internal/respond"
	"github.com/mvngu/signalstock/internal/router"
	"github.com/mvngu/signalstock/internal/stocks"
	"github.com/mvngu/signalstock/internal/webhook"
)

// Server wires the pipeline stages.
type Server struct {
	cfg    *config.Config
	conn   *bus.Conn
	rtr    *router.Router
	stocks *stocks.Handler
	out    *respond.Consumer
	mux    http.Handler
}

// New assembles the server from its collaborators.
func New(
	cfg *config.Config,
	conn *bus.Conn,
	rtr *router.Router,
	stockHandler *stocks.Handler,
	outConsumer *respond.Consumer,
	bridge *identity.Bridge,
) *Server {
	s := &Server{
		cfg:    cfg,
		conn:   conn,
		rtr:    rtr,
		stocks: stockHandler,
		out:    outConsumer,
	}
	s.mux = s.buildMux(bridge)
	return s
}

func (s *Server) buildMux(bridge *identity.Bridge) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	if s.cfg.Server.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         3600,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"signalstock"}`))
	})

	r.Handle("/webhook", webhook.NewHandler(s.conn, s.cfg.Nats.MessagesSubject))
	r.Handle("/registration", httpapi.NewRegistrationHandler(bridge))
	r.Handle("/send", httpapi.NewSenderHandler(bridge))

	return r
}

// Run starts the HTTP listener and the queue consumers and blocks until ctx
// is cancelled or one of them fails to start.
func (s *Server) Run(ctx context.Context) error {
	for _, subject := range []string{
		s.cfg.Nats.MessagesSubject,
		s.cfg.Nats.StockSubject,
		s.cfg.Nats.ResponsesSubject,
	} {
		if err := s.conn.EnsureStream(ctx, subject); err != nil {
			return err
		}
	}

	httpServer := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("gateway: http listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return s.conn.Consume(ctx, s.cfg.Nats.MessagesSubject, "command-router", s.rtr.HandleMessage)
	})
	g.Go(func() error {
		return s.conn.Consume(ctx, s.cfg.Nats.StockSubject, "stock-handler", s.stocks.HandleRequest)
	})
	g.Go(func() error {
		return s.conn.Consume(ctx, s.cfg.Nats.ResponsesSubject, "response-sender", s.out.HandleReply)
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
