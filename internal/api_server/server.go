package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dandori-work/fcfs-booking/internal/auth"
	"github.com/dandori-work/fcfs-booking/internal/config"
	"github.com/dandori-work/fcfs-booking/internal/dispatcher"
	handlers "github.com/dandori-work/fcfs-booking/internal/handlers/v1alpha1"
	"github.com/dandori-work/fcfs-booking/internal/service"
	"github.com/dandori-work/fcfs-booking/internal/store"
	"github.com/dandori-work/fcfs-booking/pkg/metrics"
	"github.com/dandori-work/fcfs-booking/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
}

// New returns a new instance of the booking API server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	authenticator, err := auth.NewAuthenticator(s.cfg.Service.Auth)
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()
	prometheus.MustRegister(metrics.NewOutboxStatsCollector(s.store))

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	h := handlers.NewServiceHandler(
		service.NewClaimService(s.store, s.cfg.Outbox.Target),
		service.NewOutboxService(s.store),
		service.NewAuditService(s.store),
		service.NewHealthService(s.store),
	)

	router.Get("/health", h.Health)

	router.Group(func(r chi.Router) {
		r.Use(authenticator.Authenticator)
		r.Post("/api/v1/claims", h.Claim)
		r.Post("/api/v1/cancel-claim", h.CancelClaim)
		r.Get("/api/v1/alternatives", h.Alternatives)
		r.Get("/api/v1/outbox-events", h.ListOutboxEvents)
		r.Post("/api/v1/outbox-events/{id}/requeue", h.RequeueOutboxEvent)
		r.Get("/api/v1/audit-logs", h.ListAuditLogs)
	})

	if s.cfg.Outbox.Embedded {
		go func() {
			if err := dispatcher.New(s.store, s.cfg).Run(ctx); err != nil {
				zap.S().Named("api_server").Errorw("embedded dispatcher stopped", "error", err)
			}
		}()
	}

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}
