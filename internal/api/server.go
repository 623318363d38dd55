package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"squadload/internal/metrics"
	"squadload/internal/service"
)

const shutdownTimeout = 15 * time.Second

// Server exposes the engine as a JSON API for the web presentation layer
type Server struct {
	httpServer *http.Server
}

// NewRouter wires every route. gatherer backs /metrics.
func NewRouter(
	ingest *service.IngestService,
	query *service.QueryService,
	metricsManager *metrics.Manager,
	gatherer prometheus.Gatherer,
) *mux.Router {
	h := &handler{ingest: ingest, query: query}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET").Name("metrics")

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/summary", h.handleSummary).Methods("GET").Name("summary")
	apiRouter.HandleFunc("/risk", h.handleRisk).Methods("GET").Name("risk")
	apiRouter.HandleFunc("/load", h.handleLoad).Methods("GET").Name("load")
	apiRouter.HandleFunc("/athletes", h.handleRoster).Methods("GET").Name("roster")
	apiRouter.HandleFunc("/athletes/{id}/load", h.handleAthleteLoad).Methods("GET").Name("athlete-load")
	apiRouter.HandleFunc("/checkins", h.handleCheckIn).Methods("POST").Name("checkin")
	apiRouter.HandleFunc("/checkouts", h.handleCheckOut).Methods("POST").Name("checkout")

	apiRouter.Use(panicRecovery(metricsManager))
	apiRouter.Use(requestMetrics(metricsManager))
	apiRouter.Use(logRequest())

	return r
}

// NewServer creates a server listening on addr
func NewServer(addr string, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Handler:      router,
			Addr:         addr,
			WriteTimeout: time.Minute,
			ReadTimeout:  time.Minute,
		},
	}
}

// Serve listens until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof(" > server listening on: [%s]", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to gracefully shutdown http server: %s", err)
		return err
	}
	log.Warnln("server shut down")

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
