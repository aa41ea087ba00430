package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	// healthStaleAfter is how old the last successful collection may be
	// before the health probe reports unhealthy.
	healthStaleAfter = 5 * time.Minute

	shutdownGrace     = 5 * time.Second
	readHeaderTimeout = 10 * time.Second

	indexBody = "eipmon metrics exporter\n\n" +
		"endpoints:\n" +
		"  /metrics  Prometheus metrics\n" +
		"  /health   health probe\n"
)

// Snapshotter takes one collection pass over the cluster.
type Snapshotter interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Server runs the exporter: a collection loop feeding the metric registry,
// and the HTTP endpoints serving it.
type Server struct {
	snapshotter Snapshotter
	metrics     *Metrics
	tracker     *Tracker
	settings    Settings
	logger      *logrus.Logger

	mu          sync.RWMutex
	lastSuccess time.Time
}

// NewServer wires a server around the given snapshot source.
func NewServer(snapshotter Snapshotter, settings Settings, logger *logrus.Logger) *Server {
	return &Server{
		snapshotter: snapshotter,
		metrics:     NewMetrics(),
		tracker:     NewTracker(),
		settings:    settings,
		logger:      logger,
	}
}

// Run serves the HTTP endpoints and collects until the context is canceled.
// Collection failures surface through metrics and logs, never as a return;
// only a failing listener ends the run early.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.settings.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	listenErr := make(chan error, 1)

	go func() {
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err

			return
		}

		listenErr <- nil
	}()

	s.logger.WithFields(logrus.Fields{
		"addr":     httpServer.Addr,
		"interval": s.settings.ScrapeInterval.String(),
	}).Info("exporter started")

	collectCtx, stopCollecting := context.WithCancel(ctx)
	defer stopCollecting()

	collectDone := make(chan struct{})

	go func() {
		defer close(collectDone)

		s.collectLoop(collectCtx)
	}()

	var serveErr error

	select {
	case <-ctx.Done():
	case serveErr = <-listenErr:
	}

	stopCollecting()
	<-collectDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.WithError(err).Warn("exporter shutdown incomplete")
	}

	if serveErr != nil {
		return fmt.Errorf("serve metrics on %s: %w", httpServer.Addr, serveErr)
	}

	s.logger.Info("exporter stopped")

	return nil
}

// CollectOnce runs a single collection cycle. Failures are counted and
// logged so the caller can keep looping.
func (s *Server) CollectOnce(ctx context.Context) {
	started := time.Now()
	snapshot, err := s.snapshotter.Snapshot(ctx)
	duration := time.Since(started)

	if err != nil && ctx.Err() != nil {
		// Shutdown interrupted the cycle; not a scrape failure.
		return
	}

	s.metrics.ObserveScrape(duration)

	if err != nil {
		s.metrics.RecordError()
		s.logger.WithError(err).Error("metrics collection failed")

		return
	}

	trend := s.tracker.Observe(snapshot)
	s.metrics.Record(snapshot, trend)
	s.markSuccess(snapshot.Taken)

	tally := snapshot.CloudIPTally()
	s.logger.WithFields(logrus.Fields{
		"configured":   snapshot.Configured(),
		"assigned":     snapshot.Assigned(),
		"unassigned":   snapshot.Unassigned(),
		"cpic_success": tally.Success,
		"cpic_pending": tally.Pending,
		"cpic_errors":  tally.Errored,
		"nodes":        len(snapshot.Nodes),
		"duration":     duration.Round(time.Millisecond).String(),
	}).Info("metrics collection completed")
}

// Handler returns the HTTP surface: Prometheus metrics, the health probe
// and a plain text index.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleIndex)

	return mux
}

// LastSuccess returns when the last collection cycle succeeded. The zero
// time means none has yet.
func (s *Server) LastSuccess() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastSuccess
}

// --- internals ---

func (s *Server) collectLoop(ctx context.Context) {
	ticker := time.NewTicker(s.settings.ScrapeInterval)
	defer ticker.Stop()

	s.CollectOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CollectOnce(ctx)
		}
	}
}

func (s *Server) markSuccess(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSuccess = at
}

type healthResponse struct {
	Status     string `json:"status"`
	LastUpdate string `json:"last_update,omitempty"`
	Message    string `json:"message,omitempty"`
}

func (s *Server) handleHealth(writer http.ResponseWriter, _ *http.Request) {
	writer.Header().Set("Content-Type", "application/json")

	lastSuccess := s.LastSuccess()
	if lastSuccess.IsZero() || time.Since(lastSuccess) > healthStaleAfter {
		writer.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(writer).Encode(healthResponse{
			Status:  "unhealthy",
			Message: "metrics not updated recently",
		})

		return
	}

	_ = json.NewEncoder(writer).Encode(healthResponse{
		Status:     "healthy",
		LastUpdate: lastSuccess.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleIndex(writer http.ResponseWriter, request *http.Request) {
	if request.URL.Path != "/" {
		http.NotFound(writer, request)

		return
	}

	writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(writer, indexBody)
}
