package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"trackwatch/internal/engine"
)

type Server struct {
	config  *engine.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

type Metrics struct {
	SignalsTotal       *prometheus.CounterVec
	EvaluationsTotal   *prometheus.CounterVec
	ChangedFieldsTotal *prometheus.CounterVec
	ResetsTotal        prometheus.Counter
	PipelineRunsTotal  *prometheus.CounterVec
	PipelineDuration   prometheus.Histogram
	ActiveSources      prometheus.Gauge
	SeenTracks         prometheus.Gauge
}

// NewServer builds the observability server: Prometheus metrics, health
// probes and the websocket ingest endpoint sources push payloads to.
func NewServer(config *engine.ServerConfig, ingest http.Handler, logger *zap.Logger) *Server {
	metrics := &Metrics{
		SignalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trackwatch_signals_total",
				Help: "Total number of change signals by scheduling outcome",
			},
			[]string{"outcome"},
		),
		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trackwatch_evaluations_total",
				Help: "Total number of state evaluations by result",
			},
			[]string{"result"},
		),
		ChangedFieldsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trackwatch_changed_fields_total",
				Help: "Total number of reported field changes",
			},
			[]string{"field"},
		),
		ResetsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "trackwatch_resets_total",
				Help: "Total number of state resets delivered downstream",
			},
		),
		PipelineRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trackwatch_pipeline_runs_total",
				Help: "Total number of pipeline runs by status",
			},
			[]string{"status"},
		),
		PipelineDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trackwatch_pipeline_duration_seconds",
				Help:    "Time spent running the song pipeline",
				Buckets: prometheus.DefBuckets,
			},
		),
		ActiveSources: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "trackwatch_active_sources",
				Help: "Number of currently connected sources",
			},
		),
		SeenTracks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "trackwatch_seen_tracks",
				Help: "Number of track identities in the seen store",
			},
		),
	}

	prometheus.MustRegister(
		metrics.SignalsTotal,
		metrics.EvaluationsTotal,
		metrics.ChangedFieldsTotal,
		metrics.ResetsTotal,
		metrics.PipelineRunsTotal,
		metrics.PipelineDuration,
		metrics.ActiveSources,
		metrics.SeenTracks,
	)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok","service":"trackwatch"}`)); err != nil {
			logger.Debug("Failed to write health response", zap.Error(err))
		}
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ready","service":"trackwatch"}`)); err != nil {
			logger.Debug("Failed to write ready response", zap.Error(err))
		}
	})

	mux.Handle("/metrics", promhttp.Handler())

	if ingest != nil {
		mux.Handle("/ws", ingest)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return &Server{
		config:  config,
		logger:  logger,
		server:  server,
		metrics: metrics,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}

func (s *Server) RecordSignal(outcome string) {
	s.metrics.SignalsTotal.WithLabelValues(outcome).Inc()
}

func (s *Server) RecordEvaluation(result string) {
	s.metrics.EvaluationsTotal.WithLabelValues(result).Inc()
}

func (s *Server) RecordChangedField(field string) {
	s.metrics.ChangedFieldsTotal.WithLabelValues(field).Inc()
}

func (s *Server) RecordReset() {
	s.metrics.ResetsTotal.Inc()
}

func (s *Server) RecordPipelineRun(status string, duration time.Duration) {
	s.metrics.PipelineRunsTotal.WithLabelValues(status).Inc()
	s.metrics.PipelineDuration.Observe(duration.Seconds())
}

func (s *Server) SourceConnected() {
	s.metrics.ActiveSources.Inc()
}

func (s *Server) SourceDisconnected() {
	s.metrics.ActiveSources.Dec()
}

func (s *Server) SetSeenTracks(count int) {
	s.metrics.SeenTracks.Set(float64(count))
}
