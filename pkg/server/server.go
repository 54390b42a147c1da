package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/BrianCLong/govgate/pkg/config"
	"github.com/BrianCLong/govgate/pkg/gateway"
	"github.com/BrianCLong/govgate/pkg/gateway/middleware"
	"github.com/BrianCLong/govgate/pkg/telemetry/metrics"
)

// Server is the governance gateway's HTTP front. Every request except
// the health probes and the metrics endpoint passes through the
// enforcement pipeline before reaching the upstream.
type Server struct {
	cfg          config.ServerConfig
	metricsCfg   config.MetricsConfig
	enforcer     *gateway.Enforcer
	admin        *gateway.Admin
	collector    *metrics.Collector
	upstream     http.Handler
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Deps carries the wired enforcement components the server fronts.
type Deps struct {
	Enforcer  *gateway.Enforcer
	Admin     *gateway.Admin
	Collector *metrics.Collector
}

// NewServer creates the gateway server. When the configuration names an
// upstream URL, allowed requests are reverse-proxied to it; otherwise
// the server answers 204 after enforcement, for sidecar deployments
// where the verdict headers are the product.
func NewServer(cfg config.ServerConfig, metricsCfg config.MetricsConfig, deps Deps) (*Server, error) {
	upstream, err := upstreamHandler(cfg.UpstreamURL)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:          cfg,
		metricsCfg:   metricsCfg,
		enforcer:     deps.Enforcer,
		admin:        deps.Admin,
		collector:    deps.Collector,
		upstream:     upstream,
		shutdownChan: make(chan struct{}),
	}, nil
}

func upstreamHandler(rawURL string) (http.Handler, error) {
	if rawURL == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}), nil
	}

	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream URL %q: %w", rawURL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("upstream URL %q must be absolute", rawURL)
	}
	return httputil.NewSingleHostReverseProxy(target), nil
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.cfg.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.cfg.ReadTimeout,
		WriteTimeout:   s.cfg.WriteTimeout,
		IdleTimeout:    s.cfg.IdleTimeout,
		MaxHeaderBytes: s.cfg.MaxHeaderBytes,
	}

	if s.cfg.TLS.Enabled {
		tlsConfig, err := s.configureTLS()
		if err != nil {
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		s.httpServer.TLSConfig = tlsConfig
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting governance gateway",
			"address", s.cfg.ListenAddress,
			"tls_enabled", s.cfg.TLS.Enabled,
			"upstream", s.cfg.UpstreamURL,
		)

		var err error
		if s.cfg.TLS.Enabled {
			err = s.httpServer.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server. In-flight requests get
// ShutdownTimeout to finish; their verdicts and audit records complete
// normally.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.cfg.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway stopped")
	})

	return shutdownErr
}

// Stop requests shutdown from another goroutine.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// setupRoutes builds the handler tree. Health probes and the metrics
// endpoint bypass enforcement; everything else, the admin surface
// included, is behind the enforcer.
func (s *Server) setupRoutes() http.Handler {
	enforced := http.NewServeMux()
	enforced.HandleFunc("/admin/killswitch/refresh", s.admin.KillSwitchRefresh)
	enforced.HandleFunc("/admin/killswitch", s.admin.KillSwitchStatus)
	enforced.Handle("/", s.upstream)

	root := http.NewServeMux()
	root.HandleFunc("/healthz", s.admin.Healthz)
	root.HandleFunc("/readyz", s.admin.Readyz)
	if s.metricsCfg.Enabled {
		path := s.metricsCfg.Path
		if path == "" {
			path = "/metrics"
		}
		root.Handle(path, s.collector.Handler())
	}
	root.Handle("/", s.enforcer.Wrap(enforced))

	var handler http.Handler = root
	handler = middleware.Timeout(s.cfg.RequestTimeout)(handler)
	handler = middleware.CORS(s.convertCORSConfig())(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)

	return handler
}

func (s *Server) configureTLS() (*tls.Config, error) {
	if s.cfg.TLS.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file not specified")
	}
	if s.cfg.TLS.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file not specified")
	}

	if _, err := os.Stat(s.cfg.TLS.CertFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS cert file not found: %s", s.cfg.TLS.CertFile)
	}
	if _, err := os.Stat(s.cfg.TLS.KeyFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS key file not found: %s", s.cfg.TLS.KeyFile)
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS13,
		CipherSuites: []uint16{
			tls.TLS_AES_128_GCM_SHA256,
			tls.TLS_AES_256_GCM_SHA384,
			tls.TLS_CHACHA20_POLY1305_SHA256,
		},
	}, nil
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler. Test use.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	if !s.cfg.CORS.Enabled {
		return &middleware.CORSConfig{}
	}
	cc := middleware.DefaultCORSConfig()
	cc.Enabled = true
	if len(s.cfg.CORS.AllowedOrigins) > 0 {
		cc.AllowedOrigins = s.cfg.CORS.AllowedOrigins
	}
	if len(s.cfg.CORS.AllowedMethods) > 0 {
		cc.AllowedMethods = s.cfg.CORS.AllowedMethods
	}
	if len(s.cfg.CORS.AllowedHeaders) > 0 {
		cc.AllowedHeaders = s.cfg.CORS.AllowedHeaders
	}
	if s.cfg.CORS.MaxAge > 0 {
		cc.MaxAge = s.cfg.CORS.MaxAge
	}
	return cc
}
