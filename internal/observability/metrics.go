package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer serves Prometheus metrics on a separate port while a
// long-running command (such as a batch password check) executes.
type MetricsServer struct {
	server *http.Server
}

// NewMetricsServer creates a metrics HTTP server serving the provider's
// Prometheus registry at the given path on the given port. Without a
// metrics-enabled provider every path answers 404.
func NewMetricsServer(port int, path string, provider *Provider) *MetricsServer {
	router := mux.NewRouter()

	if provider != nil && provider.Registry() != nil {
		router.Handle(path, promhttp.HandlerFor(provider.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return &MetricsServer{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		},
	}
}

// Handler returns the server's router.
func (ms *MetricsServer) Handler() http.Handler {
	return ms.server.Handler
}

// Start begins serving metrics in a blocking call.
// Returns http.ErrServerClosed on graceful shutdown.
func (ms *MetricsServer) Start() error {
	slog.Info("Starting metrics server", "addr", ms.server.Addr)
	return ms.server.ListenAndServe()
}

// Serve is Start on an existing listener.
func (ms *MetricsServer) Serve(l net.Listener) error {
	slog.Info("Starting metrics server", "addr", l.Addr().String())
	return ms.server.Serve(l)
}

// Shutdown gracefully stops the metrics server.
func (ms *MetricsServer) Shutdown(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}
