package diagnostics

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const writeTimeout = 60 * time.Second
const readTimeout = 5 * time.Second

// CredentialsVerifier checks basic auth credentials
type CredentialsVerifier func(user, password string) bool

// Server exposes metrics, health and profiling endpoints on separate port
type Server struct {
	httpServer *http.Server
}

// NewServer builds diagnostics server. If verifier is provided metrics and profiling endpoints require basic auth,
// health endpoint is always public.
func NewServer(port int, gatherer prometheus.Gatherer, verifier CredentialsVerifier) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      Handler(gatherer, verifier),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
	}
}

// Handler builds diagnostics routes
func Handler(gatherer prometheus.Gatherer, verifier CredentialsVerifier) http.Handler {
	protected := http.NewServeMux()
	protected.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	protected.HandleFunc("/debug/pprof/", pprof.Index)
	protected.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	protected.HandleFunc("/debug/pprof/profile", pprof.Profile)
	protected.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	protected.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/", basicAuth(protected, verifier))
	return mux
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func basicAuth(next http.Handler, verifier CredentialsVerifier) http.Handler {
	if verifier == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok || !verifier(user, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="diagnostics"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
