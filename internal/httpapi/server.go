package httpapi

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hamed0406/timewatch/internal/domain"
	apimw "github.com/hamed0406/timewatch/internal/httpapi/middleware"
	"github.com/hamed0406/timewatch/internal/metrics"
	"github.com/hamed0406/timewatch/internal/repo"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type Server struct {
	Logger      *zap.Logger
	Store       repo.RecordStore
	ContainerID string
	Metrics     *metrics.Web
	Gatherer    prometheus.Gatherer
	ReadTimeout time.Duration
	Now         func() time.Time
}

func NewServer(l *zap.Logger, store repo.RecordStore, containerID string, m *metrics.Web, g prometheus.Gatherer) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{
		Logger:      l,
		Store:       store,
		ContainerID: containerID,
		Metrics:     m,
		Gatherer:    g,
		ReadTimeout: 5 * time.Second,
		Now:         time.Now,
	}
}

// Router wires the status page, the JSON API and the ops endpoints. The JSON
// API is rate limited and requires a public or admin key when any are
// configured; /metrics requires an admin key when any are configured.
func (s *Server) Router(keys apimw.Keys, limits apimw.Limits) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/", s.handlePage)

	r.Route("/api", func(r chi.Router) {
		r.Use(apimw.RateLimit(limits))
		r.Use(apimw.RequireAny(keys))
		r.Get("/status", s.handleStatus)
	})

	if s.Gatherer != nil {
		r.With(apimw.RequireAdmin(keys)).Handle("/metrics", metrics.Handler(s.Gatherer))
	}
	return r
}

func (s *Server) view(ctx context.Context) StatusView {
	if s.ReadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ReadTimeout)
		defer cancel()
	}
	rec, err := s.Store.Get(ctx, domain.RecordID)
	if err != nil {
		s.Logger.Warn("record_get_failed",
			zap.String("error_kind", string(domain.PersistenceFailure)),
			zap.Error(err),
		)
	}
	v := BuildView(rec, err, s.ContainerID, s.now())
	s.Metrics.ObserveView(v.outcome())
	return v
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	v := s.view(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, v); err != nil {
		s.Logger.Error("render_failed", zap.Error(err))
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	v := s.view(r.Context())
	code := http.StatusOK
	if v.outcome() == "error" && !v.Found {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
