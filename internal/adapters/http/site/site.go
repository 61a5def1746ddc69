// Package site serves the dashboard pages over HTTP.
package site

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/projdash/internal/domain/viewstate"
	"github.com/okian/projdash/internal/pages/detail"
	"github.com/okian/projdash/internal/pages/overview"
	"github.com/okian/projdash/internal/pages/routes"
	"github.com/okian/projdash/pkg/logger"
	"github.com/okian/projdash/pkg/metrics"
)

const defaultRenderTimeout = 2 * time.Second

// Source is every collaborator the pages read from.
type Source interface {
	detail.Fetcher
	overview.Fetchers
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithProjectID sets the project shown on the overview page.
func WithProjectID(id string) Option {
	return func(s *Server) {
		if id != "" {
			s.projectID = id
		}
	}
}

// WithRenderTimeout bounds how long a request waits for its load cycle.
func WithRenderTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.renderTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires the page routes.
type Server struct {
	src           Source
	projectID     string
	renderTimeout time.Duration
	logger        logger.Logger
}

// NewServer creates a page server reading from src.
func NewServer(src Source, opts ...Option) *Server {
	s := &Server{
		src:           src,
		projectID:     overview.DefaultProjectID,
		renderTimeout: defaultRenderTimeout,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(HandleHealth, "healthz"))
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
	mux.Handle(routes.MarketplaceAI, RequestIDMiddleware(MetricsMiddleware(s.HandleDetail, detail.PageName)))
	mux.Handle(routes.ProjectOverview, RequestIDMiddleware(MetricsMiddleware(s.HandleOverview, overview.PageName)))
	mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, routes.ProjectOverview, http.StatusFound)
}

// HandleDetail handles GET /marketplace/ai?id=...
func (s *Server) HandleDetail(w http.ResponseWriter, r *http.Request) {
	if !allowed(w, r) {
		return
	}
	log := s.logger.Named(detail.PageName)

	ctrl := detail.New(s.src, detail.WithLogger(log))
	ctrl.Navigate(r.Context(), r.URL.Query())

	ctx, cancel := context.WithTimeout(r.Context(), s.renderTimeout)
	defer cancel()
	st := ctrl.Wait(ctx)

	s.write(w, r, detail.PageName, st.Kind(), func(buf *bytes.Buffer) error {
		return detail.Render(buf, st)
	})
}

// HandleOverview handles GET /project/overview.
func (s *Server) HandleOverview(w http.ResponseWriter, r *http.Request) {
	if !allowed(w, r) {
		return
	}
	log := s.logger.Named(overview.PageName)

	ctrl := overview.New(s.src, overview.WithProjectID(s.projectID), overview.WithLogger(log))
	ctrl.Navigate(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), s.renderTimeout)
	defer cancel()
	st := ctrl.Wait(ctx)

	s.write(w, r, overview.PageName, st.Kind(), func(buf *bytes.Buffer) error {
		return overview.Render(buf, st)
	})
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, page string, kind viewstate.Kind, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.logger.Error(r.Context(), "render failed",
			logger.String("page", page), logger.RequestID(RequestID(r.Context())), logger.Error(err))
		http.Error(w, fmt.Errorf("%w: %s", ErrRender, page).Error(), http.StatusInternalServerError)
		return
	}

	metrics.RecordPageRender(page, kind.String())
	s.logger.Debug(r.Context(), "page rendered",
		logger.String("page", page), logger.String("state", kind.String()), logger.RequestID(RequestID(r.Context())))

	status := http.StatusOK
	if kind == viewstate.KindError {
		status = http.StatusBadGateway
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = buf.WriteTo(w)
	}
}

func allowed(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}
