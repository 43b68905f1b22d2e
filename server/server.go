// Package server is the local workspace: draft answers with the LLM, preview
// them and publish them without leaving the browser.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"zhihu_answer_publisher/display"
	"zhihu_answer_publisher/generator"
	"zhihu_answer_publisher/publisher"
	"zhihu_answer_publisher/target"
)

// Publisher is the part of *publisher.Publisher the server uses.
type Publisher interface {
	Preview(ctx context.Context, doc string) (display.Panel, error)
	PublishTo(ctx context.Context, doc string, t target.Target) (publisher.Result, error)
}

type Server struct {
	agent     *generator.Agent
	publisher Publisher
	targets   target.Collection
	panels    *display.Host
	store     *sessionStore
	origins   []string
	logger    *slog.Logger
	// timeout bounds every LLM call.
	timeout time.Duration
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*generator.Session
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*generator.Session)}
}

func (s *sessionStore) set(id string, sess *generator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Options wires a Server. Agent may be nil, in which case the draft routes
// answer 503.
type Options struct {
	Agent     *generator.Agent
	Publisher Publisher
	Targets   target.Collection
	Panels    *display.Host
	// AllowedOrigins enables CORS for a frontend served elsewhere.
	AllowedOrigins []string
	Logger         *slog.Logger
	Timeout        time.Duration
}

func New(opts Options) (*Server, error) {
	if opts.Publisher == nil {
		return nil, errors.New("publisher required")
	}
	if opts.Targets == nil {
		return nil, errors.New("target collection required")
	}
	if opts.Panels == nil {
		return nil, errors.New("panel host required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Server{
		agent:     opts.Agent,
		publisher: opts.Publisher,
		targets:   opts.Targets,
		panels:    opts.Panels,
		store:     newStore(),
		origins:   opts.AllowedOrigins,
		logger:    logger,
		timeout:   timeout,
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	if len(s.origins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}).Handler)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(s.logMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", s.handleDraftCreate)
			r.Get("/{id}", s.handleDraftGet)
			r.Post("/{id}", s.handleDraftRevise)
		})
		r.Get("/targets", s.handleTargets)
		r.Post("/preview", s.handlePreview)
		r.Post("/publish", s.handlePublish)
	})
	r.Mount("/panels", s.panels.Routes())
	return r
}

// --- Helpers ---

type errorResp struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResp{Error: err.Error(), Code: publisher.Code(err)})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)),
		)
	})
}
