// Package server exposes the answering engine over HTTP for the chatbot
// frontend.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dan1sh0/Baseera-AI/internal/corpus"
	"github.com/dan1sh0/Baseera-AI/internal/retriever"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Asker answers a question within a session's conversation window.
type Asker interface {
	Ask(ctx context.Context, sessionID, question string) (string, error)
}

// Searcher serves retrieval-only queries.
type Searcher interface {
	Retrieve(ctx context.Context, query string, mode retriever.Mode) ([]retriever.Result, error)
}

// Corpus exposes the stored chapter metadata for browsing clients.
type Corpus interface {
	Surahs(ctx context.Context) ([]corpus.Surah, error)
}

// Server routes chatbot traffic to the retrieval and answering services.
type Server struct {
	cfg        Config
	asker      Asker
	searcher   Searcher
	corpus     Corpus
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server with its routes configured.
func New(cfg Config, asker Asker, searcher Searcher, corpus Corpus) *Server {
	s := &Server{cfg: cfg, asker: asker, searcher: searcher, corpus: corpus}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Session-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/api/search", s.handleSearch)
	r.Get("/api/surahs", s.handleSurahs)
	r.Post("/api/chat", s.handleChat)
	r.Get("/ws/chat", s.handleWebSocket)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("baseera server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
