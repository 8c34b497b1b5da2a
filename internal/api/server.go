package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	pathpkg "path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baxromumarov/country-explorer/internal/core"
	"github.com/baxromumarov/country-explorer/internal/countries"
	"github.com/baxromumarov/country-explorer/internal/observability"
)

// CountryLookup is implemented by *core.CountryService.
type CountryLookup interface {
	Search(ctx context.Context, kind countries.Kind, value string) ([]countries.DisplayRecord, error)
	Detail(ctx context.Context, name string) (countries.DisplayRecord, bool)
}

// ContactSubmitter is implemented by *core.ContactService.
type ContactSubmitter interface {
	Submit(ctx context.Context, msg core.ContactMessage) (core.ContactMessage, error)
}

type Options struct {
	CORSOrigins []string
	StaticDir   string
}

type Server struct {
	router    *chi.Mux
	countries CountryLookup
	contact   ContactSubmitter
	metrics   *observability.Metrics
	opts      Options
}

func NewServer(lookup CountryLookup, contact ContactSubmitter, metrics *observability.Metrics, opts Options) *Server {
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	s := &Server{
		router:    chi.NewRouter(),
		countries: lookup,
		contact:   contact,
		metrics:   metrics,
		opts:      opts,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	s.router.Get("/about", s.handleAbout)
	s.router.Post("/search", s.handleSearch)
	s.router.Get("/view/{countryName}", s.handleViewCountry)
	s.router.Post("/contact", s.handleContact)
	s.router.NotFound(s.handleNotFound)

	if dir := strings.TrimSpace(s.opts.StaticDir); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			FileServer(s.router, "/", http.Dir(dir), s.handleNotFound)
		}
	}
}

// FileServer serves root under path. Requests for files that do not exist
// are handed to notFound.
func FileServer(r chi.Router, path string, root http.FileSystem, notFound http.HandlerFunc) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit any URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		name := pathpkg.Clean("/" + strings.TrimPrefix(r.URL.Path, pathPrefix))
		f, err := root.Open(name)
		if err != nil {
			notFound(w, r)
			return
		}
		f.Close()
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, r)
	})
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "The page you are looking for does not exist.")
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
