// Package api exposes the inspection pipeline over HTTP. One uploaded
// inspection is held in memory at a time, the way the reporting dashboard is
// used by a single engineer; uploading again replaces it.
package api

import (
	"math/rand"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"pipeline-insights-go/internal/config"
	"pipeline-insights-go/internal/llm"
	"pipeline-insights-go/internal/logger"
	"pipeline-insights-go/internal/scheme"
	"pipeline-insights-go/internal/types"
)

// inspection is the state produced by one upload.
type inspection struct {
	Meta    types.InspectionMeta
	Summary types.InspectionSummary
	Delta   types.Delta
	Coords  []types.CoordPoint
}

// Server wires the pipeline components behind the router.
type Server struct {
	cfg *config.Config
	log *logger.Logger
	gen llm.Generator
	rng *rand.Rand

	mu      sync.Mutex
	current *inspection
}

// NewServer builds the server with its own RNG for scheme placement.
func NewServer(cfg *config.Config, gen llm.Generator) *Server {
	return &Server{
		cfg: cfg,
		log: logger.New(),
		gen: gen,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Router assembles the chi routing tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/inspections", s.handleUpload)
		r.Route("/inspections/current", func(r chi.Router) {
			r.Get("/", s.handleCurrent)
			r.Get("/defects", s.handleDefects)
			r.Get("/defects/at", s.handleDefectAt)
			r.Get("/defects/{id}/explanation", s.handleExplain)
			r.Get("/coordinates", s.handleCoordinates)
			r.Get("/scheme", s.handleScheme)
			r.Get("/report", s.handleReport)
			r.Post("/question", s.handleQuestion)
		})
	})

	return r
}

// placeDefects runs scheme placement under the server mutex: uploads are
// served concurrently and the rng is not safe for concurrent use.
func (s *Server) placeDefects(defects []types.DefectRecord) []types.DefectRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return scheme.AssignCoordinates(defects, scheme.DefaultInfrastructure, s.rng)
}

func (s *Server) renderer() *scheme.Renderer {
	return &scheme.Renderer{
		BasePath: s.cfg.SchemePath,
		FontPath: s.cfg.FontPath,
		Objects:  scheme.DefaultInfrastructure,
	}
}

// snapshot returns the current inspection, or nil when nothing was uploaded.
func (s *Server) snapshot() *inspection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Server) store(ins *inspection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = ins
}
