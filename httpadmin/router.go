package httpadmin

import (
	"net/http"

	"github.com/gorilla/mux"
	adminguard "github.com/hexbyte/adminguard"
	"github.com/hexbyte/adminguard/middleware"
)

// Scope names used with the engine's generic request limiter.
const (
	scopeLogin  = "login"
	scopeIngest = "ingest"
)

// Server binds the engine to its HTTP surface.
type Server struct {
	engine *adminguard.Engine
}

// NewServer wraps an engine for HTTP serving.
func NewServer(engine *adminguard.Engine) *Server {
	return &Server{engine: engine}
}

// Router builds the route table. Login carries an explicit rate limit;
// ingestion a silent one; blocklist and event routes sit behind the bearer
// guard.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	login := middleware.RateLimit(s.engine, scopeLogin, middleware.ModeExplicit)
	r.Handle("/api/admin/login", login(http.HandlerFunc(s.handleLogin))).Methods(http.MethodPost)

	ingest := middleware.RateLimit(s.engine, scopeIngest, middleware.ModeSilent)
	r.Handle("/api/events", ingest(http.HandlerFunc(s.handleIngest))).Methods(http.MethodPost)

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(middleware.Guard(s.engine))
	admin.HandleFunc("/blocklist", s.handleListBlocks).Methods(http.MethodGet)
	admin.HandleFunc("/blocklist", s.handleBlock).Methods(http.MethodPost)
	admin.HandleFunc("/blocklist/{key}", s.handleUnblock).Methods(http.MethodDelete)
	admin.HandleFunc("/security-events", s.handleRecentEvents).Methods(http.MethodGet)

	return r
}
