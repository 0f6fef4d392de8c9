// Package server exposes the map engine over HTTP: sessions with their
// own viewport, event batches returning draw-list frames, and feature
// lookup as GeoJSON.
package server

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/meridian-maps/worldview/internal/engine"
	"github.com/meridian-maps/worldview/internal/geodata"
	"github.com/meridian-maps/worldview/internal/viewport"
)

// Config tunes the HTTP layer.
type Config struct {
	RateLimitRPS float64
	CORSOrigins  []string
}

// Server owns the shared world and the per-viewer sessions.
type Server struct {
	world    *engine.World
	opts     engine.Options
	initial  viewport.State
	sessions *sessions
	limiter  *ipLimiter
	cfg      Config
}

// New builds a Server over a shared immutable world. Each created session
// gets its own engine starting from the given initial viewport.
func New(world *engine.World, opts engine.Options, initial viewport.State, cfg Config) *Server {
	return &Server{
		world:    world,
		opts:     opts,
		initial:  initial,
		sessions: newSessions(),
		limiter:  newIPLimiter(cfg.RateLimitRPS),
		cfg:      cfg,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(s.rateLimit)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/sessions", s.createSession)
	r.Delete("/sessions/{id}", s.deleteSession)
	r.Post("/sessions/{id}/events", s.postEvents)
	r.Get("/sessions/{id}/frame", s.getFrame)
	r.Get("/features/{kind}/{id}", s.getFeature)
	return r
}

func (s *Server) createSession(w http.ResponseWriter, _ *http.Request) {
	eng := engine.New(s.world, s.opts, s.initial)
	id := s.sessions.create(eng)
	zap.L().Info("session created", zap.String("session_id", id))
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": id,
		"viewport":   eng.View(),
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.remove(id) {
		httpError(w, http.StatusNotFound, "unknown session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.get(chi.URLParam(r, "id"))
	if !ok {
		httpError(w, http.StatusNotFound, "unknown session")
		return
	}

	var req struct {
		Events []wireEvent `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	events, err := decodeEvents(req.Events)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sess.frame(events))
}

func (s *Server) getFrame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.get(chi.URLParam(r, "id"))
	if !ok {
		httpError(w, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(w, http.StatusOK, sess.frame(nil))
}

func (s *Server) getFeature(w http.ResponseWriter, r *http.Request) {
	kind := geodata.Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		httpError(w, http.StatusBadRequest, "unknown layer kind")
		return
	}
	f, err := s.world.Store().ByID(kind, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, http.StatusNotFound, "unknown feature")
		return
	}

	gf := geojson.NewFeature(f.Geometry)
	gf.ID = f.ID
	gf.Properties = geojson.Properties{
		"kind": string(f.Kind),
		"name": f.Attr.Name,
	}
	if f.Attr.Population > 0 {
		gf.Properties["population"] = f.Attr.Population
	}
	if f.Attr.OwnerID != "" {
		gf.Properties["owner_id"] = f.Attr.OwnerID
	}
	writeJSON(w, http.StatusOK, gf)
}

// wireEvent is the JSON form of an input event.
type wireEvent struct {
	Type   string               `json:"type"`
	DX     float64              `json:"dx"`
	DY     float64              `json:"dy"`
	At     viewport.ScreenPoint `json:"at"`
	Steps  float64              `json:"steps"`
	Width  int                  `json:"width"`
	Height int                  `json:"height"`
}

func decodeEvents(wire []wireEvent) ([]engine.Event, error) {
	events := make([]engine.Event, 0, len(wire))
	for _, we := range wire {
		switch we.Type {
		case "pan":
			events = append(events, engine.PanEvent{DX: we.DX, DY: we.DY})
		case "zoom":
			events = append(events, engine.ZoomEvent{At: we.At, Steps: we.Steps})
		case "click":
			events = append(events, engine.ClickEvent{At: we.At})
		case "resize":
			events = append(events, engine.ResizeEvent{Width: we.Width, Height: we.Height})
		default:
			return nil, eris.Errorf("server: unknown event type %q", we.Type)
		}
	}
	return events, nil
}

// ipLimiter applies a per-client-IP token bucket.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
}

func newIPLimiter(rps float64) *ipLimiter {
	return &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	if l.rps <= 0 {
		return true
	}
	l.mu.Lock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.rps, int(l.rps)+1)
		l.limiters[ip] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !s.limiter.allow(ip) {
			httpError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
