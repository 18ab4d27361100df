package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"Quackito/internal/model"
	"Quackito/internal/sim"
	"Quackito/internal/store"

	"github.com/gorilla/websocket"
)

const maxBodyBytes = 1 << 20

// Ducks is the service surface the HTTP layer needs.
type Ducks interface {
	Create(ctx context.Context, name string) (*model.Duck, error)
	Get(ctx context.Context, code string) (*model.Duck, error)
	Interact(ctx context.Context, code, action, food string) (*model.Duck, error)
}

// Server exposes the duck API over HTTP.
type Server struct {
	Ducks         Ducks
	WatchInterval time.Duration
	AllowedOrigin string
	Now           func() time.Time

	upgrader websocket.Upgrader
}

// NewServer creates a Server. allowedOrigin "*" accepts every origin.
func NewServer(ducks Ducks, watchInterval time.Duration, allowedOrigin string) *Server {
	s := &Server{
		Ducks:         ducks,
		WatchInterval: watchInterval,
		AllowedOrigin: allowedOrigin,
		Now:           time.Now,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/ducks", s.handleCreate)
	mux.HandleFunc("GET /api/ducks/{code}", s.handleGet)
	mux.HandleFunc("POST /api/ducks/{code}/interact", s.handleInteract)
	mux.HandleFunc("GET /api/ducks/{code}/watch", s.handleWatch)
	return withRequestID(withAccessLog(withCORS(s.AllowedOrigin, mux)))
}

// DuckResponse is the JSON shape of a duck on the wire.
type DuckResponse struct {
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Hunger      float64    `json:"hunger"`
	Happiness   float64    `json:"happiness"`
	Energy      float64    `json:"energy"`
	Mood        model.Mood `json:"mood"`
	LastUpdated time.Time  `json:"last_updated"`
}

func toResponse(d *model.Duck) DuckResponse {
	return DuckResponse{
		Code:        d.Code,
		Name:        d.Name,
		Hunger:      d.Snapshot.Hunger,
		Happiness:   d.Snapshot.Happiness,
		Energy:      d.Snapshot.Energy,
		Mood:        sim.Classify(d.Snapshot),
		LastUpdated: d.Snapshot.LastUpdated,
	}
}

type createRequest struct {
	Name string `json:"name"`
}

type interactRequest struct {
	Action   string `json:"action"`
	FoodType string `json:"food_type"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := s.Ducks.Create(r.Context(), req.Name)
	if err != nil {
		log.Printf("[ERROR] create duck: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create duck")
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(d))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	d, err := s.Ducks.Get(r.Context(), r.PathValue("code"))
	if err != nil {
		s.writeServiceError(w, "fetch duck", "Failed to fetch duck", err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(d))
}

func (s *Server) handleInteract(w http.ResponseWriter, r *http.Request) {
	var req interactRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := s.Ducks.Interact(r.Context(), r.PathValue("code"), req.Action, req.FoodType)
	if err != nil {
		s.writeServiceError(w, "interact with duck", "Failed to interact with duck", err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(d))
}

func (s *Server) writeServiceError(w http.ResponseWriter, op, fallback string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Duck not found")
	case errors.Is(err, sim.ErrInvalidAction), errors.Is(err, sim.ErrInvalidFood):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[ERROR] %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// decodeBody reads an optional JSON body. An empty body leaves dst zero.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "Invalid JSON body")
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
