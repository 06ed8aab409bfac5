// Package mirror is a small self-hosted HTTP store for remote player
// documents. It is what sync.HTTPRemote talks to.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/phuchgg/neon-rpg/internal/storage"
)

const (
	maxBodyBytes    = 8 << 20
	playerIDPattern = `[A-Za-z0-9_.\-]{1,64}`
)

// Store persists one document per player with per-key merge writes.
type Store interface {
	Get(ctx context.Context, playerID string) (*storage.Document, error)
	Merge(ctx context.Context, playerID string, values map[string]json.RawMessage, now time.Time) error
}

type Server struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewServer(store Store, log zerolog.Logger) *Server {
	return &Server{store: store, log: log, now: time.Now}
}

// Router returns the mirror's HTTP handler with request ids and CORS applied.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(RequestID(s.log))

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.HandleFunc("/players/{id:"+playerIDPattern+"}/document", s.getDocument).Methods(http.MethodGet)
	r.HandleFunc("/players/{id:"+playerIDPattern+"}/document", s.putDocument).Methods(http.MethodPut)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log := zerolog.Ctx(r.Context())

	doc, err := s.store.Get(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("player", id).Msg("load document")
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "no document for player")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type putRequest struct {
	Values map[string]json.RawMessage `json:"values"`
}

type putResponse struct {
	PlayerID  string    `json:"playerId"`
	Keys      int       `json:"keys"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Server) putDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log := zerolog.Ctx(r.Context())

	var req putRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "document too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Values) == 0 {
		writeError(w, http.StatusBadRequest, "values must not be empty")
		return
	}

	now := s.now().UTC()
	if err := s.store.Merge(r.Context(), id, req.Values, now); err != nil {
		log.Error().Err(err).Str("player", id).Msg("merge document")
		writeError(w, http.StatusInternalServerError, "failed to store document")
		return
	}
	log.Info().Str("player", id).Int("keys", len(req.Values)).Msg("document merged")
	writeJSON(w, http.StatusOK, putResponse{PlayerID: id, Keys: len(req.Values), UpdatedAt: now})
}
