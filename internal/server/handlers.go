package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/models"
	"github.com/takak2166/teum/internal/parser"
)

type entriesResponse struct {
	Entries []models.EntryMeta `json:"entries"`
	Loading bool               `json:"loading"`
	Error   string             `json:"error,omitempty"`
	Loaded  *int               `json:"loaded,omitempty"`
}

type textResponse struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

type likeResponse struct {
	ID    string `json:"id"`
	Liked bool   `json:"liked"`
}

type likesResponse struct {
	IDs     []string           `json:"ids"`
	Entries []models.EntryMeta `json:"entries"`
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	id := mux.Vars(r)["id"]

	rows, err := s.source.Rows(r.Context(), id)
	if err != nil {
		logger.Error("Failed to read table", err, logger.Fields{"table_id": id})
		msg := err.Error()
		if errors.Is(err, parser.ErrNoSchema) {
			msg = "No collection schema found"
		}
		writeError(w, http.StatusInternalServerError, msg)
		return
	}
	if rows == nil {
		rows = []models.RawRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	id := mux.Vars(r)["id"]

	text, err := s.source.PageText(r.Context(), id)
	if err != nil {
		logger.Error("Failed to read page", err, logger.Fields{"page_id": id})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: text})
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	resp := entriesResponse{
		Loading: s.session.Loading(),
		Error:   s.session.Err(),
	}

	switch kind := r.URL.Query().Get("kind"); kind {
	case "":
		resp.Entries = s.session.All()
	case string(models.EntryTypeQuote), string(models.EntryTypeJournal):
		t := models.EntryType(kind)
		resp.Entries = s.session.List(t)
		loaded := s.session.LoadedCount(t)
		resp.Loaded = &loaded
	default:
		writeError(w, http.StatusBadRequest, "invalid kind "+kind)
		return
	}

	if resp.Entries == nil {
		resp.Entries = []models.EntryMeta{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEntryText(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := s.session.Find(id); !ok {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}

	s.session.EnsureContentByIDs(r.Context(), []string{id})
	text, ok := s.session.Text(id)
	if !ok {
		writeError(w, http.StatusBadGateway, "failed to load entry text")
		return
	}
	writeJSON(w, http.StatusOK, textResponse{ID: id, Text: text})
}

func (s *Server) handleLikes(w http.ResponseWriter, r *http.Request) {
	favs := s.session.Favorites(s.likes.IsLiked)
	if favs == nil {
		favs = []models.EntryMeta{}
	}
	writeJSON(w, http.StatusOK, likesResponse{
		IDs:     s.likes.IDs(),
		Entries: favs,
	})
}

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	liked := s.likes.Toggle(id)
	writeJSON(w, http.StatusOK, likeResponse{ID: id, Liked: liked})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	return false
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", err, logger.Fields{"status": status})
	}
}
