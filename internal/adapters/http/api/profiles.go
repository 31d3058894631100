package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/okian/dkp/internal/domain/roster"
	"github.com/okian/dkp/internal/domain/scoring"
)

// saveProfileRequest is the body of POST /api/profiles. Without either CSV
// the stored profile is rescored with Settings.
type saveProfileRequest struct {
	Name     string           `json:"name"`
	StartCSV string           `json:"start_csv"`
	EndCSV   string           `json:"end_csv"`
	Settings *settingsRequest `json:"settings"`
}

type recomputeRequest struct {
	Settings *settingsRequest `json:"settings"`
}

type profileResponse struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	SavedAt  time.Time        `json:"saved_at"`
	Settings scoring.Config   `json:"settings"`
	Entities []scoring.Entity `json:"entities"`
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.ListProfiles(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req saveProfileRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeFailure(w, ErrMissingName)
		return
	}

	def := s.deps.DefaultSettings()
	if req.StartCSV == "" && req.EndCSV == "" {
		// Recompute keeps the stored settings for any weight left out.
		if existing, err := s.deps.GetProfile(r.Context(), req.Name); err == nil {
			def = existing.Settings
		}
	}

	p, err := s.deps.SaveProfile(r.Context(), req.Name, req.StartCSV, req.EndCSV, req.Settings.resolve(def))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.Info())
}

// handleRecomputeAll rescores every stored profile. Without settings each
// profile keeps its own weights.
func (s *Server) handleRecomputeAll(w http.ResponseWriter, r *http.Request) {
	var req recomputeRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}

	var override *scoring.Config
	if req.Settings != nil {
		cfg := req.Settings.resolve(s.deps.DefaultSettings())
		override = &cfg
	}

	results, err := s.deps.RecomputeAll(r.Context(), override)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// handleGetProfile returns a profile's entities, optionally filtered by q and
// sorted by sort/dir.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	p, err := s.deps.GetProfile(r.Context(), name)
	if err != nil {
		writeFailure(w, err)
		return
	}

	q := r.URL.Query()
	entities := p.Entities
	if term := q.Get("q"); term != "" {
		entities = roster.Search(entities, term)
	}
	if col := q.Get("sort"); col != "" {
		entities = roster.Sort(entities, roster.Column(col), roster.ParseDirection(q.Get("dir")))
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:       p.ID,
		Name:     p.Name,
		SavedAt:  p.SavedAt,
		Settings: p.Settings,
		Entities: entities,
	})
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := s.deps.DeleteProfile(r.Context(), name); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	sum, err := s.deps.Summary(r.Context(), name)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleQuadrants(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	view, err := s.deps.Quadrants(r.Context(), name)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleFighters(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	fighters, err := s.deps.Fighters(r.Context(), name)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fighters)
}

// handleComparePlayers accepts ids=a,b,c or repeated ids parameters.
func (s *Server) handleComparePlayers(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	var ids []string
	for _, v := range r.URL.Query()["ids"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	cmp, err := s.deps.ComparePlayers(r.Context(), name, ids)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}
