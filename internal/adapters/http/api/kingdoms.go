package api

import (
	"errors"
	"net/http"
	"strings"
)

// handleCompareKingdoms compares the summaries of profiles a and b.
func (s *Server) handleCompareKingdoms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, b := strings.TrimSpace(q.Get("a")), strings.TrimSpace(q.Get("b"))
	if a == "" || b == "" {
		writeFailure(w, errors.Join(ErrBadRequest, errors.New("both a and b profile names are required")))
		return
	}

	cmp, err := s.deps.CompareKingdoms(r.Context(), a, b)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}
