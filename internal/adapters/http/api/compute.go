package api

import (
	"net/http"
)

// computeRequest is the body of POST /api/compute.
type computeRequest struct {
	StartCSV string           `json:"start_csv"`
	EndCSV   string           `json:"end_csv"`
	Settings *settingsRequest `json:"settings"`
}

// handleCompute scores two exports and returns entities, summary and quadrants.
func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}

	res, err := s.deps.Compute(r.Context(), req.StartCSV, req.EndCSV, req.Settings.resolve(s.deps.DefaultSettings()))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
