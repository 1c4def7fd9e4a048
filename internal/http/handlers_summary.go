package http

import (
	"net/http"

	"financeflow/internal/core"
	"financeflow/internal/report"
)

// maxRecent caps the recent list of /summary.
const maxRecent = 100

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	f := failure{internal: "Failed to build summary"}
	recent, err := parseIntParam(r.URL.Query(), "recent", report.DefaultRecentLimit)
	if err != nil {
		s.writeError(w, r, core.NewValidationError("recent", "must be an integer"), f)
		return
	}
	if recent > maxRecent {
		recent = maxRecent
	}

	summary, err := s.api.Summary(r.Context(), queryUserID(r), s.now(), recent)
	if err != nil {
		s.writeError(w, r, err, f)
		return
	}
	_ = NewJSONResponse().Body(summary).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	_ = NewJSONResponse().Body(core.DefaultCategories).Write(w)
}
