package web

import (
	"net/http"

	"github.com/JonMunkholm/buyside/internal/core"
	"github.com/JonMunkholm/buyside/internal/logging"
)

// namesResponse is the body of GET /api/names.
type namesResponse struct {
	Names []string `json:"names"`
}

// tagsResponse is the body of GET /api/tags.
type tagsResponse struct {
	Tags []core.TagEntry `json:"tags"`
}

// tagRequest is the body of POST /api/tags.
type tagRequest struct {
	Term string `json:"term"`
	Tag  string `json:"tag"`
}

// tagResponse is the body returned after a tag is added.
type tagResponse struct {
	Entry   core.TagEntry `json:"entry"`
	Message string        `json:"message"`
}

// summaryRequest is the body of POST /api/summary.
type summaryRequest struct {
	Term string `json:"term"`
}

// summaryResponse is the body returned by POST /api/summary.
type summaryResponse struct {
	Term    string             `json:"term"`
	Summary string             `json:"summary"`
	Result  *core.SearchResult `json:"result"`
}

func (s *Server) handleAPINames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, namesResponse{Names: s.service.Names()})
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Search(r.Context(), searchTerm(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAPITags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tagsResponse{Tags: sessionFrom(r.Context()).Tags.Entries()})
}

func (s *Server) handleAPIAddTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	entry, err := s.service.AddTag(r.Context(), sessionFrom(r.Context()).Tags, req.Term, req.Tag)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusCreated, tagResponse{Entry: entry, Message: entry.Message()})
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	text, res, err := s.service.Summarize(r.Context(), req.Term)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{Term: res.Term, Summary: text, Result: res})
}

// handleAPIReload re-reads every configured source. The current data stays
// in place when the reload fails.
func (s *Server) handleAPIReload(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Reload(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("datasets reloaded",
		"factbook_rows", stats.FactbookRows,
		"pipeline_rows", stats.PipelineRows,
		"names", stats.Names,
	)
	writeJSON(w, http.StatusOK, stats)
}
