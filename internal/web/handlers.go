package web

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/JonMunkholm/buyside/internal/core"
	"github.com/JonMunkholm/buyside/internal/logging"
	"github.com/JonMunkholm/buyside/internal/web/templates"
)

// handleIndex renders the search page, with results when ?q= is set.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := s.pageData(r)

	term := searchTerm(r)
	if term != "" {
		res, err := s.service.Search(r.Context(), term)
		if err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
		data.Term = res.Term
		data.Result = res
		data.TagMessage = tagMessage(data.Tags, r.URL.Query().Get("tag_id"))
	}

	s.render(w, r, http.StatusOK, data)
}

// handleAddTag appends a tag to the session log and redirects back to the
// results. A rejected tag re-renders the results with the error inline.
func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	term := r.PostForm.Get("q")
	sess := sessionFrom(r.Context())

	entry, err := s.service.AddTag(r.Context(), sess.Tags, term, r.PostForm.Get("tag"))
	if err != nil {
		res, searchErr := s.service.Search(r.Context(), term)
		if searchErr != nil {
			s.respondError(w, r, searchErr, statusFor(searchErr))
			return
		}
		logging.FromContext(r.Context()).Warn("tag rejected", "term", res.Term, "error", err)

		data := s.pageData(r)
		data.Term = res.Term
		data.Result = res
		data.TagError = core.MapError(err).Message
		s.render(w, r, statusFor(err), data)
		return
	}

	target := "/?" + url.Values{"q": {entry.SearchTerm}, "tag_id": {entry.ID.String()}}.Encode()
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleSummary renders the results page with an AI summary. Summary
// failures are shown inline on the page.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	text, res, err := s.service.Summarize(r.Context(), r.PostForm.Get("q"))
	if res == nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	data := s.pageData(r)
	data.Term = res.Term
	data.Result = res
	data.Summary = text
	if err != nil {
		logging.FromContext(r.Context()).Warn("summary failed", "term", res.Term, "error", err)
		msg := core.MapError(err)
		data.SummaryError = msg.Message + " " + msg.Action
	}

	s.render(w, r, http.StatusOK, data)
}

// pageData fills the fields every page shows.
func (s *Server) pageData(r *http.Request) templates.SearchPageData {
	data := templates.SearchPageData{
		Names:          s.service.Names(),
		Stats:          s.service.Stats(),
		SummaryEnabled: s.service.SummaryEnabled(),
	}
	if sess := sessionFrom(r.Context()); sess != nil {
		data.Tags = sess.Tags.Entries()
	}
	return data
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data templates.SearchPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.SearchPage(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render search page", "error", err)
	}
}

// tagMessage returns the confirmation of the tag with the given id, if it
// belongs to this session.
func tagMessage(entries []core.TagEntry, rawID string) string {
	if rawID == "" {
		return ""
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if e.ID == id {
			return e.Message()
		}
	}
	return ""
}
