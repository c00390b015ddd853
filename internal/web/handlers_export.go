package web

import (
	"net/http"

	"github.com/JonMunkholm/buyside/internal/core"
	"github.com/JonMunkholm/buyside/internal/logging"
)

// handleExportResults downloads the combined view of ?q= as CSV. The file
// holds exactly the rows shown in the Combined Results table.
func (s *Server) handleExportResults(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Search(r.Context(), searchTerm(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	setDownloadHeaders(w, core.ResultsFileName)
	if err := core.WriteViewCSV(w, res.Combined); err != nil {
		// Can't change status code after writing, just log
		logging.FromContext(r.Context()).Error("export results", "term", res.Term, "error", err)
		return
	}

	logging.FromContext(r.Context()).Info("results exported", "term", res.Term, "rows", res.Combined.Len())
}

// handleExportTags downloads the session tag log as CSV.
func (s *Server) handleExportTags(w http.ResponseWriter, r *http.Request) {
	entries := sessionFrom(r.Context()).Tags.Entries()

	setDownloadHeaders(w, core.TagsFileName)
	if err := core.WriteTagsCSV(w, entries); err != nil {
		logging.FromContext(r.Context()).Error("export tags", "error", err)
		return
	}

	logging.FromContext(r.Context()).Info("tags exported", "tags", len(entries))
}
