// Package web provides HTTP handlers for the search application.
// This file contains shared utilities and helper functions used across handlers.
package web

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// MaxBodySize bounds JSON request bodies.
const MaxBodySize = 64 * 1024

// searchTerm reads the q query parameter.
func searchTerm(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("q"))
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			return fmt.Errorf("unsupported content type %q", ct)
		}
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// setDownloadHeaders marks the response as a CSV attachment.
func setDownloadHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
