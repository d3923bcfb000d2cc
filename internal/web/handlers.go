package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/JonMunkholm/featureprep/internal/core"
	"github.com/JonMunkholm/featureprep/internal/tableio"
	"github.com/JonMunkholm/featureprep/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// errNoFile is returned for a multipart upload without a "file" part.
var errNoFile = fmt.Errorf("%w: no file provided", tableio.ErrInvalidCSV)

// SourcesResponse lists the registered sources.
type SourcesResponse struct {
	Sources []core.SourceInfo `json:"sources"`
	Groups  []string          `json:"groups"`
}

// StatusResponse reports run capacity.
type StatusResponse struct {
	Runs    core.RunLimiterStatus `json:"runs"`
	Sources int                   `json:"sources"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SourcesResponse{
		Sources: s.service.ListSources(),
		Groups:  core.SourceGroups(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Runs:    s.service.Limiter().Status(),
		Sources: core.SourceCount(),
	})
}

// handleRunSource runs a registered source and returns the RunResult.
func (s *Server) handleRunSource(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Run(r.Context(), chi.URLParam(r, "sourceKey"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleRunUpload runs the pipeline on an uploaded CSV document, sent
// either as the raw body or as the multipart field "file".
func (s *Server) handleRunUpload(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.RunSource(r.Context(), name, tableio.NewCSVBytesSource(data, s.specs))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleRunView runs a registered source and renders the result as HTML.
func (s *Server) handleRunView(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Run(r.Context(), chi.URLParam(r, "sourceKey"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := templates.RunView(res).Render(r.Context(), &buf); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// readUpload reads at most Pipeline.MaxUploadSize bytes of CSV.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	maxSize := s.cfg.Pipeline.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, "", fmt.Errorf("read upload: %w", err)
		}
		return data, "upload", nil
	}

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", fmt.Errorf("read upload: %w", err)
		}
		// The multipart reader drops the MaxBytesError type.
		if strings.Contains(err.Error(), "request body too large") {
			return nil, "", fmt.Errorf("read upload: %w", &http.MaxBytesError{Limit: maxSize})
		}
		return nil, "", fmt.Errorf("%w: %w", tableio.ErrInvalidCSV, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", errNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return data, "upload:" + header.Filename, nil
}
