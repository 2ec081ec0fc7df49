package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/build-flow-labs/apiscore/openapi"
	"github.com/build-flow-labs/apiscore/ruleset"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling file parts to disk.
const multipartMemory = 1 << 20

type scoreRequest struct {
	Content string `json:"content"`
	Name    string `json:"name"`
}

// readScoreRequest accepts a JSON body, a urlencoded or multipart form, or
// the raw description as the body with the name in the query string.
func readScoreRequest(r *http.Request) (scoreRequest, error) {
	var req scoreRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("decoding JSON body: %w", err)
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("parsing form: %w", err)
		}
		req.Content = r.PostForm.Get("content")
		req.Name = r.PostForm.Get("name")
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return req, fmt.Errorf("parsing multipart form: %w", err)
		}
		req.Content = r.PostForm.Get("content")
		req.Name = r.PostForm.Get("name")
		if req.Content == "" {
			f, hdr, err := r.FormFile("content")
			if err != nil {
				break
			}
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				return req, fmt.Errorf("reading uploaded file: %w", err)
			}
			req.Content = string(data)
			if req.Name == "" {
				req.Name = hdr.Filename
			}
		}
	default:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return req, fmt.Errorf("reading body: %w", err)
		}
		req.Content = string(data)
		req.Name = r.URL.Query().Get("name")
	}
	return req, nil
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	req, err := readScoreRequest(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeProblem(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeProblem(w, r, http.StatusBadRequest, "content is required")
		return
	}

	logger := s.logger.With("request_id", RequestID(r.Context()), "name", req.Name)
	start := time.Now()

	report, err := s.scorer.Compute(r.Context(), req.Content)
	if err != nil {
		s.failures.Add(1)
		var pe *openapi.ParseError
		if errors.As(err, &pe) {
			logger.Warn("rejected specification", "error", err)
			writeProblem(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logger.Error("scoring failed", "error", err)
		writeProblem(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	s.reportsScored.Add(1)
	s.lastScoredAt.Store(time.Now())
	logger.Info("scored request",
		"score", report.Score,
		"issues", report.Issues(),
		"duration", time.Since(start),
	)

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"reports_scored": s.reportsScored.Load(),
		"failures":       s.failures.Load(),
	}
	if t, ok := s.lastScoredAt.Load().(time.Time); ok {
		status["last_scored_at"] = t.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleRuleSets(w http.ResponseWriter, r *http.Request) {
	infos := []ruleset.Info{}
	if s.lister != nil {
		listed, err := s.lister.List()
		if err != nil {
			s.logger.Error("listing rule sets failed", "error", err)
			writeProblem(w, r, http.StatusInternalServerError, err.Error())
			return
		}
		infos = append(infos, listed...)
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeProblem(w, r, http.StatusNotFound, fmt.Sprintf("URL %s %s", r.Method, r.URL.Path))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
