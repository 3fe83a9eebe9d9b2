package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/planograph/planograph/codec"
	"github.com/planograph/planograph/errors"
	"github.com/planograph/planograph/graph"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps the error taxonomy to HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	case errors.IsNotFound(err):
		status = http.StatusNotFound
	case errors.IsUnsupportedFormat(err):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": s.readVersion(),
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.readSnapshot())
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req graph.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Validationf("invalid request body: %v", err))
		return
	}

	result, err := graph.Execute(s.readSnapshot(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Debugw("Query executed", "type", req.Type)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	records := s.history.History()
	// Snapshots are heavy; the listing carries only the record headers
	type header struct {
		ID        string          `json:"id"`
		Version   string          `json:"version"`
		Timestamp string          `json:"timestamp"`
		Message   string          `json:"message"`
		Changes   graph.ChangeSet `json:"changes"`
	}
	out := make([]header, 0, len(records))
	for _, rec := range records {
		out = append(out, header{
			ID:        rec.ID,
			Version:   rec.Version,
			Timestamp: rec.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			Message:   rec.Message,
			Changes:   rec.Changes,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRevert(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Version == "" {
		writeError(w, errors.Validationf("revert requires a version"))
		return
	}

	s.mu.Lock()
	err := s.history.Revert(s.store, body.Version)
	version := s.store.Version()
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.BroadcastSnapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reverted_to": body.Version,
		"version":     version,
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	format := codec.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = codec.FormatDocument
	}
	strategy := codec.Strategy(r.URL.Query().Get("strategy"))
	if strategy == "" {
		strategy = codec.StrategyReplace
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, errors.Validationf("read request body: %v", err))
		return
	}
	version, err := s.ApplyImport(data, format, strategy)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Infow("Import applied", "format", format, "strategy", strategy)
	writeJSON(w, http.StatusOK, map[string]interface{}{"version": version})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	format := codec.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = codec.FormatDocument
	}

	data, err := codec.Export(s.readSnapshot(), format)
	if err != nil {
		writeError(w, err)
		return
	}

	contentType := "application/json"
	switch format {
	case codec.FormatGraphML:
		contentType = "application/xml"
	case codec.FormatDOT:
		contentType = "text/vnd.graphviz"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=graph.%s", format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
