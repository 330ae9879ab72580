package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jack-ai/jackal-core/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// LoadDataRequest controls a bulk load
// @Description Bulk load options
type LoadDataRequest struct {
	ClearExisting bool `json:"clear_existing"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns readiness of the API (checks the knowledge store connection)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "Knowledge store unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "knowledge store unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Chat endpoint

// handleChat godoc
// @Summary      Chat with Jack.ai
// @Description  Answer a user message grounded in the knowledge base
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      domain.ChatRequest  true  "User message with optional history"
// @Success      200      {object}  domain.ChatResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body or missing message"
// @Failure      500      {object}  ErrorResponse  "Failed to generate a response"
// @Router       /chat [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.chatService.Chat(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to process chat request")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Admin endpoints

// handleLoadData godoc
// @Summary      Bulk load the knowledge base
// @Description  Ingest every markdown file in the knowledge directory (admin only)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      LoadDataRequest  false  "Load options"
// @Success      200      {object}  domain.LoadReport
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      404      {object}  ErrorResponse  "No source files found"
// @Failure      500      {object}  ErrorResponse  "Knowledge store unreachable"
// @Router       /admin/load-data [post]
func (s *Server) handleLoadData(w http.ResponseWriter, r *http.Request) {
	// The body is optional. Any absent, empty, or unparseable body means
	// a plain, non-clearing load.
	var req LoadDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = LoadDataRequest{}
	}

	report, err := s.ingestService.BulkLoad(r.Context(), req.ClearExisting)
	if err != nil {
		if errors.Is(err, domain.ErrNoSourceFiles) {
			writeError(w, http.StatusNotFound, "no source files found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load data")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// handleListDocuments godoc
// @Summary      List stored documents
// @Description  Returns every document in the knowledge base, newest first (admin only)
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      500  {object}  ErrorResponse  "Query failed"
// @Router       /admin/documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ingestService.Documents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(docs),
		"documents": docs,
	})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
