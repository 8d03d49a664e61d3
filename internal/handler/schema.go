package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strucbot/strucbot/internal/auth"
	"github.com/strucbot/strucbot/internal/handler/dto"
	"github.com/strucbot/strucbot/internal/service"
)

// SchemaHandler handles schema generation and management endpoints.
type SchemaHandler struct {
	svc    *service.SchemaService
	logger *slog.Logger
}

// NewSchemaHandler creates a new SchemaHandler.
func NewSchemaHandler(svc *service.SchemaService, logger *slog.Logger) *SchemaHandler {
	return &SchemaHandler{
		svc:    svc,
		logger: logger,
	}
}

// Generate handles POST /api/generate-schema.
func (h *SchemaHandler) Generate(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	var req dto.GenerateSchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	schema, err := h.svc.Generate(r.Context(), identity.UserID, req.Prompt)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSchemaResponse(schema))
}

// List handles GET /api/schemas.
func (h *SchemaHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	schemas, err := h.svc.List(r.Context(), identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSchemaListResponse(schemas))
}

// Delete handles DELETE /api/schemas/{id}.
func (h *SchemaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	schemaID := chi.URLParam(r, "id")
	if schemaID == "" {
		writeError(w, http.StatusBadRequest, "Schema id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), identity.UserID, schemaID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DeleteSchemaResponse{Message: "Schema deleted successfully"})
}

// handleServiceError maps service errors to HTTP responses.
func (h *SchemaHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingPrompt):
		writeError(w, http.StatusBadRequest, "Prompt is required")
	case errors.Is(err, service.ErrSchemaNotFound):
		writeError(w, http.StatusNotFound, "Schema not found")
	case errors.Is(err, service.ErrGenerationFailed):
		writeError(w, http.StatusInternalServerError, "Failed to generate schema from AI")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "An internal error occurred")
	}
}
