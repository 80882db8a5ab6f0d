package http

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.session.Types(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list types", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list types")
		return
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name
	}
	respondJSON(w, http.StatusOK, map[string][]string{"types": names})
}

func (s *Server) handleAddType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := sanitizeInput(req.Name)
	if name == "" {
		respondError(w, http.StatusUnprocessableEntity, "type name is required")
		return
	}
	if err := s.session.AddType(r.Context(), name); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to add type", "error", err, "type", name)
		respondError(w, http.StatusInternalServerError, "failed to add type")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"name": name})
}
