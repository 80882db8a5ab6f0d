package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ellinstar/offering-app/internal/lock"
)

type lockStatusResponse struct {
	Locked     bool `json:"locked"`
	Configured bool `json:"configured"`
}

type pinRequest struct {
	PIN string `json:"pin"`
}

func (s *Server) handleLockStatus(w http.ResponseWriter, r *http.Request) {
	configured, err := s.locker.Configured(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to read lock state", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to read lock state")
		return
	}
	respondJSON(w, http.StatusOK, lockStatusResponse{
		Locked:     s.locker.Locked(),
		Configured: configured,
	})
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.locker.Unlock(r.Context(), req.PIN); err != nil {
		respondError(w, pinStatus(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, lockStatusResponse{Locked: false, Configured: true})
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	s.locker.Lock()
	respondJSON(w, http.StatusOK, map[string]bool{"locked": true})
}

func (s *Server) handleSetPIN(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.locker.SetPIN(r.Context(), req.PIN); err != nil {
		respondError(w, pinStatus(err), err.Error())
		return
	}
	s.logger.InfoContext(r.Context(), "PIN configured via API")
	respondJSON(w, http.StatusOK, lockStatusResponse{Locked: false, Configured: true})
}

// handleResetPIN discards the PIN without touching ledger data; the next
// visit goes through setup again.
func (s *Server) handleResetPIN(w http.ResponseWriter, r *http.Request) {
	if err := s.locker.Reset(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to reset PIN", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to reset PIN")
		return
	}
	respondJSON(w, http.StatusOK, lockStatusResponse{Locked: true, Configured: false})
}

func pinStatus(err error) int {
	switch {
	case errors.Is(err, lock.ErrWrongPIN):
		return http.StatusUnauthorized
	case errors.Is(err, lock.ErrBadPIN):
		return http.StatusUnprocessableEntity
	case errors.Is(err, lock.ErrPINNotSet), errors.Is(err, lock.ErrPINSet):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
