package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/domain"
	"github.com/kapu/name-bender-go/internal/service/brainstorm"
	"github.com/kapu/name-bender-go/pkg/errors"
)

type createSessionRequest struct {
	ClientID string `json:"clientId"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type tldsRequest struct {
	TLDs []string `json:"tlds"`
}

type toggleRequest struct {
	TLD string `json:"tld"`
}

type selectionResponse struct {
	SelectedTLDs []string `json:"selectedTlds"`
	Changed      bool     `json:"changed"`
}

type candidatesResponse struct {
	Added []domain.Suggestion `json:"added"`
}

type availabilityResponse struct {
	CandidateID string                    `json:"candidateId"`
	TLD         string                    `json:"tld"`
	Status      domain.AvailabilityStatus `json:"status"`
}

type quoteResponse struct {
	Quote string `json:"quote"`
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*brainstorm.Session, bool) {
	sess, err := s.registry.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(r.Context(), w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleListTLDs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"defaults": domain.DefaultTLDs,
		"all":      domain.AllTLDs(),
	})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{Quote: s.quoter.GenerateQuote(r.Context(), req.Prompt)})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	sess := s.registry.Create(r.Context(), req.ClientID)
	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.session(w, r); !ok {
		return
	}
	s.registry.Remove(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req promptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	view, err := sess.Generate(r.Context(), req.Prompt)
	if err != nil {
		s.logger.Warn("Generate failed", zap.String("session", sess.ID), zap.Error(err))
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleShowMore(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	added, err := sess.ShowMore(r.Context())
	if err != nil {
		s.logger.Warn("Show more failed", zap.String("session", sess.ID), zap.Error(err))
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidatesResponse{Added: added})
}

func (s *Server) handleAlternatives(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	updated, err := sess.SuggestAlternatives(r.Context(), chi.URLParam(r, "candidateID"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleTrademark(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	result, err := sess.CheckTrademark(r.Context(), chi.URLParam(r, "candidateID"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	candidateID := chi.URLParam(r, "candidateID")
	tldName := chi.URLParam(r, "tld")
	if tldName == "" || tldName[0] != '.' {
		writeError(r.Context(), w, errors.NewValidationError("tld must start with '.'", "tld", tldName))
		return
	}

	status, err := sess.CheckAvailability(r.Context(), candidateID, tldName)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{CandidateID: candidateID, TLD: tldName, Status: status})
}

func (s *Server) handleSetTLDs(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req tldsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	selected, err := sess.SetSelection(r.Context(), req.TLDs)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse{SelectedTLDs: selected, Changed: true})
}

func (s *Server) handleToggleTLD(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	selected, changed := sess.ToggleTLD(r.Context(), req.TLD)
	writeJSON(w, http.StatusOK, selectionResponse{SelectedTLDs: selected, Changed: changed})
}

func (s *Server) handleSweepState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.SweepState())
}
