package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/todmy/grantmap/pkg/models"
)

// PointsResponse is the payload the chart renders
type PointsResponse struct {
	RunID  string              `json:"run_id"`
	Points []models.GrantPoint `json:"points"`
}

// FundersResponse lists the funders of a run, largest first
type FundersResponse struct {
	RunID   string          `json:"run_id"`
	Funders []models.Funder `json:"funders"`
}

// SimilarResponse lists grants ranked by similarity to one grant
type SimilarResponse struct {
	RunID   string                `json:"run_id"`
	GrantID string                `json:"grant_id"`
	Grants  []models.SimilarGrant `json:"grants"`
}

const (
	defaultSimilarLimit = 10
	maxSimilarLimit     = 100
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLatestPoints(w http.ResponseWriter, r *http.Request) {
	runID, err := s.source.LatestRunID(r.Context())
	if err != nil {
		s.respondSourceError(w, err)
		return
	}
	s.writePoints(w, r, runID)
}

func (s *Server) handleRunPoints(w http.ResponseWriter, r *http.Request) {
	s.writePoints(w, r, chi.URLParam(r, "runID"))
}

func (s *Server) handleLatestFunders(w http.ResponseWriter, r *http.Request) {
	runID, err := s.source.LatestRunID(r.Context())
	if err != nil {
		s.respondSourceError(w, err)
		return
	}
	s.writeFunders(w, r, runID)
}

func (s *Server) handleRunFunders(w http.ResponseWriter, r *http.Request) {
	s.writeFunders(w, r, chi.URLParam(r, "runID"))
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	grantID := chi.URLParam(r, "grantID")

	limit := defaultSimilarLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 || n > maxSimilarLimit {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	similar, err := s.source.Similar(r.Context(), runID, grantID, limit)
	if err != nil {
		s.respondSourceError(w, err)
		return
	}
	if similar == nil {
		similar = []models.SimilarGrant{}
	}
	respondJSON(w, http.StatusOK, SimilarResponse{RunID: runID, GrantID: grantID, Grants: similar})
}

func (s *Server) writePoints(w http.ResponseWriter, r *http.Request, runID string) {
	points, err := s.source.Points(r.Context(), runID)
	if err != nil {
		s.respondSourceError(w, err)
		return
	}
	if points == nil {
		points = []models.GrantPoint{}
	}
	respondJSON(w, http.StatusOK, PointsResponse{RunID: runID, Points: points})
}

func (s *Server) writeFunders(w http.ResponseWriter, r *http.Request, runID string) {
	funders, err := s.source.Funders(r.Context(), runID)
	if err != nil {
		s.respondSourceError(w, err)
		return
	}
	if funders == nil {
		funders = []models.Funder{}
	}
	respondJSON(w, http.StatusOK, FundersResponse{RunID: runID, Funders: funders})
}

func (s *Server) respondSourceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrRunNotFound) {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}
	if errors.Is(err, ErrUnsupported) {
		respondError(w, http.StatusNotImplemented, err.Error())
		return
	}
	logrus.WithError(err).Error("load points")
	respondError(w, http.StatusInternalServerError, "failed to load points")
}
