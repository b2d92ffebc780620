package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/CuSO4Deposit/arctrack/internal/domain/model"
)

// scoreRequest mirrors the POST /api/v1/scores body.
type scoreRequest struct {
	User        string `json:"user"`
	SongID      string `json:"song_id"`
	RatingClass int    `json:"rating_class"`
	Pure        int    `json:"pure"`
	MaxPure     int    `json:"max_pure"`
	Far         int    `json:"far"`
	Time        int64  `json:"time"`
}

func (r scoreRequest) validate() error {
	switch {
	case strings.TrimSpace(r.User) == "":
		return errors.New("missing user")
	case strings.TrimSpace(r.SongID) == "":
		return errors.New("missing song_id")
	case r.Time <= 0:
		return errors.New("missing time")
	}
	return nil
}

type submitResponse struct {
	UpdatedBest bool `json:"updated_best"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	chart := model.ChartID{SongID: req.SongID, RatingClass: req.RatingClass}
	result, err := s.deps.Submit(r.Context(), req.User, chart, req.Pure, req.MaxPure, req.Far, req.Time)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{UpdatedBest: result.UpdatedBest})
}
