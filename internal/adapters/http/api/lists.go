package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/CuSO4Deposit/arctrack/internal/domain/model"
)

// playResponse mirrors one leaderboard entry.
type playResponse struct {
	SongID      string  `json:"song_id"`
	RatingClass int     `json:"rating_class"`
	Name        string  `json:"name,omitempty"`
	Score       int     `json:"score"`
	PlayRating  float64 `json:"play_ptt"`
	Pure        int     `json:"pure"`
	MaxPure     int     `json:"max_pure"`
	Far         int     `json:"far"`
	Lost        int     `json:"lost"`
	Time        int64   `json:"time"`
}

func toPlayResponses(recs []model.PlayRecord) []playResponse {
	out := make([]playResponse, len(recs))
	for i, r := range recs {
		out[i] = playResponse{
			SongID:      r.Chart.SongID,
			RatingClass: r.Chart.RatingClass,
			Name:        r.Name,
			Score:       r.Score,
			PlayRating:  r.PlayRating,
			Pure:        r.Pure,
			MaxPure:     r.MaxPure,
			Far:         r.Far,
			Lost:        r.Lost,
			Time:        r.Time,
		}
	}
	return out
}

type listQuery func(ctx context.Context, user string) ([]model.PlayRecord, error)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, query listQuery) {
	user := mux.Vars(r)["user"]
	recs, err := query(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayResponses(recs))
}

func (s *Server) handleBest30(w http.ResponseWriter, r *http.Request) {
	s.handleList(w, r, s.deps.Best30)
}

func (s *Server) handleRecent30(w http.ResponseWriter, r *http.Request) {
	s.handleList(w, r, s.deps.Recent30)
}

func (s *Server) handleRecent10(w http.ResponseWriter, r *http.Request) {
	s.handleList(w, r, s.deps.Recent10)
}
