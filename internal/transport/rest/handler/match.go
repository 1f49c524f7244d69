package handler

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"triviamon/internal/battle"
	"triviamon/internal/service"
	"triviamon/internal/transport/rest/middleware"
)

// MatchHandler handles live match endpoints
type MatchHandler struct {
	manager    *battle.Manager
	resultsSvc *service.ResultsService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(manager *battle.Manager, resultsSvc *service.ResultsService) *MatchHandler {
	return &MatchHandler{
		manager:    manager,
		resultsSvc: resultsSvc,
	}
}

// Get handles GET /v1/matches/{id}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	playerID := middleware.GetPlayerID(r.Context())

	snap, err := h.manager.Snapshot(matchID, playerID)
	if err != nil {
		writeBattleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Forfeit handles POST /v1/matches/{id}/forfeit
func (h *MatchHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	playerID := middleware.GetPlayerID(r.Context())

	if err := h.manager.Forfeit(matchID, playerID); err != nil {
		writeBattleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"forfeited": true})
}

// leaderboardRow is one side's standing within a match
type leaderboardRow struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

// Leaderboard handles GET /v1/matches/{id}/leaderboard
func (h *MatchHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	playerID := middleware.GetPlayerID(r.Context())

	snap, err := h.manager.Snapshot(matchID, playerID)
	if err != nil {
		writeBattleError(w, err)
		return
	}

	rows := make([]leaderboardRow, 0, len(snap.Sides))
	for i := range snap.Sides {
		rows = append(rows, leaderboardRow{
			PlayerID: snap.Sides[i].PlayerID,
			Score:    snap.Sides[i].Score,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score > rows[j].Score })
	for i := range rows {
		rows[i].Rank = i + 1
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": rows})
}

// History handles GET /v1/players/me/matches
func (h *MatchHandler) History(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	limit := int64(20)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	results, err := h.resultsSvc.RecentResults(r.Context(), playerID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load match history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"matches": results})
}

// GlobalLeaderboard handles GET /v1/leaderboard
func (h *MatchHandler) GlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	entries, err := h.resultsSvc.TopPlayers(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

func writeBattleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, battle.ErrMatchNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, battle.ErrNotParticipant):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, battle.ErrMatchOver), errors.Is(err, battle.ErrMatchPaused),
		errors.Is(err, battle.ErrDuplicateSubmission), errors.Is(err, battle.ErrStaleTurn):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
