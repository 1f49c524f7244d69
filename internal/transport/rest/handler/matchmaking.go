package handler

import (
	"errors"
	"net/http"

	"triviamon/internal/service"
	"triviamon/internal/transport/rest/middleware"
)

// MatchmakingHandler handles queue endpoints
type MatchmakingHandler struct {
	mmSvc *service.MatchmakingService
}

// NewMatchmakingHandler creates a new matchmaking handler
func NewMatchmakingHandler(mmSvc *service.MatchmakingService) *MatchmakingHandler {
	return &MatchmakingHandler{mmSvc: mmSvc}
}

// Join handles POST /v1/matchmaking/queue
func (h *MatchmakingHandler) Join(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing player claims")
		return
	}

	status, err := h.mmSvc.Join(r.Context(), claims)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyQueued), errors.Is(err, service.ErrAlreadyBattled):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to join queue")
		}
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// Leave handles DELETE /v1/matchmaking/queue
func (h *MatchmakingHandler) Leave(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())
	if err := h.mmSvc.Leave(r.Context(), playerID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to leave queue")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"left": true})
}

// Status handles GET /v1/matchmaking/queue
func (h *MatchmakingHandler) Status(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())
	status, err := h.mmSvc.Status(r.Context(), playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read queue status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}
