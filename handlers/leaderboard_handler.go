package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"codeQuestAPI/services"
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
	userService        *services.UserService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService, userService *services.UserService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		userService:        userService,
	}
}

func (h *LeaderboardHandler) Global(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := authedUser(ctx, w, h.userService)
	if !ok {
		return
	}

	lb, err := h.leaderboardService.Global(ctx, u.ID, queryLimit(r))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, lb)
}

func (h *LeaderboardHandler) Friends(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := authedUser(ctx, w, h.userService)
	if !ok {
		return
	}

	lb, err := h.leaderboardService.Friends(ctx, u.ID, queryLimit(r))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, lb)
}

func queryLimit(r *http.Request) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			return n
		}
	}
	return 0
}
