package handlers

import (
	"context"
	"net/http"
	"time"

	"codeQuestAPI/services"
)

type BadgeHandler struct {
	badgeService *services.BadgeService
	userService  *services.UserService
}

func NewBadgeHandler(badgeService *services.BadgeService, userService *services.UserService) *BadgeHandler {
	return &BadgeHandler{
		badgeService: badgeService,
		userService:  userService,
	}
}

func (h *BadgeHandler) GetUserBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := authedUser(ctx, w, h.userService)
	if !ok {
		return
	}

	badges, err := h.badgeService.GetUserBadges(ctx, u.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, badges)
}
