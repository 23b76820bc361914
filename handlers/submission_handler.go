package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"codeQuestAPI/internal/problem"
	"codeQuestAPI/services"
	"codeQuestAPI/storage"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
	userService       *services.UserService
}

func NewSubmissionHandler(submissionService *services.SubmissionService, userService *services.UserService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		userService:       userService,
	}
}

// Submit records a submission and, for accepted ones, runs the whole
// streak/goal/badge update. A progression failure still returns 200 with
// stats_pending set; the submission itself is never lost.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := authedUser(ctx, w, h.userService)
	if !ok {
		return
	}

	var req problem.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.submissionService.Submit(ctx, u.ID, &req)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Problem not found")
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
