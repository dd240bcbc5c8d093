package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/AdventSphere/advent-sphere/internal/ai"
	"github.com/AdventSphere/advent-sphere/services"
)

type AIHandler struct {
	aiService *services.AIService
}

func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{
		aiService: aiService,
	}
}

// CreatePhoto generates a photo-frame image for a room, subject to the
// per-room generation limit.
func (h *AIHandler) CreatePhoto(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	if h.aiService == nil {
		respondWithError(w, http.StatusServiceUnavailable, "AI generation is not configured")
		return
	}

	var req ai.CreatePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Prompt == "" {
		respondWithError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	resp, err := h.aiService.CreatePhoto(ctx, req.RoomID, req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Room not found")
		case errors.Is(err, services.ErrGenerateLimit):
			respondWithError(w, http.StatusForbidden, "Image generation limit reached")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to create photo")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

// CreatePrompt turns a theme and conversation history into a refined
// image prompt plus feedback.
func (h *AIHandler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if h.aiService == nil {
		respondWithError(w, http.StatusServiceUnavailable, "AI generation is not configured")
		return
	}

	var req ai.CreatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Prompt == "" {
		respondWithError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	resp, err := h.aiService.CreatePrompt(ctx, &req)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create prompt")
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
