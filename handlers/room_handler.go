package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/AdventSphere/advent-sphere/internal/room"
	"github.com/AdventSphere/advent-sphere/services"
)

type RoomHandler struct {
	roomService *services.RoomService
}

func NewRoomHandler(roomService *services.RoomService) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
	}
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req room.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.OwnerID == "" || req.StartAt.IsZero() {
		respondWithError(w, http.StatusBadRequest, "owner_id and start_at are required")
		return
	}

	resp, err := h.roomService.Create(ctx, &req)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create room")
		return
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.roomService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Room not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to get room")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req room.UpdateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.roomService.Update(ctx, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Room not found")
		case errors.Is(err, services.ErrBadEditKey):
			respondWithError(w, http.StatusForbidden, "Edit key does not match")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update room")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		EditID uuid.UUID `json:"edit_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.roomService.Delete(ctx, id, req.EditID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Room not found")
		case errors.Is(err, services.ErrBadEditKey):
			respondWithError(w, http.StatusForbidden, "Edit key does not match")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to delete room")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RoomHandler) GetRoomQr(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	qr, err := h.roomService.QrCode(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Room not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	respondWithJSON(w, http.StatusOK, qr)
}

// Helper functions

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
