package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AdventSphere/advent-sphere/internal/calendaritem"
	"github.com/AdventSphere/advent-sphere/services"
)

type CalendarItemHandler struct {
	calendarItemService *services.CalendarItemService
}

func NewCalendarItemHandler(calendarItemService *services.CalendarItemService) *CalendarItemHandler {
	return &CalendarItemHandler{
		calendarItemService: calendarItemService,
	}
}

func (h *CalendarItemHandler) ListCalendarItems(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.calendarItemService.ListByRoom)
}

// ListInventory returns opened-but-unplaced slots.
func (h *CalendarItemHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.calendarItemService.ListInventory)
}

// ListPlaced returns the slots standing in the 3D room.
func (h *CalendarItemHandler) ListPlaced(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.calendarItemService.ListPlaced)
}

func (h *CalendarItemHandler) list(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID) ([]calendaritem.WithItem, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	roomID, ok := pathUUID(w, r, "roomId")
	if !ok {
		return
	}

	items, err := fn(ctx, roomID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list calendar items")
		return
	}

	respondWithJSON(w, http.StatusOK, items)
}

func (h *CalendarItemHandler) CreateCalendarItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	roomID, ok := pathUUID(w, r, "roomId")
	if !ok {
		return
	}

	var req calendaritem.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.calendarItemService.Create(ctx, roomID, req.EditID, &req.CalendarItem)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Room not found")
		case errors.Is(err, services.ErrBadEditKey):
			respondWithError(w, http.StatusForbidden, "Edit key does not match")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to create calendar item")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, calendaritem.CreateResponse{ID: id})
}

// PatchCalendarItem drives every open/place/skip/unplace write. The body
// may clear fields with explicit nulls, which is distinct from omitting
// them.
func (h *CalendarItemHandler) PatchCalendarItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	roomID, ok := pathUUID(w, r, "roomId")
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req calendaritem.PatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.calendarItemService.Patch(ctx, roomID, id, &req.CalendarItem)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Calendar item not found")
		case errors.Is(err, services.ErrNothingToPatch):
			respondWithError(w, http.StatusBadRequest, "No fields to update")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update calendar item")
		}
		return
	}

	// Item views are stale now; let pollers notice.
	if err := h.calendarItemService.Invalidate(ctx, roomID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update calendar item")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *CalendarItemHandler) DeleteCalendarItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	roomID, ok := pathUUID(w, r, "roomId")
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req calendaritem.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.calendarItemService.Delete(ctx, roomID, id, req.EditID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Calendar item not found")
		case errors.Is(err, services.ErrBadEditKey):
			respondWithError(w, http.StatusForbidden, "Edit key does not match")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to delete calendar item")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
