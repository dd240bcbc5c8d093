package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/AdventSphere/advent-sphere/services"
)

// maxUploadSize caps multipart bodies (3D models can be a few MB).
const maxUploadSize = 32 << 20

type ItemHandler struct {
	itemService *services.ItemService
}

func NewItemHandler(itemService *services.ItemService) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
	}
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	itemType := r.URL.Query().Get("type")

	items, err := h.itemService.List(ctx, limit, offset, itemType)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list items")
		return
	}

	respondWithJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.itemService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Item not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to get item")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// CreateItem accepts multipart form data: the catalog fields plus the 3D
// model (object_file) and its thumbnail (object_thumbnail).
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}

	name := r.FormValue("name")
	description := r.FormValue("description")
	itemType := r.FormValue("type")
	if name == "" || itemType == "" {
		respondWithError(w, http.StatusBadRequest, "name and type are required")
		return
	}

	object, ok := formUpload(w, r, "object_file", true)
	if !ok {
		return
	}
	defer object.close()
	thumbnail, ok := formUpload(w, r, "object_thumbnail", true)
	if !ok {
		return
	}
	defer thumbnail.close()

	resp, err := h.itemService.Create(ctx, name, description, itemType, object.upload, thumbnail.upload)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create item")
		return
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

func (h *ItemHandler) PatchItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}

	name := formValuePtr(r, "name")
	description := formValuePtr(r, "description")
	itemType := formValuePtr(r, "type")

	object, ok := formUpload(w, r, "object_file", false)
	if !ok {
		return
	}
	defer object.close()
	thumbnail, ok := formUpload(w, r, "object_thumbnail", false)
	if !ok {
		return
	}
	defer thumbnail.close()

	result, err := h.itemService.Update(ctx, id, name, description, itemType, object.upload, thumbnail.upload)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Item not found")
		case errors.Is(err, services.ErrNothingToPatch):
			respondWithError(w, http.StatusBadRequest, "No fields to update")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update item")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.itemService.Delete(ctx, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Item not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to delete item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadUserImage stores a photo-frame image and returns its image id.
func (h *ItemHandler) UploadUserImage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	resp, err := h.itemService.UploadUserImage(ctx, file)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

type formFile struct {
	file   multipart.File
	upload *services.ItemUpload
}

func (f *formFile) close() {
	if f.file != nil {
		f.file.Close()
	}
}

// formUpload pulls one optional (or required) file out of the form.
func formUpload(w http.ResponseWriter, r *http.Request, field string, required bool) (*formFile, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if required {
			respondWithError(w, http.StatusBadRequest, field+" is required")
			return nil, false
		}
		return &formFile{}, true
	}
	return &formFile{
		file: file,
		upload: &services.ItemUpload{
			File:        file,
			ContentType: header.Header.Get("Content-Type"),
		},
	}, true
}

func formValuePtr(r *http.Request, field string) *string {
	if vs, ok := r.MultipartForm.Value[field]; ok && len(vs) > 0 {
		return &vs[0]
	}
	return nil
}
