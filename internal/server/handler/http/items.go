package http

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/atinyakov/inventory/internal/apperr"
	"github.com/atinyakov/inventory/internal/middleware"
	"github.com/atinyakov/inventory/internal/models"
	"github.com/atinyakov/inventory/internal/service"
	"go.uber.org/zap"
)

// multipartMemory is how much of a multipart body is kept in memory
// before spilling file parts to temporary files.
const multipartMemory = 1 << 20

// ItemService defines the inventory operations required by the HTTP handlers.
type ItemService interface {
	List(ctx context.Context) ([]models.Item, error)
	Get(ctx context.Context, id int64) (*models.Item, error)
	Create(ctx context.Context, callerID int64, in service.CreateItemInput) (*models.Item, error)
	Update(ctx context.Context, id, callerID int64, in service.UpdateItemInput) (*models.Item, error)
	Delete(ctx context.Context, id, callerID int64) error
}

// ItemHandler handles the /api/items endpoints.
type ItemHandler struct {
	Items ItemService
	// MaxUploadBytes caps the whole request body of create and update.
	MaxUploadBytes int64
	Log            *zap.Logger
}

// List returns every item.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Items.List(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get returns one item.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	item, err := h.Items.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Create accepts multipart fields name, description and image.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.Log, apperr.ErrUnauthenticated)
		return
	}
	form, err := h.parseForm(w, r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	defer form.RemoveAll()

	image, closeImage, err := openImage(form)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	defer closeImage()

	item, err := h.Items.Create(r.Context(), callerID, service.CreateItemInput{
		Name:        formValue(form, "name"),
		Description: formValue(form, "description"),
		Image:       image,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Update applies the multipart fields that are present; absent fields keep
// their previous value.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.Log, apperr.ErrUnauthenticated)
		return
	}
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	form, err := h.parseForm(w, r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	defer form.RemoveAll()

	image, closeImage, err := openImage(form)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	defer closeImage()

	item, err := h.Items.Update(r.Context(), id, callerID, service.UpdateItemInput{
		Name:        optionalValue(form, "name"),
		Description: optionalValue(form, "description"),
		Image:       image,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Delete removes an item owned by the caller.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.Log, apperr.ErrUnauthenticated)
		return
	}
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := h.Items.Delete(r.Context(), id, callerID); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "item deleted"})
}

func (h *ItemHandler) parseForm(w http.ResponseWriter, r *http.Request) (*multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, maxErr
		}
		return nil, apperr.NewValidationError("body", "expected multipart/form-data")
	}
	return r.MultipartForm, nil
}

// openImage returns the "image" part, or nil when the form has none.
func openImage(form *multipart.Form) (*service.Upload, func(), error) {
	files := form.File["image"]
	if len(files) == 0 {
		return nil, func() {}, nil
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, apperr.NewValidationError("image", "unreadable upload")
	}
	return &service.Upload{Reader: f, Filename: fh.Filename}, func() { f.Close() }, nil
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func optionalValue(form *multipart.Form, key string) *string {
	v, ok := form.Value[key]
	if !ok || len(v) == 0 {
		return nil
	}
	s := v[0]
	return &s
}
