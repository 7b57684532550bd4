package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/inventory/internal/apperr"
	"github.com/atinyakov/inventory/internal/models"
	"go.uber.org/zap"
)

// ItemRepository defines the persistence operations required by ItemService.
type ItemRepository interface {
	List(ctx context.Context) ([]models.Item, error)
	GetByID(ctx context.Context, id int64) (*models.Item, error)
	Create(ctx context.Context, ownerID int64, name, description, imageRef string) (*models.Item, error)
	// Update and Delete re-check ownership inside their transaction.
	Update(ctx context.Context, id, callerID int64, patch models.ItemPatch) (before, after *models.Item, err error)
	Delete(ctx context.Context, id, callerID int64) (*models.Item, error)
	DeleteAny(ctx context.Context, id int64) (*models.Item, error)
}

// AssetStore persists image payloads and returns references to them.
type AssetStore interface {
	Store(ctx context.Context, r io.Reader, originalName string) (string, error)
	Reclaim(ctx context.Context, ref string) error
}

// Upload is an image payload received from a client.
type Upload struct {
	Reader   io.Reader
	Filename string
}

// CreateItemInput is the payload for ItemService.Create.
type CreateItemInput struct {
	Name        string
	Description string
	Image       *Upload
}

// UpdateItemInput is the payload for ItemService.Update. Nil fields are left unchanged.
type UpdateItemInput struct {
	Name        *string
	Description *string
	Image       *Upload
}

// ItemService enforces the inventory rules: validation, ownership and
// keeping stored images in step with item rows.
type ItemService struct {
	repo   ItemRepository
	assets AssetStore
	log    *zap.Logger
}

// NewItemService constructs a new ItemService.
func NewItemService(repo ItemRepository, assets AssetStore, log *zap.Logger) *ItemService {
	return &ItemService{repo: repo, assets: assets, log: log}
}

// List returns all items, newest first.
func (s *ItemService) List(ctx context.Context) ([]models.Item, error) {
	return s.repo.List(ctx)
}

// Get returns one item.
func (s *ItemService) Get(ctx context.Context, id int64) (*models.Item, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores the image and persists a new item owned by callerID.
func (s *ItemService) Create(ctx context.Context, callerID int64, in CreateItemInput) (*models.Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.NewValidationError("name", "name is required")
	}
	if in.Image == nil || in.Image.Reader == nil {
		return nil, apperr.NewValidationError("image", "image is required")
	}

	ref, err := s.assets.Store(ctx, in.Image.Reader, in.Image.Filename)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	item, err := s.repo.Create(ctx, callerID, name, in.Description, ref)
	if err != nil {
		s.reclaim(ctx, ref, "reclaim image after failed create")
		return nil, err
	}
	return item, nil
}

// Update applies a partial update. Existence and ownership are checked
// before the input is validated or any image is written.
func (s *ItemService) Update(ctx context.Context, id, callerID int64, in UpdateItemInput) (*models.Item, error) {
	if err := s.checkOwner(ctx, id, callerID); err != nil {
		return nil, err
	}

	var patch models.ItemPatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.NewValidationError("name", "name must not be blank")
		}
		patch.Name = &name
	}
	patch.Description = in.Description

	var newRef string
	if in.Image != nil && in.Image.Reader != nil {
		ref, err := s.assets.Store(ctx, in.Image.Reader, in.Image.Filename)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		newRef = ref
		patch.ImageRef = &newRef
	}

	before, after, err := s.repo.Update(ctx, id, callerID, patch)
	if err != nil {
		if newRef != "" {
			s.reclaim(ctx, newRef, "reclaim image after failed update")
		}
		return nil, err
	}

	if newRef != "" && before.ImageRef != "" && before.ImageRef != newRef {
		s.reclaim(ctx, before.ImageRef, "reclaim replaced image")
	}
	return after, nil
}

// Delete removes an item owned by callerID and then its image.
func (s *ItemService) Delete(ctx context.Context, id, callerID int64) error {
	if err := s.checkOwner(ctx, id, callerID); err != nil {
		return err
	}
	item, err := s.repo.Delete(ctx, id, callerID)
	if err != nil {
		return err
	}
	s.reclaim(ctx, item.ImageRef, "reclaim image after delete")
	return nil
}

// AdminDelete removes an item regardless of owner.
func (s *ItemService) AdminDelete(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.repo.DeleteAny(ctx, id)
	if err != nil {
		return nil, err
	}
	s.reclaim(ctx, item.ImageRef, "reclaim image after admin delete")
	return item, nil
}

func (s *ItemService) checkOwner(ctx context.Context, id, callerID int64) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !item.OwnedBy(callerID) {
		return fmt.Errorf("item %d: %w", id, apperr.ErrForbidden)
	}
	return nil
}

// reclaim is best-effort; a failure leaves an orphan file and is only logged.
func (s *ItemService) reclaim(ctx context.Context, ref, msg string) {
	if ref == "" {
		return
	}
	if err := s.assets.Reclaim(context.WithoutCancel(ctx), ref); err != nil {
		s.log.Warn(msg, zap.String("image_ref", ref), zap.Error(err))
	}
}
