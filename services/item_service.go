package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdventSphere/advent-sphere/internal/bucket"
	"github.com/AdventSphere/advent-sphere/internal/item"
)

type ItemService struct {
	db     *pgxpool.Pool
	bucket *bucket.Client
}

func NewItemService(db *pgxpool.Pool, bucket *bucket.Client) *ItemService {
	return &ItemService{db: db, bucket: bucket}
}

// ItemUpload is one binary asset arriving with a catalog item.
type ItemUpload struct {
	File        io.Reader
	ContentType string
}

func (s *ItemService) List(ctx context.Context, limit, offset int, itemType string) ([]item.Item, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, created_at, name, description, type
		FROM items
		WHERE ($3 = '' OR type = $3)
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.db.Query(ctx, query, limit, offset, itemType)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []item.Item{}
	for rows.Next() {
		var it item.Item
		if err := rows.Scan(&it.ID, &it.CreatedAt, &it.Name, &it.Description, &it.Type); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *ItemService) Get(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	var it item.Item
	err := s.db.QueryRow(ctx,
		`SELECT id, created_at, name, description, type FROM items WHERE id = $1`, id,
	).Scan(&it.ID, &it.CreatedAt, &it.Name, &it.Description, &it.Type)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &it, nil
}

// Create inserts the catalog row, then uploads the model and thumbnail.
// If either upload fails the row is rolled back so the catalog never
// references assets that are not in the bucket.
func (s *ItemService) Create(ctx context.Context, name, description, itemType string, object, thumbnail *ItemUpload) (*item.CreateItemResponse, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `
		INSERT INTO items (name, description, type)
		VALUES ($1, $2, $3)
		RETURNING id
	`, name, description, itemType).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	if err := s.uploadAssets(ctx, id, object, thumbnail); err != nil {
		if _, delErr := s.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id); delErr != nil {
			log.Printf("Item create: failed to roll back row %s: %v", id, delErr)
		}
		return nil, err
	}

	return &item.CreateItemResponse{ID: id, Name: name}, nil
}

// Update applies the given fields; nil pointers leave the column alone.
// New assets replace the old objects under the same keys.
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, name, description, itemType *string, object, thumbnail *ItemUpload) (*item.Item, error) {
	if name == nil && description == nil && itemType == nil && object == nil && thumbnail == nil {
		return nil, ErrNothingToPatch
	}

	var it item.Item
	err := s.db.QueryRow(ctx, `
		UPDATE items SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			type = COALESCE($4, type)
		WHERE id = $1
		RETURNING id, created_at, name, description, type
	`, id, name, description, itemType).Scan(&it.ID, &it.CreatedAt, &it.Name, &it.Description, &it.Type)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	if err := s.uploadAssets(ctx, id, object, thumbnail); err != nil {
		return nil, err
	}
	return &it, nil
}

// Delete removes the catalog row and its bucket objects.
func (s *ItemService) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if s.bucket != nil {
		if err := s.bucket.Delete(ctx, bucket.ObjectKey(id)); err != nil {
			log.Printf("Item delete: %v", err)
		}
		if err := s.bucket.Delete(ctx, bucket.ThumbnailKey(id)); err != nil {
			log.Printf("Item delete: %v", err)
		}
	}
	return nil
}

// UploadUserImage stores a photo-frame image and returns the image id the
// client then patches onto a calendar item.
func (s *ItemService) UploadUserImage(ctx context.Context, file io.Reader) (*item.UploadImageResponse, error) {
	if s.bucket == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}
	imageID := uuid.New()
	if err := s.bucket.Upload(ctx, bucket.UserImageKey(imageID), file, "image/png"); err != nil {
		return nil, err
	}
	return &item.UploadImageResponse{ImageID: imageID}, nil
}

func (s *ItemService) uploadAssets(ctx context.Context, id uuid.UUID, object, thumbnail *ItemUpload) error {
	if s.bucket == nil || (object == nil && thumbnail == nil) {
		return nil
	}

	type upload struct {
		key    string
		upload *ItemUpload
	}
	var uploads []upload
	if object != nil {
		uploads = append(uploads, upload{bucket.ObjectKey(id), object})
	}
	if thumbnail != nil {
		uploads = append(uploads, upload{bucket.ThumbnailKey(id), thumbnail})
	}

	var wg sync.WaitGroup
	errs := make([]error, len(uploads))
	for i, u := range uploads {
		wg.Add(1)
		go func(i int, u upload) {
			defer wg.Done()
			errs[i] = s.bucket.Upload(ctx, u.key, u.upload.File, u.upload.ContentType)
		}(i, u)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
