package item

import (
	"time"

	"github.com/google/uuid"
)

// Known catalog item types. Type is an open string so new sets can be
// added without a migration.
const (
	TypePhotoFrame = "photo_frame"
	TypeSnowdome   = "snowdome"
	TypeChristmas  = "christmas"
)

// Item is a reusable catalog definition referenced by calendar slots.
// The 3D model and thumbnail live in object storage under
// item/object/<id> and item/thumbnail/<id>.
type Item struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Type        string    `json:"type" db:"type"`
}

type CreateItemResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type UploadImageResponse struct {
	ImageID uuid.UUID `json:"image_id"`
}
