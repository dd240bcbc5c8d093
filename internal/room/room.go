package room

import (
	"time"

	"github.com/google/uuid"
)

// Room is one shared advent calendar instance spanning 25 days from StartAt.
// EditID and Password never serialize; the edit key is returned exactly once,
// at creation.
type Room struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	OwnerID               string     `json:"owner_id" db:"owner_id"`
	EditID                uuid.UUID  `json:"-" db:"edit_id"`
	Password              *string    `json:"-" db:"password"`
	IsAnonymous           bool       `json:"is_anonymous" db:"is_anonymous"`
	StartAt               time.Time  `json:"start_at" db:"start_at"`
	ItemGetTime           *string    `json:"item_get_time,omitempty" db:"item_get_time"`
	GenerateCount         int        `json:"generate_count" db:"generate_count"`
	SnowDomePartsLastDate *time.Time `json:"snow_dome_parts_last_date,omitempty" db:"snow_dome_parts_last_date"`
	ItemsVersion          int        `json:"items_version" db:"items_version"`
}

type CreateRoomRequest struct {
	OwnerID     string    `json:"owner_id"`
	ItemGetTime *string   `json:"item_get_time,omitempty"`
	Password    *string   `json:"password,omitempty"`
	IsAnonymous bool      `json:"is_anonymous"`
	StartAt     time.Time `json:"start_at"`
}

type CreateRoomResponse struct {
	ID     uuid.UUID `json:"id"`
	EditID uuid.UUID `json:"edit_id"`
}

// UpdateRoomRequest carries the editable room fields. StartAt is immutable
// after creation and is deliberately absent here.
type UpdateRoomRequest struct {
	EditID      uuid.UUID `json:"edit_id"`
	ItemGetTime *string   `json:"item_get_time,omitempty"`
	Password    *string   `json:"password,omitempty"`
	IsAnonymous *bool     `json:"is_anonymous,omitempty"`
}

type QrCodeResponse struct {
	RoomID       uuid.UUID `json:"room_id"`
	ShareURL     string    `json:"share_url"`
	QrCodeBase64 string    `json:"qr_code_base64"`
}
