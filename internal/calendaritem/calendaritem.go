package calendaritem

import (
	"time"

	"github.com/google/uuid"
)

// CalendarItem is one scheduled reveal slot in a room. Position is nil
// while the item sits in the inventory; a placed item carries a 3-element
// position and rotation. IsOpened flips to true exactly once and never
// reverts.
type CalendarItem struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	RoomID    uuid.UUID  `json:"room_id" db:"room_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	ItemID    uuid.UUID  `json:"item_id" db:"item_id"`
	OpenDate  time.Time  `json:"open_date" db:"open_date"`
	IsOpened  bool       `json:"is_opened" db:"is_opened"`
	Position  []float64  `json:"position,omitempty" db:"position"`
	Rotation  []float64  `json:"rotation,omitempty" db:"rotation"`
	ImageID   *uuid.UUID `json:"image_id,omitempty" db:"image_id"`
}

// WithItem joins a slot with the catalog fields the client needs to
// render it.
type WithItem struct {
	CalendarItem
	ItemName string `json:"item_name"`
	ItemType string `json:"item_type"`
}

// Placed reports whether the slot currently occupies a spot in the 3D room.
func (c *CalendarItem) Placed() bool {
	return len(c.Position) == 3
}

type CreateFields struct {
	UserID   string     `json:"user_id"`
	ItemID   uuid.UUID  `json:"item_id"`
	OpenDate time.Time  `json:"open_date"`
	Position []float64  `json:"position,omitempty"`
	Rotation []float64  `json:"rotation,omitempty"`
	ImageID  *uuid.UUID `json:"image_id,omitempty"`
}

type CreateRequest struct {
	EditID       uuid.UUID    `json:"edit_id"`
	CalendarItem CreateFields `json:"calendar_item"`
}

type CreateResponse struct {
	ID uuid.UUID `json:"id"`
}

// Patch is a partial update. Every field is tri-state: omitted fields are
// left untouched, explicit JSON nulls clear the column. Clearing position
// and rotation is how a placed item returns to the inventory, so null must
// stay distinguishable from "not sent".
type Patch struct {
	UserID   Optional[string]    `json:"user_id,omitzero"`
	ItemID   Optional[uuid.UUID] `json:"item_id,omitzero"`
	OpenDate Optional[time.Time] `json:"open_date,omitzero"`
	IsOpened Optional[bool]      `json:"is_opened,omitzero"`
	Position Optional[[]float64] `json:"position,omitzero"`
	Rotation Optional[[]float64] `json:"rotation,omitzero"`
	ImageID  Optional[uuid.UUID] `json:"image_id,omitzero"`
}

type PatchRequest struct {
	EditID       uuid.UUID `json:"edit_id"`
	CalendarItem Patch     `json:"calendar_item"`
}

type DeleteRequest struct {
	EditID uuid.UUID `json:"edit_id"`
}

// Empty reports whether the patch touches no field at all.
func (p Patch) Empty() bool {
	return !p.UserID.Set && !p.ItemID.Set && !p.OpenDate.Set &&
		!p.IsOpened.Set && !p.Position.Set && !p.Rotation.Set && !p.ImageID.Set
}
