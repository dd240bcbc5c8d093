package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdventSphere/advent-sphere/internal/calendaritem"
)

type CalendarItemService struct {
	db *pgxpool.Pool
}

func NewCalendarItemService(db *pgxpool.Pool) *CalendarItemService {
	return &CalendarItemService{db: db}
}

const calendarItemColumns = `
	ci.id, ci.created_at, ci.room_id, ci.user_id, ci.item_id,
	ci.open_date, ci.is_opened, ci.position, ci.rotation, ci.image_id,
	i.name, i.type
`

func scanCalendarItem(row pgx.Row) (*calendaritem.WithItem, error) {
	var ci calendaritem.WithItem
	err := row.Scan(
		&ci.ID,
		&ci.CreatedAt,
		&ci.RoomID,
		&ci.UserID,
		&ci.ItemID,
		&ci.OpenDate,
		&ci.IsOpened,
		&ci.Position,
		&ci.Rotation,
		&ci.ImageID,
		&ci.ItemName,
		&ci.ItemType,
	)
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

func (s *CalendarItemService) listWhere(ctx context.Context, roomID uuid.UUID, extra string) ([]calendaritem.WithItem, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM calendar_items ci
		JOIN items i ON i.id = ci.item_id
		WHERE ci.room_id = $1 %s
		ORDER BY ci.open_date ASC
	`, calendarItemColumns, extra)

	rows, err := s.db.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar items: %w", err)
	}
	defer rows.Close()

	items := []calendaritem.WithItem{}
	for rows.Next() {
		ci, err := scanCalendarItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *ci)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByRoom returns every slot in the room joined with its catalog item.
func (s *CalendarItemService) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]calendaritem.WithItem, error) {
	return s.listWhere(ctx, roomID, "")
}

// ListInventory returns opened, unplaced slots.
func (s *CalendarItemService) ListInventory(ctx context.Context, roomID uuid.UUID) ([]calendaritem.WithItem, error) {
	return s.listWhere(ctx, roomID, "AND ci.is_opened AND ci.position IS NULL")
}

// ListPlaced returns slots currently positioned in the 3D room.
func (s *CalendarItemService) ListPlaced(ctx context.Context, roomID uuid.UUID) ([]calendaritem.WithItem, error) {
	return s.listWhere(ctx, roomID, "AND ci.position IS NOT NULL")
}

// Create inserts a new slot. Only the room editor may do this, so the edit
// key is checked against the room first.
func (s *CalendarItemService) Create(ctx context.Context, roomID, editID uuid.UUID, fields *calendaritem.CreateFields) (uuid.UUID, error) {
	if err := verifyEditKey(ctx, s.db, roomID, editID); err != nil {
		return uuid.Nil, err
	}

	query := `
		INSERT INTO calendar_items (room_id, user_id, item_id, open_date, position, rotation, image_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id uuid.UUID
	err := s.db.QueryRow(ctx, query,
		roomID, fields.UserID, fields.ItemID, fields.OpenDate,
		fields.Position, fields.Rotation, fields.ImageID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create calendar item: %w", err)
	}
	return id, nil
}

// Patch applies a partial update and returns the updated slot. Explicit
// nulls clear position/rotation/image; omitted fields stay untouched.
// is_opened is ORed with its current value so it can never revert to false
// no matter what the client sends.
func (s *CalendarItemService) Patch(ctx context.Context, roomID, id uuid.UUID, p *calendaritem.Patch) (*calendaritem.WithItem, error) {
	if p.Empty() {
		return nil, ErrNothingToPatch
	}

	set := []string{}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.UserID.Set && p.UserID.Valid {
		set = append(set, "user_id = "+arg(p.UserID.Value))
	}
	if p.ItemID.Set && p.ItemID.Valid {
		set = append(set, "item_id = "+arg(p.ItemID.Value))
	}
	if p.OpenDate.Set && p.OpenDate.Valid {
		set = append(set, "open_date = "+arg(p.OpenDate.Value))
	}
	if p.IsOpened.Set && p.IsOpened.Valid {
		set = append(set, "is_opened = (is_opened OR "+arg(p.IsOpened.Value)+")")
	}
	if p.Position.Set {
		if p.Position.Valid {
			set = append(set, "position = "+arg(p.Position.Value))
		} else {
			set = append(set, "position = NULL")
		}
	}
	if p.Rotation.Set {
		if p.Rotation.Valid {
			set = append(set, "rotation = "+arg(p.Rotation.Value))
		} else {
			set = append(set, "rotation = NULL")
		}
	}
	if p.ImageID.Set {
		if p.ImageID.Valid {
			set = append(set, "image_id = "+arg(p.ImageID.Value))
		} else {
			set = append(set, "image_id = NULL")
		}
	}
	if len(set) == 0 {
		return nil, ErrNothingToPatch
	}

	query := fmt.Sprintf(`
		UPDATE calendar_items ci SET %s
		FROM items i
		WHERE ci.id = %s AND ci.room_id = %s AND i.id = ci.item_id
		RETURNING %s
	`, strings.Join(set, ", "), arg(id), arg(roomID), calendarItemColumns)

	ci, err := scanCalendarItem(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update calendar item: %w", err)
	}
	return ci, nil
}

// Delete removes a slot. Edit-key guarded; only used by the room editor,
// never by the acquisition flow.
func (s *CalendarItemService) Delete(ctx context.Context, roomID, id, editID uuid.UUID) error {
	if err := verifyEditKey(ctx, s.db, roomID, editID); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM calendar_items WHERE id = $1 AND room_id = $2`, id, roomID)
	if err != nil {
		return fmt.Errorf("failed to delete calendar item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateCalendarItem implements acquisition.Store.
func (s *CalendarItemService) UpdateCalendarItem(ctx context.Context, roomID, id uuid.UUID, patch calendaritem.Patch) error {
	_, err := s.Patch(ctx, roomID, id, &patch)
	return err
}

// Invalidate implements acquisition.Store: bumps the room's items version
// so clients polling the room notice their item views are stale.
func (s *CalendarItemService) Invalidate(ctx context.Context, roomID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `UPDATE rooms SET items_version = items_version + 1 WHERE id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("failed to bump items version: %w", err)
	}
	return nil
}

func verifyEditKey(ctx context.Context, db *pgxpool.Pool, roomID, editID uuid.UUID) error {
	var stored uuid.UUID
	err := db.QueryRow(ctx, `SELECT edit_id FROM rooms WHERE id = $1`, roomID).Scan(&stored)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up room: %w", err)
	}
	if stored != editID {
		return ErrBadEditKey
	}
	return nil
}
