package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/AdventSphere/advent-sphere/internal/bucket"
	"github.com/AdventSphere/advent-sphere/internal/item"
	"github.com/AdventSphere/advent-sphere/internal/room"
	"github.com/AdventSphere/advent-sphere/internal/user"
)

const (
	// calendarDays is the fixed span of a room.
	calendarDays = 25
	// snowdomePartCount is how many snowdome slots the room-creation
	// track schedules.
	snowdomePartCount = 4
)

type RoomService struct {
	db     *pgxpool.Pool
	bucket *bucket.Client
	rng    *rand.Rand
}

func NewRoomService(db *pgxpool.Pool, bucket *bucket.Client) *RoomService {
	return &RoomService{
		db:     db,
		bucket: bucket,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const roomColumns = `
	id, created_at, owner_id, edit_id, password, is_anonymous,
	start_at, item_get_time, generate_count, snow_dome_parts_last_date,
	items_version
`

func scanRoom(row pgx.Row) (*room.Room, error) {
	var r room.Room
	err := row.Scan(
		&r.ID,
		&r.CreatedAt,
		&r.OwnerID,
		&r.EditID,
		&r.Password,
		&r.IsAnonymous,
		&r.StartAt,
		&r.ItemGetTime,
		&r.GenerateCount,
		&r.SnowDomePartsLastDate,
		&r.ItemsVersion,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a room and schedules its snowdome track: four parts on
// distinct random days, the latest of which becomes the room's final
// snowdome part date. Rooms created while the catalog has no snowdome
// items simply get no track.
func (s *RoomService) Create(ctx context.Context, req *room.CreateRoomRequest) (*room.CreateRoomResponse, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	partItems, err := snowdomeCatalog(ctx, tx)
	if err != nil {
		return nil, err
	}

	var openDates []time.Time
	var lastDate *time.Time
	if len(partItems) > 0 {
		openDates = snowdomeSchedule(req.StartAt, req.ItemGetTime, s.rng)
		lastDate = &openDates[len(openDates)-1]
	}

	editID := uuid.New()
	query := `
		INSERT INTO rooms (owner_id, edit_id, password, is_anonymous, start_at, item_get_time, snow_dome_parts_last_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var roomID uuid.UUID
	err = tx.QueryRow(ctx, query,
		req.OwnerID, editID, req.Password, req.IsAnonymous,
		req.StartAt, req.ItemGetTime, lastDate,
	).Scan(&roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	for i, openDate := range openDates {
		partItem := partItems[i%len(partItems)]
		_, err = tx.Exec(ctx, `
			INSERT INTO calendar_items (room_id, user_id, item_id, open_date)
			VALUES ($1, $2, $3, $4)
		`, roomID, user.SystemUserID, partItem, openDate)
		if err != nil {
			return nil, fmt.Errorf("failed to schedule snowdome part: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit room creation: %w", err)
	}

	log.Printf("Created room %s (snowdome parts: %d)", roomID, len(openDates))
	return &room.CreateRoomResponse{ID: roomID, EditID: editID}, nil
}

func (s *RoomService) Get(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	query := fmt.Sprintf(`SELECT %s FROM rooms WHERE id = $1`, roomColumns)
	r, err := scanRoom(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return r, nil
}

// Update changes the editable room fields. The start date is immutable;
// there is intentionally no code path that writes start_at.
func (s *RoomService) Update(ctx context.Context, id uuid.UUID, req *room.UpdateRoomRequest) (*room.Room, error) {
	if err := verifyEditKey(ctx, s.db, id, req.EditID); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE rooms SET
			item_get_time = COALESCE($2, item_get_time),
			password = COALESCE($3, password),
			is_anonymous = COALESCE($4, is_anonymous)
		WHERE id = $1
		RETURNING %s
	`, roomColumns)

	r, err := scanRoom(s.db.QueryRow(ctx, query, id, req.ItemGetTime, req.Password, req.IsAnonymous))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update room: %w", err)
	}
	return r, nil
}

// Delete removes the room, its calendar items and any uploaded user
// images backing photo frames.
func (s *RoomService) Delete(ctx context.Context, id, editID uuid.UUID) error {
	if err := verifyEditKey(ctx, s.db, id, editID); err != nil {
		return err
	}

	imageIDs, err := roomImageIDs(ctx, s.db, id)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM calendar_items WHERE room_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete calendar items: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit room deletion: %w", err)
	}

	if s.bucket != nil {
		for _, imageID := range imageIDs {
			if err := s.bucket.Delete(ctx, bucket.UserImageKey(imageID)); err != nil {
				log.Printf("Room delete: failed to remove image %s: %v", imageID, err)
			}
		}
	}
	return nil
}

// QrCode renders a share QR for the room's public URL.
func (s *RoomService) QrCode(ctx context.Context, id uuid.UUID) (*room.QrCodeResponse, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	base := os.Getenv("ROOM_SHARE_BASE_URL")
	if base == "" {
		base = "https://adventsphere.app/rooms"
	}
	shareURL := fmt.Sprintf("%s/%s", base, id)

	pngBytes, err := qrcode.Encode(shareURL, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR png: %w", err)
	}

	return &room.QrCodeResponse{
		RoomID:       id,
		ShareURL:     shareURL,
		QrCodeBase64: base64.StdEncoding.EncodeToString(pngBytes),
	}, nil
}

func snowdomeCatalog(ctx context.Context, tx pgx.Tx) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx,
		`SELECT id FROM items WHERE type = $1 ORDER BY name ASC LIMIT $2`,
		item.TypeSnowdome, snowdomePartCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query snowdome catalog: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func roomImageIDs(ctx context.Context, db *pgxpool.Pool, roomID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.Query(ctx,
		`SELECT image_id FROM calendar_items WHERE room_id = $1 AND image_id IS NOT NULL`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query room images: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// snowdomeSchedule picks snowdomePartCount distinct days within the
// room's 25-day span and returns their reveal timestamps in ascending
// order. With a fixed item-get-time every reveal lands on that clock
// time; otherwise each part gets a random time within its day.
func snowdomeSchedule(startAt time.Time, itemGetTime *string, rng *rand.Rand) []time.Time {
	days := rng.Perm(calendarDays)[:snowdomePartCount]
	for i := range days {
		days[i]++ // 1-based day numbers
	}

	fixed := time.Duration(-1)
	if itemGetTime != nil {
		if t, err := time.Parse("15:04", *itemGetTime); err == nil {
			fixed = time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
		}
	}

	dates := make([]time.Time, 0, len(days))
	for _, day := range days {
		offset := fixed
		if offset < 0 {
			offset = time.Duration(rng.Int63n(int64(24 * time.Hour)))
		}
		dates = append(dates, startAt.Add(time.Duration(day-1)*24*time.Hour+offset))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
