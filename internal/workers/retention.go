package workers

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdventSphere/advent-sphere/internal/bucket"
)

// retentionAge is how long a room lives after its calendar starts.
const retentionAge = 90 * 24 * time.Hour

// RetentionWorker periodically deletes rooms whose calendars started more
// than retentionAge ago, together with their calendar items and any
// uploaded photo-frame images.
type RetentionWorker struct {
	db       *pgxpool.Pool
	bucket   *bucket.Client
	interval time.Duration
	stop     chan struct{}
}

func NewRetentionWorker(db *pgxpool.Pool, bkt *bucket.Client) *RetentionWorker {
	return &RetentionWorker{
		db:       db,
		bucket:   bkt,
		interval: time.Hour,
		stop:     make(chan struct{}),
	}
}

func (w *RetentionWorker) Start() {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := w.Sweep(context.Background()); err != nil {
					log.Printf("Retention sweep failed: %v", err)
				}
			case <-w.stop:
				return
			}
		}
	}()
}

func (w *RetentionWorker) Stop() {
	close(w.stop)
}

// Sweep removes every expired room. Bucket objects are deleted after the
// database rows so a failed sweep can be retried without leaving rooms
// pointing at missing images.
func (w *RetentionWorker) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-retentionAge)

	rows, err := w.db.Query(ctx, `SELECT id FROM rooms WHERE start_at < $1`, cutoff)
	if err != nil {
		return err
	}
	defer rows.Close()

	var roomIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return err
		}
		roomIDs = append(roomIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, roomID := range roomIDs {
		if err := w.deleteRoom(ctx, roomID); err != nil {
			log.Printf("Failed to delete expired room %s: %v", roomID, err)
		}
	}

	if len(roomIDs) > 0 {
		log.Printf("Retention sweep deleted %d room(s)", len(roomIDs))
	}
	return nil
}

func (w *RetentionWorker) deleteRoom(ctx context.Context, roomID uuid.UUID) error {
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	imageRows, err := tx.Query(ctx,
		`SELECT image_id FROM calendar_items WHERE room_id = $1 AND image_id IS NOT NULL`, roomID)
	if err != nil {
		return err
	}
	var imageIDs []uuid.UUID
	for imageRows.Next() {
		var id uuid.UUID
		if err := imageRows.Scan(&id); err != nil {
			imageRows.Close()
			return err
		}
		imageIDs = append(imageIDs, id)
	}
	imageRows.Close()
	if err := imageRows.Err(); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM calendar_items WHERE room_id = $1`, roomID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, roomID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if w.bucket != nil {
		for _, imageID := range imageIDs {
			if err := w.bucket.Delete(ctx, bucket.UserImageKey(imageID)); err != nil {
				log.Printf("Failed to delete image %s for room %s: %v", imageID, roomID, err)
			}
		}
	}
	return nil
}
