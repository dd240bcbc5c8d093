package acquisition

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AdventSphere/advent-sphere/internal/calendaritem"
	"github.com/AdventSphere/advent-sphere/internal/room"
)

// Phase is the acquisition flow state for one room session.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseGetModal          Phase = "get_modal"
	PhasePlacement         Phase = "placement"
	PhaseSnowdomePlacement Phase = "snowdome_placement"
	PhaseCompleted         Phase = "completed"
)

// Store is the persistence collaborator the flow writes through. Updates
// must support clearing fields to explicit null (returning an item to the
// inventory). Invalidate tells dependent room/inventory/placed views to
// refetch; the flow signals the need but does not own any cache.
type Store interface {
	UpdateCalendarItem(ctx context.Context, roomID, id uuid.UUID, patch calendaritem.Patch) error
	Invalidate(ctx context.Context, roomID uuid.UUID) error
}

// Flow drives a drawer from "closed" through reveal and placement to
// "committed". It holds session-local state only; nothing here locks the
// room against other participants. A failed write leaves the phase exactly
// where it was so the caller can retry.
type Flow struct {
	store  Store
	roomID uuid.UUID

	phase   Phase
	target  *calendaritem.WithItem
	day     int // 0 when the flow was entered from the inventory
	pending bool
}

func NewFlow(store Store, roomID uuid.UUID) *Flow {
	return &Flow{store: store, roomID: roomID, phase: PhaseIdle}
}

func (f *Flow) Phase() Phase                   { return f.phase }
func (f *Flow) Target() *calendaritem.WithItem { return f.target }
func (f *Flow) Day() int                       { return f.day }
func (f *Flow) Pending() bool                  { return f.pending }

// Reset returns the flow to idle. Also used when a dialog is dismissed
// without confirming: the drawer just closes again.
func (f *Flow) Reset() {
	f.phase = PhaseIdle
	f.target = nil
	f.day = 0
}

// ClickDay handles a drawer click. A click that fails the openability
// predicate is ignored without any state change.
func (f *Flow) ClickDay(r *room.Room, items []calendaritem.WithItem, day int, now time.Time) {
	if f.phase != PhaseIdle {
		return
	}
	if !CanOpenDay(r, items, day, now) {
		return
	}
	item := ItemForDay(r, items, day)
	if item == nil {
		return
	}
	f.target = item
	f.day = day
	f.phase = PhaseGetModal
}

// Next routes out of the reveal modal. Non-final snowdome parts are sent
// straight to the inventory with no placement step; the final part enters
// the bundled placement mode; everything else gets the normal placement
// mode. Nothing is persisted yet except the auto-inventory snowdome case.
func (f *Flow) Next(ctx context.Context, r *room.Room) error {
	if f.phase != PhaseGetModal {
		return nil
	}
	if f.target == nil || r == nil {
		f.phase = PhasePlacement
		return nil
	}
	if IsSnowdome(f.target) {
		if IsSnowdomeFinalDay(r, f.target.OpenDate) {
			f.phase = PhaseSnowdomePlacement
			return nil
		}
		if err := f.writeOne(ctx, f.target.ID, skipPatch()); err != nil {
			return err
		}
		f.complete(ctx)
		return nil
	}
	f.phase = PhasePlacement
	return nil
}

// ConfirmPlacement commits the target at the dropped position.
func (f *Flow) ConfirmPlacement(ctx context.Context, position, rotation []float64) error {
	if f.phase != PhasePlacement || f.target == nil {
		return nil
	}
	if err := f.writeOne(ctx, f.target.ID, placePatch(position, rotation)); err != nil {
		return err
	}
	f.complete(ctx)
	return nil
}

// SkipPlacement defers placement: the item is marked opened and kept in
// the inventory. Safe to call on an already-skipped item.
func (f *Flow) SkipPlacement(ctx context.Context) error {
	if (f.phase != PhasePlacement && f.phase != PhaseSnowdomePlacement) || f.target == nil {
		return nil
	}
	if err := f.writeOne(ctx, f.target.ID, skipPatch()); err != nil {
		return err
	}
	f.complete(ctx)
	return nil
}

// ConfirmSnowdomePlacement commits every part of the resolved bundle at
// the same position and rotation. The writes fan out per record; a partial
// failure is reported as *PartialWriteError and the phase does not advance.
func (f *Flow) ConfirmSnowdomePlacement(ctx context.Context, items []calendaritem.WithItem, position, rotation []float64) error {
	if f.phase != PhaseSnowdomePlacement {
		return nil
	}
	parts := ResolveBundle(items, f.target)
	if len(parts) == 0 {
		return nil
	}
	if err := f.writeBundle(ctx, parts, placePatch(position, rotation)); err != nil {
		return err
	}
	f.complete(ctx)
	return nil
}

// StartFromInventory enters a placement mode directly, bypassing the
// reveal modal. For a placed snowdome the target is rebased onto the first
// part of its position bundle so a later confirm moves the whole bundle.
func (f *Flow) StartFromInventory(items []calendaritem.WithItem, target calendaritem.WithItem) {
	t := target
	if IsSnowdome(&t) {
		if t.Placed() {
			if parts := PlacedSnowdomePartsAt(items, t.Position); len(parts) > 0 {
				t = parts[0]
			}
		}
		f.target = &t
		f.day = 0
		f.phase = PhaseSnowdomePlacement
		return
	}
	f.target = &t
	f.day = 0
	f.phase = PhasePlacement
}

// ReturnToInventory clears position and rotation without touching the
// opened flag. A placed snowdome pulls its whole position bundle back in
// one go. Callable from any phase; it is an inventory operation, not a
// flow transition.
func (f *Flow) ReturnToInventory(ctx context.Context, items []calendaritem.WithItem, target calendaritem.WithItem) error {
	if f.pending {
		return ErrWritePending
	}
	patch := unplacePatch()
	if IsSnowdome(&target) && target.Placed() {
		parts := PlacedSnowdomePartsAt(items, target.Position)
		if len(parts) == 0 {
			parts = []calendaritem.WithItem{target}
		}
		return f.writeBundle(ctx, parts, patch)
	}
	return f.writeOne(ctx, target.ID, patch)
}

// complete always advances; invalidation is a refetch hint, not a
// precondition, so a failure to signal it must not strand the flow.
func (f *Flow) complete(ctx context.Context) {
	if err := f.store.Invalidate(ctx, f.roomID); err != nil {
		log.Printf("Acquisition: failed to invalidate item views for room %s: %v", f.roomID, err)
	}
	f.phase = PhaseCompleted
}

func (f *Flow) writeOne(ctx context.Context, id uuid.UUID, patch calendaritem.Patch) error {
	if f.pending {
		return ErrWritePending
	}
	f.pending = true
	defer func() { f.pending = false }()
	return f.store.UpdateCalendarItem(ctx, f.roomID, id, patch)
}

func (f *Flow) writeBundle(ctx context.Context, parts []calendaritem.WithItem, patch calendaritem.Patch) error {
	if f.pending {
		return ErrWritePending
	}
	f.pending = true
	defer func() { f.pending = false }()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded []uuid.UUID
		failed    = make(map[uuid.UUID]error)
	)
	for _, part := range parts {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			err := f.store.UpdateCalendarItem(ctx, f.roomID, id, patch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[id] = err
			} else {
				succeeded = append(succeeded, id)
			}
		}(part.ID)
	}
	wg.Wait()

	if len(failed) == 0 {
		return nil
	}
	if len(succeeded) == 0 {
		for _, err := range failed {
			return err
		}
	}
	return &PartialWriteError{Succeeded: succeeded, Failed: failed}
}

// placePatch opens the item and positions it in one write, so no reader
// can ever observe position set on an unopened record.
func placePatch(position, rotation []float64) calendaritem.Patch {
	return calendaritem.Patch{
		IsOpened: calendaritem.Some(true),
		Position: calendaritem.Some(position),
		Rotation: calendaritem.Some(rotation),
	}
}

func skipPatch() calendaritem.Patch {
	return calendaritem.Patch{
		IsOpened: calendaritem.Some(true),
		Position: calendaritem.Null[[]float64](),
		Rotation: calendaritem.Null[[]float64](),
	}
}

func unplacePatch() calendaritem.Patch {
	return calendaritem.Patch{
		Position: calendaritem.Null[[]float64](),
		Rotation: calendaritem.Null[[]float64](),
	}
}
