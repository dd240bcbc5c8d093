package acquisition

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrWritePending rejects a second submission while a persistence write is
// still in flight (e.g. a double-clicked confirm button).
var ErrWritePending = errors.New("acquisition: write already in flight")

// PartialWriteError reports a bundle write where some parts landed and
// others did not. The parts in Failed keep their previous state; the caller
// has to surface this distinctly from a total failure because the room is
// now showing a split bundle.
type PartialWriteError struct {
	Succeeded []uuid.UUID
	Failed    map[uuid.UUID]error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("acquisition: bundle write partially failed: %d ok, %d failed",
		len(e.Succeeded), len(e.Failed))
}
