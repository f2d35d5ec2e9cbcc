package assembly

import (
	"errors"
	"fmt"

	"github.com/chazu/strut/pkg/catalog"
	"github.com/chazu/strut/pkg/grid"
)

var (
	// ErrCollision is matched by every *CollisionError.
	ErrCollision = errors.New("placement collides with existing part")
	// ErrNotFound is returned when removing an instance that does not exist.
	ErrNotFound = errors.New("instance not found")
	// ErrInvalidPlacement is returned for malformed placement arguments.
	ErrInvalidPlacement = errors.New("invalid placement")
)

// CollisionError describes the first conflicting cell of a rejected
// placement.
type CollisionError struct {
	Type   catalog.TypeID // part being placed
	Cell   grid.Cell      // contested cell
	With   InstanceID     // instance already holding the cell
	Reason string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: %s at %s conflicts with %s: %s", ErrCollision, e.Type, e.Cell, e.With, e.Reason)
}

func (e *CollisionError) Unwrap() error { return ErrCollision }
