// Package assembly is the occupancy model: the set of placed part instances
// and the cell index derived from them. It enforces the no-overlap rules on
// every placement.
package assembly

import (
	"fmt"

	"github.com/chazu/strut/pkg/catalog"
	"github.com/chazu/strut/pkg/grid"
)

// InstanceID identifies a placed part within one assembly.
type InstanceID uint64

func (id InstanceID) String() string {
	return fmt.Sprintf("#%d", uint64(id))
}

// Instance is a placed occurrence of a catalog definition.
//
// For supports, Orientation is the resolved direction the body runs in from
// Anchor and Length is the number of cells. Connectors have Length 1 and
// report their rotated +z as Orientation.
type Instance struct {
	ID          InstanceID     `json:"id"`
	Type        catalog.TypeID `json:"type"`
	Kind        catalog.Kind   `json:"kind"`
	Anchor      grid.Cell      `json:"anchor"`
	Rotation    grid.Rotation  `json:"rotation"`
	Orientation grid.Direction `json:"orientation"`
	Length      int            `json:"length"`

	cells []grid.Cell       // derived from Anchor, Orientation, Length
	arms  grid.DirectionSet // connector arms after rotation
}

// newInstance resolves a definition into an instance with its derived
// cell set. orientation is only consulted for supports.
func newInstance(def catalog.Definition, anchor grid.Cell, rot grid.Rotation, orientation grid.Direction) Instance {
	inst := Instance{
		Type:     def.TypeID(),
		Kind:     def.Kind(),
		Anchor:   anchor,
		Rotation: rot,
	}
	switch d := def.(type) {
	case catalog.Support:
		inst.Orientation = orientation
		inst.Length = d.Length
		inst.cells = make([]grid.Cell, d.Length)
		for i := 0; i < d.Length; i++ {
			inst.cells[i] = anchor.Step(orientation, i)
		}
	case catalog.Connector:
		inst.Orientation = rot.Apply(grid.PosZ)
		inst.Length = 1
		inst.cells = []grid.Cell{anchor}
		inst.arms = rot.ApplySet(d.ArmSet())
	}
	return inst
}

// Cells returns the cells the instance occupies, starting at the anchor.
func (in Instance) Cells() []grid.Cell {
	return append([]grid.Cell(nil), in.cells...)
}

// IsSupport reports whether the instance is a support.
func (in Instance) IsSupport() bool {
	return in.Kind == catalog.KindSupport
}

// Far returns the last cell of a support (the anchor for length 1 and for
// connectors).
func (in Instance) Far() grid.Cell {
	if len(in.cells) == 0 {
		return in.Anchor
	}
	return in.cells[len(in.cells)-1]
}

// IsEndpoint reports whether c is one of the support's two end cells.
func (in Instance) IsEndpoint(c grid.Cell) bool {
	return c == in.Anchor || c == in.Far()
}

// Arms returns a connector's arm directions in the assembly frame.
func (in Instance) Arms() []grid.Direction {
	return in.arms.Slice()
}

// HasArm reports whether a connector presents an arm in direction d.
func (in Instance) HasArm(d grid.Direction) bool {
	return in.arms.Has(d)
}
