package assembly

import (
	"fmt"
	"sort"

	"github.com/chazu/strut/pkg/catalog"
	"github.com/chazu/strut/pkg/grid"
)

// Assembly owns placed instances and the cell -> instance index derived
// from them. It is not safe for concurrent use; callers that share one
// assembly must serialise access.
type Assembly struct {
	cat       *catalog.Catalog
	instances map[InstanceID]Instance
	index     map[grid.Cell][]InstanceID // sorted ids per cell
	nextID    InstanceID
}

// New creates an empty assembly resolving part types through cat.
func New(cat *catalog.Catalog) *Assembly {
	return &Assembly{
		cat:       cat,
		instances: make(map[InstanceID]Instance),
		index:     make(map[grid.Cell][]InstanceID),
		nextID:    1,
	}
}

// Catalog returns the catalog the assembly resolves types through.
func (a *Assembly) Catalog() *catalog.Catalog {
	return a.cat
}

// PlaceOption adjusts a placement.
type PlaceOption func(*placeConfig)

type placeConfig struct {
	orientation *grid.Direction
}

// WithOrientation supplies the axis direction for a support whose
// definition has FreeAxis set. It is ignored for every other part.
func WithOrientation(d grid.Direction) PlaceOption {
	return func(c *placeConfig) {
		c.orientation = &d
	}
}

// resolve builds the candidate instance for a placement without touching
// the assembly.
func (a *Assembly) resolve(typeID catalog.TypeID, anchor grid.Cell, rot grid.Rotation, opts []PlaceOption) (Instance, error) {
	if !rot.Valid() {
		return Instance{}, fmt.Errorf("%w: rotation %d out of range", ErrInvalidPlacement, uint8(rot))
	}
	def, err := a.cat.Lookup(typeID)
	if err != nil {
		return Instance{}, err
	}
	var cfg placeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var orientation grid.Direction
	if s, ok := def.(catalog.Support); ok {
		orientation = rot.Apply(s.Axis.Positive())
		if s.FreeAxis && cfg.orientation != nil {
			if !cfg.orientation.Valid() {
				return Instance{}, fmt.Errorf("%w: orientation %d", ErrInvalidPlacement, int(*cfg.orientation))
			}
			orientation = *cfg.orientation
		}
	}
	return newInstance(def, anchor, rot, orientation), nil
}

// conflict returns why two instances cannot share cell c, or "" when they
// legitimately may. Supports never share a cell with supports, connectors
// never share with connectors, and a connector may only sit on a support's
// end cell.
func conflict(placing, held Instance, c grid.Cell) string {
	switch {
	case placing.IsSupport() && held.IsSupport():
		return "support bodies overlap"
	case !placing.IsSupport() && !held.IsSupport():
		return "connector already anchored here"
	case !placing.IsSupport() && !held.IsEndpoint(c):
		return "connector inside support body"
	case placing.IsSupport() && !placing.IsEndpoint(c):
		return "support passes through connector"
	}
	return ""
}

func (a *Assembly) collide(inst Instance) error {
	for _, c := range inst.cells {
		for _, id := range a.index[c] {
			if reason := conflict(inst, a.instances[id], c); reason != "" {
				return &CollisionError{Type: inst.Type, Cell: c, With: id, Reason: reason}
			}
		}
	}
	return nil
}

// Check reports whether AddPart with the same arguments would succeed,
// without changing the assembly.
func (a *Assembly) Check(typeID catalog.TypeID, anchor grid.Cell, rot grid.Rotation, opts ...PlaceOption) error {
	inst, err := a.resolve(typeID, anchor, rot, opts)
	if err != nil {
		return err
	}
	return a.collide(inst)
}

// AddPart places a part and returns its new id. A *CollisionError is
// returned, and nothing changes, when any of its cells is already claimed
// in a way the occupancy rules forbid. Repeating a successful call fails
// because the cells are then taken.
func (a *Assembly) AddPart(typeID catalog.TypeID, anchor grid.Cell, rot grid.Rotation, opts ...PlaceOption) (InstanceID, error) {
	inst, err := a.resolve(typeID, anchor, rot, opts)
	if err != nil {
		return 0, err
	}
	if err := a.collide(inst); err != nil {
		return 0, err
	}
	inst.ID = a.nextID
	a.nextID++
	a.insert(inst)
	return inst.ID, nil
}

func (a *Assembly) insert(inst Instance) {
	a.instances[inst.ID] = inst
	for _, c := range inst.cells {
		ids := a.index[c]
		i := sort.Search(len(ids), func(i int) bool { return ids[i] >= inst.ID })
		ids = append(ids, 0)
		copy(ids[i+1:], ids[i:])
		ids[i] = inst.ID
		a.index[c] = ids
	}
}

// RemovePart deletes an instance and frees its cells.
func (a *Assembly) RemovePart(id InstanceID) error {
	inst, ok := a.instances[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(a.instances, id)
	for _, c := range inst.cells {
		ids := a.index[c]
		for i, held := range ids {
			if held == id {
				ids = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(ids) == 0 {
			delete(a.index, c)
		} else {
			a.index[c] = ids
		}
	}
	return nil
}

// Clear removes every instance.
func (a *Assembly) Clear() {
	a.instances = make(map[InstanceID]Instance)
	a.index = make(map[grid.Cell][]InstanceID)
	a.nextID = 1
}

// CellsAt returns the ids occupying c in ascending order.
func (a *Assembly) CellsAt(c grid.Cell) []InstanceID {
	ids := a.index[c]
	if len(ids) == 0 {
		return nil
	}
	return append([]InstanceID(nil), ids...)
}

// Occupied reports whether any instance holds c.
func (a *Assembly) Occupied(c grid.Cell) bool {
	return len(a.index[c]) > 0
}

// HasSupportAt reports whether a support occupies c.
func (a *Assembly) HasSupportAt(c grid.Cell) bool {
	for _, id := range a.index[c] {
		if a.instances[id].IsSupport() {
			return true
		}
	}
	return false
}

// Get returns the instance with the given id.
func (a *Assembly) Get(id InstanceID) (Instance, bool) {
	inst, ok := a.instances[id]
	return inst, ok
}

// Len returns the number of placed instances.
func (a *Assembly) Len() int {
	return len(a.instances)
}

// Instances returns every instance ordered by id.
func (a *Assembly) Instances() []Instance {
	out := make([]Instance, 0, len(a.instances))
	for _, inst := range a.instances {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OccupiedCells returns every claimed cell in (x, y, z) order.
func (a *Assembly) OccupiedCells() []grid.Cell {
	out := make([]grid.Cell, 0, len(a.index))
	for c := range a.index {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Counts returns how many instances of each type are placed. It backs the
// bill of materials.
func (a *Assembly) Counts() map[catalog.TypeID]int {
	out := make(map[catalog.TypeID]int)
	for _, inst := range a.instances {
		out[inst.Type]++
	}
	return out
}

// Verify recomputes the occupancy index from the instances and checks the
// overlap rules from scratch. It returns every problem found; an assembly
// built only through AddPart always verifies clean.
func (a *Assembly) Verify() []error {
	var errs []error

	want := make(map[grid.Cell][]InstanceID)
	for _, inst := range a.Instances() {
		for _, c := range inst.cells {
			want[c] = append(want[c], inst.ID)
		}
	}
	for c, ids := range want {
		got := a.index[c]
		if !equalIDs(got, ids) {
			errs = append(errs, fmt.Errorf("assembly: index at %s is %v, want %v", c, got, ids))
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				// ids is ascending, so treat the later instance as the one placed.
				if reason := conflict(a.instances[ids[j]], a.instances[ids[i]], c); reason != "" {
					errs = append(errs, &CollisionError{Type: a.instances[ids[j]].Type, Cell: c, With: ids[i], Reason: reason})
				}
			}
		}
	}
	for c := range a.index {
		if _, ok := want[c]; !ok {
			errs = append(errs, fmt.Errorf("assembly: index has stale cell %s", c))
		}
	}
	return errs
}

func equalIDs(a, b []InstanceID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
