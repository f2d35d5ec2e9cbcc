package assembly

import (
	"errors"
	"fmt"

	"github.com/chazu/strut/pkg/catalog"
	"github.com/chazu/strut/pkg/grid"
)

// StateVersion is the version written by Save and accepted by Load.
const StateVersion = 1

// ErrUnsupportedVersion is returned by Load for states it cannot read.
var ErrUnsupportedVersion = errors.New("unsupported assembly state version")

// State is a full dump of an assembly's instances.
type State struct {
	Version   int             `json:"version"`
	Instances []InstanceState `json:"instances"`
}

// InstanceState is the persisted form of one instance. Cells are not
// stored; they are derived again on load.
type InstanceState struct {
	ID          InstanceID     `json:"id"`
	Type        catalog.TypeID `json:"type"`
	Anchor      grid.Cell      `json:"anchor"`
	Rotation    grid.Rotation  `json:"rotation"`
	Orientation grid.Direction `json:"orientation"`
}

// Save dumps every instance, ordered by id.
func (a *Assembly) Save() State {
	insts := a.Instances()
	st := State{Version: StateVersion, Instances: make([]InstanceState, 0, len(insts))}
	for _, inst := range insts {
		st.Instances = append(st.Instances, InstanceState{
			ID:          inst.ID,
			Type:        inst.Type,
			Anchor:      inst.Anchor,
			Rotation:    inst.Rotation,
			Orientation: inst.Orientation,
		})
	}
	return st
}

// Load replaces the assembly's contents with st. The state is trusted to
// have been valid when saved, so no collision checks run; types must still
// resolve. On error the previous contents are kept.
func (a *Assembly) Load(st State) error {
	if st.Version != StateVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, st.Version)
	}
	fresh := New(a.cat)
	for i, is := range st.Instances {
		if is.ID == 0 {
			return fmt.Errorf("assembly: load: instance %d has zero id", i)
		}
		if _, dup := fresh.instances[is.ID]; dup {
			return fmt.Errorf("assembly: load: duplicate instance id %s", is.ID)
		}
		if !is.Rotation.Valid() {
			return fmt.Errorf("assembly: load: %s: %w: rotation %d", is.ID, ErrInvalidPlacement, uint8(is.Rotation))
		}
		def, err := a.cat.Lookup(is.Type)
		if err != nil {
			return fmt.Errorf("assembly: load: %s: %w", is.ID, err)
		}
		orientation := is.Orientation
		if def.Kind() == catalog.KindSupport && !orientation.Valid() {
			return fmt.Errorf("assembly: load: %s: %w: orientation %d", is.ID, ErrInvalidPlacement, int(orientation))
		}
		inst := newInstance(def, is.Anchor, is.Rotation, orientation)
		inst.ID = is.ID
		fresh.insert(inst)
		if is.ID >= fresh.nextID {
			fresh.nextID = is.ID + 1
		}
	}
	a.instances = fresh.instances
	a.index = fresh.index
	a.nextID = fresh.nextID
	return nil
}
