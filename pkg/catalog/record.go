package catalog

import (
	"fmt"

	"github.com/chazu/strut/pkg/grid"
)

// Record is the flat, serialisable form of a Definition. Fields that do
// not apply to the kind are left zero.
type Record struct {
	Kind     Kind             `json:"kind"`
	ID       TypeID           `json:"id"`
	Name     string           `json:"name,omitempty"`
	Axis     grid.Axis        `json:"axis,omitempty"`
	Length   int              `json:"length,omitempty"`
	FreeAxis bool             `json:"free_axis,omitempty"`
	Arms     []grid.Direction `json:"arms,omitempty"`
}

// ToRecord flattens def.
func ToRecord(def Definition) Record {
	switch d := def.(type) {
	case Support:
		return Record{Kind: KindSupport, ID: d.ID, Name: d.Name, Axis: d.Axis, Length: d.Length, FreeAxis: d.FreeAxis}
	case Connector:
		return Record{Kind: KindConnector, ID: d.ID, Name: d.Name, Arms: append([]grid.Direction(nil), d.Arms...)}
	}
	return Record{}
}

// Definition rebuilds and validates the definition.
func (r Record) Definition() (Definition, error) {
	var def Definition
	switch r.Kind {
	case KindSupport:
		def = Support{ID: r.ID, Name: r.Name, Axis: r.Axis, Length: r.Length, FreeAxis: r.FreeAxis}
	case KindConnector:
		def = Connector{ID: r.ID, Name: r.Name, Arms: append([]grid.Direction(nil), r.Arms...)}
	default:
		return nil, fmt.Errorf("%w: record %q has kind %d", ErrInvalidDefinition, r.ID, int(r.Kind))
	}
	if err := Validate(def); err != nil {
		return nil, err
	}
	return def, nil
}
