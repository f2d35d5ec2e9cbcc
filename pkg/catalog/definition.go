// Package catalog holds the immutable part definitions that instances are
// placed from: linear supports and multi-armed connectors.
package catalog

import (
	"fmt"

	"github.com/chazu/strut/pkg/grid"
)

// TypeID identifies a part definition.
type TypeID string

// Kind distinguishes the two definition variants.
type Kind int

const (
	KindSupport   Kind = iota // contiguous run of cells along one axis
	KindConnector             // single cell with one or more arms
)

func (k Kind) String() string {
	switch k {
	case KindSupport:
		return "support"
	case KindConnector:
		return "connector"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindSupport, KindConnector:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("catalog: invalid kind %d", int(k))
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "support":
		*k = KindSupport
	case "connector":
		*k = KindConnector
	default:
		return fmt.Errorf("catalog: invalid kind %q", string(b))
	}
	return nil
}

// Definition is a catalog entry. The only implementations are Support and
// Connector; consumers switch on the concrete type.
type Definition interface {
	TypeID() TypeID
	Kind() Kind
	definition() // marker method restricting implementations to this package
}

// Support spans Length cells along Axis in its canonical frame.
type Support struct {
	ID     TypeID    `json:"id"`
	Name   string    `json:"name,omitempty"`
	Axis   grid.Axis `json:"axis"`
	Length int       `json:"length"`
	// FreeAxis supports take their direction from an explicit orientation
	// at placement time instead of from the rotation.
	FreeAxis bool `json:"free_axis,omitempty"`
}

func (s Support) TypeID() TypeID { return s.ID }
func (Support) Kind() Kind        { return KindSupport }
func (Support) definition()       {}

// Connector occupies one anchor cell and mates along its arms.
type Connector struct {
	ID   TypeID           `json:"id"`
	Name string           `json:"name,omitempty"`
	Arms []grid.Direction `json:"arms"`
}

func (c Connector) TypeID() TypeID { return c.ID }
func (Connector) Kind() Kind        { return KindConnector }
func (Connector) definition()       {}

// ArmSet returns the arms as a direction set.
func (c Connector) ArmSet() grid.DirectionSet {
	return grid.SetOf(c.Arms...)
}

// Validate checks a definition's structural constraints.
func Validate(def Definition) error {
	if def == nil {
		return fmt.Errorf("%w: nil definition", ErrInvalidDefinition)
	}
	if def.TypeID() == "" {
		return fmt.Errorf("%w: empty type id", ErrInvalidDefinition)
	}
	switch d := def.(type) {
	case Support:
		if !d.Axis.Valid() {
			return fmt.Errorf("%w: support %q: invalid axis %d", ErrInvalidDefinition, d.ID, int(d.Axis))
		}
		if d.Length < 1 {
			return fmt.Errorf("%w: support %q: length is %d, must be at least 1", ErrInvalidDefinition, d.ID, d.Length)
		}
	case Connector:
		if len(d.Arms) < 1 || len(d.Arms) > grid.NumDirections {
			return fmt.Errorf("%w: connector %q: has %d arms, want 1 to 6", ErrInvalidDefinition, d.ID, len(d.Arms))
		}
		var seen grid.DirectionSet
		for _, a := range d.Arms {
			if !a.Valid() {
				return fmt.Errorf("%w: connector %q: invalid arm %d", ErrInvalidDefinition, d.ID, int(a))
			}
			if seen.Has(a) {
				return fmt.Errorf("%w: connector %q: duplicate arm %s", ErrInvalidDefinition, d.ID, a)
			}
			seen = seen.Add(a)
		}
	default:
		return fmt.Errorf("%w: unsupported definition type %T", ErrInvalidDefinition, def)
	}
	return nil
}
