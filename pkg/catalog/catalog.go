package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/strut/pkg/grid"
)

var (
	// ErrUnknownPartType is returned when a type id is not registered.
	ErrUnknownPartType = errors.New("unknown part type")
	// ErrInvalidDefinition is returned when a definition fails validation.
	ErrInvalidDefinition = errors.New("invalid part definition")
	// ErrDuplicateType is returned when a type id is registered twice.
	ErrDuplicateType = errors.New("duplicate part type")
	// ErrNotConnector is returned when a connector was required but the
	// type resolves to a support.
	ErrNotConnector = errors.New("part type is not a connector")
)

// UnknownPartTypeError names the type id that failed to resolve.
type UnknownPartTypeError struct {
	ID TypeID
}

func (e *UnknownPartTypeError) Error() string {
	return fmt.Sprintf("%s %q", ErrUnknownPartType, e.ID)
}

func (e *UnknownPartTypeError) Unwrap() error { return ErrUnknownPartType }

// Catalog maps type ids to definitions. Entries are append-only: once
// registered a definition is never edited or removed. It is safe for
// concurrent use so an importer can register while queries run.
type Catalog struct {
	mu    sync.RWMutex
	defs  map[TypeID]Definition
	order []TypeID
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{defs: make(map[TypeID]Definition)}
}

// Register validates and appends a definition.
func (c *Catalog) Register(def Definition) error {
	if err := Validate(def); err != nil {
		return err
	}
	if conn, ok := def.(Connector); ok {
		// Keep the caller's slice out of the catalog.
		conn.Arms = append([]grid.Direction(nil), conn.Arms...)
		def = conn
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.defs[def.TypeID()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateType, def.TypeID())
	}
	c.defs[def.TypeID()] = def
	c.order = append(c.order, def.TypeID())
	return nil
}

// MustRegister registers def or panics. Intended for built-in tables.
func (c *Catalog) MustRegister(def Definition) {
	if err := c.Register(def); err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
}

// Lookup returns the definition for id.
func (c *Catalog) Lookup(id TypeID) (Definition, error) {
	c.mu.RLock()
	def, ok := c.defs[id]
	c.mu.RUnlock()
	if !ok {
		return nil, &UnknownPartTypeError{ID: id}
	}
	return def, nil
}

// Connector looks up id and requires it to be a connector.
func (c *Catalog) Connector(id TypeID) (Connector, error) {
	def, err := c.Lookup(id)
	if err != nil {
		return Connector{}, err
	}
	conn, ok := def.(Connector)
	if !ok {
		return Connector{}, fmt.Errorf("%w: %q is a %s", ErrNotConnector, id, def.Kind())
	}
	return conn, nil
}

// Has reports whether id is registered.
func (c *Catalog) Has(id TypeID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.defs[id]
	return ok
}

// List returns all definitions in registration order.
func (c *Catalog) List() []Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.defs[id])
	}
	return out
}

// Len returns the number of registered definitions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Clone returns an independent catalog with the same entries. Definitions
// are immutable so they are shared.
func (c *Catalog) Clone() *Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := &Catalog{
		defs:  make(map[TypeID]Definition, len(c.defs)),
		order: append([]TypeID(nil), c.order...),
	}
	for id, def := range c.defs {
		out.defs[id] = def
	}
	return out
}
