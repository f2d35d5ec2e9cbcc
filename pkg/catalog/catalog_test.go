package catalog

import (
	"errors"
	"sync"
	"testing"

	"github.com/chazu/strut/pkg/grid"
)

func TestLookupUnknown(t *testing.T) {
	c := New()
	_, err := c.Lookup("nope")
	if !errors.Is(err, ErrUnknownPartType) {
		t.Fatalf("Lookup error = %v, want ErrUnknownPartType", err)
	}
	var ute *UnknownPartTypeError
	if !errors.As(err, &ute) || ute.ID != "nope" {
		t.Errorf("error should carry the id, got %v", err)
	}
}

func TestRegisterAndLookup(t *testing.T) {
	c := New()
	s := Support{ID: "beam", Axis: grid.AxisZ, Length: 4}
	if err := c.Register(s); err != nil {
		t.Fatalf("Register: %v", err)
	}
	def, err := c.Lookup("beam")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	got, ok := def.(Support)
	if !ok {
		t.Fatalf("Lookup returned %T, want Support", def)
	}
	if got.Length != 4 || got.Axis != grid.AxisZ {
		t.Errorf("got %+v", got)
	}
	if def.Kind() != KindSupport {
		t.Errorf("Kind = %v", def.Kind())
	}

	if err := c.Register(Support{ID: "beam", Axis: grid.AxisX, Length: 1}); !errors.Is(err, ErrDuplicateType) {
		t.Errorf("duplicate register error = %v, want ErrDuplicateType", err)
	}
	// The original entry is untouched.
	def, _ = c.Lookup("beam")
	if def.(Support).Length != 4 {
		t.Error("duplicate register replaced the entry")
	}
}

func TestRegisterCopiesArms(t *testing.T) {
	c := New()
	arms := []grid.Direction{grid.PosX, grid.PosY}
	c.MustRegister(Connector{ID: "l", Arms: arms})
	arms[0] = grid.NegZ

	conn, err := c.Connector("l")
	if err != nil {
		t.Fatalf("Connector: %v", err)
	}
	if conn.Arms[0] != grid.PosX {
		t.Errorf("catalog entry changed through caller slice: %v", conn.Arms)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		ok   bool
	}{
		{"support ok", Support{ID: "a", Axis: grid.AxisY, Length: 1}, true},
		{"empty id", Support{Axis: grid.AxisY, Length: 1}, false},
		{"zero length", Support{ID: "a", Axis: grid.AxisY, Length: 0}, false},
		{"bad axis", Support{ID: "a", Axis: grid.Axis(7), Length: 2}, false},
		{"connector ok", Connector{ID: "c", Arms: []grid.Direction{grid.PosZ}}, true},
		{"no arms", Connector{ID: "c"}, false},
		{"duplicate arm", Connector{ID: "c", Arms: []grid.Direction{grid.PosZ, grid.PosZ}}, false},
		{"seven arms", Connector{ID: "c", Arms: append(grid.Directions(), grid.PosX)}, false},
		{"six arms", Connector{ID: "c", Arms: grid.Directions()}, true},
		{"invalid arm", Connector{ID: "c", Arms: []grid.Direction{grid.Direction(9)}}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.def)
			if (err == nil) != tt.ok {
				t.Fatalf("Validate = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, ErrInvalidDefinition) {
				t.Errorf("error %v should wrap ErrInvalidDefinition", err)
			}
		})
	}
}

func TestConnectorRejectsSupport(t *testing.T) {
	c := Builtin()
	if _, err := c.Connector(SupportID(2)); !errors.Is(err, ErrNotConnector) {
		t.Errorf("Connector(support) error = %v, want ErrNotConnector", err)
	}
}

func TestBuiltin(t *testing.T) {
	c := Builtin()
	if c.Len() != MaxBuiltinSupport+1+8 {
		t.Errorf("builtin count = %d", c.Len())
	}
	for _, def := range c.List() {
		if err := Validate(def); err != nil {
			t.Errorf("builtin %q invalid: %v", def.TypeID(), err)
		}
	}
	hub, err := c.Connector(Connector6)
	if err != nil {
		t.Fatal(err)
	}
	if hub.ArmSet().Len() != 6 {
		t.Errorf("hub has %d arms", hub.ArmSet().Len())
	}
	list := c.List()
	if list[0].TypeID() != SupportID(1) {
		t.Errorf("List not in registration order: first is %q", list[0].TypeID())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	base := Builtin()
	clone := base.Clone()
	clone.MustRegister(Support{ID: "extra", Axis: grid.AxisX, Length: 2})
	if base.Has("extra") {
		t.Error("registering on a clone leaked into the base catalog")
	}
	if !clone.Has(Connector6) {
		t.Error("clone lost builtin entries")
	}
}

func TestConcurrentRegisterAndLookup(t *testing.T) {
	c := Builtin()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := TypeID("imported-" + string(rune('a'+i)))
			if err := c.Register(Support{ID: id, Axis: grid.AxisX, Length: i + 1}); err != nil {
				t.Errorf("Register: %v", err)
			}
			if _, err := c.Lookup(Connector2Elbow); err != nil {
				t.Errorf("Lookup: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if c.Len() != MaxBuiltinSupport+1+8+8 {
		t.Errorf("Len = %d after concurrent registers", c.Len())
	}
}
