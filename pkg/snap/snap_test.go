package snap

import (
	"errors"
	"reflect"
	"testing"

	"github.com/chazu/strut/pkg/assembly"
	"github.com/chazu/strut/pkg/catalog"
	"github.com/chazu/strut/pkg/grid"
)

var (
	rotX1 = grid.FromTurns(grid.Turns{X: 1})
	rotZ1 = grid.FromTurns(grid.Turns{Z: 1})
	rotZ3 = grid.FromTurns(grid.Turns{Z: 3})
)

func place(t *testing.T, a *assembly.Assembly, typeID catalog.TypeID, at grid.Cell, rot grid.Rotation, opts ...assembly.PlaceOption) assembly.InstanceID {
	t.Helper()
	id, err := a.AddPart(typeID, at, rot, opts...)
	if err != nil {
		t.Fatalf("AddPart(%s, %v): %v", typeID, at, err)
	}
	return id
}

// cornerFixture is a 3-cell support up the y axis from the origin and a
// 3-cell support along x starting at (1,3,0). Both end next to (0,3,0).
func cornerFixture(t *testing.T) *assembly.Assembly {
	t.Helper()
	a := assembly.New(catalog.Builtin())
	place(t, a, catalog.SupportID(3), grid.Cell{}, grid.Identity)
	place(t, a, catalog.SupportID(3), grid.Cell{X: 1, Y: 3}, rotZ3)
	return a
}

// hubFixture surrounds hub with six rods, two per axis, each ending in the
// cell next to it.
func hubFixture(t *testing.T, hub grid.Cell) *assembly.Assembly {
	t.Helper()
	a := assembly.New(catalog.Builtin())
	for _, d := range grid.Directions() {
		// A rod pointing away from the hub, anchored next to it.
		place(t, a, catalog.Rod2, hub.Neighbor(d), grid.Identity, assembly.WithOrientation(d))
	}
	return a
}

func TestCornerScenario(t *testing.T) {
	a := cornerFixture(t)

	got, ok, err := FindBestConnectorSnap(a, catalog.Connector2Elbow, grid.Cell{Y: 3}, 2)
	if err != nil {
		t.Fatalf("FindBestConnectorSnap: %v", err)
	}
	if !ok {
		t.Fatal("expected a candidate at the corner")
	}
	if got.Cell != (grid.Cell{Y: 3}) {
		t.Errorf("cell = %v, want (0,3,0)", got.Cell)
	}
	if want := []grid.Direction{grid.PosX, grid.NegY}; !reflect.DeepEqual(got.Needed, want) {
		t.Errorf("needed = %v, want %v", got.Needed, want)
	}
	if got.Rotation != rotX1 {
		t.Errorf("rotation = %v, want %v", got.Rotation, rotX1)
	}
	if got.Rotation.Apply(grid.PosZ) != grid.NegY || got.Rotation.Apply(grid.PosX) != grid.PosX {
		t.Errorf("rotation %v does not map +z to -y with +x fixed", got.Rotation)
	}
	if got.Rotation.Cost() != 1 {
		t.Errorf("cost = %d, want 1", got.Rotation.Cost())
	}
	if got.Coverage != 2 {
		t.Errorf("coverage = %d, want 2", got.Coverage)
	}
	if len(got.Sockets) != 2 {
		t.Errorf("sockets = %v, want two support ends", got.Sockets)
	}

	id, err := got.Place(a)
	if err != nil {
		t.Fatalf("placing best candidate: %v", err)
	}
	inst, _ := a.Get(id)
	if !inst.HasArm(grid.NegY) || !inst.HasArm(grid.PosX) {
		t.Errorf("placed arms = %v", inst.Arms())
	}
}

func TestHubScenario(t *testing.T) {
	hub := grid.Cell{X: 10, Y: 10, Z: 10}
	a := hubFixture(t, hub)

	got, ok, err := FindBestConnectorSnap(a, catalog.Connector6, hub, 1)
	if err != nil || !ok {
		t.Fatalf("FindBestConnectorSnap = %v, %v", ok, err)
	}
	if got.Cell != hub {
		t.Errorf("cell = %v, want %v", got.Cell, hub)
	}
	if len(got.Needed) != 6 {
		t.Errorf("needed = %v, want all six", got.Needed)
	}
	if got.Rotation != grid.Identity {
		t.Errorf("rotation = %v, want identity", got.Rotation)
	}

	// Five arms cover five of the six directions.
	got, ok, err = FindBestConnectorSnap(a, catalog.Connector5, hub, 0)
	if err != nil || !ok {
		t.Fatalf("FindBestConnectorSnap(connector-5) = %v, %v", ok, err)
	}
	if got.Coverage != 5 {
		t.Errorf("connector-5 coverage = %d, want 5", got.Coverage)
	}
}

func TestNothingInRange(t *testing.T) {
	empty := assembly.New(catalog.Builtin())
	far := cornerFixture(t)
	for _, def := range catalog.Builtin().List() {
		if def.Kind() != catalog.KindConnector {
			continue
		}
		for name, a := range map[string]*assembly.Assembly{"empty": empty, "far": far} {
			_, ok, err := FindBestConnectorSnap(a, def.TypeID(), grid.Cell{X: 50, Y: 50, Z: 50}, 3)
			if err != nil {
				t.Fatalf("%s/%s: %v", name, def.TypeID(), err)
			}
			if ok {
				t.Errorf("%s/%s: got a candidate, want none", name, def.TypeID())
			}
		}
	}
}

func TestFindBestConnectorSnapRejectsSupport(t *testing.T) {
	a := cornerFixture(t)
	_, _, err := FindBestConnectorSnap(a, catalog.SupportID(2), grid.Cell{}, 3)
	if !errors.Is(err, catalog.ErrNotConnector) {
		t.Errorf("error = %v, want ErrNotConnector", err)
	}
	_, err = FindSnapPoints(a, "nope", grid.Cell{}, 3)
	if !errors.Is(err, catalog.ErrUnknownPartType) {
		t.Errorf("error = %v, want ErrUnknownPartType", err)
	}
}

func TestNegativeRadius(t *testing.T) {
	a := cornerFixture(t)
	got, err := FindSnapPoints(a, catalog.Connector6, grid.Cell{Y: 3}, -1)
	if err != nil || len(got) != 0 {
		t.Errorf("FindSnapPoints(radius -1) = %v, %v", got, err)
	}
}

func TestSupportSnapFromSupportEnd(t *testing.T) {
	a := assembly.New(catalog.Builtin())
	place(t, a, catalog.SupportID(3), grid.Cell{}, grid.Identity)

	tests := []struct {
		typeID catalog.TypeID
		rot    grid.Rotation
	}{
		{catalog.SupportID(2), grid.Identity},
		{catalog.Rod2, rotZ1}, // canonical +x turned to +y
	}
	for _, tt := range tests {
		t.Run(string(tt.typeID), func(t *testing.T) {
			got, ok, err := FindBestSnap(a, tt.typeID, grid.Cell{Y: 3}, 1)
			if err != nil || !ok {
				t.Fatalf("FindBestSnap = %v, %v", ok, err)
			}
			if got.Cell != (grid.Cell{Y: 3}) || got.Orientation != grid.PosY {
				t.Errorf("candidate at %v running %s, want (0,3,0) running +y", got.Cell, got.Orientation)
			}
			if got.Rotation != tt.rot {
				t.Errorf("rotation = %v, want %v", got.Rotation, tt.rot)
			}
			if err := a.Check(got.Type, got.Cell, got.Rotation, got.Options()...); err != nil {
				t.Errorf("candidate does not place: %v", err)
			}
		})
	}
}

func TestSupportSnapFromConnectorArm(t *testing.T) {
	a := assembly.New(catalog.Builtin())
	place(t, a, catalog.Connector1, grid.Cell{}, grid.Identity)

	got, ok, err := FindBestSnap(a, catalog.SupportID(2), grid.Cell{}, 1)
	if err != nil || !ok {
		t.Fatalf("FindBestSnap = %v, %v", ok, err)
	}
	if got.Cell != (grid.Cell{Z: 1}) || got.Orientation != grid.PosZ {
		t.Errorf("candidate at %v running %s, want (0,0,1) running +z", got.Cell, got.Orientation)
	}
	if got.Rotation != rotX1 {
		t.Errorf("rotation = %v, want %v", got.Rotation, rotX1)
	}
	if len(got.Sockets) != 1 || got.Sockets[0].Kind != ConnectorArm {
		t.Errorf("sockets = %v, want one arm", got.Sockets)
	}
}

func TestOccupiedSocketsAreSkipped(t *testing.T) {
	a := assembly.New(catalog.Builtin())
	place(t, a, catalog.SupportID(3), grid.Cell{}, grid.Identity)
	place(t, a, catalog.Connector6, grid.Cell{Y: 3}, grid.Identity)

	cands, err := FindSnapPoints(a, catalog.SupportID(2), grid.Cell{Y: 3}, 1)
	if err != nil {
		t.Fatal(err)
	}
	var cells []grid.Cell
	for _, c := range cands {
		cells = append(cells, c.Cell)
	}
	want := []grid.Cell{
		{X: -1, Y: 3}, {Y: 3, Z: -1}, {Y: 3, Z: 1}, {Y: 4}, {X: 1, Y: 3},
	}
	if !reflect.DeepEqual(cells, want) {
		t.Errorf("candidate cells = %v, want %v", cells, want)
	}
}

func TestSnapPointsSortedAndPlaceable(t *testing.T) {
	a := hubFixture(t, grid.Cell{})
	place(t, a, catalog.SupportID(4), grid.Cell{X: 4}, grid.Identity)
	place(t, a, catalog.SupportID(2), grid.Cell{X: -4, Y: 1}, rotX1)

	for _, typeID := range []catalog.TypeID{catalog.Connector3Corner, catalog.SupportID(2), catalog.Rod2} {
		origin := grid.Cell{X: 1, Y: 1, Z: 1}
		cands, err := FindSnapPoints(a, typeID, origin, 6)
		if err != nil {
			t.Fatalf("%s: %v", typeID, err)
		}
		if len(cands) == 0 {
			t.Fatalf("%s: no candidates", typeID)
		}
		for i := 1; i < len(cands); i++ {
			prev, cur := cands[i-1], cands[i]
			if cur.DistSq < prev.DistSq {
				t.Errorf("%s: candidate %d closer than %d", typeID, i, i-1)
			}
			if cur.DistSq == prev.DistSq && cur.Cell.Less(prev.Cell) {
				t.Errorf("%s: tie at %d not in cell order", typeID, i)
			}
		}
		best, ok, err := FindBestSnap(a, typeID, origin, 6)
		if err != nil || !ok || !reflect.DeepEqual(best, cands[0]) {
			t.Errorf("%s: FindBestSnap = %+v, want first of list", typeID, best)
		}

		for _, c := range cands {
			if c.DistSq > 36 {
				t.Errorf("%s: candidate %v outside radius", typeID, c.Cell)
			}
			b := assembly.New(a.Catalog())
			if err := b.Load(a.Save()); err != nil {
				t.Fatal(err)
			}
			if _, err := c.Place(b); err != nil {
				t.Errorf("%s: candidate %v failed to place: %v", typeID, c.Cell, err)
			}
		}
	}
}

func TestSnapDoesNotMutate(t *testing.T) {
	a := cornerFixture(t)
	before := a.Save()
	if _, err := FindSnapPoints(a, catalog.Connector6, grid.Cell{Y: 3}, 5); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Save(), before) {
		t.Error("snap query changed the assembly")
	}
}
