package snap

import (
	"reflect"
	"testing"

	"github.com/chazu/strut/pkg/assembly"
	"github.com/chazu/strut/pkg/catalog"
	"github.com/chazu/strut/pkg/grid"
)

func TestEndpoints(t *testing.T) {
	a := assembly.New(catalog.Builtin())
	long := place(t, a, catalog.SupportID(3), grid.Cell{}, grid.Identity)
	short := place(t, a, catalog.SupportID(1), grid.Cell{X: 5}, rotZ3)
	conn := place(t, a, catalog.Connector1, grid.Cell{X: 9}, grid.Identity)

	tests := []struct {
		name string
		id   assembly.InstanceID
		want [2]Socket
	}{
		{"length 3", long, [2]Socket{
			{Kind: SupportEnd, Instance: long, Cell: grid.Cell{}, Outward: grid.NegY},
			{Kind: SupportEnd, Instance: long, Cell: grid.Cell{Y: 2}, Outward: grid.PosY},
		}},
		{"length 1", short, [2]Socket{
			{Kind: SupportEnd, Instance: short, Cell: grid.Cell{X: 5}, Outward: grid.NegX},
			{Kind: SupportEnd, Instance: short, Cell: grid.Cell{X: 5}, Outward: grid.PosX},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, _ := a.Get(tt.id)
			got, ok := Endpoints(inst)
			if !ok {
				t.Fatal("support reported no endpoints")
			}
			if got != tt.want {
				t.Errorf("Endpoints = %v, want %v", got, tt.want)
			}
		})
	}

	inst, _ := a.Get(conn)
	if _, ok := Endpoints(inst); ok {
		t.Error("connector reported support endpoints")
	}
	arms := ArmSockets(inst)
	if len(arms) != 1 || arms[0].Outward != grid.PosZ || arms[0].Adjacent() != (grid.Cell{X: 9, Z: 1}) {
		t.Errorf("ArmSockets = %v", arms)
	}
}

func TestAnchorsGroupByCell(t *testing.T) {
	a := cornerFixture(t)
	got := Anchors(a, grid.Cell{}, 5)

	want := []Anchor{
		{Cell: grid.Cell{Y: -1}, Needed: []grid.Direction{grid.PosY}},
		{Cell: grid.Cell{Y: 3}, Needed: []grid.Direction{grid.PosX, grid.NegY}},
		{Cell: grid.Cell{X: 4, Y: 3}, Needed: []grid.Direction{grid.NegX}},
	}
	if len(got) != len(want) {
		t.Fatalf("Anchors = %v, want %d groups", got, len(want))
	}
	for i := range want {
		if got[i].Cell != want[i].Cell || !reflect.DeepEqual(got[i].Needed, want[i].Needed) {
			t.Errorf("anchor %d = %v %v, want %v %v", i, got[i].Cell, got[i].Needed, want[i].Cell, want[i].Needed)
		}
		if len(got[i].Sockets) != len(want[i].Needed) {
			t.Errorf("anchor %d has %d sockets, want %d", i, len(got[i].Sockets), len(want[i].Needed))
		}
	}
}

func TestSocketsRadius(t *testing.T) {
	a := cornerFixture(t)
	tests := []struct {
		radius int
		want   int
	}{
		{-1, 0},
		{0, 0},
		{1, 1}, // (0,-1,0)
		{3, 3}, // plus both ends meeting at (0,3,0)
		{5, 4}, // plus (4,3,0), exactly on the radius
	}
	for _, tt := range tests {
		if got := Sockets(a, grid.Cell{}, tt.radius); len(got) != tt.want {
			t.Errorf("radius %d: %d sockets %v, want %d", tt.radius, len(got), got, tt.want)
		}
	}
}

// allSockets is the brute-force reference for Sockets.
func allSockets(a *assembly.Assembly, origin grid.Cell, radius int) []Socket {
	var out []Socket
	for _, inst := range a.Instances() {
		ends, ok := Endpoints(inst)
		if !ok {
			continue
		}
		for _, s := range ends {
			if s.Adjacent().DistSq(origin) <= radius*radius {
				out = append(out, s)
			}
		}
	}
	sortSockets(out)
	return out
}

func TestIndexedScanMatchesFullScan(t *testing.T) {
	// Enough parts that small radii take the occupancy index path.
	a := assembly.New(catalog.Builtin())
	for x := 0; x < 12; x++ {
		for z := 0; z < 12; z++ {
			place(t, a, catalog.SupportID(1+(x+z)%3), grid.Cell{X: 3 * x, Z: 3 * z}, grid.Identity)
		}
	}
	for _, origin := range []grid.Cell{{}, {X: 6, Y: 2, Z: 9}, {X: 21, Y: -1, Z: 21}, {X: 100}} {
		for _, radius := range []int{0, 1, 2} {
			got := Sockets(a, origin, radius)
			want := allSockets(a, origin, radius)
			if len(got) != len(want) || (len(want) > 0 && !reflect.DeepEqual(got, want)) {
				t.Errorf("origin %v radius %d: got %v, want %v", origin, radius, got, want)
			}
		}
	}
}
