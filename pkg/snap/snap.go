package snap

import (
	"fmt"
	"math"
	"sort"

	"github.com/chazu/strut/pkg/assembly"
	"github.com/chazu/strut/pkg/catalog"
	"github.com/chazu/strut/pkg/grid"
)

// DefaultRadius is the search radius, in cells, used when callers have no
// preference.
const DefaultRadius = 3

// Candidate is one legal place to drop a part. For supports Orientation is
// the direction the body would run in; pass it with assembly.WithOrientation
// when the type has a free axis. For connectors Needed lists the directions
// it should present and Rotation is the auto-rotation covering them.
type Candidate struct {
	Type        catalog.TypeID   `json:"type"`
	Kind        catalog.Kind     `json:"kind"`
	Cell        grid.Cell        `json:"cell"`
	Rotation    grid.Rotation    `json:"rotation"`
	Orientation grid.Direction   `json:"orientation"`
	Needed      []grid.Direction `json:"needed,omitempty"`
	Coverage    int              `json:"coverage"`
	Sockets     []Socket         `json:"sockets"`
	DistSq      int              `json:"dist_sq"`
}

// Distance is the straight-line distance from the query origin.
func (c Candidate) Distance() float64 {
	return math.Sqrt(float64(c.DistSq))
}

// Options returns the placement options that reproduce the candidate with
// Assembly.AddPart.
func (c Candidate) Options() []assembly.PlaceOption {
	if c.Kind != catalog.KindSupport {
		return nil
	}
	return []assembly.PlaceOption{assembly.WithOrientation(c.Orientation)}
}

// Place commits the candidate to a.
func (c Candidate) Place(a *assembly.Assembly) (assembly.InstanceID, error) {
	return a.AddPart(c.Type, c.Cell, c.Rotation, c.Options()...)
}

// FindSnapPoints lists every legal attachment for typeID within radius of
// origin. Distance is Euclidean and radius is inclusive. Results are sorted
// by distance, then by the candidate cell's (x, y, z), then by orientation.
// Each candidate has been dry-run against the current assembly, so placing
// it succeeds until the assembly changes. The slice is rebuilt on every
// call.
func FindSnapPoints(a *assembly.Assembly, typeID catalog.TypeID, origin grid.Cell, radius int) ([]Candidate, error) {
	def, err := a.Catalog().Lookup(typeID)
	if err != nil {
		return nil, fmt.Errorf("snap: %w", err)
	}
	if radius < 0 {
		return nil, nil
	}

	var out []Candidate
	switch d := def.(type) {
	case catalog.Support:
		out = supportCandidates(a, d, origin, radius)
	case catalog.Connector:
		out = connectorCandidates(a, d, origin, radius)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i], out[j]
		if ci.DistSq != cj.DistSq {
			return ci.DistSq < cj.DistSq
		}
		if ci.Cell != cj.Cell {
			return ci.Cell.Less(cj.Cell)
		}
		return ci.Orientation < cj.Orientation
	})
	return out, nil
}

// supportCandidates offers one placement per open socket: the support starts
// in the cell past the socket and runs outward. Support endpoints and free
// connector arms both count as sockets.
func supportCandidates(a *assembly.Assembly, def catalog.Support, origin grid.Cell, radius int) []Candidate {
	sockets := append(Sockets(a, origin, radius), OpenArms(a, origin, radius)...)

	type key struct {
		cell grid.Cell
		dir  grid.Direction
	}
	byKey := make(map[key]int)
	var out []Candidate
	canonical := []grid.Direction{def.Axis.Positive()}
	for _, s := range sockets {
		cell := s.Adjacent()
		if a.Occupied(cell) {
			continue
		}
		k := key{cell, s.Outward}
		if i, ok := byKey[k]; ok {
			out[i].Sockets = append(out[i].Sockets, s)
			continue
		}
		rot := BestRotation(canonical, []grid.Direction{s.Outward}, grid.Identity)
		if a.Check(def.ID, cell, rot, assembly.WithOrientation(s.Outward)) != nil {
			continue
		}
		byKey[k] = len(out)
		out = append(out, Candidate{
			Type:        def.ID,
			Kind:        catalog.KindSupport,
			Cell:        cell,
			Rotation:    rot,
			Orientation: s.Outward,
			Coverage:    1,
			Sockets:     []Socket{s},
			DistSq:      cell.DistSq(origin),
		})
	}
	return out
}

// connectorCandidates offers one placement per anchor cell, rotated to cover
// as many of the surrounding support ends as the arms allow.
func connectorCandidates(a *assembly.Assembly, def catalog.Connector, origin grid.Cell, radius int) []Candidate {
	var out []Candidate
	for _, an := range Anchors(a, origin, radius) {
		rot := BestRotation(def.Arms, an.Needed, grid.Identity)
		if a.Check(def.ID, an.Cell, rot) != nil {
			continue
		}
		out = append(out, Candidate{
			Type:        def.ID,
			Kind:        catalog.KindConnector,
			Cell:        an.Cell,
			Rotation:    rot,
			Orientation: rot.Apply(grid.PosZ),
			Needed:      an.Needed,
			Coverage:    Coverage(def.Arms, an.Needed, rot),
			Sockets:     an.Sockets,
			DistSq:      an.Cell.DistSq(origin),
		})
	}
	return out
}

// FindBestSnap returns the first candidate FindSnapPoints would list. ok is
// false when nothing is in range; that is not an error.
func FindBestSnap(a *assembly.Assembly, typeID catalog.TypeID, origin grid.Cell, radius int) (best Candidate, ok bool, err error) {
	cands, err := FindSnapPoints(a, typeID, origin, radius)
	if err != nil || len(cands) == 0 {
		return Candidate{}, false, err
	}
	return cands[0], true, nil
}

// FindBestConnectorSnap is FindBestSnap for connector types. The returned
// candidate's Rotation is always the auto-rotation for its Needed set.
func FindBestConnectorSnap(a *assembly.Assembly, typeID catalog.TypeID, origin grid.Cell, radius int) (Candidate, bool, error) {
	if _, err := a.Catalog().Connector(typeID); err != nil {
		return Candidate{}, false, fmt.Errorf("snap: %w", err)
	}
	return FindBestSnap(a, typeID, origin, radius)
}
