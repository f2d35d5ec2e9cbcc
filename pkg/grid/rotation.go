package grid

import (
	"encoding/json"
	"fmt"
)

// Turns is the boundary form of a rotation: quarter turns about x, then y,
// then z, each applied counter-clockwise when looking down the positive
// axis. Values are taken mod 4.
type Turns struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (t Turns) norm() Turns {
	return Turns{X: mod4(t.X), Y: mod4(t.Y), Z: mod4(t.Z)}
}

// Degrees returns the turns as angles in degrees.
func (t Turns) Degrees() (x, y, z float64) {
	return float64(90 * t.X), float64(90 * t.Y), float64(90 * t.Z)
}

func (t Turns) cost() int {
	return turnCost(t.X) + turnCost(t.Y) + turnCost(t.Z)
}

// turnCost weights a single-axis turn: 90 and 270 degrees cost 1, 180 costs 2.
func turnCost(q int) int {
	switch mod4(q) {
	case 0:
		return 0
	case 2:
		return 2
	default:
		return 1
	}
}

func mod4(v int) int {
	return ((v % 4) + 4) % 4
}

// Rotation is one of the 24 orientation-preserving rotations of the cube,
// identified by its position in the canonical enumeration. The zero value
// is the identity. Two turn triples that act identically on the directions
// map to the same Rotation, so == is group equality.
type Rotation uint8

// NumRotations is the order of the rotation group.
const NumRotations = 24

// Identity is the rotation that leaves every direction fixed.
const Identity Rotation = 0

type rotationInfo struct {
	turns  Turns // cheapest triple, first in enumeration order on ties
	cost   int
	images [NumDirections]Direction
}

var (
	rotations    [NumRotations]rotationInfo
	composeTable [NumRotations][NumRotations]Rotation
	inverseTable [NumRotations]Rotation
	byImages     = make(map[[3]Direction]Rotation, NumRotations)
	byTurns      [4][4][4]Rotation
)

func init() {
	buildRotationTables()
}

// quarter-turn actions on vectors.
func turnX(v [3]int) [3]int { return [3]int{v[0], -v[2], v[1]} }
func turnY(v [3]int) [3]int { return [3]int{v[2], v[1], -v[0]} }
func turnZ(v [3]int) [3]int { return [3]int{-v[1], v[0], v[2]} }

func applyTurns(t Turns, v [3]int) [3]int {
	for i := 0; i < t.X; i++ {
		v = turnX(v)
	}
	for i := 0; i < t.Y; i++ {
		v = turnY(v)
	}
	for i := 0; i < t.Z; i++ {
		v = turnZ(v)
	}
	return v
}

func imagesOf(t Turns) [NumDirections]Direction {
	var out [NumDirections]Direction
	for d := PosX; d <= NegZ; d++ {
		dv := d.Vector()
		img, ok := directionOf(applyTurns(t, [3]int{dv.X, dv.Y, dv.Z}))
		if !ok {
			panic(fmt.Sprintf("grid: turns %+v do not map %s to a unit direction", t, d))
		}
		out[d] = img
	}
	return out
}

func basisKey(images [NumDirections]Direction) [3]Direction {
	return [3]Direction{images[PosX], images[PosY], images[PosZ]}
}

func buildRotationTables() {
	n := 0
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			for z := 0; z < 4; z++ {
				t := Turns{X: x, Y: y, Z: z}
				images := imagesOf(t)
				key := basisKey(images)
				r, seen := byImages[key]
				if !seen {
					r = Rotation(n)
					n++
					byImages[key] = r
					rotations[r] = rotationInfo{turns: t, cost: t.cost(), images: images}
				} else if c := t.cost(); c < rotations[r].cost {
					rotations[r].turns = t
					rotations[r].cost = c
				}
				byTurns[x][y][z] = r
			}
		}
	}
	if n != NumRotations {
		panic(fmt.Sprintf("grid: enumerated %d rotations, want %d", n, NumRotations))
	}

	for a := 0; a < NumRotations; a++ {
		for b := 0; b < NumRotations; b++ {
			var images [NumDirections]Direction
			for d := PosX; d <= NegZ; d++ {
				images[d] = rotations[b].images[rotations[a].images[d]]
			}
			composeTable[a][b] = byImages[basisKey(images)]
		}
	}
	for a := 0; a < NumRotations; a++ {
		for b := 0; b < NumRotations; b++ {
			if composeTable[a][b] == Identity {
				inverseTable[a] = Rotation(b)
				break
			}
		}
	}
}

// Rotations returns the 24 rotations in canonical order: the order in which
// each is first produced when turn triples are enumerated x-major (x outer,
// z inner, each 0..3). Identity comes first. This order is the tie-break
// wherever a single rotation has to be chosen.
func Rotations() []Rotation {
	out := make([]Rotation, NumRotations)
	for i := range out {
		out[i] = Rotation(i)
	}
	return out
}

// FromTurns canonicalises a turn triple.
func FromTurns(t Turns) Rotation {
	t = t.norm()
	return byTurns[t.X][t.Y][t.Z]
}

// FromImages returns the rotation taking +x, +y, +z to the given
// directions, if one exists.
func FromImages(px, py, pz Direction) (Rotation, bool) {
	r, ok := byImages[[3]Direction{px, py, pz}]
	return r, ok
}

// Valid reports whether r is a group element.
func (r Rotation) Valid() bool {
	return int(r) < NumRotations
}

// Apply rotates a direction.
func (r Rotation) Apply(d Direction) Direction {
	return rotations[r].images[d]
}

// ApplySet rotates every member of a direction set.
func (r Rotation) ApplySet(s DirectionSet) DirectionSet {
	var out DirectionSet
	for d := PosX; d <= NegZ; d++ {
		if s.Has(d) {
			out = out.Add(r.Apply(d))
		}
	}
	return out
}

// Compose returns the rotation equivalent to applying a, then b.
func Compose(a, b Rotation) Rotation {
	return composeTable[a][b]
}

// Inverse returns the rotation undoing r.
func (r Rotation) Inverse() Rotation {
	return inverseTable[r]
}

// Cost ranks rotations by simplicity: 0 for the identity, 1 for a single
// quarter turn, more for half turns and multi-axis rotations.
func (r Rotation) Cost() int {
	return rotations[r].cost
}

// Turns returns the cheapest turn triple producing r.
func (r Rotation) Turns() Turns {
	return rotations[r].turns
}

// Matrix returns the integer rotation matrix of r; column j is the image of
// basis vector j.
func (r Rotation) Matrix() [3][3]int {
	var m [3][3]int
	for j, d := range [3]Direction{PosX, PosY, PosZ} {
		v := r.Apply(d).Vector()
		m[0][j], m[1][j], m[2][j] = v.X, v.Y, v.Z
	}
	return m
}

func (r Rotation) String() string {
	t := r.Turns()
	return fmt.Sprintf("rot(%d,%d,%d)", t.X, t.Y, t.Z)
}

// MarshalJSON encodes the rotation as its turn triple.
func (r Rotation) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("grid: invalid rotation %d", uint8(r))
	}
	return json.Marshal(r.Turns())
}

// UnmarshalJSON accepts any turn triple and canonicalises it.
func (r *Rotation) UnmarshalJSON(b []byte) error {
	var t Turns
	if err := json.Unmarshal(b, &t); err != nil {
		return fmt.Errorf("grid: rotation: %w", err)
	}
	*r = FromTurns(t)
	return nil
}
