package grid

import "fmt"

// Axis is one of the three lattice axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Valid reports whether a names one of the three axes.
func (a Axis) Valid() bool {
	return a >= AxisX && a <= AxisZ
}

// Positive returns the unit direction pointing along +a.
func (a Axis) Positive() Direction {
	return Direction(2 * int(a))
}

// Negative returns the unit direction pointing along -a.
func (a Axis) Negative() Direction {
	return Direction(2*int(a) + 1)
}

// ParseAxis accepts "x", "y" or "z".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("grid: invalid axis %q, expected x, y, or z", s)
}

func (a Axis) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("grid: invalid axis %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *Axis) UnmarshalText(b []byte) error {
	v, err := ParseAxis(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Direction is one of the six axis-aligned unit vectors. The numeric order
// (+x, -x, +y, -y, +z, -z) is the order used whenever directions are sorted.
type Direction int

const (
	PosX Direction = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

// NumDirections is the size of the direction set.
const NumDirections = 6

// Directions returns all six directions in canonical order.
func Directions() []Direction {
	return []Direction{PosX, NegX, PosY, NegY, PosZ, NegZ}
}

var directionNames = [NumDirections]string{"+x", "-x", "+y", "-y", "+z", "-z"}

var directionVectors = [NumDirections]Cell{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}

// Valid reports whether d is one of the six directions.
func (d Direction) Valid() bool {
	return d >= PosX && d <= NegZ
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Axis returns the axis d lies along.
func (d Direction) Axis() Axis {
	return Axis(int(d) / 2)
}

// IsPositive reports whether d points along the positive half of its axis.
func (d Direction) IsPositive() bool {
	return int(d)%2 == 0
}

// Negate returns the opposite direction.
func (d Direction) Negate() Direction {
	return d ^ 1
}

// Vector returns the unit offset of d as a cell delta.
func (d Direction) Vector() Cell {
	return directionVectors[d]
}

// directionOf maps a unit vector back to its Direction.
func directionOf(v [3]int) (Direction, bool) {
	for i, dv := range directionVectors {
		if dv.X == v[0] && dv.Y == v[1] && dv.Z == v[2] {
			return Direction(i), true
		}
	}
	return 0, false
}

// ParseDirection accepts "+x", "-y", "z" (positive implied) and so on.
func ParseDirection(s string) (Direction, error) {
	for i, n := range directionNames {
		if s == n {
			return Direction(i), nil
		}
	}
	if len(s) == 1 {
		a, err := ParseAxis(s)
		if err == nil {
			return a.Positive(), nil
		}
	}
	return 0, fmt.Errorf("grid: invalid direction %q, expected one of +x -x +y -y +z -z", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("grid: invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// DirectionSet is a bitmask over the six directions.
type DirectionSet uint8

// SetOf builds a set from the given directions; duplicates collapse.
func SetOf(ds ...Direction) DirectionSet {
	var s DirectionSet
	for _, d := range ds {
		s = s.Add(d)
	}
	return s
}

func (s DirectionSet) Add(d Direction) DirectionSet { return s | 1<<uint(d) }

func (s DirectionSet) Has(d Direction) bool { return s&(1<<uint(d)) != 0 }

// Len is the number of directions in s.
func (s DirectionSet) Len() int {
	n := 0
	for v := s; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Slice returns the members of s in canonical order.
func (s DirectionSet) Slice() []Direction {
	out := make([]Direction, 0, s.Len())
	for d := PosX; d <= NegZ; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}
