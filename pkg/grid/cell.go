// Package grid provides the integer lattice that parts are placed on:
// cells, axis-aligned directions and the 24 proper rotations of a cube
// acting on those directions.
package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell addresses one unit cube of assembly space.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Step returns the cell n steps away along d.
func (c Cell) Step(d Direction, n int) Cell {
	v := d.Vector()
	return Cell{X: c.X + v.X*n, Y: c.Y + v.Y*n, Z: c.Z + v.Z*n}
}

// Neighbor returns the adjacent cell in direction d.
func (c Cell) Neighbor(d Direction) Cell {
	return c.Step(d, 1)
}

// Sub returns c - o as an offset.
func (c Cell) Sub(o Cell) Cell {
	return Cell{X: c.X - o.X, Y: c.Y - o.Y, Z: c.Z - o.Z}
}

// DistSq is the squared Euclidean distance between two cells. It is exact,
// so it is what ordering and radius tests compare.
func (c Cell) DistSq(o Cell) int {
	d := c.Sub(o)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

// Less orders cells lexicographically on (x, y, z).
func (c Cell) Less(o Cell) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.Z < o.Z
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// ParseCell parses "x,y,z" (whitespace and surrounding parentheses allowed).
func ParseCell(s string) (Cell, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Cell{}, fmt.Errorf("grid: cell %q: want x,y,z", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Cell{}, fmt.Errorf("grid: cell %q: %w", s, err)
		}
		v[i] = n
	}
	return Cell{X: v[0], Y: v[1], Z: v[2]}, nil
}
