// Package tessellate turns placed parts and snap previews into triangle
// meshes using a geometry kernel. One mesh is produced per part.
package tessellate

import (
	"fmt"

	"github.com/chazu/strut/pkg/assembly"
	"github.com/chazu/strut/pkg/catalog"
	"github.com/chazu/strut/pkg/grid"
	"github.com/chazu/strut/pkg/kernel"
	"github.com/chazu/strut/pkg/snap"
)

// Part proportions, as fractions of the cell size.
const (
	beamWidth = 0.5
	hubWidth  = 0.6
	armRadius = 0.15
)

// Assembly produces one mesh per placed instance, ordered by instance id.
// cellSize is the edge length of a grid cell in model units. The assembly
// is only read.
func Assembly(a *assembly.Assembly, k kernel.Kernel, cellSize float64) ([]*kernel.Mesh, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("tessellate: cell size must be positive, got %g", cellSize)
	}
	if a == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, inst := range a.Instances() {
		def, err := a.Catalog().Lookup(inst.Type)
		if err != nil {
			return nil, fmt.Errorf("tessellate: instance %s: %w", inst.ID, err)
		}

		var solid kernel.Solid
		switch d := def.(type) {
		case catalog.Support:
			solid = supportSolid(k, inst.Anchor, inst.Orientation, d.Length, cellSize)
		case catalog.Connector:
			solid = connectorSolid(k, d.Arms, inst.Rotation, inst.Anchor, cellSize)
		}

		mesh, err := k.ToMesh(solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for instance %s: %w", inst.ID, err)
		}
		mesh.PartName = fmt.Sprintf("%s%s", inst.Type, inst.ID)
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// Candidate produces the ghost mesh previewing a snap candidate for def.
func Candidate(def catalog.Definition, c snap.Candidate, k kernel.Kernel, cellSize float64) (*kernel.Mesh, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("tessellate: cell size must be positive, got %g", cellSize)
	}
	if def.TypeID() != c.Type {
		return nil, fmt.Errorf("tessellate: candidate is for %s, not %s", c.Type, def.TypeID())
	}

	var solid kernel.Solid
	switch d := def.(type) {
	case catalog.Support:
		solid = supportSolid(k, c.Cell, c.Orientation, d.Length, cellSize)
	case catalog.Connector:
		solid = connectorSolid(k, d.Arms, c.Rotation, c.Cell, cellSize)
	default:
		return nil, fmt.Errorf("tessellate: unsupported definition %T", def)
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %s preview: %w", c.Type, err)
	}
	mesh.PartName = string(c.Type)
	mesh.Ghost = true
	return mesh, nil
}

// supportSolid is a square beam through the centre of every cell the
// support occupies.
func supportSolid(k kernel.Kernel, anchor grid.Cell, orientation grid.Direction, length int, s float64) kernel.Solid {
	far := anchor.Step(orientation, length-1)
	lo := [3]int{min(anchor.X, far.X), min(anchor.Y, far.Y), min(anchor.Z, far.Z)}
	hi := [3]int{max(anchor.X, far.X), max(anchor.Y, far.Y), max(anchor.Z, far.Z)}

	w := s * beamWidth
	var size, corner [3]float64
	for i := 0; i < 3; i++ {
		if grid.Axis(i) == orientation.Axis() {
			size[i] = float64(hi[i]-lo[i]+1) * s
			corner[i] = float64(lo[i]) * s
		} else {
			size[i] = w
			corner[i] = float64(lo[i])*s + (s-w)/2
		}
	}
	return k.Translate(k.Box(size[0], size[1], size[2]), corner[0], corner[1], corner[2])
}

// connectorSolid is a cubic hub with one stub per arm reaching to the cell
// face. The arms are built in the connector's own frame and then turned by
// rot.
func connectorSolid(k kernel.Kernel, arms []grid.Direction, rot grid.Rotation, anchor grid.Cell, s float64) kernel.Solid {
	h := s * hubWidth
	solid := k.Translate(k.Box(h, h, h), -h/2, -h/2, -h/2)

	for _, d := range arms {
		stub := k.Cylinder(s/2, s*armRadius, 24)
		switch d.Axis() {
		case grid.AxisX:
			stub = k.Rotate(stub, 0, 90, 0)
		case grid.AxisY:
			stub = k.Rotate(stub, 90, 0, 0)
		}
		v := d.Vector()
		stub = k.Translate(stub, float64(v.X)*s/4, float64(v.Y)*s/4, float64(v.Z)*s/4)
		solid = k.Union(solid, stub)
	}

	if rot != grid.Identity {
		x, y, z := rot.Turns().Degrees()
		solid = k.Rotate(solid, x, y, z)
	}
	return k.Translate(solid,
		(float64(anchor.X)+0.5)*s,
		(float64(anchor.Y)+0.5)*s,
		(float64(anchor.Z)+0.5)*s)
}
