// Package kernel defines the geometry kernel the preview meshes are built
// with. The snapping core never touches it; only the rendering side does.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box has its minimum corner at the origin.
	Box(x, y, z float64) Solid
	// Cylinder is centred on the origin with its axis along z.
	Cylinder(height, radius float64, segments int) Solid

	Union(a, b Solid) Solid

	Translate(s Solid, x, y, z float64) Solid
	// Rotate turns s about the origin by Euler angles in degrees, about x
	// first, then y, then z.
	Rotate(s Solid, x, y, z float64) Solid

	ToMesh(s Solid) (*Mesh, error)
}
