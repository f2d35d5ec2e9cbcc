package catalog

import (
	"fmt"

	"github.com/chazu/strut/pkg/grid"
)

// Built-in type ids referenced by tests and the CLI.
const (
	Rod2               TypeID = "rod-2"
	Connector1         TypeID = "connector-1"
	Connector2Straight TypeID = "connector-2-straight"
	Connector2Elbow    TypeID = "connector-2-elbow"
	Connector3Tee      TypeID = "connector-3-tee"
	Connector3Corner   TypeID = "connector-3-corner"
	Connector4Cross    TypeID = "connector-4-cross"
	Connector5         TypeID = "connector-5"
	Connector6         TypeID = "connector-6"
)

// MaxBuiltinSupport is the longest built-in support.
const MaxBuiltinSupport = 5

// SupportID returns the id of the built-in y-axis support of length n.
func SupportID(n int) TypeID {
	return TypeID(fmt.Sprintf("support-%d", n))
}

// Builtin returns a new catalog populated with the stock parts.
func Builtin() *Catalog {
	c := New()
	for n := 1; n <= MaxBuiltinSupport; n++ {
		c.MustRegister(Support{
			ID:     SupportID(n),
			Name:   fmt.Sprintf("Support %d", n),
			Axis:   grid.AxisY,
			Length: n,
		})
	}
	c.MustRegister(Support{ID: Rod2, Name: "Free rod 2", Axis: grid.AxisX, Length: 2, FreeAxis: true})

	c.MustRegister(Connector{ID: Connector1, Name: "End cap", Arms: []grid.Direction{grid.PosZ}})
	c.MustRegister(Connector{ID: Connector2Straight, Name: "Straight coupler", Arms: []grid.Direction{grid.PosZ, grid.NegZ}})
	c.MustRegister(Connector{ID: Connector2Elbow, Name: "Elbow", Arms: []grid.Direction{grid.PosZ, grid.PosX}})
	c.MustRegister(Connector{ID: Connector3Tee, Name: "Tee", Arms: []grid.Direction{grid.PosX, grid.NegX, grid.PosZ}})
	c.MustRegister(Connector{ID: Connector3Corner, Name: "Corner", Arms: []grid.Direction{grid.PosX, grid.PosY, grid.PosZ}})
	c.MustRegister(Connector{ID: Connector4Cross, Name: "Cross", Arms: []grid.Direction{grid.PosX, grid.NegX, grid.PosZ, grid.NegZ}})
	c.MustRegister(Connector{ID: Connector5, Name: "Five way", Arms: []grid.Direction{grid.PosX, grid.NegX, grid.PosY, grid.PosZ, grid.NegZ}})
	c.MustRegister(Connector{ID: Connector6, Name: "Hub", Arms: grid.Directions()})
	return c
}
