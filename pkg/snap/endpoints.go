// Package snap answers where a dragged part can attach to an assembly and
// how a connector must be rotated to mate with its neighbours. Every query
// is recomputed from the current assembly state; nothing is cached.
package snap

import (
	"sort"

	"github.com/chazu/strut/pkg/assembly"
	"github.com/chazu/strut/pkg/grid"
)

// SocketKind says what presents a socket.
type SocketKind int

const (
	SupportEnd SocketKind = iota
	ConnectorArm
)

func (k SocketKind) String() string {
	if k == ConnectorArm {
		return "arm"
	}
	return "end"
}

// Socket is an open end of a placed part: a cell and the direction pointing
// away from the part's body.
type Socket struct {
	Kind     SocketKind          `json:"kind"`
	Instance assembly.InstanceID `json:"instance"`
	Cell     grid.Cell           `json:"cell"`
	Outward  grid.Direction      `json:"outward"`
}

// Adjacent returns the cell just past the socket, where a mating part goes.
func (s Socket) Adjacent() grid.Cell {
	return s.Cell.Neighbor(s.Outward)
}

// Needed returns the direction a connector at Adjacent must present to mate
// with this socket.
func (s Socket) Needed() grid.Direction {
	return s.Outward.Negate()
}

// Endpoints returns the two end sockets of a support: the anchor end facing
// against the orientation and the far end facing along it. A length-1
// support reports both at its single cell. ok is false for connectors.
func Endpoints(inst assembly.Instance) (ends [2]Socket, ok bool) {
	if !inst.IsSupport() {
		return ends, false
	}
	ends[0] = Socket{Kind: SupportEnd, Instance: inst.ID, Cell: inst.Anchor, Outward: inst.Orientation.Negate()}
	ends[1] = Socket{Kind: SupportEnd, Instance: inst.ID, Cell: inst.Far(), Outward: inst.Orientation}
	return ends, true
}

// ArmSockets returns a connector's arms as sockets, in direction order.
func ArmSockets(inst assembly.Instance) []Socket {
	if inst.IsSupport() {
		return nil
	}
	arms := inst.Arms()
	out := make([]Socket, 0, len(arms))
	for _, d := range arms {
		out = append(out, Socket{Kind: ConnectorArm, Instance: inst.ID, Cell: inst.Anchor, Outward: d})
	}
	return out
}

// Sockets returns every support endpoint whose adjacent cell lies within
// radius of origin, ordered by adjacent cell, then outward direction, then
// instance id. A negative radius yields nothing.
func Sockets(a *assembly.Assembly, origin grid.Cell, radius int) []Socket {
	var out []Socket
	for _, inst := range nearby(a, origin, radius) {
		ends, ok := Endpoints(inst)
		if !ok {
			continue
		}
		for _, s := range ends {
			if inRadius(s.Adjacent(), origin, radius) {
				out = append(out, s)
			}
		}
	}
	sortSockets(out)
	return out
}

// OpenArms returns the arm sockets of placed connectors whose adjacent cell
// lies within radius of origin and is not occupied.
func OpenArms(a *assembly.Assembly, origin grid.Cell, radius int) []Socket {
	var out []Socket
	for _, inst := range nearby(a, origin, radius) {
		for _, s := range ArmSockets(inst) {
			adj := s.Adjacent()
			if inRadius(adj, origin, radius) && !a.Occupied(adj) {
				out = append(out, s)
			}
		}
	}
	sortSockets(out)
	return out
}

// Anchor is a cell where a connector could mate with one or more support
// endpoints at once.
type Anchor struct {
	Cell    grid.Cell        `json:"cell"`
	Needed  []grid.Direction `json:"needed"`
	Sockets []Socket         `json:"sockets"`
}

// Anchors groups the sockets within radius by their adjacent cell. Each
// group carries one needed direction per contributing support, in direction
// order; there are never more than six.
func Anchors(a *assembly.Assembly, origin grid.Cell, radius int) []Anchor {
	sockets := Sockets(a, origin, radius)
	var out []Anchor
	byCell := make(map[grid.Cell]int)
	for _, s := range sockets {
		adj := s.Adjacent()
		i, ok := byCell[adj]
		if !ok {
			i = len(out)
			byCell[adj] = i
			out = append(out, Anchor{Cell: adj})
		}
		out[i].Sockets = append(out[i].Sockets, s)
	}
	for i := range out {
		var set grid.DirectionSet
		for _, s := range out[i].Sockets {
			set = set.Add(s.Needed())
		}
		out[i].Needed = set.Slice()
	}
	return out
}

func inRadius(c, origin grid.Cell, radius int) bool {
	return radius >= 0 && c.DistSq(origin) <= radius*radius
}

func sortSockets(s []Socket) {
	sort.Slice(s, func(i, j int) bool {
		ai, aj := s[i].Adjacent(), s[j].Adjacent()
		if ai != aj {
			return ai.Less(aj)
		}
		if s[i].Outward != s[j].Outward {
			return s[i].Outward < s[j].Outward
		}
		return s[i].Instance < s[j].Instance
	})
}

// maxScanSide bounds the box walked cell by cell; larger radii fall back to
// walking the instances.
const maxScanSide = 64

// nearby returns the instances that could present a socket whose adjacent
// cell is within radius of origin. Such a socket cell lies inside the box of
// half-width radius+1 around origin. When that box holds fewer cells than
// the assembly holds instances it is probed through the occupancy index,
// otherwise every instance is returned.
func nearby(a *assembly.Assembly, origin grid.Cell, radius int) []assembly.Instance {
	if radius < 0 || a.Len() == 0 {
		return nil
	}
	half := radius + 1
	side := 2*half + 1
	if side > maxScanSide || side*side*side >= a.Len() {
		return a.Instances()
	}

	seen := make(map[assembly.InstanceID]bool)
	var out []assembly.Instance
	for x := origin.X - half; x <= origin.X+half; x++ {
		for y := origin.Y - half; y <= origin.Y+half; y++ {
			for z := origin.Z - half; z <= origin.Z+half; z++ {
				for _, id := range a.CellsAt(grid.Cell{X: x, Y: y, Z: z}) {
					if seen[id] {
						continue
					}
					seen[id] = true
					if inst, ok := a.Get(id); ok {
						out = append(out, inst)
					}
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
