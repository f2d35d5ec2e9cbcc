package snap

import (
	"github.com/chazu/strut/pkg/catalog"
	"github.com/chazu/strut/pkg/grid"
)

// Coverage counts how many of the needed directions appear among the arms
// once rotated by r. Repeated needed directions count once.
func Coverage(arms, needed []grid.Direction, r grid.Rotation) int {
	return coverage(grid.SetOf(arms...), grid.SetOf(needed...), r)
}

func coverage(arms, needed grid.DirectionSet, r grid.Rotation) int {
	return (r.ApplySet(arms) & needed).Len()
}

// BestRotation picks the rotation of an arm set that covers the most needed
// directions. Ties go to the lowest cost, then to the earliest rotation in
// grid.Rotations order. With nothing needed it returns fallback unchanged.
// It never fails: too few arms simply give a partial match.
func BestRotation(arms, needed []grid.Direction, fallback grid.Rotation) grid.Rotation {
	want := grid.SetOf(needed...)
	if want == 0 {
		return fallback
	}
	have := grid.SetOf(arms...)

	best, bestCov, bestCost := grid.Identity, -1, 0
	for _, r := range grid.Rotations() {
		cov := coverage(have, want, r)
		switch {
		case cov > bestCov:
		case cov == bestCov && r.Cost() < bestCost:
		default:
			continue
		}
		best, bestCov, bestCost = r, cov, r.Cost()
	}
	return best
}

// ComputeAutoRotation resolves a connector's arms from the catalog and
// returns BestRotation for them. An empty needed set returns fallback
// without consulting the catalog. Support types fail with
// catalog.ErrNotConnector.
func ComputeAutoRotation(cat *catalog.Catalog, typeID catalog.TypeID, needed []grid.Direction, fallback grid.Rotation) (grid.Rotation, error) {
	if len(needed) == 0 {
		return fallback, nil
	}
	conn, err := cat.Connector(typeID)
	if err != nil {
		return fallback, err
	}
	return BestRotation(conn.Arms, needed, fallback), nil
}
