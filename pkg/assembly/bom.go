package assembly

import (
	"sort"

	"github.com/chazu/strut/pkg/catalog"
)

// BOMLine is one row of a bill of materials.
type BOMLine struct {
	Type  catalog.TypeID `json:"type"`
	Name  string         `json:"name"`
	Kind  catalog.Kind   `json:"kind"`
	Count int            `json:"count"`
}

// BillOfMaterials counts the placed parts per type, ordered by type id.
// Name and Kind come from the catalog.
func (a *Assembly) BillOfMaterials() []BOMLine {
	out := []BOMLine{}
	for id, n := range a.Counts() {
		line := BOMLine{Type: id, Count: n}
		if def, err := a.cat.Lookup(id); err == nil {
			line.Kind = def.Kind()
			line.Name = catalog.ToRecord(def).Name
		}
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
