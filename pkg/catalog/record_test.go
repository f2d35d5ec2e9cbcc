package catalog

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/chazu/strut/pkg/grid"
)

func TestRecordRoundTrip(t *testing.T) {
	for _, def := range Builtin().List() {
		t.Run(string(def.TypeID()), func(t *testing.T) {
			raw, err := json.Marshal(ToRecord(def))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var rec Record
			if err := json.Unmarshal(raw, &rec); err != nil {
				t.Fatalf("unmarshal %s: %v", raw, err)
			}
			got, err := rec.Definition()
			if err != nil {
				t.Fatalf("Definition: %v", err)
			}
			if !reflect.DeepEqual(got, def) {
				t.Errorf("round trip = %+v, want %+v", got, def)
			}
		})
	}
}

func TestRecordRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"bad kind", Record{Kind: Kind(9), ID: "x"}},
		{"short support", Record{Kind: KindSupport, ID: "x", Axis: grid.AxisY}},
		{"armless connector", Record{Kind: KindConnector, ID: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.rec.Definition(); !errors.Is(err, ErrInvalidDefinition) {
				t.Errorf("error = %v, want ErrInvalidDefinition", err)
			}
		})
	}
}
