package result

import (
	"testing"

	"github.com/kailas-cloud/devsift/internal/domain/device"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestNew(t *testing.T) {
	rows := []*device.Row{{Ordinal: 2}, {Ordinal: 0}}
	r := New(rows, 3)

	if r.Total() != 2 {
		t.Errorf("Total() = %d", r.Total())
	}
	if r.Generation() != 3 {
		t.Errorf("Generation() = %d", r.Generation())
	}
	if r.Rows()[0].Ordinal != 2 {
		t.Errorf("Rows()[0].Ordinal = %d", r.Rows()[0].Ordinal)
	}
}

func TestCollectDistinct(t *testing.T) {
	rows := []device.Row{
		{Ordinal: 0, Model: strPtr("B"), Online: boolPtr(true)},
		{Ordinal: 1, Model: strPtr("A")},
		{Ordinal: 2, Model: strPtr("B"), Online: boolPtr(false), BrandName: strPtr("Sonoff")},
		{Ordinal: 3, Online: boolPtr(true)},
	}
	d := CollectDistinct(rows, 7)

	if d.Generation() != 7 {
		t.Errorf("Generation() = %d", d.Generation())
	}

	tests := []struct {
		field device.Field
		want  []string
	}{
		{device.Model, []string{"B", "A"}},
		{device.Online, []string{"true", "false"}},
		{device.BrandName, []string{"Sonoff"}},
		{device.ParentID, []string{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			got := d.Values(tt.field)
			if got == nil {
				t.Fatal("facet values should never be nil")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("values = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].String() != tt.want[i] {
					t.Errorf("values[%d] = %q, want %q", i, got[i].String(), tt.want[i])
				}
			}
		})
	}
}

func TestDistinct_NonFacetField(t *testing.T) {
	d := CollectDistinct(nil, 1)
	if d.Values(device.Name) != nil {
		t.Error("non-facet field should have no distinct values")
	}
}

func TestResult_RowsAreCopies(t *testing.T) {
	r := New([]*device.Row{{Ordinal: 0, Name: strPtr("Hall")}, {Ordinal: 1}}, 1)

	rows := r.Rows()
	rows[0], rows[1] = rows[1], rows[0]
	*rows[1].Name = "Attic"

	again := r.Rows()
	if again[0].Ordinal != 0 || *again[0].Name != "Hall" {
		t.Errorf("result changed through returned rows: %+v", again[0])
	}
}
