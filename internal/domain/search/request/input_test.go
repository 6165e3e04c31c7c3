package request

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/device"
	"github.com/kailas-cloud/devsift/internal/domain/search/mode"
)

func TestInput_BuildFromJSON(t *testing.T) {
	body := `{
		"q": "basic",
		"mode": "startsWith",
		"enums": {"online": [true], "brandName": ["Sonoff", "Tuya"], "model": []},
		"ranges": {"uiid": {"min": 10, "max": 20}, "indexTop": {"max": 3}},
		"sort": [{"id": "itemData.brandName"}, {"id": "ordinal", "desc": true}]
	}`
	var in Input
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req, err := in.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if req.Text() != "basic" || req.Mode() != mode.StartsWith {
		t.Errorf("text/mode = %q/%q", req.Text(), req.Mode())
	}

	facets := req.Filters().Facets()
	if len(facets) != 2 {
		t.Fatalf("expected 2 facets (empty model list dropped), got %d", len(facets))
	}
	if facets[0].Field() != device.Online || facets[1].Field() != device.BrandName {
		t.Errorf("facet fields = %s, %s", facets[0].Field(), facets[1].Field())
	}

	ranges := req.Filters().Ranges()
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(ranges))
	}
	if ranges[1].Field() != device.Index || ranges[1].Min() != nil || *ranges[1].Max() != 3 {
		t.Errorf("indexTop range not mapped onto index: %+v", ranges[1])
	}

	keys := req.SortKeys()
	if len(keys) != 2 || keys[0].Field() != device.BrandName || !keys[1].Desc() {
		t.Errorf("sort keys = %+v", keys)
	}
}

func TestInput_ZeroValue(t *testing.T) {
	req, err := Input{}.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.HasText() || !req.Filters().IsEmpty() || len(req.SortKeys()) != 0 {
		t.Error("zero input should build an unrestricted request")
	}
}

func TestInput_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"unknown sort field", Input{Sort: []SortSpec{{ID: "color"}}}, "sort"},
		{"unknown mode", Input{Mode: "regex"}, "mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Build()
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Fatalf("expected ErrInvalidQuery, got %v", err)
			}
			var qe *domain.QueryError
			if !errors.As(err, &qe) || qe.Field != tt.field {
				t.Errorf("expected QueryError on %q, got %v", tt.field, err)
			}
		})
	}
}
