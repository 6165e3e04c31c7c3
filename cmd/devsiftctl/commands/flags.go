package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/devsift/internal/domain/device"
	"github.com/kailas-cloud/devsift/internal/domain/search/request"
)

// addEnum applies one --enum field=value flag. Repeating a field adds values.
func addEnum(in *request.Input, arg string) error {
	name, value, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf("--enum %q: expected field=value", arg)
	}
	f, ok := device.ParseField(name)
	if !ok || !f.IsFacet() {
		return fmt.Errorf("--enum %q: %q is not a facet field", arg, name)
	}

	e := &in.Enums
	switch f {
	case device.Online:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("--enum %q: online expects true or false", arg)
		}
		e.Online = append(e.Online, b)
	case device.Model:
		e.Model = append(e.Model, value)
	case device.UI:
		e.UI = append(e.UI, value)
	case device.BrandName:
		e.BrandName = append(e.BrandName, value)
	case device.ProductModel:
		e.ProductModel = append(e.ProductModel, value)
	case device.Type:
		e.Type = append(e.Type, value)
	case device.ParentID:
		e.ParentID = append(e.ParentID, value)
	}
	return nil
}

// setRange applies one --range field=min:max flag. Either bound may be empty.
func setRange(in *request.Input, arg string) error {
	name, bounds, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf("--range %q: expected field=min:max", arg)
	}
	lo, hi, ok := strings.Cut(bounds, ":")
	if !ok {
		return fmt.Errorf("--range %q: expected field=min:max", arg)
	}

	var b request.Bounds
	var err error
	if b.Min, err = parseBound(lo); err != nil {
		return fmt.Errorf("--range %q: min: %w", arg, err)
	}
	if b.Max, err = parseBound(hi); err != nil {
		return fmt.Errorf("--range %q: max: %w", arg, err)
	}

	switch strings.TrimSpace(name) {
	case "uiid", "itemData.extra.uiid":
		in.Ranges.UIID = &b
	case "indexTop", "index":
		in.Ranges.IndexTop = &b
	case "ordinal":
		in.Ranges.Ordinal = &b
	default:
		return fmt.Errorf("--range %q: %q is not a range field", arg, name)
	}
	return nil
}

func parseBound(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// sortSpec parses one --sort field[:desc] flag.
func sortSpec(arg string) (request.SortSpec, error) {
	name, dir, _ := strings.Cut(arg, ":")
	switch strings.ToLower(dir) {
	case "", "asc":
		return request.SortSpec{ID: name}, nil
	case "desc":
		return request.SortSpec{ID: name, Desc: true}, nil
	default:
		return request.SortSpec{}, fmt.Errorf("--sort %q: direction must be asc or desc", arg)
	}
}

// buildInput assembles a query input from the query command flags.
func buildInput(q, mode string, enums, ranges, sorts []string) (request.Input, error) {
	in := request.Input{Q: q, Mode: mode}
	for _, s := range enums {
		if err := addEnum(&in, s); err != nil {
			return request.Input{}, err
		}
	}
	for _, s := range ranges {
		if err := setRange(&in, s); err != nil {
			return request.Input{}, err
		}
	}
	for _, s := range sorts {
		key, err := sortSpec(s)
		if err != nil {
			return request.Input{}, err
		}
		in.Sort = append(in.Sort, key)
	}
	return in, nil
}
