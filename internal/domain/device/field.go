package device

import "strings"

// Kind is the value type of a row field.
type Kind uint8

// Field kinds.
const (
	KindString Kind = iota + 1
	KindBool
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Field names a column of the flattened row.
type Field string

// Row fields.
const (
	Ordinal      Field = "ordinal"
	ItemType     Field = "itemType"
	Index        Field = "index"
	DeviceID     Field = "deviceid"
	Name         Field = "name"
	BrandName    Field = "brandName"
	ProductModel Field = "productModel"
	Online       Field = "online"
	Model        Field = "model"
	UI           Field = "ui"
	UIID         Field = "uiid"
	Type         Field = "type"
	ParentID     Field = "parentid"
	FamilyID     Field = "familyid"
	FamilyIndex  Field = "familyIndex"
	APIKey       Field = "apikey"
	DeviceKey    Field = "devicekey"
)

type fieldSpec struct {
	kind       Kind
	searchable bool
	facet      bool
	rangeable  bool
}

var catalogue = map[Field]fieldSpec{
	Ordinal:      {kind: KindNumber, rangeable: true},
	ItemType:     {kind: KindString},
	Index:        {kind: KindNumber, rangeable: true},
	DeviceID:     {kind: KindString, searchable: true},
	Name:         {kind: KindString, searchable: true},
	BrandName:    {kind: KindString, searchable: true, facet: true},
	ProductModel: {kind: KindString, searchable: true, facet: true},
	Online:       {kind: KindBool, facet: true},
	Model:        {kind: KindString, searchable: true, facet: true},
	UI:           {kind: KindString, searchable: true, facet: true},
	UIID:         {kind: KindNumber, rangeable: true},
	Type:         {kind: KindString, searchable: true, facet: true},
	ParentID:     {kind: KindString, facet: true},
	FamilyID:     {kind: KindString},
	FamilyIndex:  {kind: KindNumber},
	APIKey:       {kind: KindString},
	DeviceKey:    {kind: KindString},
}

// SearchFields is the ordered list of fields the fuzzy and exact stages look at.
var SearchFields = []Field{DeviceID, Name, BrandName, ProductModel, Model, UI, Type}

// FacetFields is the ordered list of fields reported by distinct.
var FacetFields = []Field{Online, Model, UI, BrandName, ProductModel, Type, ParentID}

// aliases maps the dotted column names of the nested record shape
// (and the legacy "indexTop" range key) onto catalogue fields.
var aliases = map[string]Field{
	"index":                    Index,
	"indexTop":                 Index,
	"itemData.deviceid":        DeviceID,
	"itemData.name":            Name,
	"itemData.brandName":       BrandName,
	"itemData.productModel":    ProductModel,
	"itemData.online":          Online,
	"itemData.apikey":          APIKey,
	"itemData.devicekey":       DeviceKey,
	"itemData.extra.model":     Model,
	"itemData.extra.ui":        UI,
	"itemData.extra.uiid":      UIID,
	"itemData.params.type":     Type,
	"itemData.params.parentid": ParentID,
	"itemData.family.familyid": FamilyID,
	"itemData.family.index":    FamilyIndex,
}

// ParseField resolves a field name or alias. Lookup is exact (case-sensitive).
func ParseField(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	if _, ok := catalogue[Field(name)]; ok {
		return Field(name), true
	}
	f, ok := aliases[name]
	return f, ok
}

// Fields returns every known field in a stable order.
func Fields() []Field {
	return []Field{
		Ordinal, ItemType, Index, DeviceID, Name, BrandName, ProductModel, Online,
		Model, UI, UIID, Type, ParentID, FamilyID, FamilyIndex, APIKey, DeviceKey,
	}
}

// Kind returns the value kind of the field.
func (f Field) Kind() Kind { return catalogue[f].kind }

// IsKnown reports whether the field belongs to the row shape.
func (f Field) IsKnown() bool {
	_, ok := catalogue[f]
	return ok
}

// IsSearchable reports whether the field takes part in text search.
func (f Field) IsSearchable() bool { return catalogue[f].searchable }

// IsFacet reports whether the field can be used as an enum facet.
func (f Field) IsFacet() bool { return catalogue[f].facet }

// IsRange reports whether the field can be used as a numeric range target.
func (f Field) IsRange() bool { return catalogue[f].rangeable }
