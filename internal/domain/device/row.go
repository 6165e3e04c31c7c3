package device

// Row is the flat, fixed-shape projection of one RawRecord.
// Optional attributes are nil when absent from the source record.
type Row struct {
	Ordinal int `json:"ordinal"`

	ItemType     *string  `json:"itemType,omitempty"`
	Index        *float64 `json:"index,omitempty"`
	DeviceID     *string  `json:"deviceid,omitempty"`
	Name         *string  `json:"name,omitempty"`
	BrandName    *string  `json:"brandName,omitempty"`
	ProductModel *string  `json:"productModel,omitempty"`
	Online       *bool    `json:"online,omitempty"`
	Model        *string  `json:"model,omitempty"`
	UI           *string  `json:"ui,omitempty"`
	UIID         *float64 `json:"uiid,omitempty"`
	Type         *string  `json:"type,omitempty"`
	ParentID     *string  `json:"parentid,omitempty"`
	FamilyID     *string  `json:"familyid,omitempty"`
	FamilyIndex  *float64 `json:"familyIndex,omitempty"`
	APIKey       *string  `json:"apikey,omitempty"`
	DeviceKey    *string  `json:"devicekey,omitempty"`

	record *RawRecord
}

// FlattenFunc projects a record onto a Row. It must be pure.
type FlattenFunc func(rec *RawRecord) Row

// Bind stamps the row with its input position and the record it was
// projected from. A custom FlattenFunc cannot override either.
func Bind(row Row, ordinal int, rec *RawRecord) Row {
	row.Ordinal = ordinal
	row.record = rec
	return row
}

// Record returns the source record the row was flattened from.
func (r *Row) Record() *RawRecord { return r.record }

// Value returns the value of f, or false when the row has none.
func (r *Row) Value(f Field) (Value, bool) {
	switch f {
	case Ordinal:
		return NumberValue(float64(r.Ordinal)), true
	case Online:
		if r.Online == nil {
			return Value{}, false
		}
		return BoolValue(*r.Online), true
	case Index:
		return numberOf(r.Index)
	case UIID:
		return numberOf(r.UIID)
	case FamilyIndex:
		return numberOf(r.FamilyIndex)
	}
	if s, ok := r.Text(f); ok {
		return StringValue(s), true
	}
	return Value{}, false
}

// Text returns the string value of a string field.
func (r *Row) Text(f Field) (string, bool) {
	var p *string
	switch f {
	case ItemType:
		p = r.ItemType
	case DeviceID:
		p = r.DeviceID
	case Name:
		p = r.Name
	case BrandName:
		p = r.BrandName
	case ProductModel:
		p = r.ProductModel
	case Model:
		p = r.Model
	case UI:
		p = r.UI
	case Type:
		p = r.Type
	case ParentID:
		p = r.ParentID
	case FamilyID:
		p = r.FamilyID
	case APIKey:
		p = r.APIKey
	case DeviceKey:
		p = r.DeviceKey
	}
	if p == nil {
		return "", false
	}
	return *p, true
}

func numberOf(p *float64) (Value, bool) {
	if p == nil {
		return Value{}, false
	}
	return NumberValue(*p), true
}

// Flatten is the default projection of the nested record shape. The row
// holds its own copies of every value.
func Flatten(rec *RawRecord) Row {
	row := Row{
		ItemType: clonePtr(rec.ItemType),
		Index:    clonePtr(rec.Index),
	}
	d := rec.ItemData
	if d == nil {
		return row
	}

	row.Name = clonePtr(d.Name)
	row.DeviceID = clonePtr(d.DeviceID)
	row.BrandName = clonePtr(d.BrandName)
	row.ProductModel = clonePtr(d.ProductModel)
	row.Online = clonePtr(d.Online)
	row.APIKey = clonePtr(d.APIKey)
	row.DeviceKey = clonePtr(d.DeviceKey)
	if d.Extra != nil {
		row.Model = clonePtr(d.Extra.Model)
		row.UI = clonePtr(d.Extra.UI)
		row.UIID = clonePtr(d.Extra.UIID)
	}
	if d.Params != nil {
		row.Type = clonePtr(d.Params.Type)
		row.ParentID = clonePtr(d.Params.ParentID)
	}
	if d.Family != nil {
		row.FamilyID = clonePtr(d.Family.FamilyID)
		row.FamilyIndex = clonePtr(d.Family.Index)
	}
	return row
}

// Clone returns a copy of r whose attribute values are not shared with r.
// The attached source record is dropped; use RawRecord.Clone for it.
func (r *Row) Clone() *Row {
	return &Row{
		Ordinal:      r.Ordinal,
		ItemType:     clonePtr(r.ItemType),
		Index:        clonePtr(r.Index),
		DeviceID:     clonePtr(r.DeviceID),
		Name:         clonePtr(r.Name),
		BrandName:    clonePtr(r.BrandName),
		ProductModel: clonePtr(r.ProductModel),
		Online:       clonePtr(r.Online),
		Model:        clonePtr(r.Model),
		UI:           clonePtr(r.UI),
		UIID:         clonePtr(r.UIID),
		Type:         clonePtr(r.Type),
		ParentID:     clonePtr(r.ParentID),
		FamilyID:     clonePtr(r.FamilyID),
		FamilyIndex:  clonePtr(r.FamilyIndex),
		APIKey:       clonePtr(r.APIKey),
		DeviceKey:    clonePtr(r.DeviceKey),
	}
}
