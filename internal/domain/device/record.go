package device

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/kailas-cloud/devsift/internal/domain"
)

// RawRecord is one source record as received from the load source.
// Only the fields needed for flattening are decoded; the original object
// is kept verbatim and never interpreted.
type RawRecord struct {
	ItemType *string   `json:"itemType,omitempty"`
	Index    *float64  `json:"index,omitempty"`
	ItemData *ItemData `json:"itemData,omitempty"`

	raw json.RawMessage
}

// ItemData is the device payload of a record.
type ItemData struct {
	Name         *string `json:"name,omitempty"`
	DeviceID     *string `json:"deviceid,omitempty"`
	BrandName    *string `json:"brandName,omitempty"`
	ProductModel *string `json:"productModel,omitempty"`
	Online       *bool   `json:"online,omitempty"`
	APIKey       *string `json:"apikey,omitempty"`
	DeviceKey    *string `json:"devicekey,omitempty"`
	Extra        *Extra  `json:"extra,omitempty"`
	Params       *Params `json:"params,omitempty"`
	Family       *Family `json:"family,omitempty"`
}

// Extra holds firmware identifiers.
type Extra struct {
	Model *string  `json:"model,omitempty"`
	UI    *string  `json:"ui,omitempty"`
	UIID  *float64 `json:"uiid,omitempty"`
}

// Params holds classification and topology attributes.
type Params struct {
	Type     *string `json:"type,omitempty"`
	ParentID *string `json:"parentid,omitempty"`
}

// Family holds household grouping attributes.
type Family struct {
	FamilyID *string  `json:"familyid,omitempty"`
	Index    *float64 `json:"index,omitempty"`
}

// ParseRecord decodes a single JSON object into a RawRecord.
// The object is kept as the record's opaque blob.
func ParseRecord(data []byte) (RawRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return RawRecord{}, errors.New("record must be a JSON object")
	}

	type plain RawRecord
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return RawRecord{}, fmt.Errorf("decode record: %w", err)
	}

	rec := RawRecord(p)
	rec.raw = append(json.RawMessage(nil), trimmed...)
	return rec, nil
}

// Clone returns a deep copy of r sharing no memory with it.
func (r *RawRecord) Clone() RawRecord {
	out := RawRecord{
		ItemType: clonePtr(r.ItemType),
		Index:    clonePtr(r.Index),
		raw:      bytes.Clone(r.raw),
	}
	if d := r.ItemData; d != nil {
		c := ItemData{
			Name:         clonePtr(d.Name),
			DeviceID:     clonePtr(d.DeviceID),
			BrandName:    clonePtr(d.BrandName),
			ProductModel: clonePtr(d.ProductModel),
			Online:       clonePtr(d.Online),
			APIKey:       clonePtr(d.APIKey),
			DeviceKey:    clonePtr(d.DeviceKey),
		}
		if e := d.Extra; e != nil {
			c.Extra = &Extra{Model: clonePtr(e.Model), UI: clonePtr(e.UI), UIID: clonePtr(e.UIID)}
		}
		if p := d.Params; p != nil {
			c.Params = &Params{Type: clonePtr(p.Type), ParentID: clonePtr(p.ParentID)}
		}
		if f := d.Family; f != nil {
			c.Family = &Family{FamilyID: clonePtr(f.FamilyID), Index: clonePtr(f.Index)}
		}
		out.ItemData = &c
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Raw returns the original JSON object.
func (r *RawRecord) Raw() json.RawMessage {
	if len(r.raw) > 0 {
		return r.raw
	}
	type plain RawRecord
	data, err := json.Marshal((*plain)(r))
	if err != nil {
		return nil
	}
	return data
}

// MarshalJSON emits the original object when the record was parsed from JSON.
func (r RawRecord) MarshalJSON() ([]byte, error) {
	return r.Raw(), nil
}

// DecodeRecords reads a JSON array of records token by token.
// Anything other than a well-formed array of objects fails with a
// MalformedInputError naming the offending element.
func DecodeRecords(r io.Reader) ([]RawRecord, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, domain.NewMalformedInput(-1, fmt.Errorf("read opening token: %w", err))
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, domain.NewMalformedInput(-1, fmt.Errorf("expected JSON array, got %v", tok))
	}

	var records []RawRecord
	for i := 0; dec.More(); i++ {
		var item json.RawMessage
		if err := dec.Decode(&item); err != nil {
			return nil, domain.NewMalformedInput(i, err)
		}
		rec, err := ParseRecord(item)
		if err != nil {
			return nil, domain.NewMalformedInput(i, err)
		}
		records = append(records, rec)
	}

	if _, err := dec.Token(); err != nil {
		return nil, domain.NewMalformedInput(-1, fmt.Errorf("read closing token: %w", err))
	}
	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = fmt.Errorf("unexpected %v", tok)
		}
		return nil, domain.NewMalformedInput(-1, fmt.Errorf("trailing content after array: %w", err))
	}
	if records == nil {
		records = []RawRecord{}
	}
	return records, nil
}
