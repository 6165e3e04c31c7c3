// Package export writes query results to columnar files.
package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/devsift/internal/domain/device"
)

// batchSize bounds the rows buffered per Write call.
const batchSize = 1024

// Row is the parquet layout of a device.Row. Pointer fields are optional
// columns; absent attributes are written as nulls.
type Row struct {
	Ordinal      int64    `parquet:"ordinal"`
	ItemType     *string  `parquet:"item_type"`
	Index        *float64 `parquet:"index"`
	DeviceID     *string  `parquet:"deviceid"`
	Name         *string  `parquet:"name"`
	BrandName    *string  `parquet:"brand_name"`
	ProductModel *string  `parquet:"product_model"`
	Online       *bool    `parquet:"online"`
	Model        *string  `parquet:"model"`
	UI           *string  `parquet:"ui"`
	UIID         *float64 `parquet:"uiid"`
	Type         *string  `parquet:"type"`
	ParentID     *string  `parquet:"parentid"`
	FamilyID     *string  `parquet:"familyid"`
	FamilyIndex  *float64 `parquet:"family_index"`
	// Secrets are only written when requested.
	APIKey    *string `parquet:"apikey"`
	DeviceKey *string `parquet:"devicekey"`
}

// Options controls WriteParquet.
type Options struct {
	// IncludeSecrets keeps apikey and devicekey in the output.
	IncludeSecrets bool
}

// FromDevice converts r to its parquet layout.
func FromDevice(r *device.Row, opts Options) Row {
	out := Row{
		Ordinal:      int64(r.Ordinal),
		ItemType:     r.ItemType,
		Index:        r.Index,
		DeviceID:     r.DeviceID,
		Name:         r.Name,
		BrandName:    r.BrandName,
		ProductModel: r.ProductModel,
		Online:       r.Online,
		Model:        r.Model,
		UI:           r.UI,
		UIID:         r.UIID,
		Type:         r.Type,
		ParentID:     r.ParentID,
		FamilyID:     r.FamilyID,
		FamilyIndex:  r.FamilyIndex,
	}
	if opts.IncludeSecrets {
		out.APIKey = r.APIKey
		out.DeviceKey = r.DeviceKey
	}
	return out
}

// WriteParquet writes rows to w in result order and returns the number written.
func WriteParquet(w io.Writer, rows []*device.Row, opts Options) (int, error) {
	pw := parquet.NewGenericWriter[Row](w)

	written := 0
	batch := make([]Row, 0, min(batchSize, len(rows)))
	for start := 0; start < len(rows); start += batchSize {
		batch = batch[:0]
		for _, r := range rows[start:min(start+batchSize, len(rows))] {
			batch = append(batch, FromDevice(r, opts))
		}
		n, err := pw.Write(batch)
		written += n
		if err != nil {
			_ = pw.Close()
			return written, fmt.Errorf("write rows: %w", err)
		}
	}

	if err := pw.Close(); err != nil {
		return written, fmt.Errorf("close parquet writer: %w", err)
	}
	return written, nil
}
