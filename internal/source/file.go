package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/device"
)

// File loads records from a local JSON file. The locator is either a bare
// path or a file:// URL. The zero value caps files at DefaultMaxBodyBytes.
type File struct {
	maxBody int64
}

// NewFile creates a file loader that refuses files larger than maxBody bytes.
// maxBody <= 0 selects DefaultMaxBodyBytes.
func NewFile(maxBody int64) File {
	return File{maxBody: maxBody}
}

// Load reads and decodes the file.
func (f File) Load(ctx context.Context, locator string) ([]device.RawRecord, error) {
	path, ok := FilePath(locator)
	if !ok {
		return nil, domain.NewLoadError(locator, 0, fmt.Errorf("not a file locator"))
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewLoadError(locator, 0, err)
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, domain.NewLoadError(locator, 0, err)
	}
	defer fh.Close()

	limit := f.maxBody
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	data, err := io.ReadAll(io.LimitReader(fh, limit+1))
	if err != nil {
		return nil, domain.NewLoadError(locator, 0, err)
	}
	if int64(len(data)) > limit {
		return nil, domain.NewLoadError(locator, 0, fmt.Errorf("file exceeds %d bytes", limit))
	}
	return decode(data)
}
