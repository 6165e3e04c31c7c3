package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/devsift/internal/db"
	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/device"
)

// Redis loads records stored as a JSON string under a key. The locator is
// redis://<key>.
type Redis struct {
	kv db.KVStore
}

// NewRedis creates a Redis loader over kv.
func NewRedis(kv db.KVStore) *Redis {
	return &Redis{kv: kv}
}

// Key returns the key a redis locator names.
func Key(locator string) (string, bool) {
	if Scheme(locator) != SchemeRedis {
		return "", false
	}
	_, key, _ := strings.Cut(locator, "://")
	return key, key != ""
}

// Load fetches the key. A missing key is a load failure.
func (r *Redis) Load(ctx context.Context, locator string) ([]device.RawRecord, error) {
	key, ok := Key(locator)
	if !ok {
		return nil, domain.NewLoadError(locator, 0, fmt.Errorf("missing redis key"))
	}
	data, err := r.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.NewLoadError(locator, 0, fmt.Errorf("key %q: %w", key, err))
		}
		return nil, domain.NewLoadError(locator, 0, err)
	}
	return decode(data)
}
