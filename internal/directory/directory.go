package directory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const cacheKey = "staff"

// DefaultFallback is used when no fallback list is configured.
var DefaultFallback = []string{"Ana", "Bruno", "Camila"}

// Source lists staff names from the external directory.
type Source interface {
	ListStaff(ctx context.Context) ([]string, error)
}

// Directory serves staff names, substituting a fixed list when the source fails or is empty.
type Directory struct {
	source   Source
	fallback []string
	cache    *cache.Cache
	logger   *zap.Logger
}

// New creates a directory. Successful non-empty results are cached for ttl; a zero ttl disables caching.
func New(source Source, fallback []string, ttl time.Duration, logger *zap.Logger) *Directory {
	if len(fallback) == 0 {
		fallback = DefaultFallback
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Directory{
		source:   source,
		fallback: append([]string(nil), fallback...),
		logger:   logger,
	}
	if ttl > 0 {
		d.cache = cache.New(ttl, 2*ttl)
	}
	return d
}

// List returns the staff names in directory order.
func (d *Directory) List(ctx context.Context) []string {
	if d.cache != nil {
		if names, found := d.cache.Get(cacheKey); found {
			return copyNames(names.([]string))
		}
	}

	names, err := d.source.ListStaff(ctx)
	if err != nil {
		d.logger.Warn("failed to list staff, using fallback", zap.Error(err))
		return copyNames(d.fallback)
	}
	if len(names) == 0 {
		d.logger.Debug("staff directory is empty, using fallback")
		return copyNames(d.fallback)
	}

	if d.cache != nil {
		d.cache.SetDefault(cacheKey, copyNames(names))
	}
	return names
}

func copyNames(names []string) []string {
	return append([]string(nil), names...)
}
