// Package loader reads the unified dataset and caches it per Loader.
package loader

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"InclusionSentinel/internal/logger"
	"InclusionSentinel/internal/model"
)

// DefaultCacheSize bounds the number of datasets a Loader keeps.
const DefaultCacheSize = 16

// Loader reads datasets through a Source. Each Loader owns its cache, so two
// pipelines never observe each other's reads.
type Loader struct {
	Source Source
	cache  *lru.Cache[string, *model.Dataset]
}

// New creates a Loader with a cache of size entries (DefaultCacheSize when size < 1).
func New(src Source, size int) (*Loader, error) {
	if size < 1 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *model.Dataset](size)
	if err != nil {
		return nil, err
	}
	return &Loader{Source: src, cache: cache}, nil
}

// Load returns the named dataset, from cache when useCache is set and the
// name was read before.
func (l *Loader) Load(ctx context.Context, name string, useCache bool) (*model.Dataset, error) {
	key := l.Source.Name() + ":" + name
	if useCache {
		if ds, ok := l.cache.Get(key); ok {
			logger.Log.Debugf("dataset %s served from cache", name)
			return ds, nil
		}
	}

	ds, err := l.Source.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s from %s: %w", name, l.Source.Name(), err)
	}
	logger.Log.Infof("loaded %s: %d records, %d impact links",
		name, len(ds.Records), len(ds.ImpactLinks))

	if useCache {
		l.cache.Add(key, ds)
	}
	return ds, nil
}

// ClearCache drops every cached dataset.
func (l *Loader) ClearCache() {
	l.cache.Purge()
}

// Cached returns the number of cached datasets.
func (l *Loader) Cached() int {
	return l.cache.Len()
}
