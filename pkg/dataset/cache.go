package dataset

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dukex/cognipipe/pkg/models"
)

// Cache keeps the default dataset in memory and can be reloaded while readers hold it.
type Cache struct {
	mu       sync.RWMutex
	path     string
	maxBytes int64
	frame    *models.Frame
	logger   *slog.Logger
}

// NewCache creates an empty cache for the CSV file at path.
func NewCache(path string, maxBytes int64, logger *slog.Logger) *Cache {
	return &Cache{
		path:     path,
		maxBytes: maxBytes,
		logger:   logger.With("module", "dataset_cache", "path", path),
	}
}

// Path returns the file backing the cache.
func (c *Cache) Path() string {
	return c.path
}

// Frame returns the cached dataset, loading it on first use.
func (c *Cache) Frame(ctx context.Context) (*models.Frame, error) {
	c.mu.RLock()
	frame := c.frame
	c.mu.RUnlock()

	if frame != nil {
		return frame, nil
	}

	return c.Reload(ctx)
}

// Reload reads the file again and swaps the cached dataset. On failure the
// previous dataset is kept.
func (c *Cache) Reload(ctx context.Context) (*models.Frame, error) {
	frame, err := ReadCSVFile(c.path, c.maxBytes)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to load dataset", "error", err)

		return nil, err
	}

	c.mu.Lock()
	c.frame = frame
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Dataset loaded", "rows", frame.Len(), "columns", len(frame.Columns()))

	return frame, nil
}
