package cache

import (
	"sync"

	"github.com/tristendillon/forge/core/logger"
)

var (
	globalContentCache *ContentCache
	cacheOnce          sync.Once
)

// GetContentCache returns the process-wide content cache.
func GetContentCache() *ContentCache {
	cacheOnce.Do(func() {
		if globalContentCache == nil {
			globalContentCache = NewContentCache()
			logger.Debug("Initialized global content cache")
		}
	})
	return globalContentCache
}
