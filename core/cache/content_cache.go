package cache

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/tristendillon/forge/core/logger"
)

// ContentCache tracks file content by md5 so callers can tell real changes
// from metadata-only touches.
type ContentCache struct {
	entries map[string]*ContentEntry
	mutex   sync.RWMutex
	stats   struct {
		hits   int64
		misses int64
	}
}

func NewContentCache() *ContentCache {
	return &ContentCache{
		entries: make(map[string]*ContentEntry),
	}
}

// UpdateContent refreshes the entry for filePath and reports whether its
// content changed since the last call. A file that disappears counts as a
// change; a file that never existed does not.
func (cc *ContentCache) UpdateContent(filePath string) (*ContentEntry, bool, error) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	stat, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			if existing, exists := cc.entries[filePath]; exists {
				logger.Debug("ContentCache: %s removed", filePath)
				delete(cc.entries, filePath)
				return existing, true, nil
			}
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to stat file %s: %w", filePath, err)
	}

	existing, exists := cc.entries[filePath]
	if !exists {
		logger.Debug("ContentCache: tracking %s", filePath)
		cc.stats.misses++
		entry, err := newContentEntry(filePath, stat)
		if err != nil {
			return nil, false, err
		}
		cc.entries[filePath] = entry
		return entry, true, nil
	}

	if stat.Size() == existing.Size && stat.ModTime().Equal(existing.ModTime) {
		cc.stats.hits++
		return existing, false, nil
	}

	newHash, err := calculateFileHash(filePath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to calculate hash for %s: %w", filePath, err)
	}

	if newHash != existing.ContentHash {
		logger.Debug("ContentCache: %s changed (%s -> %s)", filePath, existing.ContentHash[:8], newHash[:8])
		entry := &ContentEntry{
			FilePath:    filePath,
			ContentHash: newHash,
			ModTime:     stat.ModTime(),
			Size:        stat.Size(),
			Exists:      true,
		}
		cc.entries[filePath] = entry
		cc.stats.misses++
		return entry, true, nil
	}

	logger.Debug("ContentCache: %s touched, content unchanged", filePath)
	existing.ModTime = stat.ModTime()
	existing.Size = stat.Size()
	cc.stats.hits++
	return existing, false, nil
}

// Fingerprint combines the current content of paths and any extra strings
// into one digest. Missing files contribute a fixed marker, so creating or
// deleting one changes the result. Input order does not matter.
func (cc *ContentCache) Fingerprint(paths []string, extra ...string) (string, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	hash := md5.New()
	for _, path := range sorted {
		entry, _, err := cc.UpdateContent(path)
		if err != nil {
			return "", err
		}
		sum := "missing"
		if entry != nil && fileExists(path) {
			sum = entry.ContentHash
		}
		fmt.Fprintf(hash, "%s\x00%s\n", path, sum)
	}
	for _, s := range extra {
		fmt.Fprintf(hash, "%s\n", s)
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// GetStats snapshots the hit and miss counters since the cache was created.
func (cc *ContentCache) GetStats() *CacheStats {
	cc.mutex.RLock()
	defer cc.mutex.RUnlock()

	total := cc.stats.hits + cc.stats.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(cc.stats.hits) / float64(total) * 100
	}

	return &CacheStats{
		TotalFiles:  len(cc.entries),
		CacheHits:   cc.stats.hits,
		CacheMisses: cc.stats.misses,
		HitRate:     hitRate,
		LastUpdate:  time.Now(),
	}
}

func newContentEntry(filePath string, stat os.FileInfo) (*ContentEntry, error) {
	hash, err := calculateFileHash(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash for %s: %w", filePath, err)
	}

	return &ContentEntry{
		FilePath:    filePath,
		ContentHash: hash,
		ModTime:     stat.ModTime(),
		Size:        stat.Size(),
		Exists:      true,
	}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
