package cache

import (
	"time"
)

// ContentEntry tracks the content state of one file.
type ContentEntry struct {
	FilePath    string    `json:"file_path"`
	ContentHash string    `json:"content_hash"`
	ModTime     time.Time `json:"mod_time"`
	Size        int64     `json:"size"`
	Exists      bool      `json:"exists"`
}

type CacheStats struct {
	TotalFiles  int       `json:"total_files"`
	CacheHits   int64     `json:"cache_hits"`
	CacheMisses int64     `json:"cache_misses"`
	HitRate     float64   `json:"hit_rate"`
	LastUpdate  time.Time `json:"last_update"`
}
