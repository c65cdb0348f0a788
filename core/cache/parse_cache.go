package cache

import (
	"fmt"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tristendillon/checklist/core/logger"
	"github.com/tristendillon/checklist/core/models"
)

// ParseCache keeps the import statements of recently parsed files, keyed by
// path and validated against the file's content hash on every lookup.
type ParseCache struct {
	entries *lru.Cache[string, *models.CacheEntry]
	config  *CacheConfig
	metrics *CacheMetrics
	mutex   sync.Mutex
}

func NewParseCache(config *CacheConfig) (*ParseCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	pc := &ParseCache{
		config:  config,
		metrics: &CacheMetrics{},
	}

	entries, err := lru.NewWithEvict(config.MaxEntries, func(path string, _ *models.CacheEntry) {
		pc.metrics.Invalidations++
		logger.Debug("Evicted cache entry: %s", path)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create parse cache: %w", err)
	}
	pc.entries = entries

	logger.Debug("Created new parse cache with config: MaxEntries=%d", config.MaxEntries)
	return pc, nil
}

func (pc *ParseCache) ValidateAndGet(filePath string) (*models.ParsedFile, bool) {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	entry, exists := pc.entries.Get(filePath)
	if !exists {
		pc.metrics.Misses++
		logger.Debug("Cache miss for %s - entry not found", filePath)
		return nil, false
	}

	valid, err := entry.IsValid()
	if err != nil {
		logger.Debug("Cache validation error for %s: %v", filePath, err)
	}
	if err != nil || !valid {
		pc.entries.Remove(filePath)
		pc.metrics.Misses++
		logger.Debug("Cache miss for %s - file modified", filePath)
		return nil, false
	}

	pc.metrics.Hits++
	logger.Debug("Cache hit for %s", filePath)
	return entry.ParsedFile, true
}

// Set stores parsedFile for filePath; content is the exact input it was
// parsed from and info the stat taken before reading it.
func (pc *ParseCache) Set(filePath string, content []byte, info os.FileInfo, parsedFile *models.ParsedFile) error {
	if parsedFile == nil {
		return fmt.Errorf("parsed file cannot be nil")
	}

	entry, err := models.NewCacheEntry(filePath, content, info, parsedFile)
	if err != nil {
		return fmt.Errorf("failed to create cache entry: %w", err)
	}

	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	pc.entries.Add(filePath, entry)
	logger.Debug("Cached parsed imports for %s", filePath)
	return nil
}

func (pc *ParseCache) InvalidateFile(filePath string) {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	// Remove fires the eviction callback, which counts the invalidation.
	if pc.entries.Remove(filePath) {
		logger.Debug("Invalidated cache entry for %s", filePath)
	}
}

func (pc *ParseCache) Clear() {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	entriesCount := pc.entries.Len()
	pc.entries.Purge()
	logger.Debug("Cleared entire cache, invalidated %d entries", entriesCount)
}

func (pc *ParseCache) GetMetrics() *CacheMetrics {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	metrics := *pc.metrics
	metrics.TotalEntries = pc.entries.Len()
	metrics.CalculateHitRate()
	return &metrics
}

func (pc *ParseCache) LogStats() {
	metrics := pc.GetMetrics()
	logger.Debug("Cache stats: Hits=%d, Misses=%d, Hit Rate=%.1f%%, Total Entries=%d, Invalidations=%d",
		metrics.Hits, metrics.Misses, metrics.HitRate, metrics.TotalEntries, metrics.Invalidations)
}
