package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tristendillon/checklist/core/logger"
	"github.com/tristendillon/checklist/core/walker"
)

// FileWatcher re-runs OnChange, debounced, whenever something below RootDir
// changes. Directories the Matcher skips are never watched.
type FileWatcher struct {
	Watcher       *fsnotify.Watcher
	RootDir       string
	Matcher       *walker.Matcher
	Debounce      time.Duration
	DebounceTimer *time.Timer
	Mutex         sync.Mutex
	OnStart       func() error
	OnChange      func() error
	OnClose       func() error
	// OnInvalidate is called for every written, removed or renamed path
	// before the debounced OnChange.
	OnInvalidate func(path string)
}

func NewFileWatcher(rootDir string, matcher *walker.Matcher, debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if matcher == nil {
		matcher, _ = walker.NewMatcher(nil, nil)
	}

	return &FileWatcher{
		Watcher:      watcher,
		RootDir:      rootDir,
		Matcher:      matcher,
		Debounce:     debounce,
		OnStart:      func() error { return fmt.Errorf("OnStart not set") },
		OnChange:     func() error { return fmt.Errorf("OnChange not set") },
		OnClose:      func() error { return nil },
		OnInvalidate: func(string) {},
	}, nil
}

func (fw *FileWatcher) AddOnStartFunc(onStart func() error) {
	fw.OnStart = onStart
}

func (fw *FileWatcher) AddOnChangeFunc(onChange func() error) {
	fw.OnChange = onChange
}

func (fw *FileWatcher) AddOnCloseFunc(onClose func() error) {
	fw.OnClose = onClose
}

func (fw *FileWatcher) AddOnInvalidateFunc(onInvalidate func(path string)) {
	fw.OnInvalidate = onInvalidate
}

// Watch blocks until ctx is done or the underlying watcher fails.
func (fw *FileWatcher) Watch(ctx context.Context) error {
	if err := fw.addWatchersRecursively(fw.RootDir); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	if err := fw.OnStart(); err != nil {
		logger.Error("Watcher.OnStart failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if fw.shouldExcludePath(event.Name) {
				continue
			}

			logger.Debug("File event: %s %s", event.Op, event.Name)

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				fw.OnInvalidate(event.Name)
			}

			if event.Has(fsnotify.Create) {
				if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
					if err := fw.addWatchersRecursively(event.Name); err != nil {
						logger.Error("Failed to watch new directory %s: %v", event.Name, err)
					}
				}
			}

			fw.debounceChange()

		case err, ok := <-fw.Watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (fw *FileWatcher) debounceChange() {
	fw.Mutex.Lock()
	defer fw.Mutex.Unlock()

	if fw.DebounceTimer != nil {
		fw.DebounceTimer.Stop()
	}

	fw.DebounceTimer = time.AfterFunc(fw.Debounce, func() {
		logger.Debug("File changes detected, re-running checks...")
		if err := fw.OnChange(); err != nil {
			logger.Error("Watcher.OnChange failed: %v", err)
		}
	})
}

func (fw *FileWatcher) Close() error {
	fw.Mutex.Lock()
	defer fw.Mutex.Unlock()

	if fw.DebounceTimer != nil {
		fw.DebounceTimer.Stop()
	}

	if err := fw.OnClose(); err != nil {
		logger.Error("Watcher.OnClose failed: %v", err)
	}

	return fw.Watcher.Close()
}

// shouldExcludePath reports whether path lies in, or is, a skipped directory.
func (fw *FileWatcher) shouldExcludePath(path string) bool {
	relPath, err := filepath.Rel(fw.RootDir, path)
	if err != nil {
		return false
	}

	relPath = filepath.ToSlash(filepath.Clean(relPath))
	if relPath == "." || strings.HasPrefix(relPath, "../") {
		return false
	}

	parts := strings.Split(relPath, "/")
	for i := 1; i <= len(parts); i++ {
		if fw.Matcher.Skip(strings.Join(parts[:i], "/")) {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) addWatchersRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			return nil
		}

		if fw.shouldExcludePath(path) {
			logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}

		logger.Debug("Adding watcher for: %s", path)
		if err := fw.Watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}

		return nil
	})
}
