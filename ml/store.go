package ml

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// ReloadPolicy decides how often a model file is read from disk.
type ReloadPolicy string

const (
	// ReloadAlways reads the model file on every request.
	ReloadAlways ReloadPolicy = "always"
	// ReloadOnChange keeps decoded models until the file changes.
	ReloadOnChange ReloadPolicy = "on_change"
)

// ParseReloadPolicy accepts "" as ReloadAlways.
func ParseReloadPolicy(s string) (ReloadPolicy, error) {
	switch ReloadPolicy(s) {
	case "", ReloadAlways:
		return ReloadAlways, nil
	case ReloadOnChange:
		return ReloadOnChange, nil
	}
	return "", fmt.Errorf("unknown reload policy %q", s)
}

type StoreConfig struct {
	Policy    ReloadPolicy
	CacheSize int
}

type cachedModel struct {
	model   *Model
	size    int64
	modTime time.Time
}

// Store hands out models by artifact path.
type Store struct {
	policy  ReloadPolicy
	cache   *lru.Cache[string, cachedModel]
	watcher *fsnotify.Watcher
	watched map[string]bool
	mu      sync.Mutex
	logger  *zap.Logger
	load    func(path string) (*Model, error)
	done    chan struct{}
}

// NewStore creates a store. With ReloadOnChange it also watches the
// directories of loaded models and drops cached entries when their files
// change.
func NewStore(cfg StoreConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		policy:  cfg.Policy,
		logger:  logger,
		load:    LoadModel,
		watched: make(map[string]bool),
		done:    make(chan struct{}),
	}
	if s.policy == "" {
		s.policy = ReloadAlways
	}
	if s.policy != ReloadOnChange {
		return s, nil
	}

	size := cfg.CacheSize
	if size <= 0 {
		size = 4
	}
	cache, err := lru.New[string, cachedModel](size)
	if err != nil {
		return nil, err
	}
	s.cache = cache

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// the stat check in Get still catches changes
		logger.Warn("model watcher unavailable", zap.Error(err))
		return s, nil
	}
	s.watcher = watcher
	go s.watch()
	return s, nil
}

// Get returns the model stored at path.
func (s *Store) Get(ctx context.Context, path string) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path = filepath.Clean(path)
	if s.policy != ReloadOnChange {
		return s.load(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		s.cache.Remove(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("stat model %s: %w", path, err)
	}
	if entry, ok := s.cache.Get(path); ok && entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
		return entry.model, nil
	}

	model, err := s.load(path)
	if err != nil {
		s.cache.Remove(path)
		return nil, err
	}
	s.cache.Add(path, cachedModel{model: model, size: info.Size(), modTime: info.ModTime()})
	s.watchDir(filepath.Dir(path))
	s.logger.Info("model loaded",
		zap.String("path", path),
		zap.String("name", model.Name),
		zap.String("version", model.Version))
	return model, nil
}

// Cached reports whether a decoded model for path is held in memory.
func (s *Store) Cached(path string) bool {
	if s.cache == nil {
		return false
	}
	return s.cache.Contains(filepath.Clean(path))
}

func (s *Store) watchDir(dir string) {
	if s.watcher == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watched[dir] {
		return
	}
	if err := s.watcher.Add(dir); err != nil {
		s.logger.Warn("watch model dir failed", zap.String("dir", dir), zap.Error(err))
		return
	}
	s.watched[dir] = true
}

func (s *Store) watch() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Clean(event.Name)
			if s.cache.Remove(name) {
				s.logger.Info("model changed, evicted", zap.String("path", name), zap.String("op", event.Op.String()))
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("model watcher error", zap.Error(err))
		case <-s.done:
			return
		}
	}
}

// Close stops the watcher.
func (s *Store) Close() error {
	select {
	case <-s.done:
		return nil
	default:
		close(s.done)
	}
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
