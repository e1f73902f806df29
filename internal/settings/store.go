package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/park285/offline-puzzles/internal/obslog"
	"go.uber.org/zap"
)

// DefaultPath is the settings file used when none is configured.
const DefaultPath = "settings.json"

// Store synchronizes a Config with its settings file. It has a single owner;
// callers serialize access.
type Store struct {
	path   string
	codec  codec
	logger *zap.Logger
}

type StoreOption func(*Store)

func WithStoreLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewStore(path string, opts ...StoreOption) *Store {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{path: path, codec: codecForPath(path), logger: obslog.L()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Path() string { return s.path }

// Read decodes the settings file. Fields missing from the file keep their
// default values.
func (s *Store) Read() (Config, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: open %s: %w", ErrStoreUnreachable, s.path, err)
	}
	defer f.Close()

	cfg := Default()
	if err := s.codec.decode(f, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: decode %s: %w", ErrSerialization, s.path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrSerialization, s.path, err)
	}
	return cfg, nil
}

// Load never fails: a missing or corrupt file yields Default().
func (s *Store) Load() Config {
	cfg, err := s.Read()
	if err != nil {
		s.logger.Warn("settings file unusable, using defaults",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return Default()
	}
	return cfg
}

// Save replaces the settings file with cfg. The new content is written to a
// temporary file next to the target and renamed over it, so a failed save
// leaves the previous file in place.
func (s *Store) Save(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrStoreUnreachable, s.path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if err := s.codec.encode(tmp, cfg); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: encode %s: %w", ErrSerialization, s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync %s: %w", ErrStoreUnreachable, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrStoreUnreachable, tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrStoreUnreachable, tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrStoreUnreachable, s.path, err)
	}
	tmpName = ""

	s.logger.Debug("settings saved", zap.String("path", s.path))
	return nil
}

// SaveWindowSize persists a new window size and leaves every other field as
// currently stored.
func (s *Store) SaveWindowSize(width, height uint32) error {
	cfg := s.Load()
	cfg.WindowWidth = width
	cfg.WindowHeight = height
	if err := s.Save(cfg); err != nil {
		s.logger.Warn("save window size failed",
			zap.Uint32("width", width),
			zap.Uint32("height", height),
			zap.Error(err),
		)
		return err
	}
	return nil
}
