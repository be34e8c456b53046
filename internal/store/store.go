package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/hindsight/internal/game"
)

// Store provides durable single-slot storage for game state.
//
// The on-disk layout is a single JSON file {"version":1,"game":State|null}
// plus a best-effort sibling backup at <path>.bak. There is no per-user or
// per-session partitioning: the store holds at most one in-progress game.
type Store struct {
	path string
}

// New creates a store backed by the file at path.
// The file and its parent directory are created lazily on first Save.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the canonical store file path.
func (s *Store) Path() string {
	return s.path
}

// DefaultPath returns the per-user store location,
// e.g. ~/.config/hindsight/storymode.json on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "hindsight", "storymode.json"), nil
}

// Load reads the store file.
//
// Tolerant-read policy: an absent file, unparseable content, or content that
// is not the expected object shape all yield the empty store rather than an
// error. Only genuine I/O failures (e.g. permission denied) are reported.
func (s *Store) Load() (game.File, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return game.EmptyFile(), nil
	}
	if err != nil {
		return game.File{}, fmt.Errorf("read store file %s: %w", s.path, err)
	}

	var f game.File
	if err := json.Unmarshal(raw, &f); err != nil {
		slog.Warn("store file malformed, treating as empty",
			"path", s.path,
			"error", err,
		)
		return game.EmptyFile(), nil
	}

	// Normalize: the version field is ours to own, and a game slot missing
	// the story reference cannot be resumed.
	f.Version = game.FileVersion
	if f.Game != nil && f.Game.StoryID == "" {
		slog.Warn("store file game slot missing storyId, treating as empty", "path", s.path)
		f.Game = nil
	}
	return f, nil
}

// Save atomically replaces the store file with f.
//
// Crash safety: the content is written to a temp file in the same directory
// and renamed over the canonical path, so a reader never observes a partial
// write. After a successful rename the content is copied to <path>.bak;
// backup failure is logged and suppressed.
func (s *Store) Save(f game.File) error {
	f.Version = game.FileVersion

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store file: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp store file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store file %s: %w", s.path, err)
	}

	// Best-effort backup. Never fails the save.
	if err := os.WriteFile(s.path+".bak", data, 0o644); err != nil {
		slog.Debug("store backup write failed", "path", s.path+".bak", "error", err)
	}

	return nil
}
