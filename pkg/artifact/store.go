// store.go - Artifact naming policy for concurrent requests.
package artifact

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Mode selects how a Store names the files it writes.
type Mode string

const (
	// ModeUnique gives every save its own file named by a random UUID, so
	// concurrent requests never share a path.
	ModeUnique Mode = "unique"

	// ModeShared writes every save to the same file name. Saves are
	// serialized, and the last one to finish wins.
	ModeShared Mode = "shared"
)

// DefaultKeep is how many unique artifacts a Store retains on disk.
const DefaultKeep = 32

// Store writes artifacts into one directory.
type Store struct {
	dir  string
	name string
	mode Mode
	keep int

	mu     sync.Mutex
	recent []string
}

// NewStore creates a store writing into dir. name is the shared file name in
// ModeShared; in ModeUnique only its extension is used. keep bounds the
// number of unique artifacts left on disk (<= 0 selects DefaultKeep).
func NewStore(dir, name string, mode Mode, keep int) (*Store, error) {
	if dir == "" {
		return nil, errors.New("artifact directory is required")
	}
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid artifact name %q", name)
	}
	if _, err := formatFor(name); err != nil {
		return nil, err
	}
	switch mode {
	case ModeUnique, ModeShared:
	case "":
		mode = ModeUnique
	default:
		return nil, fmt.Errorf("unknown artifact mode %q", mode)
	}
	if keep <= 0 {
		keep = DefaultKeep
	}

	return &Store{dir: dir, name: name, mode: mode, keep: keep}, nil
}

// Dir returns the directory artifacts are written to.
func (s *Store) Dir() string { return s.dir }

// Mode returns the naming mode.
func (s *Store) Mode() Mode { return s.mode }

// Save implements meme.Saver.
func (s *Store) Save(img image.Image) (string, error) {
	if s.mode == ModeShared {
		s.mu.Lock()
		defer s.mu.Unlock()
		return Save(img, filepath.Join(s.dir, s.name))
	}

	path := filepath.Join(s.dir, uuid.NewString()+strings.ToLower(filepath.Ext(s.name)))
	if _, err := Save(img, path); err != nil {
		return "", err
	}
	s.remember(path)
	return path, nil
}

// remember records path and removes the oldest unique artifacts beyond keep.
func (s *Store) remember(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = append(s.recent, path)
	for len(s.recent) > s.keep {
		os.Remove(s.recent[0])
		s.recent = s.recent[1:]
	}
}

// Resolve maps a bare file name from a URL to a path inside the store
// directory. It rejects anything that is not a plain file name.
func (s *Store) Resolve(name string) (string, bool) {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	if _, err := formatFor(name); err != nil {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}
