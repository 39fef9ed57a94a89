package integrity

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// DefaultStateFile is the file name used when only a directory is known.
const DefaultStateFile = "spzst.toml"

type Version struct {
	Name    string `toml:"name"`
	ID      string `toml:"id"`
	Version string `toml:"version"`
}

// State is the on-disk content of a state file.
type State struct {
	Integrity map[string]string `toml:"integrity"`
	Versions  []Version         `toml:"versions"`
}

// Statefile records the digest of every file that passed verification. It is
// safe for concurrent use.
type Statefile struct {
	path  string
	mu    sync.RWMutex
	state State
}

// Load reads the state file at path. A missing file yields an empty state,
// written on the first Save.
func Load(path string) (*Statefile, error) {
	sf := &Statefile{path: path, state: State{Integrity: map[string]string{}}}
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return sf, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading state file %s: %w", path, err)
	}
	if err := toml.Unmarshal(content, &sf.state); err != nil {
		return nil, fmt.Errorf("error parsing state file %s: %w", path, err)
	}
	if sf.state.Integrity == nil {
		sf.state.Integrity = map[string]string{}
	}
	return sf, nil
}

func (s *Statefile) Path() string {
	return s.path
}

// Track records digest as the verified content of path.
func (s *Statefile) Track(path, digest string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Integrity[filepath.Clean(path)] = digest
}

func (s *Statefile) Untrack(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.Integrity, filepath.Clean(path))
}

func (s *Statefile) Lookup(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	digest, ok := s.state.Integrity[filepath.Clean(path)]
	return digest, ok
}

// Tracked returns every tracked path, sorted.
func (s *Statefile) Tracked() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.state.Integrity))
	for p := range s.state.Integrity {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (s *Statefile) AddVersion(v Version) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Versions {
		if existing.ID == v.ID {
			s.state.Versions[i] = v
			return
		}
	}
	s.state.Versions = append(s.state.Versions, v)
}

func (s *Statefile) Versions() []Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Version(nil), s.state.Versions...)
}

// Save writes the state back to its file, replacing it atomically.
func (s *Statefile) Save() error {
	s.mu.RLock()
	content, err := toml.Marshal(s.state)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("error encoding state file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("error creating directory for %s: %w", s.path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("error creating temp file for %s: %w", s.path, err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("error writing state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("error writing state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("error replacing state file %s: %w", s.path, err)
	}
	return nil
}
