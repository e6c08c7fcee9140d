package remote

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ketchdev/ketch/internal/logging/events"
)

// ErrEngineOwned is returned when a mutation targets an entry that belongs to
// the engine's configuration rather than to this store.
var ErrEngineOwned = errors.New("remote is owned by the engine configuration")

// Store is an ordered collection of remote configurations backed by a JSON
// file. It is not safe for concurrent use; its only owner is the front-end
// loop.
type Store struct {
	path    string
	remotes []Remote
}

// NewStore builds an in-memory store without a backing file. Used by tests
// and by Save-less flows.
func NewStore(remotes ...Remote) *Store {
	return &Store{remotes: append([]Remote(nil), remotes...)}
}

// DefaultPath returns the standard remotes file location under the user's
// config directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "ketch", "remotes.json"), nil
}

// Load reads the remotes file at path, creating an empty one (and any parent
// directories) on first run.
func Load(path string) (*Store, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create config directory: %w", err)
		}
		empty, err := marshalRemotes(nil)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, empty, 0o644); err != nil {
			return nil, fmt.Errorf("create remotes file: %w", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read remotes file: %w", err)
	}
	remotes, err := unmarshalRemotes(data)
	if err != nil {
		return nil, fmt.Errorf("parse remotes file %s: %w", path, err)
	}
	events.Store.Loaded(path, len(remotes))
	return &Store{path: path, remotes: remotes}, nil
}

// Save persists user-origin entries to the backing file. Discovered entries
// are excluded: they live in the engine's configuration, not ours.
func (s *Store) Save() error {
	if s.path == "" {
		return errors.New("store has no backing file")
	}
	data, err := marshalRemotes(s.remotes)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write remotes file: %w", err)
	}
	events.Store.Saved(s.path, len(s.remotes))
	return nil
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.remotes)
}

// At returns the entry at index i.
func (s *Store) At(i int) (Remote, bool) {
	if i < 0 || i >= len(s.remotes) {
		return Remote{}, false
	}
	return s.remotes[i], true
}

// Remotes returns a copy of all entries in order.
func (s *Store) Remotes() []Remote {
	return append([]Remote(nil), s.remotes...)
}

// InsertFront places r at the head of the list.
func (s *Store) InsertFront(r Remote) {
	s.remotes = append([]Remote{r}, s.remotes...)
}

// Append places r at the tail of the list.
func (s *Store) Append(r Remote) {
	s.remotes = append(s.remotes, r)
}

// Replace overwrites the entry at index i. Replacing a discovered entry is
// refused; callers insert a user copy instead.
func (s *Store) Replace(i int, r Remote) error {
	existing, ok := s.At(i)
	if !ok {
		return fmt.Errorf("no remote at index %d", i)
	}
	if existing.Origin == OriginDiscovered {
		return ErrEngineOwned
	}
	s.remotes[i] = r
	return nil
}

// Delete removes the entry at index i. Discovered entries are refused.
func (s *Store) Delete(i int) error {
	existing, ok := s.At(i)
	if !ok {
		return fmt.Errorf("no remote at index %d", i)
	}
	if existing.Origin == OriginDiscovered {
		return ErrEngineOwned
	}
	s.remotes = append(s.remotes[:i], s.remotes[i+1:]...)
	return nil
}

// Duplicate copies the entry at index i to the head of the list as a user
// entry. Discovered entries are refused.
func (s *Store) Duplicate(i int) error {
	existing, ok := s.At(i)
	if !ok {
		return fmt.Errorf("no remote at index %d", i)
	}
	if existing.Origin == OriginDiscovered {
		return ErrEngineOwned
	}
	dup := existing
	dup.Origin = OriginUser
	s.InsertFront(dup)
	return nil
}

// Merge appends discovered entries for the given engine remote names. Called
// once at startup. With ignoreDuplicates set, names already present in the
// store are skipped. The destination locator defaults to the remote's root.
func (s *Store) Merge(names []string, ignoreDuplicates bool) int {
	added := 0
	for _, name := range names {
		if ignoreDuplicates && s.hasName(name) {
			continue
		}
		s.remotes = append(s.remotes, Remote{
			Name:   name,
			Dest:   name + ":",
			Origin: OriginDiscovered,
		})
		added++
	}
	return added
}

func (s *Store) hasName(name string) bool {
	for _, r := range s.remotes {
		if r.Name == name {
			return true
		}
	}
	return false
}
