// Package usage persists the favorites/recents log that feeds the
// popularity half of search ranking.
package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/houzhh15/promptvault/internal/prompt"
)

// maxRecents bounds the recents sequence; only the first ten positions
// contribute to ranking anyway.
const maxRecents = 100

// Store is a file-backed usage log. Mutations rewrite the whole file;
// the log is small and single-writer.
type Store struct {
	path string

	mu        sync.Mutex
	favorites map[string]bool
	recents   []prompt.RecentUse
}

type usageFile struct {
	Favorites []string           `json:"favorites"`
	Recents   []prompt.RecentUse `json:"recents"`
}

// NewStore opens (or initializes) the usage log at
// {baseDir}/usage.json.
func NewStore(baseDir string) (*Store, error) {
	s := &Store{
		path:      filepath.Join(baseDir, "usage.json"),
		favorites: make(map[string]bool),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read usage log: %w", err)
	}

	var f usageFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse usage log: %w", err)
	}
	for _, id := range f.Favorites {
		s.favorites[id] = true
	}
	s.recents = f.Recents
	return nil
}

func (s *Store) save() error {
	favorites := make([]string, 0, len(s.favorites))
	for id := range s.favorites {
		favorites = append(favorites, id)
	}
	sort.Strings(favorites)

	data, err := json.MarshalIndent(usageFile{Favorites: favorites, Recents: s.recents}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal usage log: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write usage log: %w", err)
	}
	return nil
}

// RecordUse prepends a use of promptID to the recents sequence.
func (s *Store) RecordUse(promptID string, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recents := make([]prompt.RecentUse, 0, len(s.recents)+1)
	recents = append(recents, prompt.RecentUse{PromptID: promptID, UsedAt: usedAt})
	recents = append(recents, s.recents...)
	if len(recents) > maxRecents {
		recents = recents[:maxRecents]
	}
	s.recents = recents
	return s.save()
}

// SetFavorite marks or unmarks a prompt as favorite.
func (s *Store) SetFavorite(promptID string, favorite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if favorite {
		s.favorites[promptID] = true
	} else {
		delete(s.favorites, promptID)
	}
	return s.save()
}

// Forget drops a deleted prompt from favorites and recents.
func (s *Store) Forget(promptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.favorites, promptID)
	kept := s.recents[:0]
	for _, r := range s.recents {
		if r.PromptID != promptID {
			kept = append(kept, r)
		}
	}
	s.recents = kept
	return s.save()
}

// Snapshot returns a copy of the log for one search or render call.
// The copy is owned by the caller; later mutations do not affect it.
func (s *Store) Snapshot() prompt.UsageLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorites := make(map[string]bool, len(s.favorites))
	for id := range s.favorites {
		favorites[id] = true
	}
	recents := make([]prompt.RecentUse, len(s.recents))
	copy(recents, s.recents)
	return prompt.UsageLog{Favorites: favorites, Recents: recents}
}
