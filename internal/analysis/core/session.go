package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Origin says where a session's project came from.
type Origin string

const (
	OriginLocal  Origin = "local"  // A directory that already existed on disk.
	OriginRemote Origin = "remote" // A repository cloned from a URL.
)

// RepoMeta carries optional repository metadata fetched during loading.
type RepoMeta struct {
	Description   string `json:"description,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty"`
	Stars         int    `json:"stars,omitempty"`
}

// Session is the explicit context for one loaded project. All analyzers
// receive it instead of reaching for process-global state, so several
// sessions can coexist and tools can run concurrently against one of them.
type Session struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Root     string    `json:"root"` // Absolute path to the project root.
	Origin   Origin    `json:"origin"`
	URL      string    `json:"url,omitempty"` // Set for remote origins.
	Meta     *RepoMeta `json:"meta,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// NewSession validates the root directory and builds a session for it.
func NewSession(root string, origin Origin, url string) (*Session, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project root %q: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %q is not a directory", abs)
	}

	return &Session{
		ID:       uuid.NewString(),
		Name:     filepath.Base(abs),
		Root:     abs,
		Origin:   origin,
		URL:      url,
		LoadedAt: time.Now(),
	}, nil
}

// Rel converts an absolute path under the root into a root-relative one.
// Paths outside the root are returned unchanged.
func (s *Session) Rel(path string) string {
	rel, err := filepath.Rel(s.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
