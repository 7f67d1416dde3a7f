// Package explorer renders a bounded, human-readable view of a project's
// file tree.
package explorer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wajiha787/repolens/internal/analysis/core"
)

// Entry is one rendered line of the tree listing.
type Entry struct {
	Name   string `json:"name"`
	Path   string `json:"path"` // Relative to the project root.
	IsDir  bool   `json:"is_dir"`
	Size   int64  `json:"size,omitempty"` // Bytes; zero for directories.
	Prefix string `json:"prefix"`         // Box-drawing indentation for display.
}

// Options bounds the listing. Zero values select the defaults.
type Options struct {
	MaxDepth   int // Directory levels to descend. Default 3.
	MaxEntries int // Total entries across the whole listing. Default 200.
}

const (
	defaultMaxDepth   = 3
	defaultMaxEntries = 200
)

// Explorer lists project trees.
type Explorer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Explorer {
	return &Explorer{logger: logger.Named("explorer")}
}

// Tree lists the session's tree: directories before files, alphabetical
// within each kind, dot-entries skipped, depth and total size bounded.
// Unreadable directories are silently passed over.
func (e *Explorer) Tree(session *core.Session, opts Options) []Entry {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = defaultMaxEntries
	}

	var entries []Entry
	e.descend(session.Root, session, "", 0, opts, &entries)
	return entries
}

// Render formats the listing as terminal text.
func (e *Explorer) Render(session *core.Session, opts Options) string {
	var b strings.Builder
	b.WriteString(session.Name)
	b.WriteString("/\n")
	for _, entry := range e.Tree(session, opts) {
		b.WriteString(entry.Prefix)
		b.WriteString(entry.Name)
		if entry.IsDir {
			b.WriteString("/")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (e *Explorer) descend(dir string, session *core.Session, prefix string, depth int, opts Options, out *[]Entry) {
	if depth >= opts.MaxDepth || len(*out) >= opts.MaxEntries {
		return
	}

	items, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	visible := items[:0]
	for _, it := range items {
		if !strings.HasPrefix(it.Name(), ".") {
			visible = append(visible, it)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		if visible[i].IsDir() != visible[j].IsDir() {
			return visible[i].IsDir()
		}
		return visible[i].Name() < visible[j].Name()
	})

	for i, it := range visible {
		if len(*out) >= opts.MaxEntries {
			return
		}
		last := i == len(visible)-1
		connector := "├── "
		if last {
			connector = "└── "
		}

		full := filepath.Join(dir, it.Name())
		entry := Entry{
			Name:   it.Name(),
			Path:   session.Rel(full),
			IsDir:  it.IsDir(),
			Prefix: prefix + connector,
		}
		if !it.IsDir() {
			if info, err := it.Info(); err == nil {
				entry.Size = info.Size()
			}
		}
		*out = append(*out, entry)

		if it.IsDir() {
			childPrefix := prefix + "│   "
			if last {
				childPrefix = prefix + "    "
			}
			e.descend(full, session, childPrefix, depth+1, opts, out)
		}
	}
}
