package core

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/wajiha787/repolens/api/schemas"
)

// Skip reasons recorded in FileOutcome entries.
const (
	SkipReasonUnreadable = "unreadable"
	SkipReasonTooLarge   = "file exceeds size limit"
	SkipReasonBinary     = "binary content"
)

// WalkOptions controls which files a content scan visits.
type WalkOptions struct {
	// Extensions restricts the scan to these lowercase extensions (with dot).
	// Nil visits every extension.
	Extensions map[string]bool
	// Basenames restricts the scan to exact file names. Nil disables the check.
	Basenames map[string]bool
	// MaxFileSize skips files larger than this many bytes. Zero disables it.
	MaxFileSize int64
}

// ExtSet builds an extension allow-list for WalkOptions.
func ExtSet(exts ...string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[strings.ToLower(e)] = true
	}
	return set
}

// NameSet builds a basename allow-list for WalkOptions.
func NameSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// WalkFiles visits every regular file under root in lexical order, pruning
// dot-directories and skipping dot-files. fn receives the root-relative
// slash-separated path. Unreadable subdirectories are passed over rather than
// aborting the walk.
func WalkFiles(ctx context.Context, root string, fn func(rel string, d fs.DirEntry) error) error {
	return walk(ctx, root, false, fn)
}

// WalkAllFiles is WalkFiles without the dot-file rule: hidden files such as
// .env are visited, hidden directories are still pruned.
func WalkAllFiles(ctx context.Context, root string, fn func(rel string, d fs.DirEntry) error) error {
	return walk(ctx, root, true, fn)
}

func walk(ctx context.Context, root string, includeDotFiles bool, fn func(rel string, d fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == root {
				return walkErr
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if p != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !includeDotFiles && strings.HasPrefix(name, ".") {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		return fn(filepath.ToSlash(rel), d)
	})
}

// ScanFiles reads the content of every file selected by opts and hands it to
// fn. Files that cannot be read, exceed the size limit, or look binary are
// recorded as skipped outcomes instead of failing the scan.
func ScanFiles(ctx context.Context, root string, opts WalkOptions, fn func(rel string, content []byte) error) ([]schemas.FileOutcome, error) {
	var skipped []schemas.FileOutcome
	skip := func(rel, reason string) {
		skipped = append(skipped, schemas.FileOutcome{
			Path:   rel,
			Status: schemas.FileStatusSkipped,
			Reason: reason,
		})
	}

	err := WalkFiles(ctx, root, func(rel string, d fs.DirEntry) error {
		if opts.Basenames != nil && !opts.Basenames[path.Base(rel)] {
			return nil
		}
		if opts.Extensions != nil && !opts.Extensions[strings.ToLower(path.Ext(rel))] {
			return nil
		}
		if opts.MaxFileSize > 0 {
			if info, err := d.Info(); err == nil && info.Size() > opts.MaxFileSize {
				skip(rel, SkipReasonTooLarge)
				return nil
			}
		}

		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			skip(rel, SkipReasonUnreadable)
			return nil
		}
		if isBinary(content) {
			skip(rel, SkipReasonBinary)
			return nil
		}
		return fn(rel, content)
	})
	return skipped, err
}

// isBinary sniffs the first chunk for null bytes.
func isBinary(content []byte) bool {
	n := len(content)
	if n > 8000 {
		n = 8000
	}
	return bytes.IndexByte(content[:n], 0) != -1
}
