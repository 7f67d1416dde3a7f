// Package search finds question-relevant lines in the project tree. It gives
// the interactive session concrete code locations when no analyzer covers a
// question directly.
package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/wajiha787/repolens/internal/analysis/core"
)

// Bounds on the result set; search feeds prompt context, not a pager.
const (
	maxHitsPerFile = 20
	maxFiles       = 15
	contextLines   = 2
)

// textExtensions mirrors the metrics allow-list: only files we can show as
// text are worth searching.
var textExtensions = core.ExtSet(
	".py", ".js", ".ts", ".jsx", ".tsx", ".html", ".css", ".md", ".txt", ".json", ".go",
)

// topicTerms expands a recognized topic word into the terms actually worth
// grepping for. Questions outside these topics fall back to their own
// significant words.
var topicTerms = map[string][]string{
	"api":            {"api", "endpoint", "route", "handler", "post", "get", "put", "delete"},
	"endpoint":       {"api", "endpoint", "route", "handler", "post", "get", "put", "delete"},
	"component":      {"component", "react", "jsx", "frontend", "app", "main"},
	"frontend":       {"component", "react", "jsx", "frontend", "app", "main"},
	"technology":     {"react", "vite", "fastapi", "python", "javascript", "typescript", "flask"},
	"tech":           {"react", "vite", "fastapi", "python", "javascript", "typescript", "flask"},
	"authentication": {"auth", "authentication", "login", "token", "jwt", "password"},
	"auth":           {"auth", "authentication", "login", "token", "jwt", "password"},
	"database":       {"database", "db", "sqlite", "sql", "table", "query"},
	"db":             {"database", "db", "sqlite", "sql", "table", "query"},
	"deployment":     {"deployment", "deploy", "docker", "server", "production"},
	"deploy":         {"deployment", "deploy", "docker", "server", "production"},
}

// stopWords are too common to be useful as fallback search terms.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "can": true, "do": true,
	"does": true, "for": true, "how": true, "in": true, "is": true, "it": true,
	"of": true, "on": true, "the": true, "this": true, "to": true, "what": true,
	"where": true, "which": true, "why": true, "with": true, "you": true,
}

// Hit is one matching line plus its surrounding context.
type Hit struct {
	File    string   `json:"file"`
	Line    int      `json:"line"`
	Content string   `json:"content"` // The matching line, trimmed.
	Context string   `json:"context"` // The line with ±2 neighbours.
	Terms   []string `json:"terms"`   // Terms that matched anywhere in the file.
}

// Searcher runs keyword searches over a session's tree.
type Searcher struct {
	maxFileSize int64
	logger      *zap.Logger
}

func New(maxFileSize int64, logger *zap.Logger) *Searcher {
	return &Searcher{
		maxFileSize: maxFileSize,
		logger:      logger.Named("search"),
	}
}

// Terms derives the search terms for a question: topic expansions when a
// known topic word appears, otherwise the question's significant words.
func Terms(question string) []string {
	lower := strings.ToLower(question)

	var terms []string
	seen := make(map[string]bool)
	for topic, expansion := range topicTerms {
		if !strings.Contains(lower, topic) {
			continue
		}
		for _, term := range expansion {
			if !seen[term] {
				seen[term] = true
				terms = append(terms, term)
			}
		}
	}
	if terms != nil {
		return terms
	}

	for _, word := range strings.Fields(lower) {
		word = strings.Trim(word, "?!.,;:\"'()")
		if len(word) < 2 || stopWords[word] {
			continue
		}
		if !seen[word] {
			seen[word] = true
			terms = append(terms, word)
		}
	}
	return terms
}

// Search scans the tree for the question's terms. Matching is
// case-insensitive substring per line; each hit carries two lines of context
// either side. Output is bounded per file and in total.
func (s *Searcher) Search(ctx context.Context, session *core.Session, question string) ([]Hit, error) {
	terms := Terms(question)
	if len(terms) == 0 {
		return nil, nil
	}

	var hits []Hit
	filesWithHits := 0

	_, err := core.ScanFiles(ctx, session.Root, core.WalkOptions{
		Extensions:  textExtensions,
		MaxFileSize: s.maxFileSize,
	}, func(rel string, content []byte) error {
		if filesWithHits >= maxFiles {
			return nil
		}

		lowerContent := strings.ToLower(string(content))
		var present []string
		for _, term := range terms {
			if strings.Contains(lowerContent, term) {
				present = append(present, term)
			}
		}
		if len(present) == 0 {
			return nil
		}

		lines := strings.Split(string(content), "\n")
		fileHits := 0
		for i, line := range lines {
			if fileHits >= maxHitsPerFile {
				break
			}
			lowerLine := strings.ToLower(line)
			for _, term := range present {
				if strings.Contains(lowerLine, term) {
					hits = append(hits, Hit{
						File:    rel,
						Line:    i + 1,
						Content: strings.TrimSpace(line),
						Context: contextWindow(lines, i),
						Terms:   present,
					})
					fileHits++
					break
				}
			}
		}
		if fileHits > 0 {
			filesWithHits++
		}
		return nil
	})
	if err != nil {
		return hits, err
	}

	s.logger.Debug("Search complete",
		zap.Strings("terms", terms),
		zap.Int("hits", len(hits)),
		zap.Int("files", filesWithHits),
	)
	return hits, nil
}

// contextWindow joins the line with up to contextLines neighbours each side.
func contextWindow(lines []string, i int) string {
	lo := i - contextLines
	if lo < 0 {
		lo = 0
	}
	hi := i + contextLines + 1
	if hi > len(lines) {
		hi = len(lines)
	}
	return strings.Join(lines[lo:hi], "\n")
}
