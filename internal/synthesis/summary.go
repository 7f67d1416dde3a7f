package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wajiha787/repolens/api/schemas"
)

// Summary renders every available report into one document, in tool order.
// Used by the full-report path, where no single question picks a category.
func (s *Synthesizer) Summary(reports map[string]schemas.Report) string {
	sections := []string{
		s.renderMetrics(reports),
		s.renderDependencies(reports),
		s.renderSecurity(reports),
		s.renderHistory(reports),
		s.renderTasks(reports),
		s.renderArchitecture(reports),
	}
	return strings.Join(sections, "\n\n")
}

func (s *Synthesizer) renderHistory(reports map[string]schemas.Report) string {
	var b strings.Builder
	b.WriteString("**Git History**\n\n")

	h, ok := reports[schemas.ToolHistory].(*schemas.HistoryReport)
	if !ok {
		b.WriteString("No git history results are available.")
		return b.String()
	}
	if h.Error != "" {
		fmt.Fprintf(&b, "History unavailable: %s", h.Error)
		return b.String()
	}

	fmt.Fprintf(&b, "- Commits in window: %d\n", h.TotalCommits)
	fmt.Fprintf(&b, "- Contributors: %d\n", len(h.Authors))
	if len(h.Authors) > 0 {
		b.WriteString("\nTop contributors:\n")
		for _, a := range topAuthors(h.Authors, listLimit) {
			fmt.Fprintf(&b, "- %s: %d commits\n", a.name, a.commits)
		}
	}
	if len(h.RecentCommits) > 0 {
		b.WriteString("\nRecent commits:\n")
		shown := h.RecentCommits
		if len(shown) > listLimit {
			shown = shown[:listLimit]
		}
		for _, c := range shown {
			fmt.Fprintf(&b, "- %s %s (%s)\n", c.Hash, c.Message, c.Author)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Synthesizer) renderTasks(reports map[string]schemas.Report) string {
	var b strings.Builder
	b.WriteString("**Task Comments**\n\n")

	tr, ok := reports[schemas.ToolTasks].(*schemas.TaskReport)
	if !ok {
		b.WriteString("No task-comment results are available.")
		return b.String()
	}
	if tr.Total == 0 {
		b.WriteString("No TODO, FIXME, HACK or NOTE comments were found.")
		return b.String()
	}

	fmt.Fprintf(&b, "Found %d task comments", tr.Total)
	if len(tr.ByCategory) > 0 {
		parts := make([]string, 0, len(tr.ByCategory))
		for _, cat := range []string{"TODO", "FIXME", "HACK", "NOTE"} {
			if n := tr.ByCategory[cat]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s: %d", cat, n))
			}
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString(".\n")

	shown := tr.Comments
	if len(shown) > listLimit {
		shown = shown[:listLimit]
	}
	for _, c := range shown {
		fmt.Fprintf(&b, "- [%s] %s:%d %s\n", c.Category, c.File, c.Line, c.Text)
	}
	if rest := tr.Total - len(shown); rest > 0 {
		fmt.Fprintf(&b, "- ... and %d more\n", rest)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Synthesizer) renderArchitecture(reports map[string]schemas.Report) string {
	var b strings.Builder
	b.WriteString("**Architecture**\n\n")

	a, ok := reports[schemas.ToolArchitecture].(*schemas.ArchitectureReport)
	if !ok {
		b.WriteString("No architecture results are available.")
		return b.String()
	}

	fmt.Fprintf(&b, "- Files classified: %d (top-level directories: %d)\n",
		a.TotalFiles, len(a.TopLevelDirs))
	buckets := []struct {
		label  string
		bucket schemas.Bucket
	}{
		{"Entry points", a.EntryPoints},
		{"API files", a.APIFiles},
		{"Database files", a.DatabaseFiles},
		{"Config files", a.ConfigFiles},
		{"Test files", a.TestFiles},
		{"Static assets", a.StaticAssets},
	}
	for _, it := range buckets {
		if it.bucket.Count == 0 {
			continue
		}
		sample := strings.Join(it.bucket.Files, ", ")
		if it.bucket.Count > len(it.bucket.Files) {
			sample += fmt.Sprintf(", ... (%d total)", it.bucket.Count)
		}
		fmt.Fprintf(&b, "- %s: %s\n", it.label, sample)
	}
	return strings.TrimRight(b.String(), "\n")
}

type authorCount struct {
	name    string
	commits int
}

func topAuthors(authors map[string]int, limit int) []authorCount {
	out := make([]authorCount, 0, len(authors))
	for name, commits := range authors {
		out = append(out, authorCount{name: name, commits: commits})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].commits != out[j].commits {
			return out[i].commits > out[j].commits
		}
		return out[i].name < out[j].name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
