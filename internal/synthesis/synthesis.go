// Package synthesis turns aggregated tool reports into the final answer
// text, either through a configured AI provider or through deterministic
// templates.
package synthesis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/patterns"
)

// listLimit caps every enumerated section before the "... and N more" line.
const listLimit = 5

const systemPrompt = "You are an expert code analyst who provides clear, helpful answers about codebases."

const promptTemplate = `A user asked: %q

Here is the analysis data from the codebase:

%s

Please provide a clear, intelligent answer to the user's question based on
this data. Be specific and helpful. If the data doesn't contain enough
information to answer the question, say so and suggest what additional
analysis might be needed.`

// Synthesizer produces the answer for one question. A nil client means no
// provider is configured; every answer then comes from the deterministic
// templates.
type Synthesizer struct {
	logger  *zap.Logger
	client  schemas.LLMClient
	lib     *patterns.Library
	timeout time.Duration
}

func New(client schemas.LLMClient, lib *patterns.Library, timeout time.Duration, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		logger:  logger.Named("synthesis"),
		client:  client,
		lib:     lib,
		timeout: timeout,
	}
}

// Synthesize renders the answer for a question from the collected reports.
// An AI failure is not retried: the reply degrades to an error marker with
// the deterministic rendering beneath it.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, reports map[string]schemas.Report) (string, schemas.AnswerSource) {
	if s.client == nil {
		return s.Fallback(question, reports), schemas.AnswerSourceFallback
	}

	answer, err := s.generate(ctx, question, reports)
	if err != nil {
		s.logger.Warn("AI synthesis failed, rendering deterministic answer",
			zap.String("provider", s.client.Provider()), zap.Error(err))
		degraded := fmt.Sprintf("AI synthesis failed (%s): %v", s.client.Provider(), err)
		return degraded + "\n\n" + s.Fallback(question, reports), schemas.AnswerSourceFallback
	}
	return answer, schemas.AnswerSourceAI
}

func (s *Synthesizer) generate(ctx context.Context, question string, reports map[string]schemas.Report) (string, error) {
	payload, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing tool results: %w", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return s.client.Generate(ctx, schemas.GenerationRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   fmt.Sprintf(promptTemplate, question, payload),
	})
}

// Fallback renders the deterministic answer. The first category whose
// keywords appear in the lowered question wins; a question matching nothing
// gets the generic summary.
func (s *Synthesizer) Fallback(question string, reports map[string]schemas.Report) string {
	lower := strings.ToLower(question)
	switch {
	case containsAny(lower, "database", "db", "sql", "data"):
		return s.renderDatabase(reports)
	case containsAny(lower, "dependencies", "packages", "libraries", "requirements"):
		return s.renderDependencies(reports)
	case containsAny(lower, "security", "vulnerability", "safe", "secure"):
		return s.renderSecurity(reports)
	case containsAny(lower, "lines", "code", "size", "complexity", "files"):
		return s.renderMetrics(reports)
	default:
		return s.renderDefault(reports)
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func (s *Synthesizer) renderDatabase(reports map[string]schemas.Report) string {
	var b strings.Builder
	b.WriteString("**Database Analysis**\n\n")

	arch, ok := reports[schemas.ToolArchitecture].(*schemas.ArchitectureReport)
	if ok && arch.DatabaseFiles.Count > 0 {
		b.WriteString("Yes, this project uses databases. Database-related files:\n")
		writeList(&b, arch.DatabaseFiles.Files, arch.DatabaseFiles.Count)
		return b.String()
	}

	b.WriteString("No obvious database files (.db, .sqlite or .sql) appear in the project structure.\n\n")
	b.WriteString("The project might still rely on an external database service, connection\n")
	b.WriteString("settings inside code files, or an ORM layer. Examining imports and\n")
	b.WriteString("configuration files would tell more.")
	return b.String()
}

func (s *Synthesizer) renderDependencies(reports map[string]schemas.Report) string {
	var b strings.Builder
	b.WriteString("**Dependency Analysis**\n\n")

	deps, ok := reports[schemas.ToolDependencies].(*schemas.DependencyReport)
	if !ok || len(deps.Manifests) == 0 {
		b.WriteString("No dependency manifests (requirements.txt, package.json, Pipfile, go.mod\n")
		b.WriteString("or pyproject.toml) were found in this project.")
		return b.String()
	}

	fmt.Fprintf(&b, "This project declares %d dependencies across %d manifest files.\n\n",
		deps.Total, len(deps.Manifests))
	for _, m := range deps.Manifests {
		if m.Error != "" {
			fmt.Fprintf(&b, "**%s**: %s\n\n", m.Path, m.Error)
			continue
		}
		fmt.Fprintf(&b, "**%s** (%d):\n", m.Path, len(m.Entries))
		writeList(&b, m.Entries, len(m.Entries))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Synthesizer) renderSecurity(reports map[string]schemas.Report) string {
	var b strings.Builder
	b.WriteString("**Security Analysis**\n\n")

	sec, ok := reports[schemas.ToolSecurity].(*schemas.SecurityReport)
	if !ok {
		b.WriteString("No security scan results are available for this question.")
		return b.String()
	}

	if sec.TotalMatches == 0 {
		b.WriteString("Good news: no obvious security issues were found.\n\nThe scan checked for:\n")
		for _, p := range s.lib.Security {
			fmt.Fprintf(&b, "- %s\n", p.Description)
		}
		b.WriteString("\nThe codebase appears to follow good security practices.")
		return b.String()
	}

	fmt.Fprintf(&b, "Found %d potential security issues (%s):\n\n",
		sec.TotalMatches, severitySummary(sec.SeverityBreakdown))

	shown := sec.Issues
	if len(shown) > listLimit {
		shown = shown[:listLimit]
	}
	for _, issue := range shown {
		fmt.Fprintf(&b, "- [%s] %s in %s line %d: `%s`\n",
			issue.Severity, titleize(issue.Pattern), issue.File, issue.Line, issue.Excerpt)
	}
	if rest := sec.TotalMatches - len(shown); rest > 0 {
		fmt.Fprintf(&b, "- ... and %d more issues\n", rest)
	}

	b.WriteString("\nRecommended next steps:\n")
	b.WriteString("- Move secrets into environment variables\n")
	b.WriteString("- Validate and escape untrusted input\n")
	b.WriteString("- Review the flagged lines before release")
	return b.String()
}

func (s *Synthesizer) renderMetrics(reports map[string]schemas.Report) string {
	var b strings.Builder
	b.WriteString("**Code Metrics**\n\n")

	m, ok := reports[schemas.ToolMetrics].(*schemas.MetricsReport)
	if !ok {
		b.WriteString("No code metrics are available for this question.")
		return b.String()
	}

	fmt.Fprintf(&b, "- Total files: %d\n", m.TotalFiles)
	fmt.Fprintf(&b, "- Total lines of code: %s\n", thousands(m.TotalLines))
	fmt.Fprintf(&b, "- Declared functions and classes: %d\n", m.ComplexityUnits)

	if len(m.ByExtension) > 0 {
		b.WriteString("\nFile types:\n")
		for _, e := range topExtensions(m.ByExtension, listLimit) {
			fmt.Fprintf(&b, "- %s: %d files\n", e.ext, e.files)
		}
	}

	fmt.Fprintf(&b, "\nThis is a %s project with %s complexity.", m.SizeLabel, m.ComplexityLabel)
	return b.String()
}

func (s *Synthesizer) renderDefault(reports map[string]schemas.Report) string {
	var b strings.Builder
	b.WriteString("**Analysis Results**\n\n")

	if len(reports) > 0 {
		if payload, err := json.MarshalIndent(reports, "", "  "); err == nil {
			b.Write(payload)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nFor more specific answers, try asking about:\n")
	b.WriteString("- Dependencies and packages\n")
	b.WriteString("- Security issues\n")
	b.WriteString("- Database usage\n")
	b.WriteString("- Code metrics and complexity\n")
	b.WriteString("- Git history and contributors\n")
	b.WriteString("- TODO items and tasks")
	return b.String()
}

// writeList prints up to listLimit items followed by a "... and N more" line
// when the exact count exceeds the sample.
func writeList(b *strings.Builder, items []string, total int) {
	shown := items
	if len(shown) > listLimit {
		shown = shown[:listLimit]
	}
	for _, it := range shown {
		fmt.Fprintf(b, "- %s\n", it)
	}
	if rest := total - len(shown); rest > 0 {
		fmt.Fprintf(b, "- ... and %d more\n", rest)
	}
}

var severityOrder = []schemas.Severity{
	schemas.SeverityCritical,
	schemas.SeverityHigh,
	schemas.SeverityMedium,
	schemas.SeverityLow,
	schemas.SeverityInfo,
}

func severitySummary(breakdown map[schemas.Severity]int) string {
	parts := make([]string, 0, len(breakdown))
	for _, sev := range severityOrder {
		if n := breakdown[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", sev, n))
		}
	}
	return strings.Join(parts, ", ")
}

type extCount struct {
	ext   string
	files int
}

func topExtensions(byExt map[string]schemas.ExtensionStat, limit int) []extCount {
	out := make([]extCount, 0, len(byExt))
	for ext, stat := range byExt {
		out = append(out, extCount{ext: ext, files: stat.Files})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].files != out[j].files {
			return out[i].files > out[j].files
		}
		return out[i].ext < out[j].ext
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// titleize turns a pattern name like "hardcoded_passwords" into display form.
func titleize(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// thousands renders a non-negative count with comma grouping.
func thousands(n int) string {
	s := strconv.Itoa(n)
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}
