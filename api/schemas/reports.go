// File: api/schemas/reports.go
package schemas

import (
	"time"
)

// -- Tool Names --

// Registry names for the built-in analysis tools. These identifiers appear in
// tool listings, cached report keys, and AI function-call metadata.
const (
	ToolDependencies = "analyze_dependencies"
	ToolMetrics      = "analyze_code_metrics"
	ToolSecurity     = "find_security_issues"
	ToolHistory      = "analyze_git_history"
	ToolTasks        = "find_todos_and_fixmes"
	ToolArchitecture = "generate_architecture_summary"
)

// -- Severity --

// Severity represents the severity level of a reported security issue.
// The values are lowercase to keep rendered output and JSON stable.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// -- Per-File Outcomes --

// FileStatus describes what happened to a single file during a tree walk.
type FileStatus string

const (
	FileStatusOK      FileStatus = "ok"      // The file was read and analyzed.
	FileStatusSkipped FileStatus = "skipped" // The file was passed over; Reason says why.
)

// FileOutcome records the visit result for one file. Analyzers accumulate
// these so that skipped files are observable in the report instead of being
// silently dropped.
type FileOutcome struct {
	Path   string     `json:"path"`             // Path relative to the project root.
	Status FileStatus `json:"status"`           // ok or skipped.
	Reason string     `json:"reason,omitempty"` // Populated only for skipped files.
}

// -- Report Variants --

// Report is implemented by every analysis result produced by a registered
// tool. The set of implementations is closed; consumers dispatch on the
// concrete type to render tool-specific sections.
type Report interface {
	// Tool returns the registry name of the tool that produced this report.
	Tool() string
}

// ManifestResult holds the dependencies extracted from a single manifest
// file. A manifest that existed but could not be parsed carries an Error
// marker instead of entries; the walk itself never aborts over one bad file.
type ManifestResult struct {
	Path    string   `json:"path"`              // Manifest path relative to the project root.
	Kind    string   `json:"kind"`              // e.g. "requirements", "npm", "pipfile", "gomod", "pyproject".
	Entries []string `json:"entries,omitempty"` // One entry per declared dependency.
	Error   string   `json:"error,omitempty"`   // Parse failure marker (e.g. "invalid JSON").
}

// DependencyReport aggregates every recognized manifest under the project root.
type DependencyReport struct {
	Manifests []ManifestResult `json:"manifests"`
	Total     int              `json:"total_dependencies"` // Sum of entries across parsed manifests.
	Skipped   []FileOutcome    `json:"skipped,omitempty"`  // Unreadable manifest files.
}

func (r *DependencyReport) Tool() string { return ToolDependencies }

// FileStat describes one source file's size for the largest-files listing.
type FileStat struct {
	Path  string `json:"path"`
	Lines int    `json:"lines"`
	Bytes int64  `json:"bytes"`
}

// ExtensionStat aggregates per-extension counts.
type ExtensionStat struct {
	Files int `json:"files"`
	Lines int `json:"lines"`
}

// MetricsReport summarizes the size and shape of the codebase.
type MetricsReport struct {
	TotalFiles      int                      `json:"total_files"`
	TotalLines      int                      `json:"total_lines"`
	TotalBytes      int64                    `json:"total_bytes"`
	ByExtension     map[string]ExtensionStat `json:"by_extension"`
	LargestFiles    []FileStat               `json:"largest_files"` // At most ten, by line count.
	ComplexityUnits int                      `json:"complexity_units"`
	SizeLabel       string                   `json:"size_label"`       // small, medium or large.
	ComplexityLabel string                   `json:"complexity_label"` // low, medium or high.
	Skipped         []FileOutcome            `json:"skipped,omitempty"`
}

func (r *MetricsReport) Tool() string { return ToolMetrics }

// SecurityIssue is a single pattern match inside a scanned file.
type SecurityIssue struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Pattern  string   `json:"pattern"` // Name of the matching pattern, e.g. "hardcoded_passwords".
	Severity Severity `json:"severity"`
	Excerpt  string   `json:"excerpt"` // Trimmed, length-bounded matched text.
}

// SecurityReport lists detected issues. Issues is capped for display, but
// TotalMatches and SeverityBreakdown always cover every match found.
type SecurityReport struct {
	Issues            []SecurityIssue  `json:"issues"`
	TotalMatches      int              `json:"total_matches"`
	SeverityBreakdown map[Severity]int `json:"severity_breakdown"`
	FilesScanned      int              `json:"files_scanned"`
	Skipped           []FileOutcome    `json:"skipped,omitempty"`
}

func (r *SecurityReport) Tool() string { return ToolSecurity }

// CommitSummary is a compact view of one commit for the recent-commits list.
type CommitSummary struct {
	Hash    string `json:"hash"`    // Abbreviated to eight characters.
	Message string `json:"message"` // First line of the commit message.
	Author  string `json:"author"`
	Date    string `json:"date"` // ISO-8601.
}

// HistoryReport summarizes recent repository activity. All figures are
// computed over a window of the most recent commits. A directory that is not
// a git repository produces a report whose Error field is set; that case is
// data, not a failure of the analyzer.
type HistoryReport struct {
	Error           string          `json:"error,omitempty"`
	TotalCommits    int             `json:"total_commits"`
	Authors         map[string]int  `json:"authors"`
	ActivityByMonth map[string]int  `json:"activity_by_month"` // Keyed by YYYY-MM.
	RecentCommits   []CommitSummary `json:"recent_commits"`    // Newest first, at most ten.
	FileChanges     map[string]int  `json:"file_changes,omitempty"`
}

func (r *HistoryReport) Tool() string { return ToolHistory }

// TaskComment is one TODO-style marker found in a source comment.
type TaskComment struct {
	Category string `json:"category"` // TODO, FIXME, HACK or NOTE.
	File     string `json:"file"`
	Line     int    `json:"line"`
	Text     string `json:"text"`      // The comment text after the marker.
	RawLine  string `json:"full_line"` // The whole source line, trimmed.
}

// TaskReport lists every task comment in the tree. Unlike the security
// report, this list is never capped.
type TaskReport struct {
	Comments   []TaskComment  `json:"comments"`
	ByCategory map[string]int `json:"by_category"`
	Total      int            `json:"total"`
	Skipped    []FileOutcome  `json:"skipped,omitempty"`
}

func (r *TaskReport) Tool() string { return ToolTasks }

// Bucket is one structural category: a bounded sample of member files plus
// the exact member count.
type Bucket struct {
	Files []string `json:"files,omitempty"` // Sample, bounded for display.
	Count int      `json:"count"`           // Exact total.
}

// ArchitectureReport buckets every file into exactly one structural role.
type ArchitectureReport struct {
	EntryPoints   Bucket   `json:"entry_points"`
	APIFiles      Bucket   `json:"api_files"`
	DatabaseFiles Bucket   `json:"database_files"`
	ConfigFiles   Bucket   `json:"config_files"`
	TestFiles     Bucket   `json:"test_files"`
	StaticAssets  Bucket   `json:"static_assets"`
	Uncategorized int      `json:"uncategorized"`
	TopLevelDirs  []string `json:"top_level_dirs"`
	TotalFiles    int      `json:"total_files"`
}

func (r *ArchitectureReport) Tool() string { return ToolArchitecture }

// -- Answer Envelope --

// AnswerSource identifies how the final answer text was produced.
type AnswerSource string

const (
	AnswerSourceAI       AnswerSource = "ai"       // A configured provider generated the text.
	AnswerSourceFallback AnswerSource = "fallback" // Deterministic template rendering.
)

// AnswerEnvelope is the engine's final product for one question: the routed
// tools, their aggregated reports, and the synthesized answer text.
type AnswerEnvelope struct {
	ID        string            `json:"id"`
	SessionID string            `json:"session_id"`
	Question  string            `json:"question"`
	ToolsRun  []string          `json:"tools_run"`
	Reports   map[string]Report `json:"reports"`
	Answer    string            `json:"answer"`
	Source    AnswerSource      `json:"source"`
	Elapsed   time.Duration     `json:"elapsed"`
	CreatedAt time.Time         `json:"created_at"`
}
