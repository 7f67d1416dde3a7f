// Package deps extracts declared dependencies from the manifest files found
// under a project root.
package deps

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	json "github.com/json-iterator/go"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/mod/modfile"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/analysis/core"
	"github.com/wajiha787/repolens/internal/patterns"
)

// Manifest basenames the analyzer recognizes anywhere in the tree.
const (
	requirementsFile = "requirements.txt"
	packageJSONFile  = "package.json"
	pipfileFile      = "Pipfile"
	goModFile        = "go.mod"
	pyprojectFile    = "pyproject.toml"
)

// Manifest kinds reported per file.
const (
	KindRequirements = "requirements"
	KindNPM          = "npm"
	KindPipfile      = "pipfile"
	KindGoMod        = "gomod"
	KindPyproject    = "pyproject"
)

// ErrMalformedManifest marks a manifest that exists but cannot be parsed.
// The analyzer converts it into an error-tagged entry in the report; the
// sentinel is exported for callers that parse manifests directly.
var ErrMalformedManifest = errors.New("malformed manifest")

// Analyzer implements the dependency extraction tool.
type Analyzer struct {
	*core.BaseAnalyzer
	lib         *patterns.Library
	maxFileSize int64
}

// New creates the dependency analyzer.
func New(lib *patterns.Library, maxFileSize int64, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		BaseAnalyzer: core.NewBaseAnalyzer(
			schemas.ToolDependencies,
			"Extracts declared dependencies from requirements.txt, package.json, Pipfile, go.mod and pyproject.toml manifests.",
			logger,
		),
		lib:         lib,
		maxFileSize: maxFileSize,
	}
}

// Analyze walks the tree for known manifests and parses each one. A manifest
// that fails to parse becomes an error-tagged entry; the walk itself only
// fails on context cancellation.
func (a *Analyzer) Analyze(ctx context.Context, session *core.Session) (schemas.Report, error) {
	report := &schemas.DependencyReport{}

	skipped, err := core.ScanFiles(ctx, session.Root, core.WalkOptions{
		Basenames:   core.NameSet(requirementsFile, packageJSONFile, pipfileFile, goModFile, pyprojectFile),
		MaxFileSize: a.maxFileSize,
	}, func(rel string, content []byte) error {
		result := a.parseManifest(rel, content)
		report.Manifests = append(report.Manifests, result)
		report.Total += len(result.Entries)
		return nil
	})
	if err != nil {
		return nil, err
	}
	report.Skipped = skipped

	a.Logger.Info("dependency scan complete",
		zap.Int("manifests", len(report.Manifests)),
		zap.Int("dependencies", report.Total),
	)
	return report, nil
}

func (a *Analyzer) parseManifest(rel string, content []byte) schemas.ManifestResult {
	result := schemas.ManifestResult{Path: rel}

	var err error
	switch path.Base(rel) {
	case requirementsFile:
		result.Kind = KindRequirements
		result.Entries = parseRequirements(content)
	case packageJSONFile:
		result.Kind = KindNPM
		result.Entries, err = parsePackageJSON(content)
	case pipfileFile:
		result.Kind = KindPipfile
		result.Entries = a.parsePipfile(content)
	case goModFile:
		result.Kind = KindGoMod
		result.Entries, err = parseGoMod(rel, content)
	case pyprojectFile:
		result.Kind = KindPyproject
		result.Entries, err = parsePyproject(content)
	}

	if err != nil {
		a.Logger.Debug("manifest parse failed", zap.String("file", rel), zap.Error(err))
		result.Entries = nil
		result.Error = errorMarker(result.Kind)
	}
	return result
}

// errorMarker is the stable, human-readable parse failure tag per kind.
func errorMarker(kind string) string {
	switch kind {
	case KindNPM:
		return "invalid JSON"
	case KindGoMod:
		return "invalid go.mod"
	case KindPyproject:
		return "invalid TOML"
	default:
		return "unparseable manifest"
	}
}

// parseRequirements keeps every non-blank, non-comment line verbatim,
// version qualifiers included.
func parseRequirements(content []byte) []string {
	var entries []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	return entries
}

// parsePackageJSON merges dependencies and devDependencies as name@version
// entries, each group sorted for stable output.
func parsePackageJSON(content []byte) ([]string, error) {
	var doc struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedManifest, err)
	}

	format := func(m map[string]string) []string {
		out := make([]string, 0, len(m))
		for name, version := range m {
			out = append(out, name+"@"+version)
		}
		sort.Strings(out)
		return out
	}
	return append(format(doc.Dependencies), format(doc.DevDependencies)...), nil
}

// parsePipfile extracts the leading identifier of every key = value line.
// This is deliberately best effort: section headers and malformed lines are
// passed over without complaint.
func (a *Analyzer) parsePipfile(content []byte) []string {
	var entries []string
	for _, m := range a.lib.PipfileKey.FindAllSubmatch(content, -1) {
		entries = append(entries, string(m[1]))
	}
	return entries
}

// parseGoMod lists the direct requirements as path@version.
func parseGoMod(rel string, content []byte) ([]string, error) {
	mf, err := modfile.Parse(rel, content, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedManifest, err)
	}

	var entries []string
	for _, r := range mf.Require {
		if r.Indirect {
			continue
		}
		entries = append(entries, r.Mod.Path+"@"+r.Mod.Version)
	}
	return entries, nil
}

// parsePyproject reads the PEP 621 project dependency array.
func parsePyproject(content []byte) ([]string, error) {
	var doc struct {
		Project struct {
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
	}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedManifest, err)
	}
	return doc.Project.Dependencies, nil
}
