// Package patterns holds the regex tables driving the security scanner, the
// task-comment finder and the complexity heuristic. The tables ship as
// embedded YAML and are compiled once at startup, so a malformed expression
// fails fast instead of surfacing mid-scan.
package patterns

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wajiha787/repolens/api/schemas"
)

//go:embed patterns.yaml
var builtinTable []byte

// SecurityPattern is one named entry in the security table. Matching is
// case-insensitive.
type SecurityPattern struct {
	Name        string           `yaml:"name"`
	Severity    schemas.Severity `yaml:"severity"`
	Description string           `yaml:"description"`
	Expr        string           `yaml:"pattern"`

	regex *regexp.Regexp
}

// Regexp returns the compiled expression.
func (p *SecurityPattern) Regexp() *regexp.Regexp { return p.regex }

// TaskPattern matches one task-comment category (TODO, FIXME, ...). The
// first capture group is the comment text. Matching is case-insensitive.
type TaskPattern struct {
	Category string `yaml:"category"`
	Expr     string `yaml:"pattern"`

	regex *regexp.Regexp
}

// Regexp returns the compiled expression.
func (p *TaskPattern) Regexp() *regexp.Regexp { return p.regex }

// tableFile mirrors the YAML document layout.
type tableFile struct {
	Security   []SecurityPattern `yaml:"security"`
	Tasks      []TaskPattern     `yaml:"tasks"`
	Complexity struct {
		Expr       string   `yaml:"pattern"`
		Extensions []string `yaml:"extensions"`
	} `yaml:"complexity"`
	Manifests struct {
		PipfileKey string `yaml:"pipfile_key"`
	} `yaml:"manifests"`
}

// Library is the compiled pattern set used by the analyzers.
type Library struct {
	Security []SecurityPattern
	Tasks    []TaskPattern

	// Complexity counts declaration-like constructs; it only applies to
	// files whose extension is in ComplexityExts.
	Complexity     *regexp.Regexp
	ComplexityExts map[string]bool

	// PipfileKey extracts the leading identifier of a `name = ...` line.
	PipfileKey *regexp.Regexp
}

// SecurityByName returns the named security pattern, or nil.
func (l *Library) SecurityByName(name string) *SecurityPattern {
	for i := range l.Security {
		if l.Security[i].Name == name {
			return &l.Security[i]
		}
	}
	return nil
}

// SecurityBySeverity returns every security pattern of the given severity.
func (l *Library) SecurityBySeverity(sev schemas.Severity) []SecurityPattern {
	var out []SecurityPattern
	for _, p := range l.Security {
		if p.Severity == sev {
			out = append(out, p)
		}
	}
	return out
}

var knownSeverities = map[schemas.Severity]bool{
	schemas.SeverityCritical: true,
	schemas.SeverityHigh:     true,
	schemas.SeverityMedium:   true,
	schemas.SeverityLow:      true,
	schemas.SeverityInfo:     true,
}

// Parse decodes and compiles a pattern table. Sections missing from the
// document inherit the built-in table, so an override file only needs the
// sections it changes.
func Parse(data []byte) (*Library, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding pattern table: %w", err)
	}
	return compile(&file)
}

func compile(file *tableFile) (*Library, error) {
	lib := &Library{}

	for i := range file.Security {
		p := &file.Security[i]
		if p.Name == "" {
			return nil, fmt.Errorf("security pattern %d has no name", i)
		}
		if !knownSeverities[p.Severity] {
			return nil, fmt.Errorf("security pattern %q: unknown severity %q", p.Name, p.Severity)
		}
		re, err := regexp.Compile("(?i)" + p.Expr)
		if err != nil {
			return nil, fmt.Errorf("security pattern %q: %w", p.Name, err)
		}
		p.regex = re
	}
	lib.Security = file.Security

	for i := range file.Tasks {
		p := &file.Tasks[i]
		if p.Category == "" {
			return nil, fmt.Errorf("task pattern %d has no category", i)
		}
		re, err := regexp.Compile("(?i)" + p.Expr)
		if err != nil {
			return nil, fmt.Errorf("task pattern %q: %w", p.Category, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("task pattern %q must capture the comment text", p.Category)
		}
		p.regex = re
	}
	lib.Tasks = file.Tasks

	if file.Complexity.Expr != "" {
		re, err := regexp.Compile(file.Complexity.Expr)
		if err != nil {
			return nil, fmt.Errorf("complexity pattern: %w", err)
		}
		lib.Complexity = re
		lib.ComplexityExts = make(map[string]bool, len(file.Complexity.Extensions))
		for _, ext := range file.Complexity.Extensions {
			lib.ComplexityExts[strings.ToLower(ext)] = true
		}
	}

	if file.Manifests.PipfileKey != "" {
		re, err := regexp.Compile("(?m)" + file.Manifests.PipfileKey)
		if err != nil {
			return nil, fmt.Errorf("pipfile key pattern: %w", err)
		}
		lib.PipfileKey = re
	}

	return lib, nil
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
)

// Default returns the library compiled from the embedded table. The embedded
// data is fixed at build time, so a failure here is a programming error.
func Default() *Library {
	defaultOnce.Do(func() {
		lib, err := Parse(builtinTable)
		if err != nil {
			panic(fmt.Sprintf("builtin pattern table is invalid: %v", err))
		}
		defaultLib = lib
	})
	return defaultLib
}

// LoadFile reads an override table and merges it over the built-in one:
// sections present in the file replace the defaults, absent sections are
// inherited.
func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pattern file: %w", err)
	}

	lib, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("pattern file %s: %w", path, err)
	}

	base := Default()
	if lib.Security == nil {
		lib.Security = base.Security
	}
	if lib.Tasks == nil {
		lib.Tasks = base.Tasks
	}
	if lib.Complexity == nil {
		lib.Complexity = base.Complexity
		lib.ComplexityExts = base.ComplexityExts
	}
	if lib.PipfileKey == nil {
		lib.PipfileKey = base.PipfileKey
	}
	return lib, nil
}
