// Package workspace turns a user-supplied target (a local directory or a
// remote repository URL) into a project session. Remote targets are cloned
// into the workspace directory under the user's home.
package workspace

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/google/go-github/v58/github"
	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/wajiha787/repolens/internal/analysis/core"
	"github.com/wajiha787/repolens/internal/config"
)

// Loader resolves targets into sessions.
type Loader struct {
	cfg    config.WorkspaceConfig
	logger *zap.Logger
}

func NewLoader(cfg config.WorkspaceConfig, logger *zap.Logger) *Loader {
	return &Loader{
		cfg:    cfg,
		logger: logger.Named("workspace"),
	}
}

// Root returns the workspace directory, resolving the ~/.repolens default on
// first use.
func (l *Loader) Root() (string, error) {
	if l.cfg.Root != "" {
		return l.cfg.Root, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".repolens"), nil
}

// Load builds a session for the target. Directories are used in place; URLs
// are cloned fresh into the workspace, so re-loading a URL always reflects
// the remote's current state.
func (l *Loader) Load(ctx context.Context, target string) (*core.Session, error) {
	if IsRemote(target) {
		return l.clone(ctx, target)
	}
	return core.NewSession(target, core.OriginLocal, "")
}

func (l *Loader) clone(ctx context.Context, rawURL string) (*core.Session, error) {
	name, err := repoNameFromURL(rawURL)
	if err != nil {
		return nil, err
	}

	root, err := l.Root()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(root, "repos", fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]))
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace directory: %w", err)
	}

	l.logger.Info("Cloning repository",
		zap.String("url", rawURL),
		zap.String("dir", dir),
		zap.Int("depth", l.cfg.CloneDepth),
	)
	_, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   rawURL,
		Depth: l.cfg.CloneDepth,
	})
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("cloning %s: %w", rawURL, err)
	}

	session, err := core.NewSession(dir, core.OriginRemote, rawURL)
	if err != nil {
		return nil, err
	}
	session.Name = name
	session.Meta = l.fetchGitHubMeta(ctx, rawURL)
	return session, nil
}

// fetchGitHubMeta enriches github.com sessions when a token is configured.
// Best effort only: failures are logged and the session loads without
// metadata.
func (l *Loader) fetchGitHubMeta(ctx context.Context, rawURL string) *core.RepoMeta {
	if l.cfg.GitHubToken == "" {
		return nil
	}
	owner, repo, ok := splitGitHubPath(rawURL)
	if !ok {
		return nil
	}

	client := github.NewClient(nil).WithAuthToken(l.cfg.GitHubToken)
	info, _, err := client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		l.logger.Warn("GitHub metadata lookup failed",
			zap.String("owner", owner), zap.String("repo", repo), zap.Error(err))
		return nil
	}

	return &core.RepoMeta{
		Description:   info.GetDescription(),
		DefaultBranch: info.GetDefaultBranch(),
		Stars:         info.GetStargazersCount(),
	}
}

// IsRemote says whether the target should be cloned rather than opened.
func IsRemote(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "git@")
}

// repoNameFromURL extracts the repository name from a clone URL.
func repoNameFromURL(rawURL string) (string, error) {
	trimmed := strings.TrimSuffix(rawURL, ".git")

	// SSH-style addresses (git@host:owner/repo) are not URLs; split by hand.
	if strings.HasPrefix(trimmed, "git@") {
		if i := strings.LastIndex(trimmed, "/"); i >= 0 && i < len(trimmed)-1 {
			return trimmed[i+1:], nil
		}
		return "", fmt.Errorf("cannot derive repository name from %q", rawURL)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parsing repository URL %q: %w", rawURL, err)
	}
	name := strings.Trim(u.Path, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "", fmt.Errorf("cannot derive repository name from %q", rawURL)
	}
	return name, nil
}

// splitGitHubPath returns the owner and repository for a github.com URL.
func splitGitHubPath(rawURL string) (owner, repo string, ok bool) {
	u, err := url.Parse(strings.TrimSuffix(rawURL, ".git"))
	if err != nil || !strings.EqualFold(u.Hostname(), "github.com") {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
