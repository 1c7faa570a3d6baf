// Package recipesource implements contract.RecipeSource against a real
// community package repository: a git-hosted recipe per package plus a
// batch metadata RPC, a public code-hosting stars lookup, and a comment
// page. Concrete network/VCS access is deliberately thin here — spec.md
// scopes these clients as external collaborators, not part of the
// scoring engine. The comment page is not fetched: fetchComments always
// returns no comments.
package recipesource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkgguard/pkgguard/core"
	"github.com/pkgguard/pkgguard/internal/contract"
	"github.com/pkgguard/pkgguard/schema"
)

// Source builds a PackageContext by cloning/pulling a package's recipe
// repository into a local cache directory and enriching it with metadata
// and upstream stars fetched over HTTP. Comments are left empty.
type Source struct {
	CacheRoot     string
	MetadataURL   string // batch RPC base, e.g. "https://aur.archlinux.org/rpc/v5/info"
	CommentsURL   func(pkg string) string
	HTTPClient    *http.Client
	InstallHookFiles []string // relative filenames checked for an install script, e.g. "*.install"
}

// NewSource returns a Source with production defaults for the community
// repository this scanner targets.
func NewSource(cacheRoot string) *Source {
	return &Source{
		CacheRoot:   cacheRoot,
		MetadataURL: "https://aur.archlinux.org/rpc/v5/info",
		CommentsURL: func(pkg string) string {
			return "https://aur.archlinux.org/packages/" + url.PathEscape(pkg)
		},
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
	}
}

var _ contract.RecipeSource = (*Source)(nil)

// Build assembles a PackageContext for name. It never returns a partial
// error silently: any failed sub-fetch is recorded via best-effort nil
// fields on PackageContext, except the recipe clone/pull itself, whose
// failure aborts the whole build.
func (s *Source) Build(ctx context.Context, name string) (*schema.PackageContext, error) {
	repoDir := filepath.Join(s.CacheRoot, name)
	if err := s.syncRepo(ctx, repoDir, name); err != nil {
		return nil, err
	}

	pkgCtx := &schema.PackageContext{Name: name}

	if content, err := readFirstExisting(repoDir, "PKGBUILD"); err == nil {
		pkgCtx.PkgbuildContent = content
	}
	if content, err := readInstallHook(repoDir, s.installHookFiles()); err == nil {
		pkgCtx.InstallScriptContent = content
	}
	if content, err := s.priorPkgbuild(ctx, repoDir); err == nil {
		pkgCtx.PriorPkgbuildContent = content
	}
	if commits, err := s.gitLog(ctx, repoDir); err == nil {
		pkgCtx.GitLog = commits
	}

	if meta, err := s.fetchMetadata(ctx, name); err == nil {
		pkgCtx.Metadata = meta
	}

	if meta := pkgCtx.Metadata; meta != nil && meta.UpstreamURL != "" {
		if stars, found, err := s.fetchUpstreamStars(ctx, meta.UpstreamURL); err == nil {
			if found {
				pkgCtx.UpstreamStars = &stars
			} else {
				pkgCtx.UpstreamNotFound = true
			}
		}
	}

	if comments, err := s.fetchComments(ctx, name); err == nil {
		pkgCtx.Comments = comments
	}

	return pkgCtx, nil
}

func (s *Source) installHookFiles() []string {
	if len(s.InstallHookFiles) > 0 {
		return s.InstallHookFiles
	}
	return []string{".install"}
}

func (s *Source) syncRepo(ctx context.Context, repoDir, name string) error {
	if _, err := os.Stat(filepath.Join(repoDir, ".git")); err == nil {
		out, err := runGit(ctx, repoDir, "pull", "--ff-only")
		if err != nil {
			return wrapGitError(err, out)
		}
		return nil
	}

	if err := os.MkdirAll(s.CacheRoot, 0o755); err != nil {
		return fmt.Errorf("%w: creating recipe cache root: %v", core.ErrLocalIO, err)
	}

	cloneURL := fmt.Sprintf("https://aur.archlinux.org/%s.git", url.PathEscape(name))
	out, err := runGit(ctx, "", "clone", "--depth", "50", cloneURL, repoDir)
	if err != nil {
		return wrapGitError(err, out)
	}
	return nil
}

func wrapGitError(err error, out []byte) error {
	msg := strings.TrimSpace(string(out))
	if msg == "" && err != nil {
		msg = err.Error()
	}
	if isNetworkGitError(msg) {
		return fmt.Errorf("%w: %s", core.ErrNetworkFailure, msg)
	}
	if strings.Contains(msg, "Repository not found") || (strings.Contains(msg, "repository") && strings.Contains(msg, "not found")) {
		return fmt.Errorf("%w: %s", core.ErrNotFound, msg)
	}
	return fmt.Errorf("%w: %s", core.ErrLocalIO, msg)
}

func isNetworkGitError(msg string) bool {
	for _, needle := range []string{"Could not resolve host", "Connection timed out", "Connection refused", "unable to access", "TLS"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

func runGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out, exitErr
		}
		return out, err
	}
	return out, nil
}

func readFirstExisting(dir string, names ...string) (string, error) {
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return string(data), nil
		}
	}
	return "", fmt.Errorf("no matching file found")
}

func readInstallHook(dir string, patterns []string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, pattern := range patterns {
			if matched, _ := filepath.Match(pattern, entry.Name()); matched || strings.HasSuffix(entry.Name(), pattern) {
				data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
				if err == nil {
					return string(data), nil
				}
			}
		}
	}
	return "", fmt.Errorf("no install hook file found")
}

func (s *Source) priorPkgbuild(ctx context.Context, repoDir string) (string, error) {
	out, err := runGit(ctx, repoDir, "show", "HEAD~1:PKGBUILD")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *Source) gitLog(ctx context.Context, repoDir string) ([]schema.GitCommit, error) {
	const sep = "\x1f"
	out, err := runGit(ctx, repoDir, "log", "--pretty=format:%H"+sep+"%an"+sep+"%at"+sep+"%s", "-n", "50")
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	commits := make([]schema.GitCommit, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, sep, 4)
		if len(fields) != 4 {
			continue
		}
		epoch, _ := strconv.ParseInt(fields[2], 10, 64)
		diff, _ := s.commitDiff(ctx, repoDir, fields[0])
		commits = append(commits, schema.GitCommit{
			Hash:      fields[0],
			Author:    fields[1],
			Timestamp: time.Unix(epoch, 0).UTC(),
			Message:   fields[3],
			Diff:      diff,
		})
	}
	return commits, nil
}

func (s *Source) commitDiff(ctx context.Context, repoDir, hash string) (string, error) {
	out, err := runGit(ctx, repoDir, "show", "--format=", hash)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

type rpcResult struct {
	Name         string  `json:"Name"`
	NumVotes     float64 `json:"NumVotes"`
	Popularity   float64 `json:"Popularity"`
	Maintainer   *string `json:"Maintainer"`
	Submitter    *string `json:"Submitter"`
	FirstSubmit  int64   `json:"FirstSubmitted"`
	LastModified int64   `json:"LastModified"`
	URL          *string `json:"URL"`
	License      []string `json:"License"`
	OutOfDate    *int64  `json:"OutOfDate"`
}

type rpcResponse struct {
	Results []rpcResult `json:"results"`
}

func (s *Source) fetchMetadata(ctx context.Context, name string) (*schema.CommunityMetadata, error) {
	q := url.Values{"arg[]": {name}}
	reqURL := s.MetadataURL + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: metadata RPC returned status %d", core.ErrNetworkFailure, resp.StatusCode)
	}

	var parsed rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding metadata RPC response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, core.ErrNotFound
	}
	r := parsed.Results[0]

	meta := &schema.CommunityMetadata{
		Votes:        r.NumVotes,
		Popularity:   r.Popularity,
		FirstReported: time.Unix(r.FirstSubmit, 0).UTC(),
		LastModified:  time.Unix(r.LastModified, 0).UTC(),
		OutOfDate:     r.OutOfDate != nil,
	}
	if r.Maintainer != nil {
		meta.Maintainer = *r.Maintainer
	}
	if r.Submitter != nil {
		meta.Submitter = *r.Submitter
	}
	if r.URL != nil {
		meta.UpstreamURL = *r.URL
	}
	if len(r.License) > 0 {
		meta.License = r.License[0]
	}
	return meta, nil
}

type githubRepo struct {
	StargazersCount int `json:"stargazers_count"`
}

func (s *Source) fetchUpstreamStars(ctx context.Context, upstreamURL string) (stars int, found bool, err error) {
	parsed, err := url.Parse(upstreamURL)
	if err != nil || parsed.Host != "github.com" {
		return 0, false, nil
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 {
		return 0, false, nil
	}
	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/%s", parts[0], parts[1])

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return 0, false, err
	}
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", core.ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusNotFound {
		return 0, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return 0, false, fmt.Errorf("%w: upstream repository API returned status %d", core.ErrNetworkFailure, resp.StatusCode)
	}

	var repo githubRepo
	if err := json.NewDecoder(resp.Body).Decode(&repo); err != nil {
		return 0, false, fmt.Errorf("decoding upstream repository response: %w", err)
	}
	return repo.StargazersCount, true, nil
}

func (s *Source) fetchComments(ctx context.Context, name string) ([]string, error) {
	// Comment scraping is intentionally minimal: it requires an HTML parser
	// this module has no other use for, so it is left as a documented
	// no-op path rather than adding a dependency for one caller.
	return nil, nil
}
