package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
)

// GitHub reads descriptions stored in GitHub repositories.
type GitHub struct {
	client *github.Client
}

// NewGitHub returns a GitHub fetcher. An empty token makes anonymous
// requests, which only reach public repositories.
func NewGitHub(token string) *GitHub {
	if token == "" {
		return &GitHub{client: github.NewClient(nil)}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &GitHub{client: github.NewClient(tc)}
}

// NewGitHubWithBase points the fetcher at a custom API base URL (for
// GitHub Enterprise and tests).
func NewGitHubWithBase(token, baseURL string) (*GitHub, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	g := NewGitHub(token)
	g.client.BaseURL = u
	return g, nil
}

// Fetch returns the content of path in owner/repo at ref. An empty ref
// reads the default branch.
func (g *GitHub) Fetch(ctx context.Context, owner, repo, path, ref string) (string, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}

	file, dir, _, err := g.client.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		return "", fmt.Errorf("fetching %s/%s/%s: %w", owner, repo, path, err)
	}
	if file == nil {
		return "", fmt.Errorf("%s/%s/%s is a directory with %d entries", owner, repo, path, len(dir))
	}

	// Files over 1 MB come back without inline content.
	if file.GetEncoding() == "none" {
		rc, _, err := g.client.Repositories.DownloadContents(ctx, owner, repo, path, opts)
		if err != nil {
			return "", fmt.Errorf("downloading %s/%s/%s: %w", owner, repo, path, err)
		}
		defer rc.Close()
		return readAll(rc, path, MaxSize)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decoding %s/%s/%s: %w", owner, repo, path, err)
	}
	return content, nil
}

// ParseRepo splits "owner/repo".
func ParseRepo(s string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(s, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q: want owner/repo", s)
	}
	return owner, repo, nil
}
