package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const (
	githubAPIBase = "https://api.github.com"
)

var (
	// ErrReleaseNotFound is returned when a repository has no published release.
	ErrReleaseNotFound = errors.New("release not found")
	// ErrRateLimited is returned when the GitHub API refuses the request.
	ErrRateLimited = errors.New("GitHub API rate limit exceeded, set GITHUB_TOKEN for higher limits")
)

// GitHub reads releases from the GitHub REST API.
type GitHub struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures a GitHub client.
type Option func(*GitHub)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(g *GitHub) {
		g.httpClient = c
	}
}

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(url string) Option {
	return func(g *GitHub) {
		if url != "" {
			g.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithToken sets the API token. GITHUB_TOKEN is used when unset.
func WithToken(token string) Option {
	return func(g *GitHub) {
		g.token = token
	}
}

// NewGitHub returns a release source backed by the GitHub API.
func NewGitHub(opts ...Option) *GitHub {
	g := &GitHub{
		baseURL:    githubAPIBase,
		httpClient: http.DefaultClient,
		token:      os.Getenv("GITHUB_TOKEN"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// LatestRelease implements ReleaseSource.
func (g *GitHub) LatestRelease(ctx context.Context, repo string) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", g.baseURL, repo)
	return g.fetchRelease(ctx, url)
}

func (g *GitHub) fetchRelease(ctx context.Context, url string) (*Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "conduit-updater")

	// Support optional GitHub token for higher rate limits.
	if g.token != "" {
		req.Header.Set("Authorization", "token "+g.token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrReleaseNotFound
	}
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var release Release
	if err := json.Unmarshal(body, &release); err != nil {
		return nil, fmt.Errorf("parsing release JSON: %w", err)
	}
	return &release, nil
}
