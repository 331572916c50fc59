package installer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"
)

// DefaultPackagistURL is the public metadata registry.
const DefaultPackagistURL = "https://repo.packagist.org"

// Eligibility decides whether a package may be installed as a component.
type Eligibility interface {
	CheckEligible(ctx context.Context, packageID string, dev bool) error
}

// Packagist checks eligibility against Packagist p2 metadata: the package
// must exist and its newest version must carry the marker keyword.
type Packagist struct {
	baseURL    string
	marker     string
	httpClient *http.Client
	timeout    time.Duration
}

// PackagistOption configures a Packagist client.
type PackagistOption func(*Packagist)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) PackagistOption {
	return func(p *Packagist) {
		p.httpClient = c
	}
}

// WithRequestTimeout bounds each metadata request.
func WithRequestTimeout(d time.Duration) PackagistOption {
	return func(p *Packagist) {
		p.timeout = d
	}
}

// NewPackagist returns a client for the registry at baseURL requiring marker.
func NewPackagist(baseURL, marker string, opts ...PackagistOption) *Packagist {
	if baseURL == "" {
		baseURL = DefaultPackagistURL
	}
	p := &Packagist{
		baseURL:    strings.TrimRight(baseURL, "/"),
		marker:     marker,
		httpClient: http.DefaultClient,
		timeout:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type p2Response struct {
	Packages map[string][]p2Version `json:"packages"`
}

type p2Version struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Keywords []string `json:"keywords"`
}

// CheckEligible implements Eligibility. It returns an error wrapping
// ErrPackageNotFound, ErrMissingMarker or ErrMetadataUnavailable.
func (p *Packagist) CheckEligible(ctx context.Context, packageID string, dev bool) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	file := packageID
	if dev {
		file += "~dev"
	}
	url := fmt.Sprintf("%s/p2/%s.json", p.baseURL, file)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", ErrMetadataUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "conduit-installer")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrPackageNotFound, packageID)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: registry returned status %d", ErrMetadataUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("%w: reading response body: %v", ErrMetadataUnavailable, err)
	}

	var meta p2Response
	if err := json.Unmarshal(body, &meta); err != nil {
		return fmt.Errorf("%w: parsing metadata: %v", ErrMetadataUnavailable, err)
	}
	versions := meta.Packages[packageID]
	if len(versions) == 0 {
		return fmt.Errorf("%w: %s", ErrPackageNotFound, packageID)
	}

	// The newest version comes first and carries the full field set.
	if !slices.Contains(versions[0].Keywords, p.marker) {
		return fmt.Errorf("%w: %s lacks the %q keyword", ErrMissingMarker, packageID, p.marker)
	}
	return nil
}
