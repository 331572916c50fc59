package updater

import (
	"context"
	"time"
)

// Release is the subset of a GitHub release the checker needs.
type Release struct {
	Version   string    `json:"tag_name"`
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	Published time.Time `json:"published_at"`
	HTMLURL   string    `json:"html_url"`
}

// Priority ranks how urgently an update should be applied.
type Priority string

const (
	PriorityNormal   Priority = "normal"
	PriorityBreaking Priority = "breaking"
	PrioritySecurity Priority = "security"
)

// UpdateRecord describes one component with a newer upstream release.
type UpdateRecord struct {
	Name           string   `json:"name"`
	PackageID      string   `json:"package_id"`
	CurrentVersion string   `json:"current_version"`
	LatestVersion  string   `json:"latest_version"`
	UpstreamURL    string   `json:"upstream_url"`
	Priority       Priority `json:"priority"`
}

// Target is a component to check.
type Target struct {
	Name      string
	PackageID string
	Version   string
}

// ReleaseSource looks up the latest release of a repository.
type ReleaseSource interface {
	LatestRelease(ctx context.Context, repo string) (*Release, error)
}

// TargetLister supplies the components to check.
type TargetLister interface {
	Targets() ([]Target, error)
}

// TargetFunc adapts a function to TargetLister.
type TargetFunc func() ([]Target, error)

// Targets implements TargetLister.
func (f TargetFunc) Targets() ([]Target, error) { return f() }
