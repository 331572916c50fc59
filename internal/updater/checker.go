package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultRequestTimeout bounds each upstream query.
const DefaultRequestTimeout = 5 * time.Second

// Checker finds components with newer upstream releases.
type Checker struct {
	source   ReleaseSource
	targets  TargetLister
	cache    *CacheFile
	interval time.Duration
	timeout  time.Duration
	classify Classifier
	now      func() time.Time
	logger   *slog.Logger
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithInterval sets how long a completed check is reused.
func WithInterval(d time.Duration) CheckerOption {
	return func(c *Checker) { c.interval = d }
}

// WithRequestTimeout bounds each upstream query.
func WithRequestTimeout(d time.Duration) CheckerOption {
	return func(c *Checker) { c.timeout = d }
}

// WithClassifier replaces the release priority heuristic.
func WithClassifier(fn Classifier) CheckerOption {
	return func(c *Checker) { c.classify = fn }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) CheckerOption {
	return func(c *Checker) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CheckerOption {
	return func(c *Checker) { c.logger = l }
}

// NewChecker returns a Checker. A nil cache disables caching.
func NewChecker(source ReleaseSource, targets TargetLister, cache *CacheFile, opts ...CheckerOption) *Checker {
	c := &Checker{
		source:   source,
		targets:  targets,
		cache:    cache,
		interval: DefaultCheckInterval,
		timeout:  DefaultRequestTimeout,
		classify: ClassifyRelease,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default().With("component", "updater")
	}
	return c
}

// QuickCheck returns pending updates, reusing a fresh cache when possible.
func (c *Checker) QuickCheck(ctx context.Context) ([]UpdateRecord, error) {
	return c.Check(ctx, false)
}

// Check returns pending updates sorted by name. Unless force is set, a cache
// younger than the check interval that covers the same components is
// returned without any network traffic.
func (c *Checker) Check(ctx context.Context, force bool) ([]UpdateRecord, error) {
	targets, err := c.targets.Targets()
	if err != nil {
		return nil, fmt.Errorf("listing components: %w", err)
	}

	if !force && c.cache != nil {
		cached, err := c.cache.Load()
		if err != nil {
			c.logger.Debug("ignoring unreadable update cache", "error", err)
		} else if !IsCacheStale(cached, c.interval, c.now()) && cached.Covers(targets) {
			return append([]UpdateRecord(nil), cached.Updates...), nil
		}
	}

	updates, failed := c.fetchAll(ctx, targets)

	if c.cache != nil {
		// Failed lookups stay out of Checked so the next run queries them again.
		checked := make(map[string]string, len(targets))
		for _, t := range targets {
			if !failed[t.Name] {
				checked[t.Name] = t.Version
			}
		}
		err := c.cache.Save(&CheckCache{
			CheckedAt: c.now(),
			Checked:   checked,
			Updates:   updates,
		})
		if err != nil {
			c.logger.Warn("saving update cache failed", "error", err)
		}
	}
	return updates, nil
}

type fetchResult struct {
	name   string
	record UpdateRecord
	update bool
	failed bool
}

// fetchAll queries every target concurrently. Each query gets its own
// timeout; failed or timed-out queries are logged, omitted from the updates
// and reported by name.
func (c *Checker) fetchAll(ctx context.Context, targets []Target) ([]UpdateRecord, map[string]bool) {
	results := make(chan fetchResult, len(targets))
	var wg sync.WaitGroup

	for _, t := range targets {
		if !strings.Contains(t.PackageID, "/") {
			c.logger.Debug("no upstream repository", "name", t.Name)
			continue
		}
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			results <- c.checkOne(ctx, t)
		}(t)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	updates := []UpdateRecord{}
	failed := map[string]bool{}
	for r := range results {
		switch {
		case r.failed:
			failed[r.name] = true
		case r.update:
			updates = append(updates, r.record)
		}
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].Name < updates[j].Name })
	return updates, failed
}

func (c *Checker) checkOne(ctx context.Context, t Target) fetchResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	log := c.logger.With("name", t.Name, "package", t.PackageID)

	release, err := c.source.LatestRelease(ctx, t.PackageID)
	if errors.Is(err, ErrReleaseNotFound) {
		log.Debug("no published release")
		return fetchResult{name: t.Name}
	}
	if err != nil {
		log.Warn("update check failed", "error", err)
		return fetchResult{name: t.Name, failed: true}
	}

	newer, err := IsNewer(t.Version, release.Version)
	if err != nil {
		log.Debug("versions not comparable", "current", t.Version, "latest", release.Version, "error", err)
		return fetchResult{name: t.Name}
	}
	if !newer {
		return fetchResult{name: t.Name}
	}

	rec := UpdateRecord{
		Name:           t.Name,
		PackageID:      t.PackageID,
		CurrentVersion: t.Version,
		LatestVersion:  release.Version,
		UpstreamURL:    release.HTMLURL,
		Priority:       c.classify(release),
	}
	return fetchResult{name: t.Name, record: rec, update: true}
}
