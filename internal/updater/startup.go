package updater

import (
	"context"
	"fmt"
	"io"

	"github.com/conduit-cli/conduit/internal/branding"
)

// CheckAndPrintBanner prints cached pending updates to w. It never blocks on
// the network: when the cache is stale a background goroutine refreshes it
// for the next invocation. The returned channel closes once any refresh has
// finished.
func (c *Checker) CheckAndPrintBanner(w io.Writer) <-chan struct{} {
	done := make(chan struct{})
	if c.cache == nil {
		close(done)
		return done
	}

	cache, err := c.cache.Load()
	if err != nil {
		// Silently ignore cache errors.
		close(done)
		return done
	}

	if cache != nil && len(cache.Updates) > 0 {
		PrintUpdateBanner(w, cache.Updates)
	}

	stale := IsCacheStale(cache, c.interval, c.now())
	if !stale {
		if targets, err := c.targets.Targets(); err == nil && !cache.Covers(targets) {
			stale = true
		}
	}
	if !stale {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), 2*c.timeout)
		defer cancel()
		if _, err := c.Check(ctx, true); err != nil {
			c.logger.Debug("background update check failed", "error", err)
		}
	}()
	return done
}

// PrintUpdateBanner prints the update notification to w.
func PrintUpdateBanner(w io.Writer, updates []UpdateRecord) {
	fmt.Fprintf(w, "\nComponent updates available:\n")
	for _, u := range updates {
		tag := ""
		if u.Priority != PriorityNormal && u.Priority != "" {
			tag = " [" + string(u.Priority) + "]"
		}
		fmt.Fprintf(w, "    %s %s -> %s%s\n", u.Name, u.CurrentVersion, u.LatestVersion, tag)
	}
	fmt.Fprintf(w, "    Run `%s update` to upgrade\n\n", branding.CLIName())
}
