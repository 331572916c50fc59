package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/conduit-cli/conduit/internal/config"
	"github.com/conduit-cli/conduit/internal/delegate"
	"github.com/conduit-cli/conduit/internal/discovery"
	"github.com/conduit-cli/conduit/internal/history"
	"github.com/conduit-cli/conduit/internal/history/sqlite"
	"github.com/conduit-cli/conduit/internal/installer"
	"github.com/conduit-cli/conduit/internal/logger"
	"github.com/conduit-cli/conduit/internal/metrics"
	"github.com/conduit-cli/conduit/internal/orchestrator"
	"github.com/conduit-cli/conduit/internal/registry"
	"github.com/conduit-cli/conduit/internal/updater"
	"github.com/conduit-cli/conduit/internal/userdata"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// app holds the per-invocation wiring. Collaborators are built on first use
// so that cheap commands never open the history database.
type app struct {
	settings  config.Settings
	logCloser io.Closer
	metrics   *prometheus.Registry

	store       *registry.Store
	historyDB   *sqlite.Sink
	checker     *updater.Checker
	orch        *orchestrator.Orchestrator
	bannerDone  <-chan struct{}
	initialized bool
}

var current = &app{}

// setup loads configuration and installs the logger. It is idempotent.
func setup(cmd *cobra.Command) error {
	if current.initialized {
		return nil
	}
	config.Load()
	s := config.Current()
	current.settings = s

	logPath, err := userdata.GetLogPath()
	if err != nil {
		logPath = ""
	}
	current.logCloser = logger.Init(logger.Config{
		Level:   logger.ParseLevel(s.LogLevel),
		Format:  s.LogFormat,
		File:    logPath,
		Verbose: verbose,
		Stderr:  cmd.ErrOrStderr(),
	})

	if s.MetricsTextfile != "" {
		current.metrics = prometheus.NewRegistry()
		if err := metrics.Register(current.metrics); err != nil {
			slog.Warn("registering metrics failed", "error", err)
			current.metrics = nil
		}
	}

	current.initialized = true
	slog.Debug("starting", "command", cmd.CommandPath(), "version", buildVersion)
	return nil
}

// teardown waits briefly for a background update refresh and releases
// everything setup and the lazy accessors opened.
func teardown() {
	if !current.initialized {
		return
	}
	if current.bannerDone != nil {
		select {
		case <-current.bannerDone:
		case <-time.After(current.settings.RequestTimeout):
		}
	}
	if current.metrics != nil {
		if err := metrics.WriteTextfile(current.settings.MetricsTextfile, current.metrics); err != nil {
			slog.Warn("writing metrics failed", "error", err)
		}
	}
	if current.historyDB != nil {
		_ = current.historyDB.Close()
	}
	if current.logCloser != nil {
		_ = current.logCloser.Close()
	}
	current = &app{}
}

func registryStore() (*registry.Store, error) {
	if current.store != nil {
		return current.store, nil
	}
	path, err := userdata.GetRegistryPath()
	if err != nil {
		return nil, fmt.Errorf("resolving registry path: %w", err)
	}
	current.store = registry.New(path)
	return current.store, nil
}

// historyStore opens the audit database. Failures degrade to a no-op store.
func historyStore() (history.Sink, history.Reader) {
	if current.historyDB != nil {
		return current.historyDB, current.historyDB
	}
	path, err := userdata.GetHistoryPath()
	if err == nil {
		err = userdata.EnsureParent(path)
	}
	if err == nil {
		current.historyDB, err = sqlite.New(path)
	}
	if err != nil {
		slog.Warn("history unavailable", "error", err)
		return history.Nop{}, history.Nop{}
	}
	return current.historyDB, current.historyDB
}

func updateChecker() (*updater.Checker, error) {
	if current.checker != nil {
		return current.checker, nil
	}
	store, err := registryStore()
	if err != nil {
		return nil, err
	}
	cachePath, err := userdata.GetUpdateCachePath()
	if err != nil {
		return nil, fmt.Errorf("resolving update cache: %w", err)
	}

	s := current.settings
	source := updater.NewGitHub(updater.WithBaseURL(s.GitHubAPIURL))
	targets := updater.TargetFunc(func() ([]updater.Target, error) {
		components, err := store.List()
		if err != nil {
			return nil, err
		}
		out := make([]updater.Target, 0, len(components))
		for _, c := range components {
			out = append(out, updater.Target{Name: c.Name, PackageID: c.PackageID, Version: c.Version})
		}
		return out, nil
	})
	current.checker = updater.NewChecker(source, targets,
		updater.NewCacheFile(afero.NewOsFs(), cachePath),
		updater.WithInterval(s.CheckInterval),
		updater.WithRequestTimeout(s.RequestTimeout),
		updater.WithLogger(logger.ForComponent("updater")),
	)
	return current.checker, nil
}

func newDiscoverer() *discovery.Discoverer {
	return discovery.New(discovery.DefaultRoots(),
		discovery.WithHostVersion(buildVersion),
		discovery.WithLogger(logger.ForComponent("discovery")),
	)
}

// orch builds the orchestrator from the loaded settings.
func orch() (*orchestrator.Orchestrator, error) {
	if current.orch != nil {
		return current.orch, nil
	}
	s := current.settings

	store, err := registryStore()
	if err != nil {
		return nil, err
	}
	checker, err := updateChecker()
	if err != nil {
		return nil, err
	}
	sink, _ := historyStore()

	pm := installer.NewComposer(s.PackageManager, s.InstallTimeout)
	eligibility := installer.NewPackagist(s.PackagistURL, s.RequiredMarker,
		installer.WithRequestTimeout(s.RequestTimeout))
	inst := installer.New(pm, eligibility, logger.ForComponent("installer"))

	del := delegate.New(
		delegate.WithTimeout(s.DelegateTimeout),
		delegate.WithHostVersion(buildVersion),
		delegate.WithLogger(logger.ForComponent("delegate")),
	)

	current.orch = orchestrator.New(orchestrator.Deps{
		Installer:  inst,
		Remover:    inst,
		Upgrader:   inst,
		Lister:     store,
		Registrar:  store,
		Discoverer: newDiscoverer(),
		Checker:    checker,
		Executor:   del,
		History:    sink,
	},
		orchestrator.WithDefaultVendor(s.DefaultVendor),
		orchestrator.WithPackageManager(s.PackageManager),
		orchestrator.WithLogger(logger.ForComponent("orchestrator")),
	)
	return current.orch, nil
}

// showBanner prints cached component updates without touching the network.
func showBanner(w io.Writer) {
	if !current.settings.UpdateBanner {
		return
	}
	checker, err := updateChecker()
	if err != nil {
		return
	}
	current.bannerDone = checker.CheckAndPrintBanner(w)
}
