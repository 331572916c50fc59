package config

import (
	"time"

	"github.com/conduit-cli/conduit/internal/branding"
	"github.com/spf13/viper"
)

// Setting keys.
const (
	KeyCheckInterval   = "update.check_interval"
	KeyUpdateBanner    = "update.banner"
	KeyRequestTimeout  = "update.request_timeout"
	KeyDelegateTimeout = "delegate.timeout"
	KeyInstallTimeout  = "install.timeout"
	KeyDefaultVendor   = "install.default_vendor"
	KeyRequiredMarker  = "install.required_marker"
	KeyPackageManager  = "package_manager.binary"
	KeyPackagistURL    = "packagist.url"
	KeyGitHubAPIURL    = "github.api_url"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyMetricsTextfile = "metrics.textfile"
)

// Defaults for the lifecycle timeouts.
const (
	DefaultCheckInterval   = 6 * time.Hour
	DefaultRequestTimeout  = 5 * time.Second
	DefaultDelegateTimeout = 60 * time.Second
	DefaultInstallTimeout  = 5 * time.Minute
)

// Settings is the typed view of the configuration used to wire the host.
type Settings struct {
	CheckInterval   time.Duration
	UpdateBanner    bool
	RequestTimeout  time.Duration
	DelegateTimeout time.Duration
	InstallTimeout  time.Duration
	DefaultVendor   string
	RequiredMarker  string
	PackageManager  string
	PackagistURL    string
	GitHubAPIURL    string
	LogLevel        string
	LogFormat       string
	MetricsTextfile string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyCheckInterval, DefaultCheckInterval)
	v.SetDefault(KeyUpdateBanner, true)
	v.SetDefault(KeyRequestTimeout, DefaultRequestTimeout)
	v.SetDefault(KeyDelegateTimeout, DefaultDelegateTimeout)
	v.SetDefault(KeyInstallTimeout, DefaultInstallTimeout)
	v.SetDefault(KeyDefaultVendor, branding.DefaultVendor())
	v.SetDefault(KeyRequiredMarker, branding.ComponentMarker())
	v.SetDefault(KeyPackageManager, "composer")
	v.SetDefault(KeyPackagistURL, "https://repo.packagist.org")
	v.SetDefault(KeyGitHubAPIURL, "https://api.github.com")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyMetricsTextfile, "")
}

// Current returns the settings from the global Viper instance.
// Load must have been called first for file and env values to apply.
func Current() Settings {
	return FromViper(viper.GetViper())
}

// FromViper builds Settings from v, applying defaults for unset keys.
func FromViper(v *viper.Viper) Settings {
	setDefaults(v)
	return Settings{
		CheckInterval:   positiveOr(v.GetDuration(KeyCheckInterval), DefaultCheckInterval),
		UpdateBanner:    v.GetBool(KeyUpdateBanner),
		RequestTimeout:  positiveOr(v.GetDuration(KeyRequestTimeout), DefaultRequestTimeout),
		DelegateTimeout: positiveOr(v.GetDuration(KeyDelegateTimeout), DefaultDelegateTimeout),
		InstallTimeout:  positiveOr(v.GetDuration(KeyInstallTimeout), DefaultInstallTimeout),
		DefaultVendor:   v.GetString(KeyDefaultVendor),
		RequiredMarker:  v.GetString(KeyRequiredMarker),
		PackageManager:  v.GetString(KeyPackageManager),
		PackagistURL:    v.GetString(KeyPackagistURL),
		GitHubAPIURL:    v.GetString(KeyGitHubAPIURL),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
		MetricsTextfile: v.GetString(KeyMetricsTextfile),
	}
}

func positiveOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
