//go:build integration

package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	DataDir      string // CONDUIT_DATA_DIR: registry, cache, logs, history
	ComposerHome string // COMPOSER_HOME: the fake composer installs here
	ComposerBin  string // fake composer executable
	ComposerLog  string // one line per fake composer invocation
}

// fakeComposer installs packages as component directories under
// $COMPOSER_HOME/vendor. Each package gets a manifest publishing "greet"
// and keeping "debug" internal, plus an entry point that echoes its argv.
const fakeComposer = `#!/bin/sh
echo "$*" >> "$FAKE_COMPOSER_LOG"
[ "$1" = "global" ] || exit 2
op="$2"
pkg="${3%%:*}"
dir="$COMPOSER_HOME/vendor/$pkg"
name="${pkg#*/}"
short="${name#conduit-}"

write_component() {
	mkdir -p "$dir/bin"
	printf '{"name":"%s","description":"fake %s","version":"%s","min_host_version":"0.1","commands":["greet"],"internal_commands":["debug"]}\n' "$short" "$short" "$1" > "$dir/component.json"
	cat > "$dir/bin/$name" <<'SCRIPT'
#!/bin/sh
echo "hello from $CONDUIT_COMPONENT (caller=$CONDUIT_CALLER): $*"
SCRIPT
	chmod +x "$dir/bin/$name"
	echo "$1" > "$dir/.version"
}

case "$op" in
require)
	write_component 1.0.0
	;;
update)
	[ -d "$dir" ] || { echo "package $pkg not installed" >&2; exit 1; }
	write_component 1.1.0
	;;
remove)
	[ -d "$dir" ] || { echo "package $pkg not installed" >&2; exit 1; }
	rm -rf "$dir"
	;;
show)
	[ -f "$dir/.version" ] || exit 1
	printf '{"name":"%s","versions":["%s"]}\n' "$pkg" "$(cat "$dir/.version")"
	;;
*)
	exit 2
	;;
esac
`

// setupTestEnv creates isolated temp directories and sets environment variables
// so all conduit operations are sandboxed. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake composer is a shell script")
	}

	env := &testEnv{
		DataDir:      t.TempDir(),
		ComposerHome: t.TempDir(),
	}
	binDir := t.TempDir()
	env.ComposerBin = filepath.Join(binDir, "composer")
	env.ComposerLog = filepath.Join(binDir, "composer.log")
	writeFile(t, env.ComposerBin, fakeComposer)
	if err := os.Chmod(env.ComposerBin, 0755); err != nil {
		t.Fatalf("chmod fake composer: %v", err)
	}

	t.Setenv("CONDUIT_DATA_DIR", env.DataDir)
	t.Setenv("CONDUIT_COMPONENTS", filepath.Join(env.DataDir, "components"))
	t.Setenv("CONDUIT_BUNDLED", t.TempDir())
	t.Setenv("CONDUIT_HOME", "")
	t.Setenv("COMPOSER_HOME", env.ComposerHome)
	t.Setenv("FAKE_COMPOSER_LOG", env.ComposerLog)

	return env
}

// composerCalls returns the recorded fake composer invocations.
func (e *testEnv) composerCalls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(e.ComposerLog)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("reading composer log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

// packagistServer serves p2 metadata. Packages in eligible carry the
// component marker, packages in foreign do not, anything else is a 404.
func packagistServer(t *testing.T, eligible, foreign []string) *httptest.Server {
	t.Helper()
	keywords := map[string][]string{}
	for _, p := range eligible {
		keywords[p] = []string{"cli", "conduit-component"}
	}
	for _, p := range foreign {
		keywords[p] = []string{"cli"}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pkg := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/p2/"), ".json")
		pkg = strings.TrimSuffix(pkg, "~dev")
		kw, ok := keywords[pkg]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]any{
			"packages": map[string]any{
				pkg: []map[string]any{{"name": pkg, "version": "1.0.0", "keywords": kw}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// githubServer serves latest releases keyed by "vendor/name".
func githubServer(t *testing.T, releases map[string]map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		repo := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/repos/"), "/releases/latest")
		rel, ok := releases[repo]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, rel)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertDirExists fails the test if the directory does not exist.
func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory to exist: %s (error: %v)", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory, but it is a file", path)
	}
}
