package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/conduit-cli/conduit/internal/platform"
)

// fakeComposer writes a script that records its argv, one per line, and
// prints canned output.
func fakeComposer(t *testing.T, body string) (bin, argvFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a Unix shell")
	}
	dir := t.TempDir()
	argvFile = filepath.Join(dir, "argv")
	bin = filepath.Join(dir, "composer")
	script := "#!/bin/sh\n" +
		`for a in "$@"; do printf '%s\n' "$a" >> "` + argvFile + `"; done` + "\n" +
		`printf 'interactive=%s\n' "$COMPOSER_NO_INTERACTION" >> "` + argvFile + `"` + "\n" +
		body
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return bin, argvFile
}

func readArgv(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading argv: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestComposer_Argv(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Composer) (Result, error)
		want []string
	}{
		{"require", func(c *Composer) (Result, error) {
			return c.Require(context.Background(), "acme/conduit-deploy", false)
		}, []string{"global", "require", "acme/conduit-deploy", "--no-interaction"}},
		{"require dev", func(c *Composer) (Result, error) {
			return c.Require(context.Background(), "acme/conduit-deploy", true)
		}, []string{"global", "require", "acme/conduit-deploy:dev-main", "--no-interaction"}},
		{"remove", func(c *Composer) (Result, error) {
			return c.Remove(context.Background(), "acme/conduit-deploy")
		}, []string{"global", "remove", "acme/conduit-deploy", "--no-interaction"}},
		{"update", func(c *Composer) (Result, error) {
			return c.Update(context.Background(), "acme/conduit-deploy")
		}, []string{"global", "update", "acme/conduit-deploy", "--no-interaction"}},
		{"show", func(c *Composer) (Result, error) {
			return c.Show(context.Background(), "acme/conduit-deploy")
		}, []string{"global", "show", "acme/conduit-deploy", "--format=json", "--no-interaction"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin, argvFile := fakeComposer(t, "echo done\n")
			res, err := tt.call(NewComposer(bin, time.Minute))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !res.Success || res.ExitCode != 0 {
				t.Errorf("result = %+v", res)
			}
			got := readArgv(t, argvFile)
			want := append(tt.want, "interactive=1")
			if strings.Join(got, "|") != strings.Join(want, "|") {
				t.Errorf("argv = %v, want %v", got, want)
			}
		})
	}
}

func TestComposer_FailureCaptured(t *testing.T) {
	bin, _ := fakeComposer(t, "echo partial; echo 'Could not find package' >&2; exit 2\n")
	res, err := NewComposer(bin, time.Minute).Require(context.Background(), "acme/x", false)
	if err != nil {
		t.Fatalf("non-zero exit should not be a run error: %v", err)
	}
	if res.Success || res.ExitCode != 2 {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(res.Output, "partial") || !strings.Contains(res.ErrorOutput, "Could not find package") {
		t.Errorf("output not captured: %+v", res)
	}
}

func TestComposer_Timeout(t *testing.T) {
	bin, _ := fakeComposer(t, "sleep 5\n")
	c := NewComposer(bin, 150*time.Millisecond)
	c.Runner = platform.ExecRunner{WaitDelay: 100 * time.Millisecond}
	res, err := c.Require(context.Background(), "acme/x", false)
	if !errors.Is(err, platform.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if res.Success {
		t.Error("timed out run reported success")
	}
}

func TestParseShowVersion(t *testing.T) {
	tests := []struct {
		out, want string
	}{
		{`{"name":"acme/x","versions":["1.4.0"]}`, "1.4.0"},
		{`{"name":"acme/x","version":"v2.0.1"}`, "v2.0.1"},
		{`not json`, ""},
		{`{}`, ""},
	}
	for _, tt := range tests {
		if got := parseShowVersion(tt.out); got != tt.want {
			t.Errorf("parseShowVersion(%q) = %q, want %q", tt.out, got, tt.want)
		}
	}
}
