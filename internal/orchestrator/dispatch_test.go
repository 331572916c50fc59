package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/conduit-cli/conduit/internal/discovery"
	"github.com/conduit-cli/conduit/internal/fault"
	"github.com/conduit-cli/conduit/internal/registry"
)

func TestParseInvocation(t *testing.T) {
	tests := []struct {
		token   string
		comp    string
		sub     string
		wantErr bool
	}{
		{"deploy:run", "deploy", "run", false},
		{"deploy:db:migrate", "deploy", "db:migrate", false},
		{"deploy", "", "", true},
		{":run", "", "", true},
		{"deploy:", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			comp, sub, err := ParseInvocation(tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrBadInvocation) {
					t.Errorf("error does not wrap ErrBadInvocation: %v", err)
				}
				return
			}
			if comp != tt.comp || sub != tt.sub {
				t.Errorf("got (%q, %q)", comp, sub)
			}
		})
	}
}

func TestDispatch_ViaDiscovery(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		h.exec.code = 3
		h.disc.components = []discovery.Component{{Name: "deploy", EntryPoint: "/opt/deploy", Commands: []string{"run"}}}
	})

	opts := map[string]any{"force": true}
	code, err := h.orch.Dispatch(context.Background(), "deploy:run", []string{"prod"}, opts)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if code != 3 {
		t.Errorf("code = %d, want child's 3", code)
	}
	if len(h.exec.calls) != 1 {
		t.Fatalf("calls = %d", len(h.exec.calls))
	}
	call := h.exec.calls[0]
	if call.target.EntryPoint != "/opt/deploy" || call.sub != "run" || call.args[0] != "prod" || call.options["force"] != true {
		t.Errorf("call = %+v", call)
	}
}

func TestDispatch_RegisteredEntryPoint(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell entry point")
	}
	entry := filepath.Join(t.TempDir(), "deploy")
	if err := os.WriteFile(entry, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	h := newHarness(t)
	h.register(t, registry.Component{Name: "deploy", PackageID: "acme/conduit-deploy", EntryPoint: entry})

	if _, err := h.orch.Dispatch(context.Background(), "deploy:anything", nil, nil); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got := h.exec.calls[0].target.EntryPoint; got != entry {
		t.Errorf("entry point = %q, want %q", got, entry)
	}
}

func TestDispatch_InactiveRefused(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		h.disc.components = []discovery.Component{{Name: "deploy", EntryPoint: "/opt/deploy"}}
	})
	h.register(t, registry.Component{Name: "deploy", PackageID: "acme/conduit-deploy", Status: registry.StatusInactive})

	code, err := h.orch.Dispatch(context.Background(), "deploy:run", nil, nil)
	if !errors.Is(err, ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}
	if code == 0 || len(h.exec.calls) != 0 {
		t.Errorf("inactive component ran: code=%d calls=%d", code, len(h.exec.calls))
	}
}

func TestDispatch_UnknownComponentListsAvailable(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		h.disc.components = []discovery.Component{{Name: "lint", EntryPoint: "/opt/lint", Commands: []string{"check"}}}
	})
	h.register(t, registry.Component{Name: "deploy", PackageID: "acme/conduit-deploy", Commands: []string{"run", "status"}})

	_, err := h.orch.Dispatch(context.Background(), "ghost:run", nil, nil)
	var unknown *UnknownError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownError, got %v", err)
	}
	if !fault.Is(err, fault.CategoryValidation) {
		t.Errorf("category = %q", fault.CategoryOf(err))
	}
	if len(unknown.Available) != 2 || unknown.Available[0].Name != "deploy" || unknown.Available[1].Name != "lint" {
		t.Errorf("available = %+v", unknown.Available)
	}
	msg := err.Error()
	for _, want := range []string{"ghost", "deploy: run, status", "lint: check"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestDispatch_UnknownSubcommand(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		h.disc.components = []discovery.Component{{Name: "deploy", EntryPoint: "/opt/deploy", Commands: []string{"run"}}}
	})

	_, err := h.orch.Dispatch(context.Background(), "deploy:migrate", nil, nil)
	var unknown *UnknownError
	if !errors.As(err, &unknown) || unknown.Subcommand != "migrate" {
		t.Fatalf("expected unknown subcommand error, got %v", err)
	}
	if len(h.exec.calls) != 0 {
		t.Error("executor called for unknown subcommand")
	}
}
