package installer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/conduit-cli/conduit/internal/fault"
	"github.com/conduit-cli/conduit/internal/platform"
)

type fakePM struct {
	calls   []string
	result  Result
	err     error
	showOut string
}

func (f *fakePM) record(op, pkg string) (Result, error) {
	f.calls = append(f.calls, op+" "+pkg)
	return f.result, f.err
}

func (f *fakePM) Require(_ context.Context, pkg string, _ bool) (Result, error) {
	return f.record("require", pkg)
}
func (f *fakePM) Remove(_ context.Context, pkg string) (Result, error) {
	return f.record("remove", pkg)
}
func (f *fakePM) Update(_ context.Context, pkg string) (Result, error) {
	return f.record("update", pkg)
}
func (f *fakePM) Show(_ context.Context, pkg string) (Result, error) {
	f.calls = append(f.calls, "show "+pkg)
	return Result{Success: f.err == nil, Output: f.showOut}, f.err
}

type fakeEligibility struct {
	err   error
	calls int
}

func (f *fakeEligibility) CheckEligible(context.Context, string, bool) error {
	f.calls++
	return f.err
}

func TestInstall_Success(t *testing.T) {
	pm := &fakePM{result: Result{Success: true, Output: "ok"}}
	inst := New(pm, &fakeEligibility{}, nil)

	res, err := inst.Install(context.Background(), "acme/conduit-deploy", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.Output != "ok" {
		t.Errorf("result = %+v", res)
	}
	if len(pm.calls) != 1 || pm.calls[0] != "require acme/conduit-deploy" {
		t.Errorf("calls = %v", pm.calls)
	}
}

func TestInstall_GatesNeverSpawn(t *testing.T) {
	tests := []struct {
		name        string
		pkg         string
		eligibility error
		category    fault.Category
		eligCalls   int
	}{
		{"syntax", "Bad Name", nil, fault.CategoryValidation, 0},
		{"not found", "acme/missing", fmt.Errorf("%w: acme/missing", ErrPackageNotFound), fault.CategoryEligibility, 1},
		{"missing marker", "acme/lib", fmt.Errorf("%w: acme/lib", ErrMissingMarker), fault.CategoryEligibility, 1},
		{"network", "acme/x", fmt.Errorf("%w: dial tcp", ErrMetadataUnavailable), fault.CategoryNetwork, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := &fakePM{result: Result{Success: true}}
			elig := &fakeEligibility{err: tt.eligibility}
			_, err := New(pm, elig, nil).Install(context.Background(), tt.pkg, false)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := fault.CategoryOf(err); got != tt.category {
				t.Errorf("category = %q, want %q", got, tt.category)
			}
			if len(pm.calls) != 0 {
				t.Errorf("package manager was invoked: %v", pm.calls)
			}
			if elig.calls != tt.eligCalls {
				t.Errorf("eligibility calls = %d, want %d", elig.calls, tt.eligCalls)
			}
		})
	}
}

func TestInstall_PackageManagerFailure(t *testing.T) {
	pm := &fakePM{result: Result{Success: false, ExitCode: 2, ErrorOutput: "boom"}}
	res, err := New(pm, &fakeEligibility{}, nil).Install(context.Background(), "acme/x", false)
	if !errors.Is(err, ErrPackageManagerFailed) {
		t.Fatalf("err = %v, want ErrPackageManagerFailed", err)
	}
	if !fault.Is(err, fault.CategoryProcess) {
		t.Errorf("expected process category, got %q", fault.CategoryOf(err))
	}
	if res.ExitCode != 2 || res.ErrorOutput != "boom" {
		t.Errorf("result not propagated: %+v", res)
	}
}

func TestInstall_SpawnFailure(t *testing.T) {
	pm := &fakePM{result: Result{ExitCode: platform.ExitSpawnError}, err: platform.ErrSpawn}
	_, err := New(pm, &fakeEligibility{}, nil).Install(context.Background(), "acme/x", false)
	if !errors.Is(err, platform.ErrSpawn) || !fault.Is(err, fault.CategoryProcess) {
		t.Errorf("err = %v", err)
	}
}

func TestRemove_SyntaxGateOnly(t *testing.T) {
	pm := &fakePM{result: Result{Success: true}}
	elig := &fakeEligibility{err: ErrMissingMarker}
	inst := New(pm, elig, nil)

	if _, err := inst.Remove(context.Background(), "acme/x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elig.calls != 0 {
		t.Error("remove must not consult eligibility")
	}
	if _, err := inst.Remove(context.Background(), "acme/x;ls"); !fault.Is(err, fault.CategoryValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if len(pm.calls) != 1 {
		t.Errorf("calls = %v", pm.calls)
	}
}

func TestUpdate(t *testing.T) {
	pm := &fakePM{result: Result{Success: true}}
	if _, err := New(pm, &fakeEligibility{}, nil).Update(context.Background(), "acme/x"); err != nil {
		t.Fatal(err)
	}
	if pm.calls[0] != "update acme/x" {
		t.Errorf("calls = %v", pm.calls)
	}
}

func TestInstalledVersion(t *testing.T) {
	pm := &fakePM{showOut: `{"versions":["1.4.0"]}`}
	inst := New(pm, &fakeEligibility{}, nil)
	if got := inst.InstalledVersion(context.Background(), "acme/x"); got != "1.4.0" {
		t.Errorf("InstalledVersion = %q, want 1.4.0", got)
	}

	pm.err = errors.New("not installed")
	if got := inst.InstalledVersion(context.Background(), "acme/x"); got != "unknown" {
		t.Errorf("InstalledVersion on failure = %q, want unknown", got)
	}
	if got := inst.InstalledVersion(context.Background(), "BAD"); got != "unknown" {
		t.Errorf("InstalledVersion on bad name = %q, want unknown", got)
	}
}
