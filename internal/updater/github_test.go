package updater

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGitHub_LatestRelease(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		switch r.URL.Path {
		case "/repos/acme/conduit-deploy/releases/latest":
			w.Write([]byte(`{"tag_name":"v1.3.0","name":"1.3.0","body":"security fix","html_url":"https://github.com/acme/conduit-deploy/releases/tag/v1.3.0"}`))
		case "/repos/acme/limited/releases/latest":
			w.WriteHeader(http.StatusForbidden)
		case "/repos/acme/broken/releases/latest":
			w.WriteHeader(http.StatusBadGateway)
		case "/repos/acme/garbled/releases/latest":
			w.Write([]byte(`{`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	g := NewGitHub(WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()), WithToken("s3cret"))

	rel, err := g.LatestRelease(context.Background(), "acme/conduit-deploy")
	if err != nil {
		t.Fatalf("LatestRelease: %v", err)
	}
	if rel.Version != "v1.3.0" || rel.Body != "security fix" {
		t.Errorf("release = %+v", rel)
	}
	if rel.HTMLURL == "" {
		t.Error("expected html_url")
	}
	if gotAuth != "token s3cret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/repos/acme/conduit-deploy/releases/latest" {
		t.Errorf("path = %q", gotPath)
	}

	if _, err := g.LatestRelease(context.Background(), "acme/none"); !errors.Is(err, ErrReleaseNotFound) {
		t.Errorf("missing: err = %v, want ErrReleaseNotFound", err)
	}
	if _, err := g.LatestRelease(context.Background(), "acme/limited"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("limited: err = %v, want ErrRateLimited", err)
	}
	if _, err := g.LatestRelease(context.Background(), "acme/broken"); err == nil {
		t.Error("broken: expected error")
	}
	if _, err := g.LatestRelease(context.Background(), "acme/garbled"); err == nil {
		t.Error("garbled: expected error")
	}
}

func TestGitHub_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewGitHub(WithBaseURL(srv.URL)).LatestRelease(ctx, "acme/x"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
