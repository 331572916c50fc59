package installer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newPackagistServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/p2/acme/conduit-deploy.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"packages":{"acme/conduit-deploy":[
			{"name":"acme/conduit-deploy","version":"1.3.0","keywords":["cli","conduit-component"]},
			{"version":"1.2.0"}]}}`))
	})
	mux.HandleFunc("/p2/acme/conduit-deploy~dev.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"packages":{"acme/conduit-deploy":[
			{"name":"acme/conduit-deploy","version":"dev-main","keywords":["conduit-component"]}]}}`))
	})
	mux.HandleFunc("/p2/acme/plain-lib.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"packages":{"acme/plain-lib":[{"name":"acme/plain-lib","version":"2.0.0","keywords":["library"]}]}}`))
	})
	mux.HandleFunc("/p2/acme/empty.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"packages":{}}`))
	})
	mux.HandleFunc("/p2/acme/broken.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/p2/acme/garbled.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	})
	mux.HandleFunc("/p2/acme/slow.json", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPackagist_CheckEligible(t *testing.T) {
	srv := newPackagistServer(t)
	p := NewPackagist(srv.URL+"/", "conduit-component",
		WithHTTPClient(srv.Client()), WithRequestTimeout(200*time.Millisecond))

	tests := []struct {
		pkg     string
		dev     bool
		wantErr error
	}{
		{"acme/conduit-deploy", false, nil},
		{"acme/conduit-deploy", true, nil},
		{"acme/plain-lib", false, ErrMissingMarker},
		{"acme/unknown", false, ErrPackageNotFound},
		{"acme/empty", false, ErrPackageNotFound},
		{"acme/broken", false, ErrMetadataUnavailable},
		{"acme/garbled", false, ErrMetadataUnavailable},
		{"acme/slow", false, ErrMetadataUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			err := p.CheckEligible(context.Background(), tt.pkg, tt.dev)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPackagist_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewPackagist(url, "conduit-component")
	err := p.CheckEligible(context.Background(), "acme/conduit-deploy", false)
	if !errors.Is(err, ErrMetadataUnavailable) {
		t.Errorf("err = %v, want ErrMetadataUnavailable", err)
	}
}
