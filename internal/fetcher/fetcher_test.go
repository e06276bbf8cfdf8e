package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ozzus/vendor-check/internal/artifacts"

	"github.com/spf13/afero"
)

func newDestination(t *testing.T, fs afero.Fs) artifacts.Destination {
	t.Helper()
	store, err := artifacts.NewStore(fs, artifacts.Options{Root: "/evidence"})
	if err != nil {
		t.Fatal(err)
	}
	dest, err := store.EnsureDestination("Divestment Statute")
	if err != nil {
		t.Fatal(err)
	}
	return dest
}

func TestFetcher_FetchAll_RespectsWorkerCap(t *testing.T) {
	var inFlight, maxInFlight int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			seen := atomic.LoadInt64(&maxInFlight)
			if n <= seen || atomic.CompareAndSwapInt64(&maxInFlight, seen, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		fmt.Fprint(w, "%PDF-1.4")
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	dest := newDestination(t, fs)

	var urls []string
	for i := range 6 {
		urls = append(urls, fmt.Sprintf("%s/docs/list-%d.pdf", srv.URL, i))
	}

	f := New(fs, Options{MaxWorkers: 2})
	results := f.FetchAll(context.Background(), urls, dest)

	if got := atomic.LoadInt64(&maxInFlight); got > 2 {
		t.Errorf("max in-flight fetches = %d, want <= 2", got)
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("result %d: unexpected error %v", i, r.Err)
			continue
		}
		if r.URL != urls[i] {
			t.Errorf("result %d URL = %s, want %s", i, r.URL, urls[i])
		}
		if ok, _ := afero.Exists(fs, dest.File(fmt.Sprintf("list-%d.pdf", i))); !ok {
			t.Errorf("list-%d.pdf was not written", i)
		}
	}
}

func TestFetcher_FetchAll_FailureDoesNotCancelSiblings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/docs/iran-list.pdf" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "%PDF-1.4")
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	dest := newDestination(t, fs)

	urls := []string{
		srv.URL + "/docs/anti-bds.pdf",
		srv.URL + "/docs/iran-list.pdf",
		srv.URL + "/docs/sudan-list.pdf",
	}

	results := New(fs, Options{MaxWorkers: 25}).FetchAll(context.Background(), urls, dest)

	if results[1].Err == nil {
		t.Fatal("expected an error for the missing document")
	}
	for _, name := range []string{"anti-bds.pdf", "sudan-list.pdf"} {
		if ok, _ := afero.Exists(fs, dest.File(name)); !ok {
			t.Errorf("%s should have been written", name)
		}
	}
	if ok, _ := afero.Exists(fs, dest.File("iran-list.pdf")); ok {
		t.Error("iran-list.pdf should not exist")
	}
	if ok, _ := afero.Exists(fs, dest.File("iran-list.pdf.tmp")); ok {
		t.Error("no temporary file should be left behind")
	}
}

func TestFetcher_FetchAll_NamesFileAfterRedirectTarget(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/debarred-vendor-list.pdf", http.StatusFound)
	})
	mux.HandleFunc("/docs/debarred-vendor-list.pdf", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "%PDF-1.4")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fs := afero.NewMemMapFs()
	dest := newDestination(t, fs)

	results := New(fs, Options{}).FetchAll(context.Background(), []string{srv.URL + "/latest"}, dest)
	if results[0].Err != nil {
		t.Fatalf("unexpected error: %v", results[0].Err)
	}
	if results[0].Path != dest.File("debarred-vendor-list.pdf") {
		t.Errorf("Path = %s", results[0].Path)
	}
}

func TestFetcher_FetchAll_Empty(t *testing.T) {
	fs := afero.NewMemMapFs()
	if got := New(fs, Options{}).FetchAll(context.Background(), nil, newDestination(t, fs)); len(got) != 0 {
		t.Errorf("expected no results, got %v", got)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://comptroller.texas.gov/purchasing/docs/fto-list.pdf", "fto-list.pdf"},
		{"https://example.com/file.pdf?version=2", "file.pdf"},
		{"https://example.com/", "download"},
		{"https://example.com/some%20file.pdf", "some_file.pdf"},
		{"/", "download"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Filename(tt.input); got != tt.want {
				t.Errorf("Filename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
