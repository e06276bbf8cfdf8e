package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"ozzus/vendor-check/internal/artifacts"
	"ozzus/vendor-check/internal/browser"

	"github.com/spf13/afero"
)

type fakeElement struct {
	text    string
	onClick func()
	keys    []string
	clicks  int
}

func (e *fakeElement) SendKeys(_ context.Context, text string) error {
	e.keys = append(e.keys, text)
	return nil
}

func (e *fakeElement) Click(_ context.Context) error {
	e.clicks++
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) Text(_ context.Context) (string, error) { return e.text, nil }

type fakeSession struct {
	mu        sync.Mutex
	elements  map[string]*fakeElement
	pageText  string
	navigated []string
	prints    int
	closed    int
}

func newFakeSession() *fakeSession {
	return &fakeSession{elements: make(map[string]*fakeElement)}
}

func elementKey(by browser.By, value string) string { return string(by) + "=" + value }

func (s *fakeSession) add(by browser.By, value string) *fakeElement {
	el := &fakeElement{}
	s.elements[elementKey(by, value)] = el
	return el
}

func (s *fakeSession) get(by browser.By, value string) *fakeElement {
	return s.elements[elementKey(by, value)]
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	s.navigated = append(s.navigated, url)
	return nil
}

func (s *fakeSession) FindElement(_ context.Context, by browser.By, value string) (browser.Element, error) {
	if el, ok := s.elements[elementKey(by, value)]; ok {
		return el, nil
	}
	return nil, fmt.Errorf("find %s: %w", value, browser.ErrNoSuchElement)
}

func (s *fakeSession) WaitForElement(ctx context.Context, by browser.By, value string, _ time.Duration) (browser.Element, error) {
	if el, err := s.FindElement(ctx, by, value); err == nil {
		return el, nil
	}
	return nil, browser.ErrTimeout
}

func (s *fakeSession) ExecuteScript(_ context.Context, _ string, _ ...interface{}) (json.RawMessage, error) {
	return json.RawMessage(`"complete"`), nil
}

func (s *fakeSession) PageText(_ context.Context) (string, error) { return s.pageText, nil }

func (s *fakeSession) PrintPDF(_ context.Context) ([]byte, error) {
	s.prints++
	return []byte("%PDF-1.4 fake"), nil
}

func (s *fakeSession) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

type fakeLauncher struct {
	session *fakeSession
	opts    []browser.Options
}

func (l *fakeLauncher) Launch(_ context.Context, opts browser.Options) (browser.Session, error) {
	l.opts = append(l.opts, opts)
	return l.session, nil
}

func newTestDeps(t *testing.T, session *fakeSession) (Deps, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	store, err := artifacts.NewStore(fs, artifacts.Options{
		Root:         "/evidence",
		PollInterval: 5 * time.Millisecond,
		WaitTimeout:  100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	return Deps{
		Store:          store,
		Launcher:       &fakeLauncher{session: session},
		Headless:       true,
		ElementTimeout: 100 * time.Millisecond,
	}, fs
}

// writeOnClick simulates the browser saving a download.
func writeOnClick(fs afero.Fs, path string) func() {
	return func() {
		_ = afero.WriteFile(fs, path, []byte("data"), 0o644)
	}
}
