// Package artifacts manages the on-disk evidence folders of the checks.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"ozzus/vendor-check/internal/domain"

	"github.com/spf13/afero"
)

type RetentionPolicy string

const (
	// RetentionOverwrite removes the previous run's files before a check runs.
	RetentionOverwrite RetentionPolicy = "overwrite"
	// RetentionArchive moves the previous run's files into .archive/<timestamp>/.
	RetentionArchive RetentionPolicy = "archive"
)

const archiveDir = ".archive"

func (p RetentionPolicy) Valid() bool {
	return p == RetentionOverwrite || p == RetentionArchive
}

// Destination is the evidence folder of one check.
type Destination struct {
	Label string
	Path  string
}

func (d Destination) File(name string) string {
	return filepath.Join(d.Path, name)
}

type Options struct {
	Root         string
	Retention    RetentionPolicy
	PollInterval time.Duration
	WaitTimeout  time.Duration
	Now          func() time.Time
}

type Store struct {
	fs           afero.Fs
	root         string
	retention    RetentionPolicy
	pollInterval time.Duration
	waitTimeout  time.Duration
	now          func() time.Time

	mu       sync.Mutex
	prepared map[string]bool
}

func NewStore(fs afero.Fs, opts Options) (*Store, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	root := strings.TrimSpace(opts.Root)
	if root == "" {
		var err error
		if root, err = DefaultRoot(); err != nil {
			return nil, err
		}
	}

	if opts.Retention == "" {
		opts.Retention = RetentionOverwrite
	}
	if !opts.Retention.Valid() {
		return nil, fmt.Errorf("unknown retention policy %q", opts.Retention)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 250 * time.Millisecond
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Store{
		fs:           fs,
		root:         filepath.Clean(root),
		retention:    opts.Retention,
		pollInterval: opts.PollInterval,
		waitTimeout:  opts.WaitTimeout,
		now:          opts.Now,
		prepared:     make(map[string]bool),
	}, nil
}

// DefaultRoot is the user's download folder.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, "Downloads"), nil
}

func (s *Store) Fs() afero.Fs                { return s.fs }
func (s *Store) Root() string                { return s.root }
func (s *Store) Retention() RetentionPolicy  { return s.retention }
func (s *Store) WaitTimeout() time.Duration  { return s.waitTimeout }
func (s *Store) PollInterval() time.Duration { return s.pollInterval }

// EnsureDestination creates the folder for the check label under the root or
// reuses it if it already exists.
func (s *Store) EnsureDestination(label string) (Destination, error) {
	clean := strings.TrimSpace(label)
	dir := filepath.Join(s.root, clean)

	if clean == "" || clean == "." || clean == ".." || strings.ContainsAny(clean, `/\`) {
		return Destination{}, &domain.FolderError{Label: label, Path: dir, Err: errors.New("invalid folder name")}
	}

	if info, err := s.fs.Stat(dir); err == nil && !info.IsDir() {
		return Destination{}, &domain.FolderError{Label: label, Path: dir, Err: errors.New("path exists and is not a directory")}
	}

	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return Destination{}, &domain.FolderError{Label: label, Path: dir, Err: err}
	}

	return Destination{Label: clean, Path: dir}, nil
}

// PrepareDestination ensures the folder and applies the retention policy to
// whatever a previous session left in it. The policy is applied once per
// label for the lifetime of the store, so a second attempt of the same check
// keeps the first attempt's evidence.
func (s *Store) PrepareDestination(label string) (Destination, error) {
	dest, err := s.EnsureDestination(label)
	if err != nil {
		return Destination{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prepared[dest.Label] {
		return dest, nil
	}

	files, err := s.ListFiles(dest)
	if err != nil {
		return Destination{}, err
	}
	if len(files) == 0 {
		s.prepared[dest.Label] = true
		return dest, nil
	}

	switch s.retention {
	case RetentionArchive:
		target := filepath.Join(dest.Path, archiveDir, s.now().UTC().Format("20060102T150405Z"))
		if err := s.fs.MkdirAll(target, 0o755); err != nil {
			return Destination{}, &domain.FolderError{Label: label, Path: target, Err: err}
		}
		for _, name := range files {
			if err := s.fs.Rename(dest.File(name), filepath.Join(target, name)); err != nil {
				return Destination{}, fmt.Errorf("archive %s: %w", name, err)
			}
		}
	default:
		for _, name := range files {
			if err := s.fs.Remove(dest.File(name)); err != nil && !os.IsNotExist(err) {
				return Destination{}, fmt.Errorf("remove %s: %w", name, err)
			}
		}
	}

	s.prepared[dest.Label] = true
	return dest, nil
}

// ListFiles returns the sorted names of the regular files in the folder.
func (s *Store) ListFiles(dest Destination) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, dest.Path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dest.Path, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Diff compares the files present in the folder with the expected set.
func (s *Store) Diff(dest Destination, expected []string) (missing, extra []string, err error) {
	present, err := s.ListFiles(dest)
	if err != nil {
		return nil, nil, err
	}

	want := make(map[string]struct{}, len(expected))
	for _, name := range expected {
		want[name] = struct{}{}
	}
	have := make(map[string]struct{}, len(present))
	for _, name := range present {
		have[name] = struct{}{}
		if _, ok := want[name]; !ok {
			extra = append(extra, name)
		}
	}
	for name := range want {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing, extra, nil
}

// VerifyComplete is true iff the files present equal the expected set exactly.
func (s *Store) VerifyComplete(dest Destination, expected []string) (bool, error) {
	missing, extra, err := s.Diff(dest, expected)
	if err != nil {
		return false, err
	}
	return len(missing) == 0 && len(extra) == 0, nil
}

func (s *Store) VerifyExists(path string) (bool, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// WaitComplete polls until the folder holds exactly the expected files.
func (s *Store) WaitComplete(ctx context.Context, dest Destination, expected []string) error {
	err := s.poll(ctx, func() (bool, error) {
		return s.VerifyComplete(dest, expected)
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, errWaitExpired) {
		return err
	}

	missing, extra, diffErr := s.Diff(dest, expected)
	if diffErr != nil {
		return diffErr
	}
	return &domain.DownloadIncompleteError{Dir: dest.Path, Missing: missing, Extra: extra}
}

func (s *Store) WaitExists(ctx context.Context, path string) error {
	err := s.poll(ctx, func() (bool, error) {
		return s.VerifyExists(path)
	})
	if errors.Is(err, errWaitExpired) {
		return &domain.DownloadIncompleteError{Dir: filepath.Dir(path), Missing: []string{filepath.Base(path)}}
	}
	return err
}

// WaitForNewFile waits for a finished file with the given extension to show
// up in the folder and returns its path.
func (s *Store) WaitForNewFile(ctx context.Context, dest Destination, ext string) (string, error) {
	var found string
	err := s.poll(ctx, func() (bool, error) {
		files, err := s.ListFiles(dest)
		if err != nil {
			return false, err
		}
		for _, name := range files {
			if isPartial(name) {
				return false, nil
			}
		}
		for _, name := range files {
			if strings.EqualFold(filepath.Ext(name), ext) {
				found = dest.File(name)
				return true, nil
			}
		}
		return false, nil
	})
	if errors.Is(err, errWaitExpired) {
		return "", &domain.DownloadIncompleteError{Dir: dest.Path, Missing: []string{"*" + ext}}
	}
	if err != nil {
		return "", err
	}
	return found, nil
}

// errWaitExpired is the store's own wait running out, as opposed to the
// caller's context ending.
var errWaitExpired = errors.New("wait expired")

func (s *Store) poll(ctx context.Context, cond func() (bool, error)) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ticker.C:
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return err
			}
			return errWaitExpired
		}
	}
}

func isPartial(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".crdownload", ".tmp", ".part":
		return true
	}
	return false
}
