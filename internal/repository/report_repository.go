package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ozzus/vendor-check/internal/domain"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var ErrReportNotFound = errors.New("session report not found")

const indexFile = "index.jsonl"

type ReportRepository interface {
	Save(ctx context.Context, report *domain.SessionReport) error
	Load(ctx context.Context, id string) (*domain.SessionReport, error)
	Latest(ctx context.Context) (*domain.SessionReport, error)
	List(ctx context.Context) ([]IndexEntry, error)
}

// IndexEntry is one line of index.jsonl, written the first time a session is
// saved.
type IndexEntry struct {
	ID          string    `json:"id"`
	File        string    `json:"file"`
	Vendor      string    `json:"vendor"`
	Identifier  string    `json:"identifier,omitempty"`
	ResumedFrom string    `json:"resumed_from,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}

// FileReportRepository keeps one JSON document per session under dir.
type FileReportRepository struct {
	fs  afero.Fs
	dir string
}

func NewFileReportRepository(fs afero.Fs, dir string) *FileReportRepository {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileReportRepository{fs: fs, dir: dir}
}

func (r *FileReportRepository) path(id string) string {
	return filepath.Join(r.dir, id+".json")
}

// Save writes the report, replacing any earlier checkpoint of the same
// session.
func (r *FileReportRepository) Save(_ context.Context, report *domain.SessionReport) error {
	if err := r.fs.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create sessions dir %s: %w", r.dir, err)
	}

	id := report.ID().String()
	path := r.path(id)

	existed, err := afero.Exists(r.fs, path)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report %s: %w", id, err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(r.fs, tmp, b, 0o600); err != nil {
		return fmt.Errorf("write report %s: %w", id, err)
	}
	if err := r.fs.Rename(tmp, path); err != nil {
		_ = r.fs.Remove(tmp)
		return fmt.Errorf("rename report %s: %w", id, err)
	}

	if existed {
		return nil
	}
	return r.appendIndex(report)
}

func (r *FileReportRepository) appendIndex(report *domain.SessionReport) error {
	entry := IndexEntry{
		ID:         report.ID().String(),
		File:       filepath.Base(r.path(report.ID().String())),
		Vendor:     report.Vendor().Name,
		Identifier: report.Vendor().Identifier,
		StartedAt:  report.StartedAt().UTC(),
	}
	if report.ResumedFrom() != uuid.Nil {
		entry.ResumedFrom = report.ResumedFrom().String()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	f, err := r.fs.OpenFile(filepath.Join(r.dir, indexFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

func (r *FileReportRepository) Load(_ context.Context, id string) (*domain.SessionReport, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", id, err)
	}

	b, err := afero.ReadFile(r.fs, r.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", id, err)
	}

	var report domain.SessionReport
	if err := json.Unmarshal(b, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &report, nil
}

// List returns the index in the order sessions were started.
func (r *FileReportRepository) List(_ context.Context) ([]IndexEntry, error) {
	b, err := afero.ReadFile(r.fs, filepath.Join(r.dir, indexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var entries []IndexEntry
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var e IndexEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("decode index line: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}

func (r *FileReportRepository) Latest(ctx context.Context) (*domain.SessionReport, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrReportNotFound
	}
	return r.Load(ctx, entries[len(entries)-1].ID)
}
