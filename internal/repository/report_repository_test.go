package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"ozzus/vendor-check/internal/domain"

	"github.com/spf13/afero"
)

var acme = domain.VendorRecord{Name: "Acme Corp", Identifier: "V12345", DUNSNumber: "123456789"}

func newReport(t *testing.T, outcomes ...domain.Outcome) *domain.SessionReport {
	t.Helper()
	start := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	report := domain.NewSessionReport(acme, start)
	for i, o := range outcomes {
		v, err := domain.NewCheckVerdict(domain.VerdictParams{
			Kind:      domain.ExecutionOrder()[i],
			Outcome:   o,
			Message:   "msg",
			StartedAt: start.Add(time.Duration(i) * time.Second),
			Duration:  time.Second,
		})
		if err != nil {
			t.Fatal(err)
		}
		if err := report.Append(v); err != nil {
			t.Fatal(err)
		}
	}
	return report
}

func TestFileReportRepository_SaveLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := NewFileReportRepository(fs, "/sessions")
	ctx := context.Background()

	report := newReport(t, domain.OutcomePassed, domain.OutcomeErrored)
	if err := repo.Save(ctx, report); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.Load(ctx, report.ID().String())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ID() != report.ID() || loaded.Vendor() != acme {
		t.Errorf("loaded %s %+v", loaded.ID(), loaded.Vendor())
	}
	if len(loaded.Verdicts()) != 2 || loaded.Verdicts()[1].Outcome() != domain.OutcomeErrored {
		t.Errorf("verdicts = %+v", loaded.Verdicts())
	}

	if ok, _ := afero.Exists(fs, "/sessions/"+report.ID().String()+".json.tmp"); ok {
		t.Error("temporary file left behind")
	}
}

func TestFileReportRepository_CheckpointsDoNotDuplicateIndex(t *testing.T) {
	repo := NewFileReportRepository(afero.NewMemMapFs(), "/sessions")
	ctx := context.Background()

	report := newReport(t, domain.OutcomePassed)
	for i := 0; i < 3; i++ {
		if err := repo.Save(ctx, report); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Vendor != "Acme Corp" || entries[0].Identifier != "V12345" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestFileReportRepository_Latest(t *testing.T) {
	repo := NewFileReportRepository(afero.NewMemMapFs(), "/sessions")
	ctx := context.Background()

	if _, err := repo.Latest(ctx); !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("empty repo: err = %v", err)
	}

	first := newReport(t, domain.OutcomeFailed)
	second := domain.NewResumedReport(first, time.Now())
	for _, r := range []*domain.SessionReport{first, second} {
		if err := repo.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID() != second.ID() || latest.ResumedFrom() != first.ID() {
		t.Errorf("latest = %s resumed from %s", latest.ID(), latest.ResumedFrom())
	}

	entries, _ := repo.List(ctx)
	if entries[1].ResumedFrom != first.ID().String() {
		t.Errorf("index entry = %+v", entries[1])
	}
}

func TestFileReportRepository_LoadErrors(t *testing.T) {
	repo := NewFileReportRepository(afero.NewMemMapFs(), "/sessions")

	if _, err := repo.Load(context.Background(), "../etc/passwd"); err == nil {
		t.Error("expected invalid id error")
	}
	if _, err := repo.Load(context.Background(), "6f1c7a3e-0d3b-4d6a-9d1e-2b7f1c9a0e11"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("err = %v, want ErrReportNotFound", err)
	}
}
