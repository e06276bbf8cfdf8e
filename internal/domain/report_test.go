package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"syscall"
	"testing"
	"time"
)

func mustVerdict(t *testing.T, kind CheckKind, outcome Outcome, attempt int) CheckVerdict {
	t.Helper()
	v, err := NewCheckVerdict(VerdictParams{Kind: kind, Outcome: outcome, AttemptNumber: attempt})
	if err != nil {
		t.Fatalf("NewCheckVerdict: %v", err)
	}
	return v
}

func TestNewCheckVerdict_Validates(t *testing.T) {
	if _, err := NewCheckVerdict(VerdictParams{Kind: "ping", Outcome: OutcomePassed}); err == nil {
		t.Error("unknown kind accepted")
	}
	if _, err := NewCheckVerdict(VerdictParams{Kind: CheckOFACSanctions, Outcome: "maybe"}); err == nil {
		t.Error("unknown outcome accepted")
	}

	v := mustVerdict(t, CheckOFACSanctions, OutcomePassed, 0)
	if v.AttemptNumber() != 1 {
		t.Errorf("attempt = %d, want 1", v.AttemptNumber())
	}
}

func TestCheckVerdict_ArtifactsAreCopied(t *testing.T) {
	paths := []string{"/evidence/a.pdf"}
	v, err := NewCheckVerdict(VerdictParams{Kind: CheckSAMExclusion, Outcome: OutcomePassed, ArtifactPaths: paths})
	if err != nil {
		t.Fatal(err)
	}

	paths[0] = "changed"
	got := v.ArtifactPaths()
	if got[0] != "/evidence/a.pdf" {
		t.Fatalf("verdict shares caller slice: %v", got)
	}
	got[0] = "changed"
	if v.ArtifactPaths()[0] != "/evidence/a.pdf" {
		t.Fatal("verdict exposes its own slice")
	}
}

func TestSessionReport_AppendAfterFinalize(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := NewSessionReport(VendorRecord{Name: "Acme"}, start)

	if err := r.Append(mustVerdict(t, CheckFranchiseTaxStatus, OutcomePassed, 1)); err != nil {
		t.Fatal(err)
	}
	r.Finalize(start.Add(time.Minute))
	r.Finalize(start.Add(time.Hour))

	if err := r.Append(mustVerdict(t, CheckVendorPerformance, OutcomePassed, 1)); !errors.Is(err, ErrReportFinalized) {
		t.Fatalf("Append after finalize = %v", err)
	}
	if got := r.FinishedAt(); !got.Equal(start.Add(time.Minute)) {
		t.Errorf("finished at %s, want first finalize time", got)
	}
	if n := len(r.Verdicts()); n != 1 {
		t.Errorf("verdicts = %d, want 1", n)
	}
}

func TestSessionReport_FailedKinds(t *testing.T) {
	r := NewSessionReport(VendorRecord{Identifier: "1234"}, time.Now())
	for _, v := range []CheckVerdict{
		mustVerdict(t, CheckFranchiseTaxStatus, OutcomePassed, 1),
		mustVerdict(t, CheckVendorPerformance, OutcomeErrored, 1),
		mustVerdict(t, CheckSAMExclusion, OutcomeNotFound, 1),
		mustVerdict(t, CheckOFACSanctions, OutcomeNotFound, 1),
		mustVerdict(t, CheckDebarredList, OutcomeFailed, 1),
		mustVerdict(t, CheckHUBStatus, OutcomeNotFound, 1),
		mustVerdict(t, CheckHUBStatus, OutcomeErrored, 2),
	} {
		if err := r.Append(v); err != nil {
			t.Fatal(err)
		}
	}

	want := []CheckKind{CheckVendorPerformance, CheckDebarredList, CheckDivestmentList, CheckHUBStatus}
	if got := r.FailedKinds(); !slices.Equal(got, want) {
		t.Errorf("FailedKinds = %v, want %v", got, want)
	}

	final, ok := r.FinalVerdict(CheckHUBStatus)
	if !ok || final.AttemptNumber() != 2 {
		t.Errorf("final HUB verdict = %+v", final)
	}

	summary := r.Summary()
	if summary[OutcomeNotFound] != 3 || summary[OutcomeErrored] != 2 || summary[OutcomePassed] != 1 || summary[OutcomeFailed] != 1 {
		t.Errorf("summary = %v", summary)
	}
}

func TestSessionReport_JSON(t *testing.T) {
	prior := NewSessionReport(VendorRecord{Name: "Acme", Identifier: "1234"}, time.Now())
	r := NewResumedReport(prior, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	v, err := NewCheckVerdict(VerdictParams{
		Kind:          CheckOFACSanctions,
		Outcome:       OutcomePassed,
		Message:       "OFAC Search: 2 found",
		ArtifactPaths: []string{"/evidence/OFAC Search/Search_Results.xls"},
		Duration:      1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Append(v); err != nil {
		t.Fatal(err)
	}
	r.Finalize(time.Date(2026, 1, 2, 0, 5, 0, 0, time.UTC))

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}

	var loaded SessionReport
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatal(err)
	}

	if loaded.ID() != r.ID() || loaded.ResumedFrom() != prior.ID() {
		t.Errorf("ids: %s from %s", loaded.ID(), loaded.ResumedFrom())
	}
	if !loaded.Finalized() || loaded.Vendor() != r.Vendor() {
		t.Errorf("loaded report = finalized %v vendor %+v", loaded.Finalized(), loaded.Vendor())
	}
	got := loaded.Verdicts()
	if len(got) != 1 || got[0].Duration() != 1500*time.Millisecond || got[0].Message() != v.Message() {
		t.Errorf("verdicts = %+v", got)
	}

	var broken SessionReport
	bad := []byte(`{"id":"not-a-uuid","verdicts":[]}`)
	if err := json.Unmarshal(bad, &broken); err == nil {
		t.Error("invalid id accepted")
	}
}

func TestErrors(t *testing.T) {
	err := fmt.Errorf("write evidence: %w", &os.PathError{Op: "write", Path: "/x", Err: syscall.ENOSPC})
	if !IsFatal(err) {
		t.Error("ENOSPC not fatal")
	}
	if IsFatal(errors.New("boom")) {
		t.Error("plain error fatal")
	}

	incomplete := &DownloadIncompleteError{Dir: "/e", Missing: []string{"b.pdf", "a.pdf"}}
	if got, want := incomplete.Error(), "download incomplete in /e: missing a.pdf, b.pdf"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := (&DownloadIncompleteError{Dir: "/e"}).Error(); got != "download incomplete in /e: no evidence captured" {
		t.Errorf("empty Error() = %q", got)
	}

	resolverErr := &ResolverError{Query: "name=Acme", Err: ErrAmbiguousVendor}
	if !errors.Is(resolverErr, ErrAmbiguousVendor) {
		t.Error("ResolverError does not unwrap")
	}
}
