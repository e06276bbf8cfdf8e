package domain

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrReportFinalized = errors.New("session report is finalized")

// SessionReport collects the verdicts of one compliance sweep. Verdicts are
// only ever appended; once finalized the report is read-only.
type SessionReport struct {
	mu sync.RWMutex

	id          uuid.UUID
	resumedFrom uuid.UUID
	vendor      VendorRecord
	startedAt   time.Time
	finishedAt  time.Time
	verdicts    []CheckVerdict
	finalized   bool
}

func NewSessionReport(vendor VendorRecord, startedAt time.Time) *SessionReport {
	return &SessionReport{
		id:        uuid.New(),
		vendor:    vendor,
		startedAt: startedAt,
	}
}

// NewResumedReport starts a report that continues a previous session.
func NewResumedReport(prior *SessionReport, startedAt time.Time) *SessionReport {
	r := NewSessionReport(prior.Vendor(), startedAt)
	r.resumedFrom = prior.ID()
	return r
}

func (r *SessionReport) ID() uuid.UUID          { return r.id }
func (r *SessionReport) ResumedFrom() uuid.UUID { return r.resumedFrom }
func (r *SessionReport) Vendor() VendorRecord   { return r.vendor }
func (r *SessionReport) StartedAt() time.Time   { return r.startedAt }

func (r *SessionReport) FinishedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finishedAt
}

func (r *SessionReport) Append(v CheckVerdict) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return ErrReportFinalized
	}
	r.verdicts = append(r.verdicts, v)
	return nil
}

// Finalize marks the report read-only. Calling it twice keeps the first
// finish time.
func (r *SessionReport) Finalize(at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return
	}
	r.finalized = true
	r.finishedAt = at
}

func (r *SessionReport) Finalized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finalized
}

// Verdicts returns a copy of the verdicts in execution order.
func (r *SessionReport) Verdicts() []CheckVerdict {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]CheckVerdict(nil), r.verdicts...)
}

func (r *SessionReport) VerdictsFor(kind CheckKind) []CheckVerdict {
	var out []CheckVerdict
	for _, v := range r.Verdicts() {
		if v.Kind() == kind {
			out = append(out, v)
		}
	}
	return out
}

// FinalVerdict is the last recorded attempt for the kind.
func (r *SessionReport) FinalVerdict(kind CheckKind) (CheckVerdict, bool) {
	verdicts := r.VerdictsFor(kind)
	if len(verdicts) == 0 {
		return CheckVerdict{}, false
	}
	return verdicts[len(verdicts)-1], true
}

// FailedKinds lists, in execution order, the checks whose final attempt
// failed or errored, plus checks with no verdict at all.
func (r *SessionReport) FailedKinds() []CheckKind {
	var out []CheckKind
	for _, kind := range ExecutionOrder() {
		v, ok := r.FinalVerdict(kind)
		if !ok || !v.Outcome().Settled() {
			out = append(out, kind)
		}
	}
	return out
}

func (r *SessionReport) Summary() map[Outcome]int {
	summary := map[Outcome]int{
		OutcomePassed:   0,
		OutcomeNotFound: 0,
		OutcomeFailed:   0,
		OutcomeErrored:  0,
	}
	for _, v := range r.Verdicts() {
		summary[v.Outcome()]++
	}
	return summary
}

type reportDTO struct {
	ID          string         `json:"id" yaml:"id"`
	ResumedFrom string         `json:"resumed_from,omitempty" yaml:"resumed_from,omitempty"`
	Vendor      VendorRecord   `json:"vendor" yaml:"vendor"`
	StartedAt   time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time      `json:"finished_at" yaml:"finished_at"`
	Finalized   bool           `json:"finalized" yaml:"finalized"`
	Verdicts    []CheckVerdict `json:"verdicts" yaml:"verdicts"`
}

func (r *SessionReport) dto() reportDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d := reportDTO{
		ID:         r.id.String(),
		Vendor:     r.vendor,
		StartedAt:  r.startedAt,
		FinishedAt: r.finishedAt,
		Finalized:  r.finalized,
		Verdicts:   append([]CheckVerdict{}, r.verdicts...),
	}
	if r.resumedFrom != uuid.Nil {
		d.ResumedFrom = r.resumedFrom.String()
	}
	return d
}

func (r *SessionReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.dto())
}

func (r *SessionReport) MarshalYAML() (interface{}, error) {
	return r.dto(), nil
}

func (r *SessionReport) UnmarshalJSON(data []byte) error {
	var d reportDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}

	id, err := uuid.Parse(d.ID)
	if err != nil {
		return err
	}

	var resumedFrom uuid.UUID
	if d.ResumedFrom != "" {
		if resumedFrom, err = uuid.Parse(d.ResumedFrom); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.id = id
	r.resumedFrom = resumedFrom
	r.vendor = d.Vendor
	r.startedAt = d.StartedAt
	r.finishedAt = d.FinishedAt
	r.finalized = d.Finalized
	r.verdicts = d.Verdicts
	return nil
}
