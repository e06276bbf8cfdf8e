package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// CheckVerdict is the immutable result of one check attempt.
type CheckVerdict struct {
	kind          CheckKind
	outcome       Outcome
	message       string
	artifactPaths []string
	attemptNumber int
	startedAt     time.Time
	duration      time.Duration
}

type VerdictParams struct {
	Kind          CheckKind
	Outcome       Outcome
	Message       string
	ArtifactPaths []string
	AttemptNumber int
	StartedAt     time.Time
	Duration      time.Duration
}

func NewCheckVerdict(p VerdictParams) (CheckVerdict, error) {
	if !p.Kind.Valid() {
		return CheckVerdict{}, fmt.Errorf("unknown check kind %q", p.Kind)
	}
	if !p.Outcome.Valid() {
		return CheckVerdict{}, fmt.Errorf("unknown outcome %q", p.Outcome)
	}
	if p.AttemptNumber <= 0 {
		p.AttemptNumber = 1
	}

	return CheckVerdict{
		kind:          p.Kind,
		outcome:       p.Outcome,
		message:       p.Message,
		artifactPaths: append([]string(nil), p.ArtifactPaths...),
		attemptNumber: p.AttemptNumber,
		startedAt:     p.StartedAt,
		duration:      p.Duration,
	}, nil
}

func (v CheckVerdict) Kind() CheckKind         { return v.kind }
func (v CheckVerdict) Outcome() Outcome        { return v.outcome }
func (v CheckVerdict) Message() string         { return v.message }
func (v CheckVerdict) AttemptNumber() int      { return v.attemptNumber }
func (v CheckVerdict) StartedAt() time.Time    { return v.startedAt }
func (v CheckVerdict) Duration() time.Duration { return v.duration }

func (v CheckVerdict) ArtifactPaths() []string {
	return append([]string(nil), v.artifactPaths...)
}

type verdictDTO struct {
	Kind          CheckKind `json:"kind" yaml:"kind"`
	Outcome       Outcome   `json:"outcome" yaml:"outcome"`
	Message       string    `json:"message" yaml:"message"`
	ArtifactPaths []string  `json:"artifact_paths" yaml:"artifact_paths"`
	AttemptNumber int       `json:"attempt_number" yaml:"attempt_number"`
	StartedAt     time.Time `json:"started_at" yaml:"started_at"`
	DurationMS    int64     `json:"duration_ms" yaml:"duration_ms"`
}

func (v CheckVerdict) dto() verdictDTO {
	paths := v.ArtifactPaths()
	if paths == nil {
		paths = []string{}
	}
	return verdictDTO{
		Kind:          v.kind,
		Outcome:       v.outcome,
		Message:       v.message,
		ArtifactPaths: paths,
		AttemptNumber: v.attemptNumber,
		StartedAt:     v.startedAt,
		DurationMS:    v.duration.Milliseconds(),
	}
}

func (d verdictDTO) verdict() (CheckVerdict, error) {
	return NewCheckVerdict(VerdictParams{
		Kind:          d.Kind,
		Outcome:       d.Outcome,
		Message:       d.Message,
		ArtifactPaths: d.ArtifactPaths,
		AttemptNumber: d.AttemptNumber,
		StartedAt:     d.StartedAt,
		Duration:      time.Duration(d.DurationMS) * time.Millisecond,
	})
}

func (v CheckVerdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.dto())
}

func (v *CheckVerdict) UnmarshalJSON(data []byte) error {
	var d verdictDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	parsed, err := d.verdict()
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v CheckVerdict) MarshalYAML() (interface{}, error) {
	return v.dto(), nil
}
