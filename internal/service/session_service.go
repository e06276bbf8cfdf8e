package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ozzus/vendor-check/internal/checks"
	"ozzus/vendor-check/internal/domain"
)

// Checkpointer persists a report while a session is still running, so an
// interrupted session can be resumed.
type Checkpointer interface {
	Save(ctx context.Context, report *domain.SessionReport) error
}

type Config struct {
	// CheckTimeout is the deadline of a single check attempt.
	CheckTimeout time.Duration
	Now          func() time.Time
}

// SessionService runs the compliance sweep for one vendor: every check in
// order, one at a time, each failure contained to its own verdict.
type SessionService struct {
	registry     *checks.Registry
	narrator     Narrator
	checkpoints  Checkpointer
	log          *slog.Logger
	checkTimeout time.Duration
	now          func() time.Time
}

func NewSessionService(registry *checks.Registry, narrator Narrator, checkpoints Checkpointer, log *slog.Logger, config Config) *SessionService {
	if config.CheckTimeout <= 0 {
		config.CheckTimeout = 3 * time.Minute
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if narrator == nil {
		narrator = MultiNarrator{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &SessionService{
		registry:     registry,
		narrator:     narrator,
		checkpoints:  checkpoints,
		log:          log,
		checkTimeout: config.CheckTimeout,
		now:          config.Now,
	}
}

// RunSession always returns a finalized report. The error is non-nil only
// when the session had to stop early: a cancelled context or a condition such
// as a full disk that no further check could survive.
func (s *SessionService) RunSession(ctx context.Context, vendor domain.VendorRecord) (*domain.SessionReport, error) {
	report := domain.NewSessionReport(vendor, s.now())
	s.start(ctx, report)

	var err error
	for _, kind := range domain.ExecutionOrder() {
		if err = s.runKind(ctx, report, kind); err != nil {
			break
		}
	}

	s.finish(ctx, report)
	return report, err
}

// Resume starts a new session for the vendor of prior that re-runs only the
// checks prior did not settle and carries every other verdict over.
func (s *SessionService) Resume(ctx context.Context, prior *domain.SessionReport) (*domain.SessionReport, error) {
	if prior == nil {
		return nil, errors.New("no session to resume")
	}

	retry := make(map[domain.CheckKind]bool)
	for _, kind := range prior.FailedKinds() {
		retry[kind] = true
	}

	report := domain.NewResumedReport(prior, s.now())
	s.start(ctx, report)

	var err error
	for _, kind := range domain.ExecutionOrder() {
		if retry[kind] {
			if err = s.runKind(ctx, report, kind); err != nil {
				break
			}
			continue
		}

		for _, v := range prior.VerdictsFor(kind) {
			if err = report.Append(v); err != nil {
				break
			}
			s.emit(ctx, report, domain.SessionEvent{
				Type:    domain.EventCheckCarried,
				Kind:    kind,
				Attempt: v.AttemptNumber(),
				Outcome: v.Outcome(),
				Message: v.Message(),
			})
		}
		if err != nil {
			break
		}
	}

	s.finish(ctx, report)
	return report, err
}

func (s *SessionService) start(ctx context.Context, report *domain.SessionReport) {
	vendor := report.Vendor()
	s.emit(ctx, report, domain.SessionEvent{Type: domain.EventSessionStarted, Vendor: &vendor})
}

func (s *SessionService) finish(ctx context.Context, report *domain.SessionReport) {
	report.Finalize(s.now())
	s.checkpoint(ctx, report)

	summary := report.Summary()
	s.emit(ctx, report, domain.SessionEvent{
		Type: domain.EventSessionFinished,
		Message: fmt.Sprintf("%d passed, %d not found, %d failed, %d errored",
			summary[domain.OutcomePassed], summary[domain.OutcomeNotFound],
			summary[domain.OutcomeFailed], summary[domain.OutcomeErrored]),
	})
}

// runKind runs one check and, for HUB status, the by-name retry.
func (s *SessionService) runKind(ctx context.Context, report *domain.SessionReport, kind domain.CheckKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	checker, ok := s.registry.Checker(kind)
	if !ok {
		v, err := s.verdict(kind, 1, s.now(), 0, checks.Result{
			Outcome: domain.OutcomeErrored,
			Message: "no adapter registered",
		})
		if err != nil {
			return err
		}
		return s.record(ctx, report, v)
	}

	v, err := s.attempt(ctx, report, checker, 1)
	if err != nil {
		return err
	}

	if kind != domain.CheckHUBStatus || v.Outcome() != domain.OutcomeNotFound {
		return nil
	}
	fallback := s.registry.HUBFallback()
	if fallback == nil {
		return nil
	}

	s.emit(ctx, report, domain.SessionEvent{
		Type:    domain.EventHUBFallback,
		Kind:    kind,
		Attempt: 2,
		Message: "not found by identifier, searching by name",
	})
	_, err = s.attempt(ctx, report, fallback, 2)
	return err
}

func (s *SessionService) attempt(ctx context.Context, report *domain.SessionReport, checker checks.Checker, attempt int) (domain.CheckVerdict, error) {
	kind := checker.Kind()
	s.emit(ctx, report, domain.SessionEvent{Type: domain.EventCheckStarted, Kind: kind, Attempt: attempt})

	started := s.now()
	res, err := s.runGuarded(ctx, checker, report.Vendor())
	elapsed := s.now().Sub(started)

	if err != nil {
		if domain.IsFatal(err) {
			return domain.CheckVerdict{}, fmt.Errorf("%s: %w", kind.Label(), err)
		}

		adapterErr := classify(kind, err)
		s.log.Warn("check errored",
			slog.String("check", string(kind)),
			slog.Int("attempt", attempt),
			slog.String("cause", string(adapterErr.Cause)),
			slog.String("error", err.Error()),
		)
		res = checks.Result{Outcome: domain.OutcomeErrored, Message: describe(adapterErr, s.checkTimeout)}
	} else if !res.Outcome.Valid() {
		res = checks.Result{Outcome: domain.OutcomeErrored, Message: fmt.Sprintf("adapter returned unknown outcome %q", res.Outcome)}
	}

	v, err := s.verdict(kind, attempt, started, elapsed, res)
	if err != nil {
		return domain.CheckVerdict{}, err
	}
	return v, s.record(ctx, report, v)
}

// runGuarded runs the adapter under the per-check deadline and turns a panic
// into an error.
func (s *SessionService) runGuarded(ctx context.Context, checker checks.Checker, vendor domain.VendorRecord) (checks.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	type outcome struct {
		res checks.Result
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: &domain.AdapterError{
					Kind:  checker.Kind(),
					Cause: domain.CausePanic,
					Err:   fmt.Errorf("panic: %v", r),
				}}
			}
		}()
		res, err := checker.Run(ctx, vendor)
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		select {
		case o := <-done:
			return o.res, o.err
		default:
		}
		// an adapter that ignores its context is abandoned here
		return checks.Result{}, ctx.Err()
	}
}

func (s *SessionService) verdict(kind domain.CheckKind, attempt int, started time.Time, elapsed time.Duration, res checks.Result) (domain.CheckVerdict, error) {
	return domain.NewCheckVerdict(domain.VerdictParams{
		Kind:          kind,
		Outcome:       res.Outcome,
		Message:       res.Message,
		ArtifactPaths: res.Artifacts,
		AttemptNumber: attempt,
		StartedAt:     started,
		Duration:      elapsed,
	})
}

func (s *SessionService) record(ctx context.Context, report *domain.SessionReport, v domain.CheckVerdict) error {
	if err := report.Append(v); err != nil {
		return err
	}

	s.emit(ctx, report, domain.SessionEvent{
		Type:    domain.EventCheckFinished,
		Kind:    v.Kind(),
		Attempt: v.AttemptNumber(),
		Outcome: v.Outcome(),
		Message: v.Message(),
	})
	s.checkpoint(ctx, report)
	return nil
}

func (s *SessionService) checkpoint(ctx context.Context, report *domain.SessionReport) {
	if s.checkpoints == nil {
		return
	}
	if err := s.checkpoints.Save(context.WithoutCancel(ctx), report); err != nil {
		s.log.Error("failed to save session checkpoint",
			slog.String("session_id", report.ID().String()),
			slog.String("error", err.Error()),
		)
	}
}

func (s *SessionService) emit(ctx context.Context, report *domain.SessionReport, event domain.SessionEvent) {
	event.SessionID = report.ID().String()
	event.Timestamp = s.now()
	s.narrator.Narrate(ctx, event)
}
