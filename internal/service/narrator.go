package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"ozzus/vendor-check/internal/domain"
	"ozzus/vendor-check/internal/repository"

	"github.com/fatih/color"
)

// Narrator receives the progress of a session. Narration never changes the
// report.
type Narrator interface {
	Narrate(ctx context.Context, event domain.SessionEvent)
}

// ConsoleNarrator prints progress lines for an operator at a terminal.
type ConsoleNarrator struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleNarrator(out io.Writer) *ConsoleNarrator {
	return &ConsoleNarrator{out: out}
}

func (n *ConsoleNarrator) Narrate(_ context.Context, e domain.SessionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch e.Type {
	case domain.EventSessionStarted:
		if e.Vendor != nil {
			fmt.Fprintf(n.out, "Running compliance checks for %s\n", color.New(color.Bold).Sprint(e.Vendor.String()))
		}
	case domain.EventCheckStarted:
		label := e.Kind.Label()
		if e.Attempt > 1 {
			label = fmt.Sprintf("%s (attempt %d)", label, e.Attempt)
		}
		fmt.Fprintf(n.out, "  %s %s...\n", color.CyanString("→"), label)
	case domain.EventCheckFinished:
		fmt.Fprintf(n.out, "  %s %s: %s\n", outcomeMark(e.Outcome), e.Kind.Label(), e.Message)
	case domain.EventCheckCarried:
		fmt.Fprintf(n.out, "  %s %s: kept from previous session (%s)\n", color.HiBlackString("="), e.Kind.Label(), e.Outcome)
	case domain.EventHUBFallback:
		fmt.Fprintf(n.out, "  %s %s: %s\n", color.YellowString("↻"), e.Kind.Label(), e.Message)
	case domain.EventSessionFinished:
		fmt.Fprintf(n.out, "Session %s finished: %s\n", e.SessionID, e.Message)
	}
}

func outcomeMark(o domain.Outcome) string {
	switch o {
	case domain.OutcomePassed:
		return color.GreenString("✓")
	case domain.OutcomeNotFound:
		return color.BlueString("∅")
	case domain.OutcomeFailed:
		return color.RedString("✗")
	}
	return color.New(color.FgRed, color.Bold).Sprint("!")
}

// LogNarrator is the headless replacement of the console: the same events as
// structured log records.
type LogNarrator struct {
	log *slog.Logger
}

func NewLogNarrator(log *slog.Logger) *LogNarrator {
	return &LogNarrator{log: log}
}

func (n *LogNarrator) Narrate(ctx context.Context, e domain.SessionEvent) {
	attrs := []slog.Attr{
		slog.String("session_id", e.SessionID),
		slog.String("event", string(e.Type)),
	}
	if e.Vendor != nil {
		attrs = append(attrs, slog.String("vendor", e.Vendor.Name), slog.String("identifier", e.Vendor.Identifier))
	}
	if e.Kind != "" {
		attrs = append(attrs, slog.String("check", string(e.Kind)), slog.Int("attempt", e.Attempt))
	}
	if e.Outcome != "" {
		attrs = append(attrs, slog.String("outcome", string(e.Outcome)))
	}
	if e.Message != "" {
		attrs = append(attrs, slog.String("message", e.Message))
	}

	level := slog.LevelInfo
	if e.Outcome == domain.OutcomeErrored || e.Outcome == domain.OutcomeFailed {
		level = slog.LevelWarn
	}
	n.log.LogAttrs(ctx, level, "session progress", attrs...)
}

// KafkaNarrator forwards events to the events topic. Publishing failures are
// logged and otherwise ignored.
type KafkaNarrator struct {
	events repository.EventRepository
	log    *slog.Logger
}

func NewKafkaNarrator(events repository.EventRepository, log *slog.Logger) *KafkaNarrator {
	if log == nil {
		log = slog.Default()
	}
	return &KafkaNarrator{events: events, log: log}
}

func (n *KafkaNarrator) Narrate(ctx context.Context, e domain.SessionEvent) {
	if err := n.events.PublishEvent(context.WithoutCancel(ctx), e); err != nil {
		n.log.Error("failed to publish session event",
			slog.String("session_id", e.SessionID),
			slog.String("event", string(e.Type)),
			slog.String("error", err.Error()),
		)
	}
}

type MultiNarrator []Narrator

func (m MultiNarrator) Narrate(ctx context.Context, e domain.SessionEvent) {
	for _, n := range m {
		n.Narrate(ctx, e)
	}
}
