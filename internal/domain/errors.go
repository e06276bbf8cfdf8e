package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"syscall"
)

var (
	ErrVendorNotFound  = errors.New("vendor not found")
	ErrAmbiguousVendor = errors.New("vendor lookup is ambiguous")
	ErrInvalidQuery    = errors.New("exactly one of vendor name or identifier is required")
)

// FolderError means a check's evidence folder could not be created.
type FolderError struct {
	Label string
	Path  string
	Err   error
}

func (e *FolderError) Error() string {
	return fmt.Sprintf("create folder %q (%s): %v", e.Label, e.Path, e.Err)
}

func (e *FolderError) Unwrap() error { return e.Err }

// DownloadIncompleteError means the expected evidence was not on disk when
// the wait ran out.
type DownloadIncompleteError struct {
	Dir     string
	Missing []string
	Extra   []string
}

func (e *DownloadIncompleteError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(sorted(e.Missing), ", "))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "unexpected "+strings.Join(sorted(e.Extra), ", "))
	}
	if len(parts) == 0 {
		parts = append(parts, "no evidence captured")
	}
	return fmt.Sprintf("download incomplete in %s: %s", e.Dir, strings.Join(parts, "; "))
}

// FailureCause is a coarse classification of why a check could not finish.
type FailureCause string

const (
	CauseTimeout            FailureCause = "timeout"
	CauseElementNotFound    FailureCause = "element_not_found"
	CauseNetwork            FailureCause = "network"
	CauseFolder             FailureCause = "folder"
	CauseDownloadIncomplete FailureCause = "download_incomplete"
	CausePanic              FailureCause = "panic"
	CauseUnknown            FailureCause = "unknown"
)

// AdapterError wraps anything raised inside a check's mechanics.
type AdapterError struct {
	Kind  CheckKind
	Cause FailureCause
	Err   error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind.Label(), e.Cause, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// ResolverError is fatal to a session: it happens before any check runs.
type ResolverError struct {
	Query string
	Err   error
}

func (e *ResolverError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("vendor lookup failed: %v", e.Err)
	}
	return fmt.Sprintf("vendor lookup %s failed: %v", e.Query, e.Err)
}

func (e *ResolverError) Unwrap() error { return e.Err }

// IsFatal reports conditions that must abort a whole session rather than a
// single check.
func IsFatal(err error) bool {
	return errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT)
}

func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
