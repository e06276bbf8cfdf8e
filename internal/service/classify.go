package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"ozzus/vendor-check/internal/browser"
	"ozzus/vendor-check/internal/domain"
)

// classify wraps err into an AdapterError with a coarse cause.
func classify(kind domain.CheckKind, err error) *domain.AdapterError {
	var adapterErr *domain.AdapterError
	if errors.As(err, &adapterErr) {
		return adapterErr
	}
	return &domain.AdapterError{Kind: kind, Cause: causeOf(err), Err: err}
}

func causeOf(err error) domain.FailureCause {
	var (
		folderErr   *domain.FolderError
		downloadErr *domain.DownloadIncompleteError
		netErr      net.Error
	)

	switch {
	case errors.As(err, &folderErr):
		return domain.CauseFolder
	case errors.As(err, &downloadErr):
		return domain.CauseDownloadIncomplete
	case errors.Is(err, browser.ErrNoSuchElement):
		return domain.CauseElementNotFound
	case errors.Is(err, browser.ErrTimeout), domain.IsTimeout(err):
		return domain.CauseTimeout
	case errors.As(err, &netErr):
		return domain.CauseNetwork
	}
	return domain.CauseUnknown
}

// describe renders the verdict message of an errored check.
func describe(err *domain.AdapterError, deadline time.Duration) string {
	switch err.Cause {
	case domain.CauseTimeout:
		if errors.Is(err.Err, context.DeadlineExceeded) {
			return fmt.Sprintf("timed out after %s", deadline)
		}
		return fmt.Sprintf("timed out: %v", err.Err)
	case domain.CauseElementNotFound:
		return fmt.Sprintf("page element not found: %v", err.Err)
	case domain.CauseNetwork:
		return fmt.Sprintf("network error: %v", err.Err)
	case domain.CauseFolder:
		return fmt.Sprintf("evidence folder unavailable: %v", err.Err)
	case domain.CauseDownloadIncomplete:
		return fmt.Sprintf("evidence not captured: %v", err.Err)
	case domain.CausePanic:
		return fmt.Sprintf("adapter crashed: %v", err.Err)
	}
	return err.Err.Error()
}
