package checks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ozzus/vendor-check/internal/artifacts"
	"ozzus/vendor-check/internal/domain"
	"ozzus/vendor-check/internal/fetcher"
)

// documentSet downloads a fixed list of published documents and verifies the
// folder holds exactly that set afterwards.
type documentSet struct {
	kind    domain.CheckKind
	urls    []string
	store   *artifacts.Store
	fetcher *fetcher.Fetcher
	log     *slog.Logger
}

type DebarredChecker struct{ documentSet }

func NewDebarredChecker(deps Deps) *DebarredChecker {
	deps = deps.withDefaults()
	return &DebarredChecker{newDocumentSet(domain.CheckDebarredList, []string{deps.Endpoints.DebarredList}, deps)}
}

type DivestmentChecker struct{ documentSet }

func NewDivestmentChecker(deps Deps) *DivestmentChecker {
	deps = deps.withDefaults()
	return &DivestmentChecker{newDocumentSet(domain.CheckDivestmentList, deps.Endpoints.DivestmentLists, deps)}
}

func newDocumentSet(kind domain.CheckKind, urls []string, deps Deps) documentSet {
	return documentSet{
		kind:    kind,
		urls:    append([]string(nil), urls...),
		store:   deps.Store,
		fetcher: deps.Fetcher,
		log:     deps.Logger,
	}
}

func (d *documentSet) Kind() domain.CheckKind { return d.kind }

// Run ignores the vendor: the lists are reviewed as a whole.
func (d *documentSet) Run(ctx context.Context, _ domain.VendorRecord) (Result, error) {
	if d.store == nil || d.fetcher == nil {
		return Result{}, errors.New("document check needs a store and a fetcher")
	}

	dest, err := d.store.PrepareDestination(d.kind.Label())
	if err != nil {
		return Result{}, err
	}

	expected := make([]string, 0, len(d.urls))
	for _, u := range d.urls {
		expected = append(expected, fetcher.Filename(u))
	}

	results := d.fetcher.FetchAll(ctx, d.urls, dest)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var fetchErrs []string
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		if domain.IsFatal(r.Err) {
			return Result{}, r.Err
		}
		fetchErrs = append(fetchErrs, r.Err.Error())
	}

	// nothing else is going to arrive, so there is no point in waiting
	if len(fetchErrs) > 0 {
		missing, extra, err := d.store.Diff(dest, expected)
		if err != nil {
			return Result{}, err
		}
		incomplete := &domain.DownloadIncompleteError{Dir: dest.Path, Missing: missing, Extra: extra}
		return Result{
			Outcome:   domain.OutcomeFailed,
			Message:   fmt.Sprintf("%s: %s", incomplete.Error(), strings.Join(fetchErrs, "; ")),
			Artifacts: present(dest, expected, missing),
		}, nil
	}

	if err := d.store.WaitComplete(ctx, dest, expected); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		var incomplete *domain.DownloadIncompleteError
		if errors.As(err, &incomplete) {
			return Result{
				Outcome:   domain.OutcomeFailed,
				Message:   incomplete.Error(),
				Artifacts: present(dest, expected, incomplete.Missing),
			}, nil
		}
		return Result{}, err
	}

	d.log.Debug("document set complete", slog.String("check", string(d.kind)), slog.Int("files", len(expected)))

	return Result{
		Outcome:   domain.OutcomePassed,
		Message:   passedMessage(d.kind),
		Artifacts: present(dest, expected, nil),
	}, nil
}

func present(dest artifacts.Destination, expected, missing []string) []string {
	skip := make(map[string]bool, len(missing))
	for _, m := range missing {
		skip[m] = true
	}

	paths := make([]string, 0, len(expected))
	for _, name := range expected {
		if !skip[name] {
			paths = append(paths, dest.File(name))
		}
	}
	return paths
}
