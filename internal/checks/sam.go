package checks

import (
	"context"
	"errors"
	"strings"

	"ozzus/vendor-check/internal/browser"
	"ozzus/vendor-check/internal/domain"
)

var samNoResults = []string{"no records found", "no results found", "0 records"}

// SAMChecker searches the federal exclusion records by name, or by DUNS
// number when the vendor has no name.
type SAMChecker struct {
	pageCheck
	url string
}

func NewSAMChecker(deps Deps) *SAMChecker {
	deps = deps.withDefaults()
	return &SAMChecker{pageCheck: newPageCheck(deps), url: deps.Endpoints.SAMSearch}
}

func (c *SAMChecker) Kind() domain.CheckKind { return domain.CheckSAMExclusion }

func (c *SAMChecker) Run(ctx context.Context, vendor domain.VendorRecord) (Result, error) {
	term, field := strings.TrimSpace(vendor.Name), samNameField
	if term == "" {
		term, field = strings.TrimSpace(vendor.DUNSNumber), samDUNSField
	}
	if term == "" {
		return Result{}, errors.New("vendor has neither name nor DUNS number")
	}

	dest, err := c.store.PrepareDestination(c.Kind().Label())
	if err != nil {
		return Result{}, err
	}

	session, err := c.open(ctx, dest, c.url)
	if err != nil {
		return Result{}, err
	}
	defer c.close(session)

	if err := c.fill(ctx, session, browser.ByID, field, term); err != nil {
		return Result{}, err
	}
	if err := c.click(ctx, session, browser.ByName, samSearchButton); err != nil {
		return Result{}, err
	}
	if err := c.waitReady(ctx, session); err != nil {
		return Result{}, err
	}

	text, err := session.PageText(ctx)
	if err != nil {
		return Result{}, err
	}
	if containsAny(strings.ToLower(text), samNoResults) {
		path, err := c.printout(ctx, session, dest, evidenceName(c.Kind(), term))
		if err != nil {
			return Result{}, err
		}
		return Result{
			Outcome:   domain.OutcomeNotFound,
			Message:   notFoundMessage(c.Kind(), term),
			Artifacts: []string{path},
		}, nil
	}

	if err := c.click(ctx, session, browser.ByXPath, samDownloadXPath); err != nil {
		return Result{}, err
	}

	path := dest.File(samResultsFile)
	if err := c.store.WaitExists(ctx, path); err != nil {
		return Result{}, err
	}

	return Result{
		Outcome:   domain.OutcomePassed,
		Message:   passedMessage(c.Kind()),
		Artifacts: []string{path},
	}, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
