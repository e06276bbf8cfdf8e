package checks

import (
	"context"
	"errors"

	"ozzus/vendor-check/internal/browser"
	"ozzus/vendor-check/internal/domain"
)

// FranchiseTaxChecker exports the franchise tax permit rows matching the
// vendor as CSV. It only captures evidence; a reviewer reads the file.
type FranchiseTaxChecker struct {
	pageCheck
	url string
}

func NewFranchiseTaxChecker(deps Deps) *FranchiseTaxChecker {
	deps = deps.withDefaults()
	return &FranchiseTaxChecker{pageCheck: newPageCheck(deps), url: deps.Endpoints.FranchiseTax}
}

func (c *FranchiseTaxChecker) Kind() domain.CheckKind { return domain.CheckFranchiseTaxStatus }

func (c *FranchiseTaxChecker) Run(ctx context.Context, vendor domain.VendorRecord) (Result, error) {
	term, _ := identifierOrName(vendor)
	if term == "" {
		return Result{}, errors.New("vendor has neither identifier nor name")
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

	if err := c.fill(ctx, session, browser.ByID, franchiseSearchField, term); err != nil {
		return Result{}, err
	}
	if err := c.fill(ctx, session, browser.ByID, franchiseSearchField, browser.KeyEnter); err != nil {
		return Result{}, err
	}
	if err := c.click(ctx, session, browser.ByXPath, franchiseExportXPath); err != nil {
		return Result{}, err
	}
	if err := c.click(ctx, session, browser.ByXPath, franchiseCSVXPath); err != nil {
		return Result{}, err
	}

	path, err := c.store.WaitForNewFile(ctx, dest, ".csv")
	if err != nil {
		return Result{}, err
	}

	return Result{
		Outcome:   domain.OutcomePassed,
		Message:   passedMessage(c.Kind()),
		Artifacts: []string{path},
	}, nil
}
