package checks

import (
	"context"
	"errors"

	"ozzus/vendor-check/internal/browser"
	"ozzus/vendor-check/internal/domain"
)

// VendorPerformanceChecker prints the vendor performance tracking page.
type VendorPerformanceChecker struct {
	pageCheck
	url string
}

func NewVendorPerformanceChecker(deps Deps) *VendorPerformanceChecker {
	deps = deps.withDefaults()
	return &VendorPerformanceChecker{pageCheck: newPageCheck(deps), url: deps.Endpoints.VendorPerformance}
}

func (c *VendorPerformanceChecker) Kind() domain.CheckKind { return domain.CheckVendorPerformance }

func (c *VendorPerformanceChecker) Run(ctx context.Context, vendor domain.VendorRecord) (Result, error) {
	term, byIdentifier := identifierOrName(vendor)
	if term == "" {
		return Result{}, errors.New("vendor has neither identifier nor name")
	}
	field := vprNameField
	if byIdentifier {
		field = vprIDField
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
	if err := c.click(ctx, session, browser.ByID, vprSearchField); err != nil {
		return Result{}, err
	}
	if err := c.waitReady(ctx, session); err != nil {
		return Result{}, err
	}

	path, err := c.printout(ctx, session, dest, evidenceName(c.Kind(), term))
	if err != nil {
		return Result{}, err
	}

	return Result{
		Outcome:   domain.OutcomePassed,
		Message:   passedMessage(c.Kind()),
		Artifacts: []string{path},
	}, nil
}
