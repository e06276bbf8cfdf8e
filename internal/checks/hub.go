package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ozzus/vendor-check/internal/artifacts"
	"ozzus/vendor-check/internal/browser"
	"ozzus/vendor-check/internal/domain"
)

type HUBSearchBy string

const (
	HUBByIdentifier HUBSearchBy = "identifier"
	HUBByName       HUBSearchBy = "name"
)

// HUBChecker looks the vendor up in the CMBL/HUB directory. The details link
// of a match is the vendor identifier followed by "00".
type HUBChecker struct {
	pageCheck
	url string
	by  HUBSearchBy
}

func NewHUBChecker(deps Deps, by HUBSearchBy) *HUBChecker {
	deps = deps.withDefaults()
	return &HUBChecker{pageCheck: newPageCheck(deps), url: deps.Endpoints.HUBSearch, by: by}
}

func (c *HUBChecker) Kind() domain.CheckKind { return domain.CheckHUBStatus }

func (c *HUBChecker) SearchBy() HUBSearchBy { return c.by }

func (c *HUBChecker) Run(ctx context.Context, vendor domain.VendorRecord) (Result, error) {
	var term, field string
	switch c.by {
	case HUBByName:
		term, field = strings.TrimSpace(vendor.Name), hubNameField
	default:
		term, field = strings.TrimSpace(vendor.Identifier), hubIDField
	}
	if term == "" {
		return Result{}, fmt.Errorf("vendor has no %s to search by", c.by)
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

	if err := c.click(ctx, session, browser.ByLinkText, hubSingleVendorLink); err != nil {
		return Result{}, err
	}
	if err := c.fill(ctx, session, browser.ByID, field, term); err != nil {
		return Result{}, err
	}
	if err := c.click(ctx, session, browser.ByID, hubInactiveBox); err != nil {
		return Result{}, err
	}
	if err := c.click(ctx, session, browser.ByID, hubSearchButton); err != nil {
		return Result{}, err
	}
	if err := c.waitReady(ctx, session); err != nil {
		return Result{}, err
	}

	// A match is only recognised by its details link, which is keyed by the
	// identifier even when searching by name.
	identifier := strings.TrimSpace(vendor.Identifier)
	if identifier == "" {
		return c.notFound(ctx, session, dest, term, notFoundMessage(c.Kind(), term)+" (vendor has no identifier to match)")
	}

	link, err := session.FindElement(ctx, browser.ByLinkText, identifier+hubDetailsSuffix)
	if errors.Is(err, browser.ErrNoSuchElement) {
		return c.notFound(ctx, session, dest, term, notFoundMessage(c.Kind(), term))
	}
	if err != nil {
		return Result{}, err
	}

	if err := link.Click(ctx); err != nil {
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

func (c *HUBChecker) notFound(ctx context.Context, session browser.Session, dest artifacts.Destination, term, message string) (Result, error) {
	path, err := c.printout(ctx, session, dest, evidenceName(c.Kind(), term))
	if err != nil {
		return Result{}, err
	}
	return Result{
		Outcome:   domain.OutcomeNotFound,
		Message:   message,
		Artifacts: []string{path},
	}, nil
}
