package checks

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ozzus/vendor-check/internal/browser"
	"ozzus/vendor-check/internal/domain"
)

var ofacFoundPattern = regexp.MustCompile(`(\d+)\s+Found`)

// OFACChecker searches the sanctions list by vendor name.
type OFACChecker struct {
	pageCheck
	url string
}

func NewOFACChecker(deps Deps) *OFACChecker {
	deps = deps.withDefaults()
	return &OFACChecker{pageCheck: newPageCheck(deps), url: deps.Endpoints.OFACSearch}
}

func (c *OFACChecker) Kind() domain.CheckKind { return domain.CheckOFACSanctions }

func (c *OFACChecker) Run(ctx context.Context, vendor domain.VendorRecord) (Result, error) {
	name := strings.TrimSpace(vendor.Name)
	if name == "" {
		return Result{}, errors.New("vendor has no name")
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

	if err := c.fill(ctx, session, browser.ByID, ofacNameField, name); err != nil {
		return Result{}, err
	}
	if err := c.click(ctx, session, browser.ByID, ofacSearchButton); err != nil {
		return Result{}, err
	}

	label, err := c.element(ctx, session, browser.ByID, ofacResultsLabel)
	if err != nil {
		return Result{}, err
	}
	text, err := label.Text(ctx)
	if err != nil {
		return Result{}, err
	}
	found, err := parseOFACCount(text)
	if err != nil {
		return Result{}, err
	}

	if found == 0 {
		path, err := c.printout(ctx, session, dest, evidenceName(c.Kind(), name))
		if err != nil {
			return Result{}, err
		}
		return Result{
			Outcome:   domain.OutcomeNotFound,
			Message:   notFoundMessage(c.Kind(), name),
			Artifacts: []string{path},
		}, nil
	}

	if err := c.click(ctx, session, browser.ByID, ofacExportButton); err != nil {
		return Result{}, err
	}

	path := dest.File(ofacResultsFile)
	if err := c.store.WaitExists(ctx, path); err != nil {
		return Result{}, err
	}

	return Result{
		Outcome:   domain.OutcomePassed,
		Message:   fmt.Sprintf("%s: %d found", passedMessage(c.Kind()), found),
		Artifacts: []string{path},
	}, nil
}

func parseOFACCount(label string) (int, error) {
	m := ofacFoundPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, fmt.Errorf("unrecognised results label %q", label)
	}
	return strconv.Atoi(m[1])
}
