// Package checks holds one adapter per compliance source.
package checks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ozzus/vendor-check/internal/artifacts"
	"ozzus/vendor-check/internal/browser"
	"ozzus/vendor-check/internal/domain"
	"ozzus/vendor-check/internal/fetcher"
)

// Result is what an adapter reports. The orchestrator stamps it with the
// kind, attempt number and timing.
type Result struct {
	Outcome   domain.Outcome
	Message   string
	Artifacts []string
}

type Checker interface {
	Kind() domain.CheckKind
	Run(ctx context.Context, vendor domain.VendorRecord) (Result, error)
}

// Deps are shared by every adapter of a session.
type Deps struct {
	Store     *artifacts.Store
	Fetcher   *fetcher.Fetcher
	Launcher  browser.Launcher
	Headless  bool
	Endpoints Endpoints
	// ElementTimeout bounds every wait for a page element.
	ElementTimeout time.Duration
	Logger         *slog.Logger
}

func (d Deps) withDefaults() Deps {
	d.Endpoints = d.Endpoints.withDefaults()
	if d.ElementTimeout <= 0 {
		d.ElementTimeout = 20 * time.Second
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

func NewChecker(kind domain.CheckKind, deps Deps) (Checker, error) {
	switch kind {
	case domain.CheckFranchiseTaxStatus:
		return NewFranchiseTaxChecker(deps), nil
	case domain.CheckVendorPerformance:
		return NewVendorPerformanceChecker(deps), nil
	case domain.CheckSAMExclusion:
		return NewSAMChecker(deps), nil
	case domain.CheckOFACSanctions:
		return NewOFACChecker(deps), nil
	case domain.CheckDebarredList:
		return NewDebarredChecker(deps), nil
	case domain.CheckDivestmentList:
		return NewDivestmentChecker(deps), nil
	case domain.CheckHUBStatus:
		return NewHUBChecker(deps, HUBByIdentifier), nil
	}
	return nil, fmt.Errorf("unknown check kind %q", kind)
}

// Registry maps every kind to its adapter, plus the by-name HUB adapter used
// when the by-identifier lookup finds nothing.
type Registry struct {
	checkers    map[domain.CheckKind]Checker
	hubFallback Checker
}

func NewRegistry(deps Deps) (*Registry, error) {
	list := make([]Checker, 0, len(domain.ExecutionOrder()))
	for _, kind := range domain.ExecutionOrder() {
		c, err := NewChecker(kind, deps)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return NewRegistryFrom(list, NewHUBChecker(deps, HUBByName)), nil
}

// NewRegistryFrom builds a registry out of ready adapters. A nil fallback
// disables the HUB by-name retry.
func NewRegistryFrom(list []Checker, hubFallback Checker) *Registry {
	r := &Registry{
		checkers:    make(map[domain.CheckKind]Checker, len(list)),
		hubFallback: hubFallback,
	}
	for _, c := range list {
		r.checkers[c.Kind()] = c
	}
	return r
}

func (r *Registry) Checker(kind domain.CheckKind) (Checker, bool) {
	c, ok := r.checkers[kind]
	return c, ok
}

func (r *Registry) HUBFallback() Checker {
	return r.hubFallback
}
