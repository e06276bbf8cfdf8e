package checks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ozzus/vendor-check/internal/artifacts"
	"ozzus/vendor-check/internal/browser"

	"github.com/spf13/afero"
)

// pageCheck is the shared mechanics of the adapters that drive a browser.
type pageCheck struct {
	store          *artifacts.Store
	launcher       browser.Launcher
	headless       bool
	elementTimeout time.Duration
	log            *slog.Logger
}

func newPageCheck(deps Deps) pageCheck {
	return pageCheck{
		store:          deps.Store,
		launcher:       deps.Launcher,
		headless:       deps.Headless,
		elementTimeout: deps.ElementTimeout,
		log:            deps.Logger,
	}
}

// open launches an exclusive browser that downloads into dest.
func (p pageCheck) open(ctx context.Context, dest artifacts.Destination, url string) (browser.Session, error) {
	if p.launcher == nil {
		return nil, errors.New("no browser launcher configured")
	}

	session, err := p.launcher.Launch(ctx, browser.Options{
		Headless:    p.headless,
		DownloadDir: dest.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	if err := session.Navigate(ctx, url); err != nil {
		p.close(session)
		return nil, fmt.Errorf("open %s: %w", url, err)
	}
	return session, nil
}

func (p pageCheck) close(session browser.Session) {
	if err := session.Close(context.Background()); err != nil {
		p.log.Warn("close browser", slog.String("error", err.Error()))
	}
}

func (p pageCheck) element(ctx context.Context, s browser.Session, by browser.By, value string) (browser.Element, error) {
	el, err := s.WaitForElement(ctx, by, value, p.elementTimeout)
	if errors.Is(err, browser.ErrTimeout) {
		return nil, fmt.Errorf("element %s=%s: %w: %w", by, value, browser.ErrNoSuchElement, err)
	}
	if err != nil {
		return nil, fmt.Errorf("element %s=%s: %w", by, value, err)
	}
	return el, nil
}

func (p pageCheck) fill(ctx context.Context, s browser.Session, by browser.By, value, text string) error {
	el, err := p.element(ctx, s, by, value)
	if err != nil {
		return err
	}
	return el.SendKeys(ctx, text)
}

func (p pageCheck) click(ctx context.Context, s browser.Session, by browser.By, value string) error {
	el, err := p.element(ctx, s, by, value)
	if err != nil {
		return err
	}
	return el.Click(ctx)
}

// waitReady polls until the document has finished loading.
func (p pageCheck) waitReady(ctx context.Context, s browser.Session) error {
	ctx, cancel := context.WithTimeout(ctx, p.elementTimeout)
	defer cancel()

	ticker := time.NewTicker(p.store.PollInterval())
	defer ticker.Stop()

	for {
		raw, err := s.ExecuteScript(ctx, "return document.readyState")
		if err == nil {
			var state string
			if json.Unmarshal(raw, &state) == nil && state == "complete" {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("page load: %w", browser.ErrTimeout)
		case <-ticker.C:
		}
	}
}

// printout saves the current page as PDF evidence.
func (p pageCheck) printout(ctx context.Context, s browser.Session, dest artifacts.Destination, name string) (string, error) {
	pdf, err := s.PrintPDF(ctx)
	if err != nil {
		return "", fmt.Errorf("print page: %w", err)
	}

	path := dest.File(name)
	if err := afero.WriteFile(p.store.Fs(), path, pdf, 0o644); err != nil {
		return "", fmt.Errorf("save printout: %w", err)
	}
	if err := p.store.WaitExists(ctx, path); err != nil {
		return "", err
	}
	return path, nil
}
