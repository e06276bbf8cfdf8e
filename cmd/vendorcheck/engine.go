package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ozzus/vendor-check/internal/artifacts"
	"ozzus/vendor-check/internal/browser"
	"ozzus/vendor-check/internal/checks"
	"ozzus/vendor-check/internal/domain"
	"ozzus/vendor-check/internal/fetcher"
	"ozzus/vendor-check/internal/repository"
	"ozzus/vendor-check/internal/repository/kafka"
	"ozzus/vendor-check/internal/resolver"
	"ozzus/vendor-check/internal/salesforce"
	"ozzus/vendor-check/internal/service"

	"github.com/spf13/afero"
)

// engine is everything a session needs, built from the config.
type engine struct {
	service *service.SessionService
	reports *repository.FileReportRepository
	events  repository.EventRepository
	closers []func() error
}

func (e *engine) Close() {
	for _, c := range e.closers {
		_ = c()
	}
}

func (a *app) reportRepository() *repository.FileReportRepository {
	return repository.NewFileReportRepository(afero.NewOsFs(), a.cfg.Sessions.Dir)
}

func (a *app) buildEngine(format string) (*engine, error) {
	fs := afero.NewOsFs()

	store, err := artifacts.NewStore(fs, artifacts.Options{
		Root:         a.cfg.Artifacts.Root,
		Retention:    artifacts.RetentionPolicy(a.cfg.Artifacts.Retention),
		PollInterval: a.cfg.GetPollInterval(),
		WaitTimeout:  a.cfg.GetWaitTimeout(),
	})
	if err != nil {
		return nil, err
	}

	var launcher browser.Launcher
	if a.cfg.Browser.RemoteURL != "" {
		launcher = browser.NewRemoteLauncher(a.cfg.Browser.RemoteURL, a.cfg.GetBrowserStartupTimeout(), a.log)
	} else {
		launcher = browser.NewChromeLauncher(a.cfg.Browser.ChromePath, a.cfg.GetBrowserStartupTimeout(), a.log)
	}

	registry, err := checks.NewRegistry(checks.Deps{
		Store: store,
		Fetcher: fetcher.New(fs, fetcher.Options{
			MaxWorkers: a.cfg.Fetcher.MaxWorkers,
			Timeout:    a.cfg.GetFetchTimeout(),
			Logger:     a.log,
		}),
		Launcher:       launcher,
		Headless:       a.cfg.Browser.Headless,
		ElementTimeout: a.cfg.GetElementTimeout(),
		Logger:         a.log,
	})
	if err != nil {
		return nil, err
	}

	eng := &engine{reports: a.reportRepository()}

	narrators := service.MultiNarrator{}
	if format == formatText {
		narrators = append(narrators, service.NewConsoleNarrator(a.out))
	} else {
		narrators = append(narrators, service.NewLogNarrator(a.log))
	}

	if a.cfg.Kafka.Enabled {
		a.log.Info("initializing Kafka producers", slog.Any("brokers", a.cfg.Kafka.Brokers))

		eventsProducer := kafka.NewProducer(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topics.Events)
		reportsProducer := kafka.NewProducer(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topics.Reports)
		eng.closers = append(eng.closers, eventsProducer.Close, reportsProducer.Close)

		eng.events = repository.NewKafkaEventRepository(eventsProducer, reportsProducer, a.log)
		narrators = append(narrators, service.NewKafkaNarrator(eng.events, a.log))
	}

	eng.service = service.NewSessionService(registry, narrators, eng.reports, a.log, service.Config{
		CheckTimeout: a.cfg.GetCheckTimeout(),
	})

	return eng, nil
}

// finish publishes and prints a finished session and turns unsettled checks
// into a non-zero exit.
func (a *app) finish(ctx context.Context, eng *engine, report *domain.SessionReport, runErr error, format string) error {
	if eng.events != nil {
		if err := eng.events.PublishReport(context.WithoutCancel(ctx), report); err != nil {
			a.log.Error("failed to publish report", slog.String("error", err.Error()))
		}
	}

	if err := printReport(a.out, report, format); err != nil {
		return err
	}

	if runErr != nil {
		return fmt.Errorf("session %s stopped early: %w (resume with: vendorcheck resume %s)", report.ID(), runErr, report.ID())
	}
	if failed := report.FailedKinds(); len(failed) > 0 {
		return fmt.Errorf("%d check(s) need attention, retry them with: vendorcheck resume %s", len(failed), report.ID())
	}
	return nil
}

func (a *app) login(ctx context.Context, p *prompter) (*salesforce.Client, error) {
	creds := salesforce.Credentials{
		Domain:         a.cfg.Salesforce.Domain,
		Username:       a.cfg.Salesforce.Username,
		Password:       a.cfg.Salesforce.Password,
		SecurityToken:  a.cfg.Salesforce.SecurityToken,
		ConsumerKey:    a.cfg.Salesforce.ConsumerKey,
		ConsumerSecret: a.cfg.Salesforce.ConsumerSecret,
	}

	if err := p.fill(&creds.Username, "Salesforce username", false); err != nil {
		return nil, err
	}
	if err := p.fill(&creds.Password, "Salesforce password", true); err != nil {
		return nil, err
	}
	if err := p.fill(&creds.SecurityToken, "Salesforce security token", true); err != nil {
		return nil, err
	}
	if err := p.fill(&creds.ConsumerKey, "Connected app consumer key", false); err != nil {
		return nil, err
	}
	if err := p.fill(&creds.ConsumerSecret, "Connected app consumer secret", true); err != nil {
		return nil, err
	}

	client, err := salesforce.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("salesforce login failed: %w", err)
	}
	a.log.Debug("salesforce session opened", slog.String("domain", client.Domain()))
	return client, nil
}

// explainResolverError turns lookup failures into something an operator can
// act on.
func explainResolverError(err error) error {
	var resolverErr *domain.ResolverError
	if !errors.As(err, &resolverErr) {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrVendorNotFound):
		return fmt.Errorf("no vendor matches %s; check the spelling or search by identifier", resolverErr.Query)
	case errors.Is(err, domain.ErrAmbiguousVendor):
		return fmt.Errorf("more than one vendor matches %s; search by identifier instead", resolverErr.Query)
	case errors.Is(err, domain.ErrInvalidQuery):
		return errors.New("give either a vendor name or a vendor identifier, not both")
	}
	return err
}

func resolveVendor(ctx context.Context, r *resolver.Resolver, name, id string) (domain.VendorRecord, error) {
	vendor, err := r.Resolve(ctx, resolver.Query{
		Name:       strings.TrimSpace(name),
		Identifier: strings.TrimSpace(id),
	})
	if err != nil {
		return domain.VendorRecord{}, explainResolverError(err)
	}
	return vendor, nil
}
