package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
)

const (
	defaultStartupTimeout = 20 * time.Second
	defaultPollInterval   = 250 * time.Millisecond
)

// ChromeLauncher starts a fresh Chrome process for every session and stops
// it when the session is closed. An empty exec path lets chromedp look the
// browser up on PATH.
type ChromeLauncher struct {
	execPath       string
	startupTimeout time.Duration
	log            *slog.Logger
}

func NewChromeLauncher(execPath string, startupTimeout time.Duration, log *slog.Logger) *ChromeLauncher {
	if startupTimeout <= 0 {
		startupTimeout = defaultStartupTimeout
	}
	if log == nil {
		log = slog.Default()
	}

	return &ChromeLauncher{
		execPath:       execPath,
		startupTimeout: startupTimeout,
		log:            log,
	}
}

func (l *ChromeLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.WindowSize(1280, 1024),
	)
	if l.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(l.execPath))
	}

	// Bound to ctx so a per-check deadline also kills the browser.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	return startSession(allocCtx, cancelAlloc, opts, l.startupTimeout, l.log)
}

// RemoteLauncher opens tabs on an already running Chrome reachable at a
// DevTools address such as ws://127.0.0.1:9222.
type RemoteLauncher struct {
	url            string
	startupTimeout time.Duration
	log            *slog.Logger
}

func NewRemoteLauncher(url string, startupTimeout time.Duration, log *slog.Logger) *RemoteLauncher {
	if startupTimeout <= 0 {
		startupTimeout = defaultStartupTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &RemoteLauncher{url: url, startupTimeout: startupTimeout, log: log}
}

func (l *RemoteLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, l.url)
	return startSession(allocCtx, cancelAlloc, opts, l.startupTimeout, l.log)
}

func startSession(allocCtx context.Context, cancelAlloc context.CancelFunc, opts Options, startupTimeout time.Duration, log *slog.Logger) (*cdpSession, error) {
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) { log.Debug(fmt.Sprintf(format, args...)) }),
		chromedp.WithErrorf(func(format string, args ...any) { log.Debug(fmt.Sprintf(format, args...)) }),
	)

	var actions []chromedp.Action
	if opts.DownloadDir != "" {
		actions = append(actions, cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(opts.DownloadDir).
			WithEventsEnabled(true))
	}

	// The first Run allocates the browser, so it must not get a derived
	// timeout context: cancelling that would stop the whole browser.
	timer := time.AfterFunc(startupTimeout, cancelTab)
	err := chromedp.Run(tabCtx, actions...)
	expired := !timer.Stop()

	if err != nil || expired {
		cancelTab()
		cancelAlloc()
		if expired {
			return nil, fmt.Errorf("browser not ready after %s: %w", startupTimeout, ErrTimeout)
		}
		return nil, fmt.Errorf("start browser: %w", err)
	}

	log.Debug("browser started", "download_dir", opts.DownloadDir, "headless", opts.Headless)

	return &cdpSession{
		ctx:          tabCtx,
		cancelAlloc:  cancelAlloc,
		pollInterval: defaultPollInterval,
	}, nil
}
