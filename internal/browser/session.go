package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

type cdpSession struct {
	ctx          context.Context
	cancelAlloc  context.CancelFunc
	pollInterval time.Duration

	closeOnce sync.Once
}

// run executes actions on the tab, stopping early when ctx is done. Actions
// run on a child of the tab context; cancelling a child never closes the tab.
func (s *cdpSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (s *cdpSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (s *cdpSession) FindElement(ctx context.Context, by By, value string) (Element, error) {
	sel, opt := locator(by, value)

	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(sel, &nodes, opt, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("find %s %q: %w", by, value, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("find %s %q: %w", by, value, ErrNoSuchElement)
	}
	return &cdpElement{session: s, node: nodes[0]}, nil
}

// WaitForElement polls until the element exists and is enabled.
func (s *cdpSession) WaitForElement(ctx context.Context, by By, value string, timeout time.Duration) (Element, error) {
	sel, opt := locator(by, value)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var nodes []*cdp.Node
	err := s.run(waitCtx, chromedp.Nodes(sel, &nodes, opt, chromedp.NodeEnabled, chromedp.RetryInterval(s.pollInterval)))
	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case waitCtx.Err() != nil:
		return nil, fmt.Errorf("wait for %s %q after %s: %w", by, value, timeout, ErrTimeout)
	case err != nil:
		return nil, fmt.Errorf("wait for %s %q: %w", by, value, err)
	case len(nodes) == 0:
		return nil, fmt.Errorf("wait for %s %q: %w", by, value, ErrNoSuchElement)
	}
	return &cdpElement{session: s, node: nodes[0]}, nil
}

func (s *cdpSession) ExecuteScript(ctx context.Context, script string, args ...interface{}) (json.RawMessage, error) {
	expr, err := scriptExpression(script, args)
	if err != nil {
		return nil, err
	}

	var out []byte
	if err := s.run(ctx, chromedp.Evaluate(expr, &out)); err != nil {
		return nil, fmt.Errorf("execute script: %w", err)
	}
	if len(out) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(out), nil
}

func (s *cdpSession) PageText(ctx context.Context) (string, error) {
	raw, err := s.ExecuteScript(ctx, "return document.body ? document.body.innerText : '';")
	if err != nil {
		return "", err
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", fmt.Errorf("decode page text: %w", err)
	}
	return text, nil
}

// PrintPDF renders the current page the way the browser's print dialog would.
func (s *cdpSession) PrintPDF(ctx context.Context) ([]byte, error) {
	var pdf []byte
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		pdf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("print page: %w", err)
	}
	return pdf, nil
}

func (s *cdpSession) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		stop := context.AfterFunc(closeCtx, func() { s.cancelAlloc() })
		defer stop()

		err = chromedp.Cancel(s.ctx)
		s.cancelAlloc()
	})
	return err
}

type cdpElement struct {
	session *cdpSession
	node    *cdp.Node
}

func (e *cdpElement) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e *cdpElement) SendKeys(ctx context.Context, text string) error {
	if err := e.session.run(ctx, chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("send keys: %w", err)
	}
	return nil
}

func (e *cdpElement) Click(ctx context.Context) error {
	if err := e.session.run(ctx, chromedp.Click(e.ids(), chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

func (e *cdpElement) Text(ctx context.Context) (string, error) {
	var text string
	if err := e.session.run(ctx, chromedp.Text(e.ids(), &text, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return text, nil
}
