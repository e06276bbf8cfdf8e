// Package browser drives Chrome over the DevTools protocol.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

type By string

const (
	ByID       By = "id"
	ByName     By = "name"
	ByXPath    By = "xpath"
	ByLinkText By = "link text"
	ByCSS      By = "css selector"
)

// KeyEnter submits the focused form field.
const KeyEnter = kb.Enter

var (
	ErrNoSuchElement = errors.New("no such element")
	ErrTimeout       = errors.New("browser wait timed out")
)

// Options configure one browser instance.
type Options struct {
	Headless    bool
	DownloadDir string
}

type Launcher interface {
	Launch(ctx context.Context, opts Options) (Session, error)
}

// Session is one exclusive browser tab. It is never shared between checks.
type Session interface {
	Navigate(ctx context.Context, url string) error
	FindElement(ctx context.Context, by By, value string) (Element, error)
	WaitForElement(ctx context.Context, by By, value string, timeout time.Duration) (Element, error)
	// ExecuteScript runs script as a function body; args are passed as
	// its arguments.
	ExecuteScript(ctx context.Context, script string, args ...interface{}) (json.RawMessage, error)
	PageText(ctx context.Context) (string, error)
	PrintPDF(ctx context.Context) ([]byte, error)
	Close(ctx context.Context) error
}

type Element interface {
	SendKeys(ctx context.Context, text string) error
	Click(ctx context.Context) error
	Text(ctx context.Context) (string, error)
}

// locator converts the strategy to a chromedp selector.
func locator(by By, value string) (string, chromedp.QueryOption) {
	switch by {
	case ByID:
		return fmt.Sprintf(`[id=%q]`, value), chromedp.ByQuery
	case ByName:
		return fmt.Sprintf(`[name=%q]`, value), chromedp.ByQuery
	case ByXPath:
		return value, chromedp.BySearch
	case ByLinkText:
		return "//a[normalize-space(.)=" + xpathLiteral(value) + "]", chromedp.BySearch
	}
	return value, chromedp.ByQuery
}

func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}

	parts := strings.Split(s, `"`)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = `"` + p + `"`
	}
	return "concat(" + strings.Join(quoted, `, '"', `) + ")"
}

// scriptExpression wraps a function body so it can be evaluated as an
// expression with the given arguments.
func scriptExpression(script string, args []interface{}) (string, error) {
	if args == nil {
		args = []interface{}{}
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encode script arguments: %w", err)
	}
	return fmt.Sprintf("(function(){%s}).apply(null, %s)", script, encoded), nil
}
