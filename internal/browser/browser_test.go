package browser

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestLocator(t *testing.T) {
	tests := []struct {
		by    By
		value string
		want  string
	}{
		{ByID, "SearchBox", `[id="SearchBox"]`},
		{ByName, "searchButton", `[name="searchButton"]`},
		{ByCSS, "table.results", "table.results"},
		{ByXPath, `//*[@id="export"]/button`, `//*[@id="export"]/button`},
		{ByLinkText, "123400", `//a[normalize-space(.)="123400"]`},
		{ByLinkText, `Say "hi"`, `//a[normalize-space(.)='Say "hi"']`},
	}

	for _, tt := range tests {
		t.Run(string(tt.by)+"/"+tt.value, func(t *testing.T) {
			got, opt := locator(tt.by, tt.value)
			if got != tt.want {
				t.Errorf("selector = %q, want %q", got, tt.want)
			}
			if opt == nil {
				t.Error("query option is nil")
			}
		})
	}
}

func TestXPathLiteral_BothQuotes(t *testing.T) {
	got := xpathLiteral(`a"b'c`)
	want := `concat("a", '"', "b'c")`
	if got != want {
		t.Errorf("xpathLiteral = %s, want %s", got, want)
	}
}

func TestScriptExpression(t *testing.T) {
	got, err := scriptExpression("return document.readyState", nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := "(function(){return document.readyState}).apply(null, [])"; got != want {
		t.Errorf("expression = %s, want %s", got, want)
	}

	got, err = scriptExpression("return arguments[0] + arguments[1]", []interface{}{"a", 2})
	if err != nil {
		t.Fatal(err)
	}
	if want := `(function(){return arguments[0] + arguments[1]}).apply(null, ["a",2])`; got != want {
		t.Errorf("expression = %s, want %s", got, want)
	}
}

func TestChromeLauncher_MissingBinary(t *testing.T) {
	launcher := NewChromeLauncher(filepath.Join(t.TempDir(), "no-such-chrome"), 5*time.Second, nil)

	session, err := launcher.Launch(context.Background(), Options{Headless: true, DownloadDir: t.TempDir()})
	if err == nil {
		_ = session.Close(context.Background())
		t.Fatal("expected launch error for a missing binary")
	}
}

func TestRemoteLauncher_Unreachable(t *testing.T) {
	launcher := NewRemoteLauncher("ws://127.0.0.1:1", 5*time.Second, nil)

	session, err := launcher.Launch(context.Background(), Options{Headless: true})
	if err == nil {
		_ = session.Close(context.Background())
		t.Fatal("expected launch error for an unreachable browser")
	}
}
