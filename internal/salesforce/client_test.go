package salesforce

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeRunner struct {
	records []map[string]any
	err     error
	block   chan struct{}
	queries []string
}

func (f *fakeRunner) Query(query string, sObject any) error {
	f.queries = append(f.queries, query)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return f.err
	}
	out, ok := sObject.(*[]map[string]any)
	if !ok {
		return errors.New("unexpected destination type")
	}
	*out = f.records
	return nil
}

func TestQuery_StripsAttributes(t *testing.T) {
	runner := &fakeRunner{records: []map[string]any{
		{"attributes": map[string]any{"type": "Account"}, "Name": "Acme Corp", "Vendor_Id__c": "V12345"},
		{"attributes": map[string]any{"type": "Account"}, "Name": "Globex", "Vendor_Id__c": nil},
	}}
	client := &Client{api: runner, domain: "https://login.salesforce.com"}

	rows, err := client.Query(context.Background(), "SELECT Name FROM Account")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	var first map[string]any
	if err := json.Unmarshal(rows[0], &first); err != nil {
		t.Fatal(err)
	}
	if _, ok := first["attributes"]; ok {
		t.Error("attributes not stripped")
	}
	if first["Name"] != "Acme Corp" || first["Vendor_Id__c"] != "V12345" {
		t.Errorf("row = %v", first)
	}
	if len(runner.queries) != 1 || runner.queries[0] != "SELECT Name FROM Account" {
		t.Errorf("queries = %v", runner.queries)
	}
}

func TestQuery_Error(t *testing.T) {
	malformed := errors.New("MALFORMED_QUERY: unexpected token")
	client := &Client{api: &fakeRunner{err: malformed}}

	_, err := client.Query(context.Background(), "SELECT Broken")
	if !errors.Is(err, malformed) {
		t.Fatalf("err = %v, want wrapped query error", err)
	}
}

func TestQuery_ContextDone(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	defer close(runner.block)
	client := &Client{api: runner}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := client.Query(ctx, "SELECT Name FROM Account"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestLogin_RequiresCredentials(t *testing.T) {
	_, err := Login(context.Background(), Credentials{Username: "ops@example.com"})

	var loginErr *LoginError
	if !errors.As(err, &loginErr) {
		t.Fatalf("err = %v, want *LoginError", err)
	}
	if loginErr.Domain != "https://login.salesforce.com" {
		t.Errorf("domain = %s", loginErr.Domain)
	}
}

func TestLogin_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Login(ctx, Credentials{
		Username: "ops@example.com", Password: "s3cret", ConsumerKey: "key", ConsumerSecret: "secret",
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCredentialsDomainURL(t *testing.T) {
	tests := []struct {
		domain string
		want   string
	}{
		{"", "https://login.salesforce.com"},
		{"login", "https://login.salesforce.com"},
		{"test", "https://test.salesforce.com"},
		{"acme.my.salesforce.com/", "https://acme.my.salesforce.com"},
		{"http://localhost:8080", "http://localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			if got := (Credentials{Domain: tt.domain}).DomainURL(); got != tt.want {
				t.Errorf("DomainURL = %s, want %s", got, tt.want)
			}
		})
	}
}
