// Package salesforce opens an explicit session against the vendor master and
// runs SOQL queries on it.
package salesforce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sf "github.com/k-capehart/go-salesforce/v3"
)

type Credentials struct {
	// Domain is "login" for production orgs, "test" for sandboxes, or the
	// org's My Domain URL.
	Domain         string
	Username       string
	Password       string
	SecurityToken  string
	ConsumerKey    string
	ConsumerSecret string
}

// DomainURL resolves the login shorthands to the URL the session is opened on.
func (c Credentials) DomainURL() string {
	domain := strings.TrimRight(strings.TrimSpace(c.Domain), "/")
	switch domain {
	case "", "login":
		return "https://login.salesforce.com"
	case "test":
		return "https://test.salesforce.com"
	}
	if !strings.Contains(domain, "://") {
		domain = "https://" + domain
	}
	return domain
}

func (c Credentials) validate() error {
	var errs []error
	if c.Username == "" {
		errs = append(errs, errors.New("username is required"))
	}
	if c.Password == "" {
		errs = append(errs, errors.New("password is required"))
	}
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		errs = append(errs, errors.New("connected app consumer key and secret are required"))
	}
	return errors.Join(errs...)
}

// LoginError means the org refused the credentials or could not be reached.
type LoginError struct {
	Domain string
	Err    error
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("salesforce login to %s: %v", e.Domain, e.Err)
}

func (e *LoginError) Unwrap() error { return e.Err }

type soqlRunner interface {
	Query(query string, sObject any) error
}

// Client holds one authenticated session. It is passed explicitly to whoever
// needs it.
type Client struct {
	api    soqlRunner
	domain string
}

func Login(ctx context.Context, creds Credentials) (*Client, error) {
	if err := creds.validate(); err != nil {
		return nil, &LoginError{Domain: creds.DomainURL(), Err: err}
	}

	domain := creds.DomainURL()
	api, err := withContext(ctx, func() (soqlRunner, error) {
		return sf.Init(sf.Creds{
			Domain:         domain,
			Username:       creds.Username,
			Password:       creds.Password,
			SecurityToken:  creds.SecurityToken,
			ConsumerKey:    creds.ConsumerKey,
			ConsumerSecret: creds.ConsumerSecret,
		})
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &LoginError{Domain: domain, Err: err}
	}

	return &Client{api: api, domain: domain}, nil
}

func (c *Client) Domain() string { return c.domain }

// Query runs a SOQL query and returns every record as JSON, without the
// "attributes" envelope. Pagination is followed by the underlying client.
func (c *Client) Query(ctx context.Context, soql string) ([]json.RawMessage, error) {
	records, err := withContext(ctx, func() ([]map[string]any, error) {
		var records []map[string]any
		if err := c.api.Query(soql, &records); err != nil {
			return nil, err
		}
		return records, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("soql query: %w", err)
	}

	rows := make([]json.RawMessage, 0, len(records))
	for _, record := range records {
		delete(record, "attributes")
		row, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode record: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// withContext runs f, giving up when ctx is done. The library calls take no
// context, so an abandoned call finishes in the background.
func withContext[T any](ctx context.Context, f func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := f()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
