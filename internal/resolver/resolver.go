// Package resolver turns a name or identifier into a vendor record from the
// vendor master.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"ozzus/vendor-check/internal/domain"
)

const accountFields = "SELECT Name, Vendor_Id__c, DUNS_Number__c FROM Account"

// Querier runs SOQL. *salesforce.Client satisfies it.
type Querier interface {
	Query(ctx context.Context, soql string) ([]json.RawMessage, error)
}

// Query selects a vendor by exactly one of its name or identifier.
type Query struct {
	Name       string
	Identifier string
}

func (q Query) String() string {
	if q.Identifier != "" {
		return fmt.Sprintf("identifier=%q", q.Identifier)
	}
	return fmt.Sprintf("name=%q", q.Name)
}

type account struct {
	Name       string `json:"Name"`
	VendorID   string `json:"Vendor_Id__c"`
	DUNSNumber string `json:"DUNS_Number__c"`
}

func (a account) record() domain.VendorRecord {
	return domain.VendorRecord{
		Name:       strings.TrimSpace(a.Name),
		Identifier: strings.TrimSpace(a.VendorID),
		DUNSNumber: strings.TrimSpace(a.DUNSNumber),
	}
}

type Resolver struct {
	querier Querier
	log     *slog.Logger
}

func New(querier Querier, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{querier: querier, log: log}
}

func (r *Resolver) Resolve(ctx context.Context, q Query) (domain.VendorRecord, error) {
	q.Name = strings.TrimSpace(q.Name)
	q.Identifier = strings.TrimSpace(q.Identifier)
	if (q.Name == "") == (q.Identifier == "") {
		return domain.VendorRecord{}, &domain.ResolverError{Query: q.String(), Err: domain.ErrInvalidQuery}
	}

	soql := accountFields + " WHERE Name = '" + escape(q.Name) + "'"
	if q.Identifier != "" {
		soql = accountFields + " WHERE Vendor_Id__c = '" + escape(q.Identifier) + "'"
	}

	accounts, err := r.query(ctx, soql)
	if err != nil {
		return domain.VendorRecord{}, &domain.ResolverError{Query: q.String(), Err: err}
	}

	switch len(accounts) {
	case 0:
		return domain.VendorRecord{}, &domain.ResolverError{Query: q.String(), Err: domain.ErrVendorNotFound}
	case 1:
		vendor := accounts[0].record()
		r.log.Info("vendor resolved", slog.String("name", vendor.Name), slog.String("identifier", vendor.Identifier))
		return vendor, nil
	}

	return domain.VendorRecord{}, &domain.ResolverError{
		Query: q.String(),
		Err:   fmt.Errorf("%w: %d accounts match", domain.ErrAmbiguousVendor, len(accounts)),
	}
}

// ListAll returns every vendor in the master, for bulk export.
func (r *Resolver) ListAll(ctx context.Context) ([]domain.VendorRecord, error) {
	accounts, err := r.query(ctx, accountFields)
	if err != nil {
		return nil, &domain.ResolverError{Err: err}
	}

	vendors := make([]domain.VendorRecord, 0, len(accounts))
	for _, a := range accounts {
		vendors = append(vendors, a.record())
	}
	return vendors, nil
}

func (r *Resolver) query(ctx context.Context, soql string) ([]account, error) {
	rows, err := r.querier.Query(ctx, soql)
	if err != nil {
		return nil, err
	}

	accounts := make([]account, 0, len(rows))
	for _, row := range rows {
		var a account
		if err := json.Unmarshal(row, &a); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
