package domain

import "strings"

// VendorRecord is the canonical vendor resolved from the vendor directory.
type VendorRecord struct {
	Name       string `json:"name" yaml:"name"`
	Identifier string `json:"identifier" yaml:"identifier"`
	DUNSNumber string `json:"duns_number,omitempty" yaml:"duns_number,omitempty"`
}

func (v VendorRecord) HasDUNS() bool {
	return strings.TrimSpace(v.DUNSNumber) != ""
}

func (v VendorRecord) String() string {
	if v.Identifier == "" {
		return v.Name
	}
	return v.Name + " (" + v.Identifier + ")"
}
