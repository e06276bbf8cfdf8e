package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"ozzus/vendor-check/internal/domain"
	"ozzus/vendor-check/internal/service"

	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatCSV  = "csv"
)

func validateFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q, expected one of %v", format, allowed)
}

func printReport(w io.Writer, report *domain.SessionReport, format string) error {
	switch format {
	case formatJSON:
		return writeJSON(w, report)
	case formatYAML:
		return writeYAML(w, report)
	}
	fmt.Fprintln(w)
	return service.WriteSummary(w, report)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func writeVendorsCSV(w io.Writer, vendors []domain.VendorRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "Vendor_Id__c", "DUNS_Number__c"}); err != nil {
		return err
	}
	for _, v := range vendors {
		if err := cw.Write([]string{v.Name, v.Identifier, v.DUNSNumber}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// printChecks lists the supported checks in execution order with the folder
// their evidence lands in.
func printChecks(w io.Writer, root string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCHECK\tEVIDENCE FOLDER")
	for i, kind := range domain.ExecutionOrder() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, kind.Label(), filepath.Join(root, kind.Label()))
	}
	fmt.Fprintln(tw, "\tCMBL HUB Status is retried by vendor name when the identifier is not found.\t")
	return tw.Flush()
}
