package checks

import (
	"regexp"
	"strings"

	"ozzus/vendor-check/internal/domain"
)

var unsafeNameChars = regexp.MustCompile(`[\\/:*?"<>|]+`)

// evidenceName builds the printout file name of a check for a search term.
func evidenceName(kind domain.CheckKind, term string) string {
	term = strings.TrimSpace(unsafeNameChars.ReplaceAllString(term, "_"))
	if term == "" {
		return kind.Label() + ".pdf"
	}
	return kind.Label() + " - " + term + ".pdf"
}

// identifierOrName prefers the identifier, the way the public search forms
// match most precisely.
func identifierOrName(v domain.VendorRecord) (term string, byIdentifier bool) {
	if id := strings.TrimSpace(v.Identifier); id != "" {
		return id, true
	}
	return strings.TrimSpace(v.Name), false
}

func passedMessage(kind domain.CheckKind) string {
	return kind.Label() + " Search passed"
}

func notFoundMessage(kind domain.CheckKind, term string) string {
	return "No records found in " + kind.Label() + " for " + term
}
