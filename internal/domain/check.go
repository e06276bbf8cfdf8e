package domain

// тип проверки

type CheckKind string

const (
	CheckFranchiseTaxStatus CheckKind = "franchise_tax_status"
	CheckVendorPerformance  CheckKind = "vendor_performance"
	CheckSAMExclusion       CheckKind = "sam_exclusion"
	CheckOFACSanctions      CheckKind = "ofac_sanctions"
	CheckDebarredList       CheckKind = "debarred_list"
	CheckDivestmentList     CheckKind = "divestment_list"
	CheckHUBStatus          CheckKind = "hub_status"
)

var checkLabels = map[CheckKind]string{
	CheckFranchiseTaxStatus: "Franchise Tax Status",
	CheckVendorPerformance:  "Vendor Performance",
	CheckSAMExclusion:       "SAM Search",
	CheckOFACSanctions:      "OFAC Search",
	CheckDebarredList:       "Debarred Vendor",
	CheckDivestmentList:     "Divestment Statute",
	CheckHUBStatus:          "CMBL HUB Status",
}

// ExecutionOrder is the fixed order in which a session runs its checks.
func ExecutionOrder() []CheckKind {
	return []CheckKind{
		CheckFranchiseTaxStatus,
		CheckVendorPerformance,
		CheckSAMExclusion,
		CheckOFACSanctions,
		CheckDebarredList,
		CheckDivestmentList,
		CheckHUBStatus,
	}
}

// Label is the display label of the check. It doubles as the name of the
// check's evidence folder.
func (k CheckKind) Label() string {
	if label, ok := checkLabels[k]; ok {
		return label
	}
	return string(k)
}

func (k CheckKind) Valid() bool {
	_, ok := checkLabels[k]
	return ok
}

// результат проверки

type Outcome string

const (
	OutcomePassed   Outcome = "passed"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailed   Outcome = "failed"
	OutcomeErrored  Outcome = "errored"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomePassed, OutcomeNotFound, OutcomeFailed, OutcomeErrored:
		return true
	}
	return false
}

// Settled reports whether the outcome needs no re-run.
func (o Outcome) Settled() bool {
	return o == OutcomePassed || o == OutcomeNotFound
}
