package checks

const (
	FranchiseTaxURL      = "https://data.texas.gov/dataset/Active-Franchise-Tax-Permit-Holders/9cir-efmm/data"
	VendorPerformanceURL = "http://www.txsmartbuy.com/vpts"
	SAMSearchURL         = "https://www.sam.gov/SAM/pages/public/searchRecords/search.jsf"
	OFACSearchURL        = "https://sanctionssearch.ofac.treas.gov/"
	HUBSearchURL         = "https://mycpa.cpa.state.tx.us/tpasscmblsearch/tpasscmblsearch.do"
	DebarredListURL      = "https://comptroller.texas.gov/purchasing/docs/debarred-vendor-list.pdf"
)

var DivestmentListURLs = []string{
	"https://comptroller.texas.gov/purchasing/docs/anti-bds.pdf",
	"https://comptroller.texas.gov/purchasing/docs/sudan-list.pdf",
	"https://comptroller.texas.gov/purchasing/docs/iran-list.pdf",
	"https://comptroller.texas.gov/purchasing/docs/foreign-terrorist.pdf",
	"https://comptroller.texas.gov/purchasing/docs/fto-list.pdf",
}

// page element locators
const (
	franchiseSearchField = "searchField"
	franchiseExportXPath = `//*[@id="sidebarOptions"]/li[6]/a`
	franchiseCSVXPath    = `//*[@id="controlPane_downloadDataset_3"]/form/div[3]/div[1]/div[4]/div/div/table/tbody/tr[1]/td/div/a`

	vprIDField     = "vendorIDSearch"
	vprNameField   = "vendorNameSearch"
	vprSearchField = "vprBtnSearch"

	samNameField     = "searchBasicForm:qterm_input"
	samDUNSField     = "searchBasicForm:DUNSq"
	samSearchButton  = "searchBasicForm:SearchButton"
	samDownloadXPath = `//*[@id="samContentForm"]/div/table/tbody/tr/td/table/tbody/tr[1]/td/table[1]/tbody/tr/td[3]/input[1]`
	samResultsFile   = "searchResults.pdf"

	ofacNameField    = "ctl00_MainContent_txtLastName"
	ofacSearchButton = "ctl00_MainContent_btnSearch"
	ofacResultsLabel = "ctl00_MainContent_lblResults"
	ofacExportButton = "ctl00_MainContent_ImageButton1"
	ofacResultsFile  = "Search_Results.xls"

	hubSingleVendorLink = "SINGLE VENDOR SEARCH"
	hubNameField        = "vendorName"
	hubIDField          = "vendorId"
	hubInactiveBox      = "inclInactiveVndrs"
	hubSearchButton     = "search"
	hubDetailsSuffix    = "00"
)

// Endpoints lets tests and deployments point adapters elsewhere. Empty fields
// fall back to the public sites.
type Endpoints struct {
	FranchiseTax      string
	VendorPerformance string
	SAMSearch         string
	OFACSearch        string
	HUBSearch         string
	DebarredList      string
	DivestmentLists   []string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{}.withDefaults()
}

func (e Endpoints) withDefaults() Endpoints {
	if e.FranchiseTax == "" {
		e.FranchiseTax = FranchiseTaxURL
	}
	if e.VendorPerformance == "" {
		e.VendorPerformance = VendorPerformanceURL
	}
	if e.SAMSearch == "" {
		e.SAMSearch = SAMSearchURL
	}
	if e.OFACSearch == "" {
		e.OFACSearch = OFACSearchURL
	}
	if e.HUBSearch == "" {
		e.HUBSearch = HUBSearchURL
	}
	if e.DebarredList == "" {
		e.DebarredList = DebarredListURL
	}
	if len(e.DivestmentLists) == 0 {
		e.DivestmentLists = append([]string(nil), DivestmentListURLs...)
	}
	return e
}
