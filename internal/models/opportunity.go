package models

// OpportunityType classifies the origin category of a record.
type OpportunityType string

const (
	TypeContract OpportunityType = "contract"
	TypeSBIR     OpportunityType = "sbir"
	TypeGrant    OpportunityType = "grant"
	TypeState    OpportunityType = "state"
	TypeCounty   OpportunityType = "county"
	TypeDIBBS    OpportunityType = "dibbs"
	TypeForecast OpportunityType = "forecast"
)

// Opportunity is the canonical normalized record produced by every source
// fetcher and by the static portal registry. IDs are source-qualified
// (e.g. "sam-<noticeId>") and unique within one scan result.
type Opportunity struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Agency          string          `json:"agency"`
	PostedDate      string          `json:"posted_date,omitempty"`
	CloseDate       string          `json:"close_date,omitempty"`
	SetAside        string          `json:"set_aside,omitempty"`
	NAICSCode       string          `json:"naics_code,omitempty"`
	Value           *float64        `json:"value,omitempty"`
	Description     string          `json:"description,omitempty"`
	FullDescription string          `json:"full_description,omitempty"`
	Link            string          `json:"link,omitempty"`
	Source          string          `json:"source"`
	Type            OpportunityType `json:"type"`
	IsLive          bool            `json:"is_live"`
	IsPortal        bool            `json:"is_portal"`

	// Verdict is attached exactly once per scan, before reporting.
	Verdict *Verdict `json:"verdict,omitempty"`
}
