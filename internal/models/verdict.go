package models

// VerdictStatus is the tri-state qualification outcome.
type VerdictStatus string

const (
	StatusPursue VerdictStatus = "Pursue"
	StatusReject VerdictStatus = "Reject"
	StatusReview VerdictStatus = "Review"
)

// Breakdown records which factors contributed to a verdict. Keywords holds
// the displayed subset of matched keywords (first five); the score itself
// counts every match.
type Breakdown struct {
	Restriction   string   `json:"restriction,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	NAICSMatch    bool     `json:"naics_match"`
	SetAsideMatch bool     `json:"set_aside_match"`
}

// Verdict is the immutable output of the qualification engine. Score is
// nil when the verdict was reached through hard disqualification or for
// portal placeholders that carry no scoreable text.
type Verdict struct {
	Status    VerdictStatus `json:"status"`
	Score     *int          `json:"score,omitempty"`
	Reason    string        `json:"reason"`
	Breakdown Breakdown     `json:"breakdown"`
}
