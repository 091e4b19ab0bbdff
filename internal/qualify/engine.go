package qualify

import (
	"fmt"
	"strings"

	"github.com/singh-automation/winscope/internal/models"
)

// Scoring weights and thresholds. Keyword matches are uncapped; the
// set-aside bonus is awarded at most once.
const (
	naicsPoints    = 30
	keywordPoints  = 5
	setAsidePoints = 20

	pursueThreshold = 50
	reviewThreshold = 25

	// breakdownKeywordLimit caps the displayed keyword list, not the score.
	breakdownKeywordLimit = 5
)

// Qualify maps an opportunity and a capability profile to a verdict. It is
// pure: no I/O, no mutation of inputs, deterministic for identical inputs.
//
// Hard disqualification (incompatible set-aside, restricted vehicle) short-
// circuits before any scoring and yields a Reject with no score. Everything
// else lands on the additive scoring path, which can only produce Pursue or
// Review.
//
// Matching is plain case-insensitive substring containment, never word-
// boundary aware: a keyword like "PLC" matches inside unrelated words that
// contain it. That mirrors the production behavior this engine replaces and
// is flagged as an open product question rather than silently tightened.
func Qualify(opp models.Opportunity, p Profile) models.Verdict {
	text := strings.ToLower(strings.Join([]string{opp.Title, opp.Description, opp.FullDescription}, " "))
	setAside := strings.ToLower(opp.SetAside)

	// Pass 1: certifications we lack. Any match rejects; order is irrelevant.
	for _, cert := range p.NotCertified {
		cert = strings.TrimSpace(cert)
		if cert == "" {
			continue
		}
		if strings.Contains(setAside, strings.ToLower(cert)) {
			return models.Verdict{
				Status:    models.StatusReject,
				Reason:    fmt.Sprintf("Set-aside requires %s certification we do not hold", cert),
				Breakdown: models.Breakdown{Restriction: cert},
			}
		}
	}

	// Pass 2: vehicle restrictions. Both conditions must hold: the vehicle
	// is named AND the text limits award to vehicle holders. A profile built
	// without phrases gets the defaults here, not just in LoadProfile, so
	// the pass cannot be silently disabled.
	phrases := p.RestrictivePhrases
	if len(phrases) == 0 {
		phrases = defaultRestrictivePhrases
	}
	for _, vehicle := range p.NoVehicles {
		vehicle = strings.TrimSpace(vehicle)
		if vehicle == "" || !strings.Contains(text, strings.ToLower(vehicle)) {
			continue
		}
		for _, phrase := range phrases {
			if strings.Contains(text, strings.ToLower(phrase)) {
				return models.Verdict{
					Status:    models.StatusReject,
					Reason:    fmt.Sprintf("Restricted to %s contract holders", vehicle),
					Breakdown: models.Breakdown{Restriction: vehicle},
				}
			}
		}
	}

	// Scoring path.
	score := 0
	breakdown := models.Breakdown{}

	if opp.NAICSCode != "" {
		for _, code := range p.NAICSCodes {
			if code == opp.NAICSCode {
				score += naicsPoints
				breakdown.NAICSMatch = true
				break
			}
		}
	}

	var matched []string
	for _, kw := range p.Keywords {
		folded := strings.ToLower(strings.TrimSpace(kw))
		if folded == "" {
			continue
		}
		if strings.Contains(text, folded) {
			score += keywordPoints
			matched = append(matched, kw)
		}
	}
	if len(matched) > breakdownKeywordLimit {
		breakdown.Keywords = matched[:breakdownKeywordLimit]
	} else {
		breakdown.Keywords = matched
	}

	for _, frag := range p.CompatibleSetAsides {
		folded := strings.ToLower(strings.TrimSpace(frag))
		if folded == "" {
			continue
		}
		if strings.Contains(setAside, folded) {
			score += setAsidePoints
			breakdown.SetAsideMatch = true
			break
		}
	}

	s := score
	verdict := models.Verdict{Score: &s, Breakdown: breakdown}

	switch {
	case score >= pursueThreshold:
		verdict.Status = models.StatusPursue
		switch {
		case len(matched) >= 2:
			verdict.Reason = fmt.Sprintf("Strong capability match: %s, %s", matched[0], matched[1])
		case len(matched) == 1:
			verdict.Reason = fmt.Sprintf("Strong capability match: %s", matched[0])
		default:
			verdict.Reason = "NAICS match"
		}
	case score >= reviewThreshold:
		verdict.Status = models.StatusReview
		verdict.Reason = "Potential match, review recommended"
	default:
		verdict.Status = models.StatusReview
		verdict.Reason = "Limited match"
	}

	return verdict
}

// PortalVerdict is the fixed verdict attached to static portal placeholders,
// which carry no meaningful text to score.
func PortalVerdict() models.Verdict {
	return models.Verdict{
		Status: models.StatusReview,
		Reason: "Portal reference; requires manual search",
	}
}
