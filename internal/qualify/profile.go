package qualify

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/profile.yaml
var profileYAML embed.FS

// Profile holds the buyer's fixed qualification inputs. All matching against
// it is case-insensitive substring containment, so entries are kept as plain
// text fragments rather than patterns.
type Profile struct {
	// NAICSCodes the buyer holds; exact string match against an
	// opportunity's code.
	NAICSCodes []string `yaml:"naics_codes"`

	// Keywords are capability terms, each independently worth partial credit.
	Keywords []string `yaml:"keywords"`

	// NotCertified lists certification labels the buyer does NOT hold. A
	// set-aside mentioning any of them is an automatic rejection.
	NotCertified []string `yaml:"not_certified"`

	// NoVehicles lists contract vehicles the buyer is not party to. An
	// opportunity naming one AND using a restrictive phrase is rejected.
	NoVehicles []string `yaml:"no_vehicles"`

	// CompatibleSetAsides are set-aside fragments compatible with the
	// buyer's own certifications.
	CompatibleSetAsides []string `yaml:"compatible_set_asides"`

	// RestrictivePhrases are the award-restriction markers checked alongside
	// vehicle names. Empty means use the built-in defaults.
	RestrictivePhrases []string `yaml:"restrictive_phrases"`
}

type profileFile struct {
	Profile Profile `yaml:"profile"`
}

// defaultRestrictivePhrases mark text that limits award to existing vehicle
// holders. A vehicle name alone is not disqualifying.
var defaultRestrictivePhrases = []string{
	"holders only",
	"contract holders",
	"vehicle holders",
	"schedule holders",
	"gwac holders",
}

// LoadProfile returns the capability profile. A non-empty path reads a local
// override from disk; otherwise the embedded profile.yaml is used.
func LoadProfile(path string) (Profile, error) {
	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = profileYAML.ReadFile("config/profile.yaml")
	}
	if err != nil {
		return Profile{}, err
	}

	// Expand environment variables within the YAML content (e.g. ${EXTRA_KEYWORDS})
	expanded := os.ExpandEnv(string(data))

	var pf profileFile
	if err := yaml.Unmarshal([]byte(expanded), &pf); err != nil {
		return Profile{}, err
	}

	p := pf.Profile
	if len(p.RestrictivePhrases) == 0 {
		p.RestrictivePhrases = defaultRestrictivePhrases
	}
	if len(p.Keywords) == 0 && len(p.NAICSCodes) == 0 {
		return Profile{}, fmt.Errorf("capability profile has no keywords or NAICS codes")
	}

	return p, nil
}
