package scan

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/singh-automation/winscope/internal/models"
	"github.com/singh-automation/winscope/internal/qualify"
)

//go:embed config/portals.yaml
var portalsYAML embed.FS

type portalEntry struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Agency string `yaml:"agency"`
	URL    string `yaml:"url"`
	Type   string `yaml:"type"` // state, county, dibbs
}

type portalCatalog struct {
	Portals []portalEntry `yaml:"portals"`
}

// Portals materializes the static portal catalog as placeholder records.
// Pure and deterministic: no I/O beyond the embedded catalog, same sequence
// every invocation. Each placeholder carries a pre-assigned Review verdict
// because a portal reference has no text worth scoring.
func Portals() []models.Opportunity {
	data, err := portalsYAML.ReadFile("config/portals.yaml")
	if err != nil {
		// The catalog is compiled in; a read failure is a build defect.
		panic(fmt.Sprintf("embedded portal catalog unreadable: %v", err))
	}

	var catalog portalCatalog
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &catalog); err != nil {
		panic(fmt.Sprintf("embedded portal catalog invalid: %v", err))
	}

	out := make([]models.Opportunity, 0, len(catalog.Portals))
	for _, entry := range catalog.Portals {
		verdict := qualify.PortalVerdict()
		out = append(out, models.Opportunity{
			ID:          entry.ID,
			Title:       entry.Name,
			Agency:      entry.Agency,
			Description: "Procurement portal; search manually for open solicitations",
			Link:        entry.URL,
			Source:      "portal-registry",
			Type:        models.OpportunityType(entry.Type),
			IsLive:      true,
			IsPortal:    true,
			Verdict:     &verdict,
		})
	}
	return out
}
