package scan

import (
	"embed"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/sources.yaml
var sourcesYAML embed.FS

// Registry holds the configuration for scraped forecast sources. The live
// API fetchers are code; only HTML forecast pages need per-source selector
// configuration.
type Registry struct {
	ForecastSources []ForecastSource `yaml:"forecast_sources"`
}

// ForecastSelectors are the CSS selectors used to pull fields out of a
// forecast listing page.
type ForecastSelectors struct {
	Container string `yaml:"container"`
	Title     string `yaml:"title"`
	Agency    string `yaml:"agency,omitempty"`
	NAICS     string `yaml:"naics,omitempty"`
	Value     string `yaml:"value,omitempty"`
	Date      string `yaml:"date,omitempty"`
	Link      string `yaml:"link,omitempty"`
	LinkAttr  string `yaml:"link_attr,omitempty"` // default: href
}

// ForecastSource defines one agency procurement-forecast page.
type ForecastSource struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name"`
	Agency    string            `yaml:"agency"`
	URL       string            `yaml:"url"`
	Active    bool              `yaml:"active"`
	Selectors ForecastSelectors `yaml:"selectors"`
}

// LoadRegistry reads the embedded sources.yaml and returns the registry.
// The path parameter is a filesystem fallback for local overrides.
func LoadRegistry(path string) (*Registry, error) {
	data, err := sourcesYAML.ReadFile("config/sources.yaml")
	if err != nil {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	// Expand environment variables within the YAML content (e.g. ${FORECAST_URL})
	expanded := os.ExpandEnv(string(data))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, err
	}

	return &reg, nil
}
