package suggest

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/mikey/textguard/internal/core"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Group is the template set for one sentiment label
type Group struct {
	Placeholder string   `yaml:"placeholder"`
	Fallback    string   `yaml:"fallback"`
	Templates   []string `yaml:"templates"`
}

// Render fills the placeholder of every template with keyword, or the
// fallback when keyword is empty
func (g Group) Render(keyword string) []string {
	if keyword == "" {
		keyword = g.Fallback
	}
	token := "{" + g.Placeholder + "}"
	out := make([]string, len(g.Templates))
	for i, t := range g.Templates {
		out[i] = strings.ReplaceAll(t, token, keyword)
	}
	return out
}

// Catalog maps sentiment labels to template groups
type Catalog map[core.Sentiment]Group

var requiredLabels = []core.Sentiment{core.SentimentPositive, core.SentimentNegative, core.SentimentNeutral}

// DefaultCatalog returns the embedded templates
func DefaultCatalog() Catalog {
	c, err := ParseCatalog(defaultTemplates)
	if err != nil {
		panic(fmt.Sprintf("embedded templates are invalid: %v", err))
	}
	return c
}

// LoadCatalog reads templates from path, or the embedded set when path is empty
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML template document
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	for _, label := range requiredLabels {
		g, ok := c[label]
		if !ok || len(g.Templates) == 0 {
			return nil, fmt.Errorf("templates for %q are missing", label)
		}
		if g.Placeholder == "" {
			return nil, fmt.Errorf("templates for %q have no placeholder", label)
		}
	}
	return c, nil
}
