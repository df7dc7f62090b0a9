package venues

import (
	"fmt"
	"os"
	"strings"

	"campus_scheduler/internal/models"

	"gopkg.in/yaml.v2"
)

// Catalog is the read-only venue list loaded at startup. Entries keep every
// key from the source file.
type Catalog struct {
	venues []models.Venue
}

// Load reads a YAML or JSON file holding either a bare list of venues or a
// document with a top-level "venues" key.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read venues: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var raw []map[interface{}]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		var doc struct {
			Venues []map[interface{}]interface{} `yaml:"venues"`
		}
		if errDoc := yaml.Unmarshal(data, &doc); errDoc != nil {
			return nil, fmt.Errorf("parse venues: %w", err)
		}
		raw = doc.Venues
	}

	list := make([]models.Venue, 0, len(raw))
	for _, entry := range raw {
		list = append(list, models.Venue(stringKeys(entry)))
	}
	if err := Validate(list); err != nil {
		return nil, err
	}
	return &Catalog{venues: list}, nil
}

// Validate rejects entries without a name.
func Validate(list []models.Venue) error {
	for i, v := range list {
		if strings.TrimSpace(v.Name()) == "" {
			return fmt.Errorf("venue at index %d has no name", i)
		}
	}
	return nil
}

// stringKeys converts yaml.v2 mappings into JSON-encodable maps.
func stringKeys(m map[interface{}]interface{}) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[fmt.Sprint(k)] = convert(v)
	}
	return out
}

func convert(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		return stringKeys(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = convert(item)
		}
		return out
	default:
		return v
	}
}

// List returns a copy of the catalog. Entries share nested values with the
// catalog and must not be mutated.
func (c *Catalog) List() []models.Venue {
	out := make([]models.Venue, len(c.venues))
	copy(out, c.venues)
	return out
}

func (c *Catalog) Len() int { return len(c.venues) }
