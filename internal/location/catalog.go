package location

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alex-user-go/hotelsearch/internal/search/types"
)

//go:embed cities.yaml
var defaultCities []byte

// City is an entry of the static city table.
type City struct {
	Slug      string           `yaml:"slug"`
	Code      string           `yaml:"code"`
	Name      string           `yaml:"name"`
	Country   string           `yaml:"country"`
	Districts []types.District `yaml:"districts"`
}

// Location converts the entry to the shape returned to clients.
func (c City) Location() types.Location {
	return types.Location{
		Name:      c.Name,
		CityName:  c.Name,
		Country:   c.Country,
		CityCode:  c.Code,
		Districts: c.Districts,
	}
}

// Catalog is an ordered, read-only table of well-known cities.
type Catalog struct {
	cities []City
}

// ParseCatalog parses a YAML city table.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Cities []City `yaml:"cities"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse city catalog: %w", err)
	}

	for i, c := range doc.Cities {
		if c.Slug == "" || c.Code == "" || c.Name == "" {
			return nil, fmt.Errorf("city catalog entry %d: slug, code and name are required", i)
		}
		doc.Cities[i].Slug = strings.ToLower(c.Slug)
	}

	return &Catalog{cities: doc.Cities}, nil
}

// DefaultCatalog returns the built-in city table.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCities)
}

// Match returns the first city whose slug contains keyword, ignoring case.
func (c *Catalog) Match(keyword string) (City, bool) {
	if c == nil {
		return City{}, false
	}
	keyword = strings.ToLower(keyword)
	for _, city := range c.cities {
		if strings.Contains(city.Slug, keyword) {
			return city, true
		}
	}
	return City{}, false
}

// Len returns the number of cities in the table.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.cities)
}
