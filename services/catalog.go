package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sdg-dashboard/models"
)

// Region and indicator names offered by the default catalog.
const (
	RegionSubSaharan    = "Sub-Saharan Africa"
	RegionSouthAmerica  = "South America"
	AdultLiteracyCode   = "LR.AG15T99"
	AdultLiteracyLabel  = "Adult Literacy Rate (LR.AG15T99)"
	PrimaryComplLabel   = "Primary Completion (CR.1)"
	LowerSecComplLabel  = "Lower Secondary Completion (CR.2)"
	defaultSelectionLen = 3
)

// Catalog holds the fixed region and indicator enumerations behind the
// selection controls. It is read-only once constructed.
type Catalog struct {
	regions    []models.CountrySet
	byRegion   map[string]int
	indicators []models.IndicatorCatalogEntry
	byLabel    map[string]string
}

type catalogFile struct {
	Regions []struct {
		Name      string   `yaml:"name"`
		Countries []string `yaml:"countries"`
	} `yaml:"regions"`
	Indicators []models.IndicatorCatalogEntry `yaml:"indicators"`
}

// DefaultCatalog returns the built-in regions and indicators.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		[]models.CountrySet{
			models.NewCountrySet(RegionSubSaharan, []string{
				"ETH", "NGA", "KEN", "TZA", "GHA", "UGA", "ZAF", "RWA", "SEN", "COD", "CMR", "MLI",
			}),
			models.NewCountrySet(RegionSouthAmerica, []string{
				"BRA", "ARG", "CHL", "PER", "COL", "ECU", "BOL", "URY", "PRY", "VEN",
			}),
		},
		[]models.IndicatorCatalogEntry{
			{DisplayLabel: PrimaryComplLabel, IndicatorID: "CR.1"},
			{DisplayLabel: LowerSecComplLabel, IndicatorID: "CR.2"},
			{DisplayLabel: AdultLiteracyLabel, IndicatorID: AdultLiteracyCode},
		},
	)
}

// NewCatalog builds a catalog from the given enumerations. Later duplicates
// of a region name or indicator label replace earlier ones.
func NewCatalog(regions []models.CountrySet, indicators []models.IndicatorCatalogEntry) *Catalog {
	c := &Catalog{
		byRegion: make(map[string]int, len(regions)),
		byLabel:  make(map[string]string, len(indicators)),
	}
	for _, r := range regions {
		if i, ok := c.byRegion[r.Name()]; ok {
			c.regions[i] = r
			continue
		}
		c.byRegion[r.Name()] = len(c.regions)
		c.regions = append(c.regions, r)
	}
	pos := make(map[string]int, len(indicators))
	for _, e := range indicators {
		if i, ok := pos[e.DisplayLabel]; ok {
			c.indicators[i] = e
		} else {
			pos[e.DisplayLabel] = len(c.indicators)
			c.indicators = append(c.indicators, e)
		}
		c.byLabel[e.DisplayLabel] = e.IndicatorID
	}
	return c
}

// LoadCatalog reads a YAML catalog from path. An empty path yields the
// default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %q: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if len(f.Regions) == 0 || len(f.Indicators) == 0 {
		return nil, fmt.Errorf("catalog: needs at least one region and one indicator")
	}

	regions := make([]models.CountrySet, 0, len(f.Regions))
	for _, r := range f.Regions {
		if r.Name == "" || len(r.Countries) == 0 {
			return nil, fmt.Errorf("catalog: region %q has no name or countries", r.Name)
		}
		regions = append(regions, models.NewCountrySet(r.Name, r.Countries))
	}
	for _, e := range f.Indicators {
		if e.DisplayLabel == "" || e.IndicatorID == "" {
			return nil, fmt.Errorf("catalog: indicator entry %+v is incomplete", e)
		}
	}
	return NewCatalog(regions, f.Indicators), nil
}

// RegionCountries returns the country set of a named region.
func (c *Catalog) RegionCountries(name string) (models.CountrySet, error) {
	i, ok := c.byRegion[name]
	if !ok {
		return models.CountrySet{}, &UnknownKeyError{Kind: "region", Key: name}
	}
	return c.regions[i], nil
}

// IndicatorCode returns the indicator code behind a display label.
func (c *Catalog) IndicatorCode(label string) (string, error) {
	code, ok := c.byLabel[label]
	if !ok {
		return "", &UnknownKeyError{Kind: "indicator", Key: label}
	}
	return code, nil
}

// Regions returns the region names in catalog order.
func (c *Catalog) Regions() []string {
	names := make([]string, len(c.regions))
	for i, r := range c.regions {
		names[i] = r.Name()
	}
	return names
}

// Indicators returns a copy of the indicator entries in catalog order.
func (c *Catalog) Indicators() []models.IndicatorCatalogEntry {
	return append([]models.IndicatorCatalogEntry(nil), c.indicators...)
}

// SelectCountries narrows a region to the chosen countries, keeping the
// order in which they were chosen. Every chosen code must belong to the region.
func (c *Catalog) SelectCountries(region string, chosen []string) (models.CountrySet, error) {
	set, err := c.RegionCountries(region)
	if err != nil {
		return models.CountrySet{}, err
	}
	if len(chosen) == 0 {
		return models.CountrySet{}, ErrNoCountries
	}
	for _, code := range chosen {
		if !set.Contains(code) {
			return models.CountrySet{}, &UnknownKeyError{Kind: "country", Key: code}
		}
	}
	return models.NewCountrySet(region, chosen), nil
}

// DefaultSelection returns the first few countries of a region, used when
// no explicit choice is made.
func (c *Catalog) DefaultSelection(region string) ([]string, error) {
	set, err := c.RegionCountries(region)
	if err != nil {
		return nil, err
	}
	codes := set.Codes()
	if len(codes) > defaultSelectionLen {
		codes = codes[:defaultSelectionLen]
	}
	return codes, nil
}
