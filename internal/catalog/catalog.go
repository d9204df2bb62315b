// Package catalog holds the static sample listings used when the live catalog
// is unavailable or returns nothing.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spigell/fedjobs/internal/geo"
	"github.com/spigell/fedjobs/internal/listing"
)

const (
	CategoryMedical = "medical"
	CategoryTech    = "tech"
)

//go:embed data/sample_jobs.json
var defaultSampleJobs []byte

// Record is a sample listing as written in sample_jobs.json.
type Record struct {
	PositionTitle        string   `json:"PositionTitle" mapstructure:"PositionTitle"`
	OrganizationName     string   `json:"OrganizationName" mapstructure:"OrganizationName"`
	LocationName         string   `json:"LocationName" mapstructure:"LocationName"`
	SalaryRange          string   `json:"SalaryRange" mapstructure:"SalaryRange"`
	ClosingDate          string   `json:"ClosingDate" mapstructure:"ClosingDate"`
	VeteranPreferred     bool     `json:"VeteranPreferred" mapstructure:"VeteranPreferred"`
	JobCoordinates       any      `json:"JobCoordinates" mapstructure:"JobCoordinates"`
	Keywords             []string `json:"Keywords" mapstructure:"Keywords"`
	QualificationSummary string   `json:"QualificationSummary,omitempty" mapstructure:"QualificationSummary"`
}

// Listing converts the record. Unparseable coordinates leave the listing
// without a location point.
func (r Record) Listing() listing.Listing {
	minimum, maximum := ParseSalaryRange(r.SalaryRange)
	return listing.Listing{
		Title:             strings.TrimSpace(r.PositionTitle),
		Organization:      strings.TrimSpace(r.OrganizationName),
		LocationText:      strings.TrimSpace(r.LocationName),
		Coordinates:       geo.Parse(r.JobCoordinates),
		SalaryMin:         minimum,
		SalaryMax:         maximum,
		QualificationText: listing.HTMLToText(r.QualificationSummary),
		Keywords:          listing.UniqueKeywords(r.Keywords),
		ClosingDate:       strings.TrimSpace(r.ClosingDate),
		VeteranPreferred:  r.VeteranPreferred,
		Source:            listing.SourceSample,
	}
}

type Catalog struct {
	categories map[string][]listing.Listing
}

func New(records map[string][]Record) *Catalog {
	c := &Catalog{categories: make(map[string][]listing.Listing, len(records))}
	for category, recs := range records {
		listings := make([]listing.Listing, 0, len(recs))
		for _, r := range recs {
			listings = append(listings, r.Listing())
		}
		c.categories[strings.ToLower(strings.TrimSpace(category))] = listings
	}
	return c
}

// DefaultRecords returns the built-in sample records.
func DefaultRecords() (map[string][]Record, error) {
	var doc struct {
		SampleJobs map[string][]Record `json:"sample_jobs"`
	}
	if err := json.Unmarshal(defaultSampleJobs, &doc); err != nil {
		return nil, fmt.Errorf("decode embedded sample jobs: %w", err)
	}
	return doc.SampleJobs, nil
}

func Default() *Catalog {
	records, err := DefaultRecords()
	if err != nil {
		panic(err)
	}
	return New(records)
}

// Listings returns copies of the listings in a category, or of every listing
// when category is empty.
func (c *Catalog) Listings(category string) []listing.Listing {
	category = strings.ToLower(strings.TrimSpace(category))
	if category != "" {
		return cloneAll(c.categories[category])
	}

	var all []listing.Listing
	for _, name := range c.Categories() {
		all = append(all, cloneAll(c.categories[name])...)
	}
	return all
}

func (c *Catalog) Categories() []string {
	names := make([]string, 0, len(c.categories))
	for name := range c.categories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var (
	techSkillTerms     = []string{"python", "sql", "data"}
	techEducationTerms = []string{"computer", "data", "information technology"}
)

// SelectCategory picks the sample category for a profile: tech when the skills
// or degree point at technology, medical otherwise.
func SelectCategory(skills []string, education string) string {
	joined := strings.ToLower(strings.Join(skills, " "))
	education = strings.ToLower(education)

	for _, term := range techSkillTerms {
		if strings.Contains(joined, term) {
			return CategoryTech
		}
	}
	for _, term := range techEducationTerms {
		if strings.Contains(education, term) {
			return CategoryTech
		}
	}
	return CategoryMedical
}

// ParseSalaryRange reads "$68,000 - $89,000". A single amount fills both
// bounds; malformed parts are 0.
func ParseSalaryRange(s string) (float64, float64) {
	parts := strings.SplitN(s, "-", 2)
	minimum := listing.ParseAmount(parts[0])
	if len(parts) == 1 {
		return minimum, minimum
	}
	return minimum, listing.ParseAmount(parts[1])
}

func cloneAll(listings []listing.Listing) []listing.Listing {
	out := make([]listing.Listing, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.Clone())
	}
	return out
}
