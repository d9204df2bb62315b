package listing

import (
	"strings"

	"github.com/spigell/fedjobs/internal/geo"
)

const (
	KeyField          = "Key"
	IDField           = "ID"
	OrganizationField = "Organization"

	SourceLive   = "usajobs"
	SourceSample = "sample"
)

// Listing is a single job posting, either from the live catalog or from the
// static sample catalog. It is treated as immutable once fetched.
type Listing struct {
	ID                string           `json:"id,omitempty"`
	Title             string           `json:"title"`
	Organization      string           `json:"organization"`
	LocationText      string           `json:"location"`
	Coordinates       *geo.Coordinates `json:"coordinates,omitempty"`
	SalaryMin         float64          `json:"salary_min"`
	SalaryMax         float64          `json:"salary_max"`
	QualificationText string           `json:"qualification,omitempty"`
	// Keywords are only present for sample listings.
	Keywords         []string `json:"keywords,omitempty"`
	URL              string   `json:"url,omitempty"`
	ClosingDate      string   `json:"closing_date,omitempty"`
	VeteranPreferred bool     `json:"veteran_preferred,omitempty"`
	Source           string   `json:"source,omitempty"`
}

// Clone returns a deep copy of the listing.
func (l Listing) Clone() Listing {
	if l.Coordinates != nil {
		c := *l.Coordinates
		l.Coordinates = &c
	}
	if l.Keywords != nil {
		l.Keywords = append([]string(nil), l.Keywords...)
	}
	return l
}

// WithCoordinates returns a copy of the listing carrying the given coordinates.
func (l Listing) WithCoordinates(c *geo.Coordinates) Listing {
	l = l.Clone()
	l.Coordinates = nil
	if c != nil {
		l.Coordinates = c.Ptr()
	}
	return l
}

func (l Listing) GetStringField(name string) string {
	switch name {
	case KeyField:
		return l.Key()
	case IDField:
		return l.ID
	case OrganizationField:
		return l.Organization
	default:
		return ""
	}
}

// Key identifies a listing for exclusion. Sample listings have no ID, so the
// title and organization pair stands in for it.
func (l Listing) Key() string {
	if l.ID != "" {
		return l.ID
	}
	return strings.ToLower(strings.TrimSpace(l.Title) + "@" + strings.TrimSpace(l.Organization))
}

// UniqueKeywords returns the keywords with duplicates removed, keeping the
// first occurrence of each.
func UniqueKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
