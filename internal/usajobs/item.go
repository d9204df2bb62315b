package usajobs

import (
	"strings"

	"github.com/spigell/fedjobs/internal/geo"
	"github.com/spigell/fedjobs/internal/listing"
)

const veteranHiringPath = "vet"

type Item struct {
	MatchedObjectID string     `json:"MatchedObjectId"`
	Descriptor      Descriptor `json:"MatchedObjectDescriptor"`
}

type Descriptor struct {
	PositionID              string         `json:"PositionID"`
	PositionTitle           string         `json:"PositionTitle"`
	PositionURI             string         `json:"PositionURI"`
	ApplyURI                []string       `json:"ApplyURI"`
	PositionLocationDisplay string         `json:"PositionLocationDisplay"`
	PositionLocation        []Location     `json:"PositionLocation"`
	OrganizationName        string         `json:"OrganizationName"`
	DepartmentName          string         `json:"DepartmentName"`
	JobCategory             []Code         `json:"JobCategory"`
	JobGrade                []Code         `json:"JobGrade"`
	PositionRemuneration    []Remuneration `json:"PositionRemuneration"`
	QualificationSummary    string         `json:"QualificationSummary"`
	PublicationStartDate    string         `json:"PublicationStartDate"`
	ApplicationCloseDate    string         `json:"ApplicationCloseDate"`
	UserArea                struct {
		Details struct {
			JobSummary   string   `json:"JobSummary"`
			MajorDuties  []string `json:"MajorDuties"`
			Education    string   `json:"Education"`
			Requirements string   `json:"Requirements"`
			LowGrade     string   `json:"LowGrade"`
			HighGrade    string   `json:"HighGrade"`
		} `json:"Details"`
		HiringPath []string `json:"HiringPath"`
	} `json:"UserArea"`
}

type Location struct {
	LocationName           string  `json:"LocationName"`
	CountryCode            string  `json:"CountryCode"`
	CountrySubDivisionCode string  `json:"CountrySubDivisionCode"`
	CityName               string  `json:"CityName"`
	Latitude               float64 `json:"Latitude"`
	Longitude              float64 `json:"Longitude"`
}

type Code struct {
	Name string `json:"Name"`
	Code string `json:"Code"`
}

type Remuneration struct {
	MinimumRange     string `json:"MinimumRange"`
	MaximumRange     string `json:"MaximumRange"`
	RateIntervalCode string `json:"RateIntervalCode"`
	Description      string `json:"Description"`
}

// Listing normalizes the item. The first advertised position location
// supplies the coordinates; callers may replace them with geocoded ones.
func (i *Item) Listing() listing.Listing {
	d := i.Descriptor

	id := strings.TrimSpace(i.MatchedObjectID)
	if id == "" {
		id = strings.TrimSpace(d.PositionID)
	}

	org := strings.TrimSpace(d.OrganizationName)
	if org == "" {
		org = strings.TrimSpace(d.DepartmentName)
	}

	l := listing.Listing{
		ID:                id,
		Title:             strings.TrimSpace(d.PositionTitle),
		Organization:      org,
		LocationText:      i.LocationText(),
		Coordinates:       i.Coordinates(),
		QualificationText: i.QualificationText(),
		URL:               strings.TrimSpace(d.PositionURI),
		ClosingDate:       dateOnly(d.ApplicationCloseDate),
		Source:            listing.SourceLive,
	}

	if len(d.PositionRemuneration) > 0 {
		pay := d.PositionRemuneration[0]
		l.SalaryMin = listing.ParseAmount(pay.MinimumRange)
		l.SalaryMax = listing.ParseAmount(pay.MaximumRange)
	}

	for _, path := range d.UserArea.HiringPath {
		if strings.EqualFold(strings.TrimSpace(path), veteranHiringPath) {
			l.VeteranPreferred = true
		}
	}

	return l
}

func (i *Item) LocationText() string {
	if s := strings.TrimSpace(i.Descriptor.PositionLocationDisplay); s != "" {
		return s
	}
	for _, loc := range i.Descriptor.PositionLocation {
		if s := strings.TrimSpace(loc.LocationName); s != "" {
			return s
		}
	}
	return ""
}

// Coordinates of the first position location. A 0,0 pair means the API had
// none.
func (i *Item) Coordinates() *geo.Coordinates {
	for _, loc := range i.Descriptor.PositionLocation {
		if loc.Latitude == 0 && loc.Longitude == 0 {
			continue
		}
		return geo.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude}.Ptr()
	}
	return nil
}

// QualificationText is the qualification summary followed by the education
// requirements, flattened to plain text.
func (i *Item) QualificationText() string {
	parts := []string{
		listing.HTMLToText(i.Descriptor.QualificationSummary),
		listing.HTMLToText(i.Descriptor.UserArea.Details.Education),
	}
	return strings.Join(nonEmpty(parts), " ")
}

func dateOnly(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 10 && s[4] == '-' && s[7] == '-' {
		return s[:10]
	}
	return s
}
