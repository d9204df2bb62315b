package matching

import (
	"math"
	"reflect"
	"testing"

	"github.com/spigell/fedjobs/internal/geo"
	"github.com/spigell/fedjobs/internal/listing"
)

var (
	washington = geo.Coordinates{Lat: 38.9072, Lon: -77.0369}
	baltimore  = geo.Coordinates{Lat: 39.2904, Lon: -76.6122}
	richmond   = geo.Coordinates{Lat: 37.5407, Lon: -77.4360}
	lasVegas   = geo.Coordinates{Lat: 36.1699, Lon: -115.1398}
)

func at(c geo.Coordinates) *geo.Coordinates {
	return &c
}

func titles(results []MatchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Listing.Title)
	}
	return out
}

func TestFilterExcludesListingsBeyondMaxDistance(t *testing.T) {
	t.Parallel()

	listings := []listing.Listing{
		{Title: "IT Specialist", Organization: "DOE", Coordinates: at(lasVegas)},
		{Title: "Nurse", Organization: "VA", Coordinates: at(baltimore)},
	}

	results := FilterListings(listings, at(washington), 50, nil, "", false)
	if got := titles(results); !reflect.DeepEqual(got, []string{"Nurse"}) {
		t.Fatalf("unexpected results: %v", got)
	}

	d := results[0].DistanceMiles
	if d == nil || math.Abs(*d-35.5471) > 0.05 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestFilterRequiresEveryTechnicalSkill(t *testing.T) {
	t.Parallel()

	listings := []listing.Listing{
		{Title: "Data Scientist", QualificationText: "Experience with Python and SQL required."},
		{Title: "Automation Engineer", QualificationText: "Python scripting."},
	}

	results := FilterListings(listings, nil, 50, []string{"Python", "SQL"}, "", false)
	if got := titles(results); !reflect.DeepEqual(got, []string{"Data Scientist"}) {
		t.Fatalf("unexpected results: %v", got)
	}
	if results[0].DistanceMiles != nil {
		t.Fatalf("expected no distance without user coordinates")
	}
}

func TestFilterMatchesEducationField(t *testing.T) {
	t.Parallel()

	listings := []listing.Listing{
		{Title: "Clinical Nurse", QualificationText: "Requires RN license and BSN"},
		{Title: "Budget Officer", QualificationText: "Federal budget formulation"},
	}

	results := FilterListings(listings, nil, 50, nil, "Bachelor in Nursing", false)
	if got := titles(results); !reflect.DeepEqual(got, []string{"Clinical Nurse"}) {
		t.Fatalf("unexpected results: %v", got)
	}
}

func TestFilterSkillPolicy(t *testing.T) {
	t.Parallel()

	nurse := listing.Listing{Title: "Staff Nurse", QualificationText: "Nursing care in a hospital ward"}

	tests := []struct {
		name     string
		skills   []string
		retained bool
	}{
		{name: "any skill is enough when no technical term", skills: []string{"Nursing", "Excel"}, retained: true},
		{name: "technical term makes every skill mandatory", skills: []string{"Nursing", "Python"}, retained: false},
		{name: "blank skills are ignored", skills: []string{" ", ""}, retained: true},
		{name: "no skill present", skills: []string{"Welding"}, retained: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			results := FilterListings([]listing.Listing{nurse}, nil, 50, tt.skills, "", false)
			if got := len(results) == 1; got != tt.retained {
				t.Fatalf("expected retained=%v, got %v", tt.retained, got)
			}
		})
	}
}

func TestSkillVariants(t *testing.T) {
	t.Parallel()

	engine := Default()
	tests := []struct {
		name  string
		skill string
		text  string
		want  bool
	}{
		{name: "exact substring", skill: "data analysis", text: "data analysis", want: true},
		{name: "spaces removed", skill: "power shell", text: "powershell scripting", want: true},
		{name: "hyphen removed", skill: "e-mail", text: "email support", want: true},
		{name: "synonym", skill: "sql", text: "database administration", want: true},
		{name: "synonym key inside longer skill", skill: "advanced cloud", text: "aws migration", want: true},
		{name: "repeated inner spaces", skill: "machine  learning", text: "machine learning models", want: true},
		{name: "tab inside skill", skill: "data\tanalysis", text: "data analysis", want: true},
		{name: "unrelated", skill: "welding", text: "java developer", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := engine.Evaluate(listing.Listing{QualificationText: tt.text}, Query{Skills: []string{tt.skill}})
			if d.SkillsOK != tt.want {
				t.Fatalf("expected %v for %q in %q", tt.want, tt.skill, tt.text)
			}
		})
	}
}

func TestEducationFallsBackToGenericTerms(t *testing.T) {
	t.Parallel()

	engine := Default()

	d := engine.Evaluate(listing.Listing{QualificationText: "Associate degree or equivalent experience"}, Query{Education: "Associate in Arts"})
	if !d.EducationOK || len(d.Fields) != 0 || d.DegreeLevel != "" {
		t.Fatalf("unexpected decision: %+v", d)
	}

	d = engine.Evaluate(listing.Listing{QualificationText: "Five years of experience"}, Query{Education: "Associate in Arts"})
	if d.EducationOK {
		t.Fatalf("expected listing without education terms to be rejected")
	}
}

func TestDegreeLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"phd in physics":               "phd",
		"doctorate of nursing":         "phd",
		"master of public health":      "master",
		"bachelor in computer science": "bachelor",
		"bs chemistry":                 "bachelor",
		"associate in arts":            "",
	}

	for input, want := range tests {
		if got := DegreeLevel(input); got != want {
			t.Fatalf("DegreeLevel(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFilterOrdersByDistance(t *testing.T) {
	t.Parallel()

	listings := []listing.Listing{
		{Title: "Vegas", Coordinates: at(lasVegas)},
		{Title: "Unknown"},
		{Title: "Richmond", Coordinates: at(richmond)},
		{Title: "Invalid", Coordinates: &geo.Coordinates{Lat: 120, Lon: 0}},
		{Title: "Baltimore", Coordinates: at(baltimore)},
	}

	results := FilterListings(listings, at(washington), 50, nil, "", true)
	want := []string{"Baltimore", "Richmond", "Vegas", "Unknown", "Invalid"}
	if got := titles(results); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	for i := 1; i < 3; i++ {
		if *results[i-1].DistanceMiles > *results[i].DistanceMiles {
			t.Fatalf("results are not ordered by distance: %v", titles(results))
		}
	}
}

func TestFilterKeepsInputOrderWithoutDistances(t *testing.T) {
	t.Parallel()

	listings := []listing.Listing{
		{Title: "C", Coordinates: at(lasVegas)},
		{Title: "A"},
		{Title: "B", Coordinates: at(baltimore)},
	}

	results := FilterListings(listings, nil, 50, nil, "", false)
	if got := titles(results); !reflect.DeepEqual(got, []string{"C", "A", "B"}) {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestFilterDistanceActiveDropsListingsWithoutCoordinates(t *testing.T) {
	t.Parallel()

	listings := []listing.Listing{
		{Title: "Unknown"},
		{Title: "Baltimore", Coordinates: at(baltimore)},
	}

	results := FilterListings(listings, at(washington), 100, nil, "", false)
	if got := titles(results); !reflect.DeepEqual(got, []string{"Baltimore"}) {
		t.Fatalf("unexpected results: %v", got)
	}
}

func TestFilterProperties(t *testing.T) {
	t.Parallel()

	listings := []listing.Listing{
		{Title: "Python Developer", QualificationText: "python sql", Coordinates: at(richmond)},
		{Title: "Data Analyst", QualificationText: "sql reporting python", Coordinates: at(baltimore)},
		{Title: "Software Engineer", QualificationText: "python only", Coordinates: at(washington)},
		{Title: "Remote Analyst", QualificationText: "python and sql"},
		{Title: "Vegas Developer", QualificationText: "python, sql", Coordinates: at(lasVegas)},
	}
	skills := []string{"python", "sql"}

	t.Run("empty input", func(t *testing.T) {
		if got := FilterListings(nil, at(washington), 50, skills, "", false); len(got) != 0 {
			t.Fatalf("expected no results, got %d", len(got))
		}
	})

	t.Run("monotonic in max distance", func(t *testing.T) {
		narrow := titles(FilterListings(listings, at(washington), 50, skills, "", false))
		wide := titles(FilterListings(listings, at(washington), 150, skills, "", false))

		for _, title := range narrow {
			found := false
			for _, w := range wide {
				if w == title {
					found = true
				}
			}
			if !found {
				t.Fatalf("%q retained at 50 miles but not at 150", title)
			}
		}
		if len(wide) <= len(narrow) {
			t.Fatalf("expected wider radius to retain more: %v vs %v", narrow, wide)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		first := FilterListings(listings, at(washington), 150, skills, "", false)
		again := FilterListings(NewResults(first).Listings(), at(washington), 150, skills, "", false)

		if !reflect.DeepEqual(titles(first), titles(again)) {
			t.Fatalf("expected %v, got %v", titles(first), titles(again))
		}
	})

	t.Run("ignore distance keeps distant listings", func(t *testing.T) {
		got := titles(FilterListings(listings, at(washington), 1, skills, "", true))
		want := []string{"Data Analyst", "Python Developer", "Vegas Developer", "Remote Analyst"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("input untouched", func(t *testing.T) {
		results := FilterListings(listings, at(washington), 150, skills, "", false)
		results[0].Listing.Coordinates.Lat = 0
		if listings[1].Coordinates.Lat != baltimore.Lat {
			t.Fatalf("input listing was modified")
		}
	})
}

func TestSearchableText(t *testing.T) {
	t.Parallel()

	l := listing.Listing{
		Title:             "  Medical   Officer ",
		Keywords:          []string{"Clinical", "Healthcare"},
		QualificationText: "Board\ncertified",
	}

	if got := Default().SearchableText(l); got != "medical officer clinical healthcare board certified" {
		t.Fatalf("unexpected searchable text: %q", got)
	}
}

func TestEngineOptions(t *testing.T) {
	t.Parallel()

	engine := NewEngine(
		WithEducationFields([]EducationField{{Name: "public_health", Keywords: []string{"Epidemiology"}}}),
		WithTechTerms([]string{"golang"}),
	)

	d := engine.Evaluate(listing.Listing{QualificationText: "epidemiology research"}, Query{Education: "Master of Public Health"})
	if !d.EducationOK || !reflect.DeepEqual(d.Fields, []string{"public health"}) {
		t.Fatalf("unexpected decision: %+v", d)
	}

	d = engine.Evaluate(listing.Listing{QualificationText: "golang services"}, Query{Skills: []string{"Golang", "Rust"}})
	if !d.Conjunctive || d.SkillsOK {
		t.Fatalf("expected conjunctive skill failure: %+v", d)
	}
}
