// Package matching filters and orders job listings against a user profile by
// geodesic distance, skill keywords and education field.
//
// Everything here is a pure function of its inputs: no I/O, no logging and no
// errors. Coordinates must be resolved by the caller beforehand.
package matching

import (
	"cmp"
	"slices"
	"strings"

	"github.com/spigell/fedjobs/internal/geo"
	"github.com/spigell/fedjobs/internal/listing"
)

// Query is the input of a single filter run.
type Query struct {
	// UserCoords nil disables the distance filter.
	UserCoords  *geo.Coordinates
	MaxDistance float64
	// Skills empty disables the skill filter.
	Skills []string
	// Education empty disables the education filter.
	Education string
	// IgnoreDistance forces the distance filter to pass.
	IgnoreDistance bool
}

// Decision explains how a listing fared against each filter.
type Decision struct {
	DistanceMiles  *float64
	DistanceActive bool
	DistanceOK     bool

	SkillsActive  bool
	Conjunctive   bool
	MatchedSkills []string
	SkillsOK      bool

	EducationActive bool
	DegreeLevel     string
	Fields          []string
	EducationOK     bool
}

func (d Decision) Retained() bool {
	return d.DistanceOK && d.SkillsOK && d.EducationOK
}

type Engine struct {
	fields     []EducationField
	variations []SkillVariation
	techTerms  []string
}

type Option func(*Engine)

// WithEducationFields replaces the field of study table.
func WithEducationFields(fields []EducationField) Option {
	return func(e *Engine) {
		e.fields = normalizeFields(fields)
	}
}

// WithSkillVariations replaces the skill synonym table.
func WithSkillVariations(variations []SkillVariation) Option {
	return func(e *Engine) {
		e.variations = normalizeVariations(variations)
	}
}

// WithTechTerms replaces the terms that make skill matching conjunctive.
func WithTechTerms(terms []string) Option {
	return func(e *Engine) {
		e.techTerms = lowerAll(terms)
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		fields:     normalizeFields(DefaultEducationFields()),
		variations: normalizeVariations(DefaultSkillVariations()),
		techTerms:  lowerAll(DefaultTechTerms()),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

var defaultEngine = NewEngine()

// Default returns the engine configured with the built-in tables.
func Default() *Engine {
	return defaultEngine
}

// FilterListings runs the default engine over listings.
func FilterListings(listings []listing.Listing, userCoords *geo.Coordinates, maxDistance float64, skills []string, education string, ignoreDistance bool) []MatchResult {
	return Default().Filter(listings, Query{
		UserCoords:     userCoords,
		MaxDistance:    maxDistance,
		Skills:         skills,
		Education:      education,
		IgnoreDistance: ignoreDistance,
	})
}

// Filter returns the listings that pass every active filter. When any
// distance was computed the result is ordered by ascending distance, with
// listings lacking one placed last; otherwise input order is kept. The sort is
// stable and input listings are never modified.
func (e *Engine) Filter(listings []listing.Listing, q Query) []MatchResult {
	results := make([]MatchResult, 0, len(listings))
	withDistance := false

	for _, l := range listings {
		d := e.Evaluate(l, q)
		if !d.Retained() {
			continue
		}

		if d.DistanceMiles != nil {
			withDistance = true
		}

		results = append(results, MatchResult{
			Listing:       l.Clone(),
			DistanceMiles: d.DistanceMiles,
		})
	}

	if withDistance {
		slices.SortStableFunc(results, compareByDistance)
	}

	return results
}

func compareByDistance(a, b MatchResult) int {
	switch {
	case a.DistanceMiles == nil && b.DistanceMiles == nil:
		return 0
	case a.DistanceMiles == nil:
		return 1
	case b.DistanceMiles == nil:
		return -1
	default:
		return cmp.Compare(*a.DistanceMiles, *b.DistanceMiles)
	}
}

// Evaluate runs every filter against a single listing.
func (e *Engine) Evaluate(l listing.Listing, q Query) Decision {
	d := Decision{DistanceOK: true, SkillsOK: true, EducationOK: true}

	user := validCoords(q.UserCoords)
	job := validCoords(l.Coordinates)

	if user != nil && job != nil {
		miles := geo.Distance(*user, *job)
		d.DistanceMiles = &miles
	}

	d.DistanceActive = user != nil && !q.IgnoreDistance
	if d.DistanceActive {
		d.DistanceOK = d.DistanceMiles != nil && *d.DistanceMiles <= q.MaxDistance
	}

	text := e.SearchableText(l)

	if skills := normalizeSkills(q.Skills); len(skills) > 0 {
		d.SkillsActive = true
		d.Conjunctive = e.isTechnical(skills)
		d.MatchedSkills = e.matchSkills(skills, text)

		if d.Conjunctive {
			d.SkillsOK = len(d.MatchedSkills) == len(skills)
		} else {
			d.SkillsOK = len(d.MatchedSkills) > 0
		}
	}

	if education := strings.ToLower(strings.TrimSpace(q.Education)); education != "" {
		d.EducationActive = true
		d.DegreeLevel = DegreeLevel(education)
		d.Fields, d.EducationOK = e.matchEducation(education, d.DegreeLevel, text)
	}

	return d
}

// SearchableText is the lowercased, whitespace-normalized concatenation of the
// listing title, keywords and qualification text.
func (e *Engine) SearchableText(l listing.Listing) string {
	parts := make([]string, 0, len(l.Keywords)+2)
	parts = append(parts, l.Title)
	parts = append(parts, l.Keywords...)
	parts = append(parts, l.QualificationText)

	return strings.Join(strings.Fields(strings.ToLower(strings.Join(parts, " "))), " ")
}

func (e *Engine) matchSkills(skills []string, text string) []string {
	matched := make([]string, 0, len(skills))
	for _, skill := range skills {
		if e.skillFound(skill, text) {
			matched = append(matched, skill)
		}
	}
	return matched
}

func (e *Engine) skillFound(skill, text string) bool {
	if strings.Contains(text, skill) {
		return true
	}

	if strings.Contains(text, strings.ReplaceAll(skill, " ", "")) ||
		strings.Contains(text, strings.ReplaceAll(skill, "-", "")) {
		return true
	}

	for _, variation := range e.variations {
		if !strings.Contains(skill, variation.Skill) {
			continue
		}
		if containsAny(text, variation.Variants) {
			return true
		}
	}

	return false
}

func (e *Engine) isTechnical(skills []string) bool {
	return containsAny(strings.Join(skills, " "), e.techTerms)
}

// matchEducation returns the recognized fields of study and whether the text
// satisfies the education filter.
func (e *Engine) matchEducation(education, level, text string) ([]string, bool) {
	var (
		fields  []string
		matched bool
	)

	for _, field := range e.fields {
		if !strings.Contains(education, field.Name) {
			continue
		}
		fields = append(fields, field.Name)
		if !matched && containsAny(text, field.Keywords) {
			matched = true
		}
	}

	if len(fields) > 0 {
		return fields, matched
	}

	terms := append([]string{}, genericEducationTerms...)
	terms = append(terms, education)
	if level != "" {
		terms = append(terms, level)
	}

	return nil, containsAny(text, terms)
}

// DegreeLevel detects phd, master or bachelor in a lowercased education text.
// It returns an empty string when no level is recognized.
func DegreeLevel(education string) string {
	for _, candidate := range degreeLevels {
		if containsAny(education, candidate.markers) {
			return candidate.level
		}
	}
	return ""
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func validCoords(c *geo.Coordinates) *geo.Coordinates {
	if c == nil || !c.Valid() {
		return nil
	}
	return c
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.ToLower(strings.Join(strings.Fields(skill), " "))
		if skill == "" {
			continue
		}
		out = append(out, skill)
	}
	return out
}

func normalizeFields(fields []EducationField) []EducationField {
	out := make([]EducationField, 0, len(fields))
	for _, field := range fields {
		name := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(field.Name, "_", " ")))
		if name == "" {
			continue
		}
		out = append(out, EducationField{Name: name, Keywords: lowerAll(field.Keywords)})
	}
	return out
}

func normalizeVariations(variations []SkillVariation) []SkillVariation {
	out := make([]SkillVariation, 0, len(variations))
	for _, v := range variations {
		skill := strings.ToLower(strings.TrimSpace(v.Skill))
		if skill == "" {
			continue
		}
		out = append(out, SkillVariation{Skill: skill, Variants: lowerAll(v.Variants)})
	}
	return out
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		out = append(out, term)
	}
	return out
}
