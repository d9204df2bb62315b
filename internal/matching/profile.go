package matching

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/spigell/fedjobs/internal/geo"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// ProfileSpec carries the user input a Profile is built from.
type ProfileSpec struct {
	// Address is kept verbatim: it is the geocode cache key.
	Address          string `validate:"notblank"`
	Coordinates      *geo.Coordinates
	Skills           []string
	EducationField   string
	MaxDistanceMiles float64 `validate:"gt=0"`
}

// Profile is a validated, immutable search profile. It lives for one search
// request.
type Profile struct {
	spec ProfileSpec
}

func NewProfile(spec ProfileSpec) (Profile, error) {
	if err := validate.Struct(spec); err != nil {
		return Profile{}, fmt.Errorf("invalid profile: %w", err)
	}

	spec.Skills = append([]string(nil), spec.Skills...)
	if spec.Coordinates != nil {
		spec.Coordinates = spec.Coordinates.Ptr()
	}

	return Profile{spec: spec}, nil
}

func (p Profile) Address() string { return p.spec.Address }

func (p Profile) EducationField() string { return p.spec.EducationField }

func (p Profile) MaxDistanceMiles() float64 { return p.spec.MaxDistanceMiles }

func (p Profile) Skills() []string {
	return append([]string(nil), p.spec.Skills...)
}

func (p Profile) Coordinates() *geo.Coordinates {
	if p.spec.Coordinates == nil {
		return nil
	}
	c := *p.spec.Coordinates
	return &c
}

// WithCoordinates returns a new profile with resolved coordinates.
func (p Profile) WithCoordinates(c *geo.Coordinates) Profile {
	spec := p.spec
	spec.Skills = append([]string(nil), p.spec.Skills...)
	spec.Coordinates = nil
	if c != nil {
		spec.Coordinates = c.Ptr()
	}
	return Profile{spec: spec}
}

// Query builds the engine input for this profile.
func (p Profile) Query(ignoreDistance bool) Query {
	return Query{
		UserCoords:     p.Coordinates(),
		MaxDistance:    p.spec.MaxDistanceMiles,
		Skills:         p.Skills(),
		Education:      p.spec.EducationField,
		IgnoreDistance: ignoreDistance,
	}
}

// ParseSkills splits a comma separated skill list, keeping order and
// duplicates.
func ParseSkills(s string) []string {
	parts := strings.Split(s, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		skills = append(skills, part)
	}
	return skills
}
