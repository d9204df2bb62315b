// Package search runs one job search request end to end: resolve the user
// address, fetch listings, place them on the map and filter them.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/fedjobs/internal/ai"
	"github.com/spigell/fedjobs/internal/catalog"
	"github.com/spigell/fedjobs/internal/config"
	"github.com/spigell/fedjobs/internal/filtering"
	"github.com/spigell/fedjobs/internal/geo"
	"github.com/spigell/fedjobs/internal/geocode"
	"github.com/spigell/fedjobs/internal/listing"
	"github.com/spigell/fedjobs/internal/logger"
	"github.com/spigell/fedjobs/internal/matching"
	"github.com/spigell/fedjobs/internal/usajobs"
)

var ErrAddressNotFound = errors.New("address not found")

// ListingSource is the live job catalog.
type ListingSource interface {
	Search(ctx context.Context, params *usajobs.SearchParams) (*usajobs.SearchResult, error)
}

type Request struct {
	Profile        matching.Profile
	Live           bool
	IgnoreDistance bool

	// Keyword replaces the query built from the profile skills.
	Keyword  string
	PayGrade string

	ExcludedOrganizations []string
	ExcludeFile           string
}

type Outcome struct {
	SearchID string
	Source   string
	Keywords string
	Profile  matching.Profile
	Results  *matching.Results
	Steps    []filtering.Report
	Statuses []filtering.Status
}

type Service struct {
	Geocoder geocode.Geocoder
	// Source nil means only the sample catalog is searched.
	Source ListingSource
	Config *config.Store
	Engine *matching.Engine
	// Matcher enables the ai_fit step when AI.Enabled is set.
	Matcher ai.Matcher
	AI      *filtering.AIFitFilterConfig
	Logger  *zap.Logger
}

// NewEngine builds a matching engine from the configured education fields.
func NewEngine(store *config.Store) *matching.Engine {
	return matching.NewEngine(matching.WithEducationFields(store.EducationFields()))
}

// Run performs one search. A nil Config means the built-in defaults and a nil
// Engine is derived from Config.
func (s *Service) Run(ctx context.Context, req Request) (*Outcome, error) {
	svc := *s
	if svc.Config == nil {
		svc.Config = config.Defaults()
	}
	if svc.Engine == nil {
		svc.Engine = NewEngine(svc.Config)
	}
	return svc.run(ctx, req)
}

func (s *Service) run(ctx context.Context, req Request) (*Outcome, error) {
	out := &Outcome{SearchID: uuid.NewString()}
	log := logger.WithSearch(s.Logger, out.SearchID, "")

	profile, err := s.locate(ctx, req.Profile, log)
	if err != nil {
		return nil, err
	}
	out.Profile = profile

	var listings []listing.Listing
	if req.Live && s.Source != nil {
		out.Keywords = req.Keyword
		if out.Keywords == "" {
			out.Keywords = BuildKeywordQuery(profile.Skills(), profile.EducationField(), s.Config.UI().TechSearchTerms)
		}
		listings = s.fetch(ctx, profile, req, out.Keywords, log)
	}

	out.Source = listing.SourceLive
	if len(listings) == 0 {
		category := catalog.SelectCategory(profile.Skills(), profile.EducationField())
		listings = s.Config.SampleCatalog().Listings(category)
		out.Source = listing.SourceSample
		log.Info("using sample listings", zap.String("category", category), zap.Int("count", len(listings)))
	}

	log = logger.WithSearch(log, "", out.Source)

	steps := s.steps(profile, req, log)
	results, reports, err := filtering.Run(ctx, log, steps, matching.FromListings(listings))
	if err != nil {
		return nil, fmt.Errorf("filtering: %w", err)
	}

	out.Results = results
	out.Steps = reports
	out.Statuses = filtering.Describe(steps)

	log.Info("search completed",
		zap.Int("listings", len(listings)),
		zap.Int("matches", results.Len()),
	)

	return out, nil
}

// locate resolves the profile address unless coordinates are already known.
// Geocoder failures are reported as an unresolvable address.
func (s *Service) locate(ctx context.Context, profile matching.Profile, log *zap.Logger) (matching.Profile, error) {
	if c := profile.Coordinates(); c != nil && c.Valid() {
		return profile, nil
	}

	if s.Geocoder == nil {
		return profile, fmt.Errorf("%w: no geocoder configured", ErrAddressNotFound)
	}

	coords, err := s.Geocoder.Resolve(ctx, profile.Address())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return profile, ctxErr
		}
		log.Warn("geocoding the user address failed", zap.String("address", profile.Address()), zap.Error(err))
		return profile, fmt.Errorf("%w: %q: %w", ErrAddressNotFound, profile.Address(), err)
	}
	if coords == nil {
		return profile, fmt.Errorf("%w: %q", ErrAddressNotFound, profile.Address())
	}

	log.Debug("user address resolved", zap.String("address", profile.Address()), zap.Stringer("coordinates", coords))
	return profile.WithCoordinates(coords), nil
}

// fetch queries the live catalog. Any failure yields no listings so the
// caller falls back to the sample catalog.
func (s *Service) fetch(ctx context.Context, profile matching.Profile, req Request, keywords string, log *zap.Logger) []listing.Listing {
	api := s.Config.API()
	params := &usajobs.SearchParams{
		Keyword:          keywords,
		LocationName:     profile.Address(),
		JobCategoryCodes: s.Config.CategoriesForKeyword(strings.Join(profile.Skills(), " ") + " " + profile.EducationField()),
		Radius:           api.API.DefaultParams.Radius,
		ResultsPerPage:   api.API.DefaultParams.ResultsPerPage,
		SortField:        api.API.DefaultParams.SortField,
		SortDirection:    api.API.DefaultParams.SortDirection,
		PayGrade:         req.PayGrade,
	}
	if params.PayGrade == "" {
		params.PayGrade = api.API.DefaultParams.PayGradeFloor
	}

	log.Info("searching live listings",
		zap.String("keywords", keywords),
		zap.Strings("categories", params.JobCategoryCodes),
	)

	result, err := s.Source.Search(ctx, params)
	if err != nil {
		log.Warn("live search failed, falling back to sample listings", zap.Error(err))
		return nil
	}

	listings := result.Listings()
	log.Info("live listings fetched", zap.Int("total", result.TotalCount), zap.Int("count", len(listings)))

	return s.placeListings(ctx, listings, log)
}

// placeListings geocodes each distinct location once. The coordinates the
// catalog supplied are kept when geocoding yields nothing.
func (s *Service) placeListings(ctx context.Context, listings []listing.Listing, log *zap.Logger) []listing.Listing {
	if s.Geocoder == nil {
		return listings
	}

	resolved := make(map[string]*geo.Coordinates)
	placed := make([]listing.Listing, 0, len(listings))

	for _, l := range listings {
		location := l.LocationText
		coords, seen := resolved[location]
		if !seen && strings.TrimSpace(location) != "" {
			var err error
			coords, err = s.Geocoder.Resolve(ctx, location)
			if err != nil {
				log.Warn("geocoding listing location failed", zap.String("location", location), zap.Error(err))
				coords = nil
			}
			resolved[location] = coords
		}

		if coords != nil {
			l = l.WithCoordinates(coords)
		}
		placed = append(placed, l)
	}

	return placed
}

func (s *Service) steps(profile matching.Profile, req Request, log *zap.Logger) []filtering.Filter {
	aiFilter := filtering.NewAIFit(s.AI, &filtering.AIFitFilterDeps{
		Logger:      log,
		Matcher:     s.Matcher,
		Profile:     profile,
		ExcludeFile: req.ExcludeFile,
	})
	if aiFilter.IsEnabled() && s.Matcher == nil {
		aiFilter.Disable("ai matcher is not configured")
	}

	return []filtering.Filter{
		filtering.NewExcludedOrganizations(req.ExcludedOrganizations),
		filtering.NewExcludeFile(req.ExcludeFile, log),
		filtering.NewMatch(s.Engine, profile.Query(req.IgnoreDistance), log),
		aiFilter,
	}
}
