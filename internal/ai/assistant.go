// Package ai defines the optional second opinion on retained listings.
package ai

import (
	"context"

	"github.com/spigell/fedjobs/internal/listing"
	"github.com/spigell/fedjobs/internal/matching"
)

type FitAssessment struct {
	Fit     bool
	Score   float64
	Reason  string
	Message string
	Raw     string
}

// Result converts the assessment into the form attached to search results.
func (a *FitAssessment) Result() *matching.AIAssessment {
	return &matching.AIAssessment{
		Fit:     a.Fit,
		Score:   a.Score,
		Reason:  a.Reason,
		Message: a.Message,
		Raw:     a.Raw,
	}
}

type Matcher interface {
	Evaluate(ctx context.Context, profile matching.Profile, l listing.Listing) (*FitAssessment, error)
}
