package filtering

import (
	"context"
	"strings"

	"github.com/spigell/fedjobs/internal/listing"
	"github.com/spigell/fedjobs/internal/matching"
)

type organizationsFilter struct {
	organizations []string
}

// NewExcludedOrganizations creates a filter that removes listings posted by
// the given hiring organizations.
func NewExcludedOrganizations(organizations []string) Filter {
	cleaned := make([]string, 0, len(organizations))
	for _, org := range organizations {
		if org = strings.TrimSpace(org); org != "" {
			cleaned = append(cleaned, org)
		}
	}

	return &organizationsFilter{
		organizations: cleaned,
	}
}

func (f *organizationsFilter) Name() string { return "organizations" }

func (f *organizationsFilter) Disable(string) {}

func (f *organizationsFilter) IsEnabled() bool { return true }

func (f *organizationsFilter) Validate() error { return nil }

func (f *organizationsFilter) Apply(_ context.Context, r *matching.Results) (*matching.Results, Step, error) {
	initial := r.Len()
	if len(f.organizations) == 0 {
		return r, Step{Initial: initial, Dropped: 0, Left: r.Len()}, nil
	}

	excluded := r.Exclude(listing.OrganizationField, f.organizations)

	return r, Step{Initial: initial, Dropped: len(excluded), Left: r.Len()}, nil
}

func (f *organizationsFilter) Status() Status {
	details := map[string]string{}
	if len(f.organizations) > 0 {
		details["organizations"] = strings.Join(f.organizations, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
