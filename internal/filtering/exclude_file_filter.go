package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/fedjobs/internal/listing"
	"github.com/spigell/fedjobs/internal/matching"
)

type excludeFileFilter struct {
	path   string
	logger *zap.Logger
}

// NewExcludeFile creates a filter that removes listings contained in the exclude file.
func NewExcludeFile(path string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &excludeFileFilter{
		path:   strings.TrimSpace(path),
		logger: logger,
	}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, r *matching.Results) (*matching.Results, Step, error) {
	initial := r.Len()
	if f.path == "" {
		return r, Step{Initial: initial, Dropped: 0, Left: r.Len()}, nil
	}

	excluded, err := listing.GetExcludedFromFile(f.path)
	if err != nil {
		return r, Step{}, fmt.Errorf("getting excluded listings from file: %w", err)
	}

	removed := r.Exclude(listing.KeyField, excluded.Keys())
	if len(removed) > 0 {
		f.logger.Info("excluding listings based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_listings", removed),
			zap.Int("listings_left", r.Len()),
		)
	}

	return r, Step{Initial: initial, Dropped: len(removed), Left: r.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
