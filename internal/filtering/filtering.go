// Package filtering narrows search results through an ordered list of named
// steps and reports how many listings each step dropped.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/fedjobs/internal/matching"
)

// Filter represents a single filtering step applied to search results.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, r *matching.Results) (*matching.Results, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Report pairs a step with the filter that produced it.
type Report struct {
	Name string
	Step
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

type Filtering struct {
	steps  []Filter
	logger *zap.Logger
}

func New(steps []Filter, logger *zap.Logger) *Filtering {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filtering{steps: steps, logger: logger}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func (f *Filtering) DisableByName(name, reason string) {
	DisableByName(f.steps, name, reason)
}

func (f *Filtering) Describe() []Status {
	return Describe(f.steps)
}

// RunFilters validates every enabled step, then applies them in order.
func (f *Filtering) RunFilters(ctx context.Context, r *matching.Results) (*matching.Results, []Report, error) {
	return Run(ctx, f.logger, f.steps, r)
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially, returning the resulting
// results and one report per applied step.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, r *matching.Results) (*matching.Results, []Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	reports := make([]Report, 0, len(steps))
	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		next, info, err := step.Apply(ctx, r)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		r = next
		reports = append(reports, Report{Name: step.Name(), Step: info})
	}

	return r, reports, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
