package filtering

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spigell/fedjobs/internal/matching"
	"github.com/spigell/fedjobs/internal/utils"
)

const searchableTextLogLimit = 200

type matchFilter struct {
	engine *matching.Engine
	query  matching.Query
	logger *zap.Logger
}

// NewMatch creates the step that runs the matching engine with the given
// query. A nil engine means the built-in tables.
func NewMatch(engine *matching.Engine, query matching.Query, logger *zap.Logger) Filter {
	if engine == nil {
		engine = matching.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &matchFilter{engine: engine, query: query, logger: logger}
}

func (f *matchFilter) Name() string { return "match" }

func (f *matchFilter) Disable(string) {}

func (f *matchFilter) IsEnabled() bool { return true }

func (f *matchFilter) Validate() error {
	if f.query.UserCoords != nil && !f.query.IgnoreDistance && f.query.MaxDistance <= 0 {
		return errors.New("max distance must be positive when the distance filter is active")
	}
	return nil
}

func (f *matchFilter) Apply(_ context.Context, r *matching.Results) (*matching.Results, Step, error) {
	initial := r.Len()
	listings := r.Listings()

	if f.logger.Core().Enabled(zapcore.DebugLevel) {
		for _, l := range listings {
			f.logDecision(l.Key(), f.engine.Evaluate(l, f.query), f.engine.SearchableText(l))
		}
	}

	matched := matching.NewResults(f.engine.Filter(listings, f.query))

	return matched, Step{Initial: initial, Dropped: initial - matched.Len(), Left: matched.Len()}, nil
}

func (f *matchFilter) logDecision(key string, d matching.Decision, text string) {
	fields := []zap.Field{
		zap.String("listing", key),
		zap.Bool("retained", d.Retained()),
		zap.String("searchable_text", utils.TruncateForLog(text, searchableTextLogLimit)),
	}
	if d.DistanceMiles != nil {
		fields = append(fields, zap.Float64("distance_miles", *d.DistanceMiles))
	}
	if d.DistanceActive {
		fields = append(fields, zap.Bool("distance_ok", d.DistanceOK))
	}
	if d.SkillsActive {
		fields = append(fields,
			zap.Bool("skills_ok", d.SkillsOK),
			zap.Bool("all_skills_required", d.Conjunctive),
			zap.Strings("matched_skills", d.MatchedSkills),
		)
	}
	if d.EducationActive {
		fields = append(fields,
			zap.Bool("education_ok", d.EducationOK),
			zap.String("degree_level", d.DegreeLevel),
			zap.Strings("fields", d.Fields),
		)
	}

	f.logger.Debug("listing evaluated", fields...)
}

func (f *matchFilter) Status() Status {
	details := map[string]string{
		"ignore_distance": strconv.FormatBool(f.query.IgnoreDistance),
	}
	if f.query.UserCoords != nil {
		details["max_distance"] = fmt.Sprintf("%.1f", f.query.MaxDistance)
	}
	if len(f.query.Skills) > 0 {
		details["skills"] = strings.Join(f.query.Skills, ",")
	}
	if f.query.Education != "" {
		details["education"] = f.query.Education
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
