// Package config loads the JSON configuration sections the search tool runs
// with. A Store is built once at startup and passed to whoever needs it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fedjobs/internal/catalog"
	"github.com/spigell/fedjobs/internal/matching"
)

type Store struct {
	mu       sync.RWMutex
	dir      string
	logger   *zap.Logger
	settings map[string]map[string]any
	warnings []string

	api        APIConfig
	categories JobCategories
	ui         UIConfig
	samples    map[string][]catalog.Record
}

// Load reads every section from dir. A missing file, or one without its
// required keys, falls back to defaults with a warning. Malformed JSON and
// values of the wrong type are errors. An empty dir loads defaults only.
func Load(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		dir:      dir,
		logger:   logger,
		settings: make(map[string]map[string]any, len(sections)),
	}

	for _, section := range sections {
		if err := s.loadSection(section); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Defaults returns a store holding only built-in values.
func Defaults() *Store {
	s, err := Load("", nil)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Store) loadSection(section string) error {
	var file map[string]any

	if s.dir != "" {
		path := filepath.Join(s.dir, section+".json")
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			s.warn("config file not found, using defaults", zap.String("file", path))
		case err != nil:
			return fmt.Errorf("reading %s: %w", path, err)
		default:
			if err := json.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("invalid JSON in %s: %w", path, err)
			}
			if err := validateSection(section, file); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			// Absent keys come from the defaults; the file keeps every
			// value it does set.
			if missing := missingKeys(section, file); len(missing) > 0 {
				s.warn("missing required fields, using defaults",
					zap.String("file", path),
					zap.Strings("fields", missing),
				)
			}
		}
	}

	v, err := build(section, file)
	if err != nil {
		return err
	}
	return s.apply(section, v)
}

func missingKeys(section string, doc map[string]any) []string {
	var missing []string
	for _, key := range requiredKeys[section] {
		if _, ok := doc[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// build layers the given documents over the section defaults.
func build(section string, layers ...map[string]any) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("json")

	for key, value := range defaults(section) {
		v.SetDefault(key, value)
	}

	for _, layer := range layers {
		if len(layer) == 0 {
			continue
		}
		if err := v.MergeConfigMap(layer); err != nil {
			return nil, fmt.Errorf("%s: merging settings: %w", section, err)
		}
	}

	return v, nil
}

func (s *Store) apply(section string, v *viper.Viper) error {
	var err error
	switch section {
	case SectionAPI:
		var cfg APIConfig
		if err = v.Unmarshal(&cfg); err == nil {
			s.api = cfg
		}
	case SectionJobCategories:
		var cfg JobCategories
		if err = v.Unmarshal(&cfg); err == nil {
			s.categories = cfg
		}
	case SectionUI:
		var cfg UIConfig
		if err = v.Unmarshal(&cfg); err == nil {
			s.ui = cfg
		}
	case SectionSampleJobs:
		var cfg struct {
			SampleJobs map[string][]catalog.Record `mapstructure:"sample_jobs"`
		}
		if err = v.Unmarshal(&cfg); err == nil {
			s.samples = cfg.SampleJobs
		}
	default:
		return fmt.Errorf("unknown config section %q", section)
	}
	if err != nil {
		return fmt.Errorf("%s: decoding settings: %w", section, err)
	}

	s.settings[section] = v.AllSettings()
	return nil
}

// Update merges updates into a section. The result is validated first; a
// rejected update leaves the store untouched.
func (s *Store) Update(section string, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.settings[section]
	if !ok {
		return fmt.Errorf("unknown config section %q", section)
	}

	v, err := build(section, current, updates)
	if err != nil {
		return err
	}
	if err := validateSection(section, v.AllSettings()); err != nil {
		return err
	}

	return s.apply(section, v)
}

func (s *Store) API() APIConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.api
}

func (s *Store) UI() UIConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ui
}

func (s *Store) Categories() JobCategories {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return JobCategories{EducationJobMapping: maps.Clone(s.categories.EducationJobMapping)}
}

// SampleJobs returns the sample records of a category, or all of them when
// category is empty. Without configured samples the built-in set is used.
func (s *Store) SampleJobs(category string) []catalog.Record {
	s.mu.RLock()
	samples := s.samples
	s.mu.RUnlock()

	if len(samples) == 0 {
		builtin, err := catalog.DefaultRecords()
		if err != nil {
			s.logger.Error("built-in sample jobs are unreadable", zap.Error(err))
			return nil
		}
		samples = builtin
	}

	category = strings.ToLower(strings.TrimSpace(category))
	if category != "" {
		for name, records := range samples {
			if strings.EqualFold(name, category) {
				return slices.Clone(records)
			}
		}
		return nil
	}

	var all []catalog.Record
	for _, name := range slices.Sorted(maps.Keys(samples)) {
		all = append(all, samples[name]...)
	}
	return all
}

// SampleCatalog builds a catalog from the configured sample jobs, or the
// built-in one when none are configured.
func (s *Store) SampleCatalog() *catalog.Catalog {
	s.mu.RLock()
	samples := s.samples
	s.mu.RUnlock()

	if len(samples) == 0 {
		return catalog.Default()
	}
	return catalog.New(samples)
}

// EducationFields converts the job category mapping into the matching table.
func (s *Store) EducationFields() []matching.EducationField {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mapping := s.categories.EducationJobMapping
	fields := make([]matching.EducationField, 0, len(mapping))
	for _, name := range slices.Sorted(maps.Keys(mapping)) {
		fields = append(fields, matching.EducationField{
			Name:     strings.ReplaceAll(name, "_", " "),
			Keywords: slices.Clone(mapping[name].Keywords),
		})
	}
	return fields
}

// CategoriesForKeyword returns the job series codes of every field whose
// keywords occur in keyword, in field name order and without duplicates.
// Without a match the IT management series is returned.
func (s *Store) CategoriesForKeyword(keyword string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keyword = strings.ToLower(keyword)
	mapping := s.categories.EducationJobMapping

	var codes []string
	for _, name := range slices.Sorted(maps.Keys(mapping)) {
		field := mapping[name]
		if !containsAnyKeyword(keyword, field.Keywords) {
			continue
		}

		fieldCodes := field.CategoryCodes
		if len(fieldCodes) == 0 {
			fieldCodes = builtinCategoryCodes[name]
		}
		for _, code := range fieldCodes {
			if !slices.Contains(codes, code) {
				codes = append(codes, code)
			}
		}
	}

	if len(codes) == 0 {
		return []string{DefaultCategoryCode}
	}
	return codes
}

func containsAnyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func (s *Store) Warnings() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.warnings)
}

func (s *Store) warn(msg string, fields ...zap.Field) {
	s.logger.Warn(msg, fields...)

	var b strings.Builder
	b.WriteString(msg)
	for _, f := range fields {
		switch {
		case f.String != "":
			fmt.Fprintf(&b, " %s=%s", f.Key, f.String)
		case f.Interface != nil:
			fmt.Fprintf(&b, " %s=%v", f.Key, f.Interface)
		}
	}
	s.warnings = append(s.warnings, b.String())
}
