package config

import (
	"strings"

	"github.com/spigell/fedjobs/internal/matching"
)

const (
	SectionAPI           = "api_config"
	SectionJobCategories = "job_categories"
	SectionUI            = "ui_config"
	SectionSampleJobs    = "sample_jobs"
)

// DefaultCategoryCode is used when no field of study maps to a job series.
const DefaultCategoryCode = "2210"

var sections = []string{SectionAPI, SectionJobCategories, SectionUI, SectionSampleJobs}

// requiredKeys should be present in a section file. Missing ones are filled
// from the defaults and reported as a warning.
var requiredKeys = map[string][]string{
	SectionAPI:           {"api", "cache_ttl", "request_timeout"},
	SectionJobCategories: {"education_job_mapping"},
	SectionUI:            {"layout", "page_title", "max_preview_jobs"},
}

// builtinCategoryCodes are the job series used for a field that does not list
// category_codes itself.
var builtinCategoryCodes = map[string][]string{
	"data_analytics":         {"1530", "1550"},
	"computer_science":       {"2210"},
	"information_technology": {"2210", "0391"},
}

func defaults(section string) map[string]any {
	switch section {
	case SectionAPI:
		return map[string]any{
			"api": map[string]any{
				"base_url": "https://data.usajobs.gov/api/Search",
				"host":     "data.usajobs.gov",
				"default_params": map[string]any{
					"results_per_page": 25,
					"sort_field":       "",
					"sort_direction":   "",
					"pay_grade_floor":  "",
					"radius":           0,
				},
			},
			"cache_ttl":       3600,
			"request_timeout": 15,
			"max_retries":     3,
			"retry_delay":     1,
			"max_retry_delay": 8,
			"max_pages":       1,
		}
	case SectionJobCategories:
		mapping := make(map[string]any)
		for _, field := range matching.DefaultEducationFields() {
			key := strings.ReplaceAll(field.Name, " ", "_")
			entry := map[string]any{"keywords": append([]string(nil), field.Keywords...)}
			if codes, ok := builtinCategoryCodes[key]; ok {
				entry["category_codes"] = append([]string(nil), codes...)
			}
			mapping[key] = entry
		}
		return map[string]any{"education_job_mapping": mapping}
	case SectionUI:
		return map[string]any{
			"layout":           "wide",
			"page_title":       "Federal Job Roadmap",
			"max_preview_jobs": 5,
			"debug_mode":       false,
			"form_defaults": map[string]any{
				"address":      "Las Vegas, NV",
				"skills":       "Python, SQL",
				"degree":       "Bachelor in Computer Science",
				"max_distance": 50,
			},
			"veteran_status_options": []string{"Not a veteran", "Veteran", "Disabled veteran", "Military spouse"},
			"tech_search_terms":      []string{"python", "sql", "developer", "software", "programmer", "IT"},
		}
	default:
		return map[string]any{}
	}
}
