package config

import (
	"time"

	"github.com/spigell/fedjobs/internal/retry"
)

type APIConfig struct {
	API            Endpoint `mapstructure:"api"`
	// CacheTTL is reported by the check command only. The geocode cache
	// lives as long as the process and is never invalidated.
	CacheTTL       float64  `mapstructure:"cache_ttl"`
	RequestTimeout float64  `mapstructure:"request_timeout"`
	MaxRetries     int      `mapstructure:"max_retries"`
	RetryDelay     float64  `mapstructure:"retry_delay"`
	MaxRetryDelay  float64  `mapstructure:"max_retry_delay"`
	MaxPages       int      `mapstructure:"max_pages"`
}

type Endpoint struct {
	BaseURL       string        `mapstructure:"base_url"`
	Host          string        `mapstructure:"host"`
	DefaultParams DefaultParams `mapstructure:"default_params"`
}

type DefaultParams struct {
	ResultsPerPage int    `mapstructure:"results_per_page"`
	SortField      string `mapstructure:"sort_field"`
	SortDirection  string `mapstructure:"sort_direction"`
	PayGradeFloor  string `mapstructure:"pay_grade_floor"`
	Radius         int    `mapstructure:"radius"`
}

func (c APIConfig) Timeout() time.Duration {
	return seconds(c.RequestTimeout)
}

// RetryPolicy is the policy shared by the listing source and the geocoder.
func (c APIConfig) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.MaxRetries,
		BaseDelay:   seconds(c.RetryDelay),
		MaxDelay:    seconds(c.MaxRetryDelay),
		Retryable:   retry.IsRetryable,
	}
}

type JobCategories struct {
	EducationJobMapping map[string]FieldMapping `mapstructure:"education_job_mapping"`
}

type FieldMapping struct {
	Keywords      []string `mapstructure:"keywords"`
	CategoryCodes []string `mapstructure:"category_codes"`
}

type UIConfig struct {
	Layout               string       `mapstructure:"layout"`
	PageTitle            string       `mapstructure:"page_title"`
	MaxPreviewJobs       int          `mapstructure:"max_preview_jobs"`
	DebugMode            bool         `mapstructure:"debug_mode"`
	FormDefaults         FormDefaults `mapstructure:"form_defaults"`
	VeteranStatusOptions []string     `mapstructure:"veteran_status_options"`
	TechSearchTerms      []string     `mapstructure:"tech_search_terms"`
}

type FormDefaults struct {
	Address     string  `mapstructure:"address"`
	Skills      string  `mapstructure:"skills"`
	Degree      string  `mapstructure:"degree"`
	MaxDistance float64 `mapstructure:"max_distance"`
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
