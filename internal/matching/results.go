package matching

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spigell/fedjobs/internal/listing"
)

// AIAssessment is the optional review attached to a result by the ai_fit step.
type AIAssessment struct {
	Fit     bool    `json:"fit"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason,omitempty"`
	Message string  `json:"message,omitempty"`
	Raw     string  `json:"-"`
	Error   string  `json:"error,omitempty"`
}

// MatchResult is a retained listing with its distance from the user, if one
// was computed.
type MatchResult struct {
	Listing       listing.Listing `json:"listing"`
	DistanceMiles *float64        `json:"distance_miles,omitempty"`
	AI            *AIAssessment   `json:"ai,omitempty"`
}

// Results is the ordered outcome of a search that later pipeline steps narrow
// down further.
type Results struct {
	Items []MatchResult
}

func NewResults(items []MatchResult) *Results {
	return &Results{Items: items}
}

// FromListings wraps listings without distances, keeping their order.
func FromListings(listings []listing.Listing) *Results {
	items := make([]MatchResult, 0, len(listings))
	for _, l := range listings {
		items = append(items, MatchResult{Listing: l.Clone()})
	}
	return &Results{Items: items}
}

func (r *Results) Len() int {
	return len(r.Items)
}

func (r *Results) Listings() []listing.Listing {
	listings := make([]listing.Listing, 0, len(r.Items))
	for _, item := range r.Items {
		listings = append(listings, item.Listing)
	}
	return listings
}

// Exclude removes every result whose field equals one of targets, keeping the
// order of the rest. It returns the keys of removed listings.
func (r *Results) Exclude(field string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		set[target] = struct{}{}
	}

	var excluded []string
	kept := r.Items[:0]
	for _, item := range r.Items {
		if _, ok := set[item.Listing.GetStringField(field)]; ok {
			excluded = append(excluded, item.Listing.Key())
			continue
		}
		kept = append(kept, item)
	}
	r.Items = kept

	return excluded
}

// Keep retains only the results for which fn returns true.
func (r *Results) Keep(fn func(MatchResult) bool) {
	kept := r.Items[:0]
	for _, item := range r.Items {
		if fn(item) {
			kept = append(kept, item)
		}
	}
	r.Items = kept
}

// ReportByOrganization groups results under their hiring organization.
func (r *Results) ReportByOrganization() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, item := range r.Items {
		l := item.Listing
		entry := map[string]string{
			"title":    l.Title,
			"url":      l.URL,
			"location": l.LocationText,
			"salary":   FormatSalary(l.SalaryMin, l.SalaryMax),
			"closing":  l.ClosingDate,
		}
		if item.DistanceMiles != nil {
			entry["distance"] = fmt.Sprintf("%.1f mi", *item.DistanceMiles)
		}
		if l.VeteranPreferred {
			entry["veteran_preferred"] = "true"
		}

		if ai := item.AI; ai != nil {
			if ai.Error != "" {
				entry["ai_error"] = ai.Error
			} else {
				entry["ai_fit"] = strconv.FormatBool(ai.Fit)
				entry["ai_score"] = strconv.FormatFloat(ai.Score, 'f', -1, 64)
				if ai.Reason != "" {
					entry["ai_reason"] = ai.Reason
				}
				if ai.Message != "" {
					entry["ai_message"] = ai.Message
				}
			}
		}

		report[l.Organization] = append(report[l.Organization], entry)
	}
	return report
}

func (r *Results) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "fedjobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// Preview returns at most n results from the top.
func (r *Results) Preview(n int) []MatchResult {
	if n <= 0 || n >= len(r.Items) {
		return r.Items
	}
	return r.Items[:n]
}

// FormatSalary renders a salary range the way the sample catalog writes it.
func FormatSalary(minimum, maximum float64) string {
	switch {
	case minimum <= 0 && maximum <= 0:
		return "not specified"
	case maximum <= 0 || maximum == minimum:
		return "$" + thousands(minimum)
	default:
		return "$" + thousands(minimum) + " - $" + thousands(maximum)
	}
}

func thousands(v float64) string {
	s := strconv.FormatInt(int64(v), 10)
	if len(s) <= 3 {
		return s
	}

	out := make([]byte, 0, len(s)+len(s)/3)
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
