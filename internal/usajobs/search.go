package usajobs

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/fedjobs/internal/listing"
)

type SearchParams struct {
	// usaparam is the query parameter name, usasep joins slice values into
	// one parameter. Fields without usaparam are not sent as is.
	Keyword          string   `usaparam:"Keyword"`
	LocationName     string   `usaparam:"LocationName"`
	JobCategoryCodes []string `usaparam:"JobCategoryCode" usasep:";"`
	Radius           int      `usaparam:"Radius"`
	ResultsPerPage   int      `usaparam:"ResultsPerPage"`
	SortField        string   `usaparam:"SortField"`
	SortDirection    string   `usaparam:"SortDirection"`
	PayGradeLow      string   `usaparam:"PayGradeLow"`
	PayGradeHigh     string   `usaparam:"PayGradeHigh"`

	// PayGrade like "GS-13" is translated into PayGradeLow.
	PayGrade string
}

type SearchResult struct {
	TotalCount int
	Items      []*Item
}

// Listings normalizes every item. Items without a title are dropped.
func (r *SearchResult) Listings() []listing.Listing {
	listings := make([]listing.Listing, 0, len(r.Items))
	for _, item := range r.Items {
		l := item.Listing()
		if strings.TrimSpace(l.Title) == "" {
			continue
		}
		listings = append(listings, l)
	}
	return listings
}

func (c *Client) search(ctx context.Context, params *SearchParams) (*SearchResult, error) {
	p := *params
	if p.ResultsPerPage <= 0 {
		p.ResultsPerPage = c.PerPage
	}
	if p.PayGradeLow == "" {
		p.PayGradeLow = payGradeNumber(p.PayGrade)
	}

	q := buildParams(&p)

	total, raw, err := c.getItems(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}

	items, err := decodeItems(raw)
	if err != nil {
		c.logger.Warn("malformed listings in USAJOBS response", zap.Error(err))
		return &SearchResult{}, nil
	}

	c.logger.Info("fetched listings from USAJOBS",
		zap.Int("total", total),
		zap.Int("fetched", len(items)),
	)

	return &SearchResult{TotalCount: total, Items: items}, nil
}

func decodeItems(raw []map[string]any) ([]*Item, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var items []*Item
	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &items,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}
	return items, nil
}

var gradeDigits = regexp.MustCompile(`\d+`)

// payGradeNumber extracts the numeric grade from values like "GS-13" or "13".
func payGradeNumber(grade string) string {
	n, err := strconv.Atoi(gradeDigits.FindString(grade))
	if err != nil || n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	v := reflect.ValueOf(params).Elem()
	for _, field := range reflect.VisibleFields(v.Type()) {
		key := field.Tag.Get("usaparam")
		if key == "" {
			continue
		}

		value := v.FieldByIndex(field.Index)
		switch field.Type.Kind() {
		case reflect.Slice:
			values, ok := value.Interface().([]string)
			if !ok {
				continue
			}
			values = nonEmpty(values)
			if len(values) == 0 {
				continue
			}
			if sep := field.Tag.Get("usasep"); sep != "" {
				q.Set(key, strings.Join(values, sep))
				continue
			}
			for _, s := range values {
				q.Add(key, s)
			}

		default:
			s := strings.TrimSpace(fmt.Sprintf("%v", value.Interface()))
			if s != "" && s != "0" {
				q.Set(key, s)
			}
		}
	}

	return q
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, s := range values {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
