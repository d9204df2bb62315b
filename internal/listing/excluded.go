package listing

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

const (
	ExcludeActorUser = "user"
	ExcludeActorAI   = "ai"
)

type ExcludedListings struct {
	Items []*ExcludedListing
}

type ExcludedListing struct {
	Key          string
	Title        string
	URL          string
	Organization string
	Actor        string `json:",omitempty"`
	Reason       string `json:",omitempty"`
	ExcludedAt   time.Time
}

// ToExcluded converts listings into exclude file entries stamped with now.
func ToExcluded(listings []Listing, actor, reason string, now time.Time) *ExcludedListings {
	excluded := &ExcludedListings{}
	for _, l := range listings {
		excluded.Items = append(excluded.Items, &ExcludedListing{
			Key:          l.Key(),
			Title:        l.Title,
			URL:          l.URL,
			Organization: l.Organization,
			Actor:        actor,
			Reason:       reason,
			ExcludedAt:   now.UTC(),
		})
	}
	return excluded
}

// GetExcludedFromFile reads an exclude file. A missing or empty file is an
// empty list.
func GetExcludedFromFile(path string) (*ExcludedListings, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedListings{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedListings{}, nil
	}

	var excluded ExcludedListings
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedListings) Append(s *ExcludedListings) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedListings) Keys() []string {
	keys := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		keys = append(keys, item.Key)
	}
	return keys
}

func (e *ExcludedListings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
