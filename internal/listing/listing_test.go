package listing

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spigell/fedjobs/internal/geo"
)

func TestKeyFallsBackToTitleAndOrganization(t *testing.T) {
	t.Parallel()

	live := Listing{ID: "776655", Title: "Nurse", Organization: "VA"}
	if live.Key() != "776655" {
		t.Fatalf("expected id key, got %q", live.Key())
	}

	sample := Listing{Title: " Registered Nurse ", Organization: "Department of Veterans Affairs"}
	if got := sample.Key(); got != "registered nurse@department of veterans affairs" {
		t.Fatalf("unexpected sample key: %q", got)
	}
}

func TestWithCoordinatesDoesNotTouchOriginal(t *testing.T) {
	t.Parallel()

	original := Listing{Title: "Data Scientist", Keywords: []string{"Python"}}
	updated := original.WithCoordinates(&geo.Coordinates{Lat: 36.1699, Lon: -115.1398})

	if original.Coordinates != nil {
		t.Fatalf("expected original listing to stay without coordinates")
	}
	if updated.Coordinates == nil || updated.Coordinates.Lat != 36.1699 {
		t.Fatalf("unexpected coordinates: %v", updated.Coordinates)
	}

	updated.Keywords[0] = "Go"
	if original.Keywords[0] != "Python" {
		t.Fatalf("expected keywords to be copied")
	}

	invalid := original.WithCoordinates(&geo.Coordinates{Lat: 200, Lon: 0})
	if invalid.Coordinates != nil {
		t.Fatalf("expected invalid coordinates to be dropped")
	}
}

func TestUniqueKeywords(t *testing.T) {
	t.Parallel()

	got := UniqueKeywords([]string{"RN", " Nurse ", "RN", "", "BSN"})
	want := []string{"RN", "Nurse", "BSN"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestExcludedFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")

	empty, err := GetExcludedFromFile(path)
	if err != nil {
		t.Fatalf("missing file should be an empty list: %v", err)
	}
	if len(empty.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(empty.Items))
	}

	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	excluded := ToExcluded([]Listing{
		{ID: "1", Title: "IT Specialist", Organization: "DHS", URL: "https://example.com/1"},
		{Title: "Clinical Nurse", Organization: "DoD"},
	}, ExcludeActorUser, "", now)

	empty.Append(excluded)
	if err := empty.ToFile(path); err != nil {
		t.Fatalf("writing exclude file: %v", err)
	}

	loaded, err := GetExcludedFromFile(path)
	if err != nil {
		t.Fatalf("reading exclude file: %v", err)
	}

	want := []string{"1", "clinical nurse@dod"}
	if !reflect.DeepEqual(loaded.Keys(), want) {
		t.Fatalf("expected keys %v, got %v", want, loaded.Keys())
	}
	if loaded.Items[1].Actor != ExcludeActorUser {
		t.Fatalf("unexpected actor: %q", loaded.Items[1].Actor)
	}
	if !loaded.Items[0].ExcludedAt.Equal(now) {
		t.Fatalf("unexpected excluded at: %v", loaded.Items[0].ExcludedAt)
	}
}

func TestGetExcludedFromEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("creating file: %v", err)
	}

	excluded, err := GetExcludedFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(excluded.Items) != 0 {
		t.Fatalf("expected empty list, got %d items", len(excluded.Items))
	}
}
