package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinates is a point on the WGS-84 ellipsoid in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", c.Lat, c.Lon)
}

// Ptr returns a pointer to a copy of c, or nil when c is not a valid point.
func (c Coordinates) Ptr() *Coordinates {
	if !c.Valid() {
		return nil
	}
	return &c
}

// ParsePair builds coordinates from textual latitude and longitude.
// Malformed input yields nil rather than an error.
func ParsePair(lat, lon string) *Coordinates {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return nil
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return nil
	}

	return Coordinates{Lat: la, Lon: lo}.Ptr()
}

// Parse accepts the loosely typed coordinate shapes found in JSON documents:
// a two element array of numbers or numeric strings, or an object with
// lat/lon (latitude/longitude) keys. Anything else yields nil.
func Parse(v any) *Coordinates {
	switch typed := v.(type) {
	case nil:
		return nil
	case Coordinates:
		return typed.Ptr()
	case *Coordinates:
		if typed == nil {
			return nil
		}
		return typed.Ptr()
	case []float64:
		if len(typed) != 2 {
			return nil
		}
		return Coordinates{Lat: typed[0], Lon: typed[1]}.Ptr()
	case []any:
		if len(typed) != 2 {
			return nil
		}
		la, ok := number(typed[0])
		if !ok {
			return nil
		}
		lo, ok := number(typed[1])
		if !ok {
			return nil
		}
		return Coordinates{Lat: la, Lon: lo}.Ptr()
	case map[string]any:
		la, okLat := lookupNumber(typed, "lat", "latitude")
		lo, okLon := lookupNumber(typed, "lon", "lng", "longitude")
		if !okLat || !okLon {
			return nil
		}
		return Coordinates{Lat: la, Lon: lo}.Ptr()
	default:
		return nil
	}
}

func lookupNumber(m map[string]any, keys ...string) (float64, bool) {
	for key, value := range m {
		for _, k := range keys {
			if strings.EqualFold(key, k) {
				return number(value)
			}
		}
	}
	return 0, false
}

func number(v any) (float64, bool) {
	switch typed := v.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
