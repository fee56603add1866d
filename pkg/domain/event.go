package domain

import (
	"math"
)

// DefaultMapCenter is used whenever a city cannot be geocoded.
var DefaultMapCenter = MapCenter{40.74, -73.98}

// MapCenter is a [lat, lon] pair, serialized as a two element array.
type MapCenter [2]float64

func (c MapCenter) Lat() float64 { return c[0] }
func (c MapCenter) Lon() float64 { return c[1] }

// Query identifies a single search. Two queries are equal iff both strings match exactly.
type Query struct {
	City string `json:"city"`
	Date string `json:"date"`
}

func (q Query) Validate() error {
	if q.City == "" {
		return ValidationError{Field: "city", Message: "city is required"}
	}
	if q.Date == "" {
		return ValidationError{Field: "date", Message: "date is required"}
	}
	return nil
}

func (q Query) IsZero() bool {
	return q.City == "" && q.Date == ""
}

type PriceRange struct {
	Type     string  `json:"type,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// RawEvent is a single ticketed showing as returned by the backend.
type RawEvent struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Venue         string       `json:"venue"`
	URL           string       `json:"url,omitempty"`
	StartDate     string       `json:"startDate"`
	City          string       `json:"city,omitempty"`
	Latitude      *float64     `json:"latitude,omitempty"`
	Longitude     *float64     `json:"longitude,omitempty"`
	MinPrice      *float64     `json:"minPrice,omitempty"`
	MaxPrice      *float64     `json:"maxPrice,omitempty"`
	PriceRanges   []PriceRange `json:"priceRanges,omitempty"`
	Image         string       `json:"image,omitempty"`
	Images        []string     `json:"images,omitempty"`
	Artists       []string     `json:"artists,omitempty"`
	TicketStatus  string       `json:"ticketStatus,omitempty"`
	DistanceMiles *float64     `json:"distanceMiles,omitempty"`
	DriveTimeMin  *int         `json:"driveTimeMin,omitempty"`
	WalkTimeMin   *int         `json:"walkTimeMin,omitempty"`
}

// Coordinates reports the event location when both values are present, finite and non-zero.
func (e RawEvent) Coordinates() (MapCenter, bool) {
	if e.Latitude == nil || e.Longitude == nil {
		return MapCenter{}, false
	}
	lat, lon := *e.Latitude, *e.Longitude
	if !usable(lat) || !usable(lon) {
		return MapCenter{}, false
	}
	return MapCenter{lat, lon}, true
}

func usable(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MergedEvent collapses every RawEvent sharing the same (venue, name) pair.
// StartDate always equals the minimum of AllStartTimes.
type MergedEvent struct {
	RawEvent
	AllStartTimes     []string `json:"allStartTimes"`
	OriginalStartDate string   `json:"originalStartDate"`
}

// ImageCount counts the images available for the carousel.
func (e MergedEvent) ImageCount() int {
	return len(e.Images)
}

// CacheEntry is the persisted result of one resolved query.
type CacheEntry struct {
	Query     Query         `json:"query"`
	Events    []MergedEvent `json:"events"`
	MapCenter MapCenter     `json:"mapCenter"`
	Timestamp int64         `json:"timestamp"`
}
