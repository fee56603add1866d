package search

import "strings"

var PopularCities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
	"Austin", "Jacksonville", "Fort Worth", "Columbus", "Charlotte",
	"San Francisco", "Indianapolis", "Seattle", "Denver", "Boston",
	"Las Vegas", "Nashville", "Miami", "Atlanta", "Washington",
	"London", "Paris", "Berlin", "Tokyo", "Sydney",
}

const emptySuggestionCount = 10

// SuggestCities matches popular cities containing q, ignoring case.
// An empty q suggests the first few.
func SuggestCities(q string) []string {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return append([]string(nil), PopularCities[:emptySuggestionCount]...)
	}

	matches := []string{}
	for _, city := range PopularCities {
		if strings.Contains(strings.ToLower(city), q) {
			matches = append(matches, city)
		}
	}
	return matches
}
