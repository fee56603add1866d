package search

import (
	"sort"
	"strings"

	"github.com/yair/localgeo/pkg/domain"
)

const DefaultPageSize = 15

type groupKey struct {
	venue string
	name  string
}

// GroupEvents collapses raw events sharing (venue, name), keeping order of first
// appearance. The representative record is the earliest one, ties broken by ID,
// so any permutation of the input yields the same groups.
func GroupEvents(raw []domain.RawEvent) []domain.MergedEvent {
	index := make(map[groupKey]int, len(raw))
	merged := make([]domain.MergedEvent, 0, len(raw))

	for _, event := range raw {
		key := groupKey{venue: event.Venue, name: event.Name}
		i, ok := index[key]
		if !ok {
			index[key] = len(merged)
			merged = append(merged, domain.MergedEvent{
				RawEvent:      event,
				AllStartTimes: []string{event.StartDate},
			})
			continue
		}

		group := &merged[i]
		group.AllStartTimes = append(group.AllStartTimes, event.StartDate)
		if precedes(event, group.RawEvent) {
			group.RawEvent = event
		}
	}

	for i := range merged {
		// ISO-8601 timestamps order lexically
		sort.Strings(merged[i].AllStartTimes)
		merged[i].OriginalStartDate = merged[i].StartDate
	}

	return merged
}

func precedes(a, b domain.RawEvent) bool {
	if a.StartDate != b.StartDate {
		return a.StartDate < b.StartDate
	}
	return a.ID < b.ID
}

func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return (n + pageSize - 1) / pageSize
}

// Paginate returns the one-based page. Out-of-range pages clamp to the first or last one.
func Paginate(events []domain.MergedEvent, page, pageSize int) []domain.MergedEvent {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := TotalPages(len(events), pageSize)
	if total == 0 {
		return []domain.MergedEvent{}
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(events))
	return events[start:end]
}

// FilterByArtist keeps events with an artist containing needle, ignoring case.
// An empty needle returns events unchanged.
func FilterByArtist(events []domain.MergedEvent, needle string) []domain.MergedEvent {
	if needle == "" {
		return events
	}
	needle = strings.ToLower(needle)

	filtered := make([]domain.MergedEvent, 0, len(events))
	for _, event := range events {
		for _, artist := range event.Artists {
			if strings.Contains(strings.ToLower(artist), needle) {
				filtered = append(filtered, event)
				break
			}
		}
	}
	return filtered
}

// AvailableArtists lists every artist across events, sorted and deduplicated.
func AvailableArtists(events []domain.MergedEvent) []string {
	seen := make(map[string]struct{})
	for _, event := range events {
		for _, artist := range event.Artists {
			seen[artist] = struct{}{}
		}
	}

	artists := make([]string, 0, len(seen))
	for artist := range seen {
		artists = append(artists, artist)
	}
	sort.Strings(artists)
	return artists
}
