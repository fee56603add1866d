package integrations

import (
	"context"
	"sync"

	"github.com/yair/localgeo/pkg/domain"
)

// QueryResult carries both halves of a query lookup. Either half may have failed independently.
type QueryResult struct {
	Events     []domain.RawEvent
	Center     domain.MapCenter
	EventsErr  error
	GeocodeErr error
}

// QueryAggregator geocodes the city and fetches its events concurrently.
type QueryAggregator struct {
	geocoder domain.Geocoder
	events   domain.EventSource
}

func NewQueryAggregator(geocoder domain.Geocoder, events domain.EventSource) *QueryAggregator {
	return &QueryAggregator{
		geocoder: geocoder,
		events:   events,
	}
}

// Fetch waits for both lookups. A failed or missing geocode yields DefaultMapCenter.
func (a *QueryAggregator) Fetch(ctx context.Context, query domain.Query) QueryResult {
	var (
		result QueryResult
		wg     sync.WaitGroup
	)

	result.Center = domain.DefaultMapCenter

	wg.Add(2)

	go func() {
		defer wg.Done()
		if a.geocoder == nil {
			result.GeocodeErr = domain.ErrNotFound
			return
		}
		center, err := a.geocoder.Geocode(ctx, query.City)
		if err != nil {
			result.GeocodeErr = err
			return
		}
		result.Center = center
	}()

	go func() {
		defer wg.Done()
		if a.events == nil {
			result.EventsErr = domain.ErrNetworkFailure
			return
		}
		result.Events, result.EventsErr = a.events.SearchEvents(ctx, query)
	}()

	wg.Wait()

	if result.EventsErr == nil && result.Events == nil {
		result.Events = []domain.RawEvent{}
	}

	return result
}
