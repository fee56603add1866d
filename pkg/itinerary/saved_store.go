package itinerary

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/domain"
)

type Listener func(events []domain.SavedEvent)

// SavedStore is the shared saved-events collection. Every write persists the
// whole collection under domain.KeySavedEvents before listeners are told.
type SavedStore struct {
	store  domain.KeyValueStore
	logger zerolog.Logger

	mu        sync.Mutex
	events    []domain.SavedEvent
	listeners map[int]Listener
	nextID    int
}

func NewSavedStore(store domain.KeyValueStore, logger zerolog.Logger) *SavedStore {
	return &SavedStore{
		store:     store,
		logger:    logger,
		events:    []domain.SavedEvent{},
		listeners: make(map[int]Listener),
	}
}

// Load reads the persisted collection. Missing or corrupt data loads as empty.
func (s *SavedStore) Load(ctx context.Context) {
	events := []domain.SavedEvent{}

	raw, err := s.store.Get(ctx, domain.KeySavedEvents)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		s.logger.Warn().Err(err).Msg("failed to read saved events")
	default:
		if err := json.Unmarshal(raw, &events); err != nil {
			s.logger.Warn().Err(err).Msg("discarding undecodable saved events")
			events = []domain.SavedEvent{}
		}
	}

	s.mu.Lock()
	s.events = events
	s.mu.Unlock()
}

func (s *SavedStore) Get() []domain.SavedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

func (s *SavedStore) Contains(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.events, eventID) >= 0
}

func (s *SavedStore) Set(ctx context.Context, events []domain.SavedEvent) error {
	return s.Update(ctx, func([]domain.SavedEvent) []domain.SavedEvent { return events })
}

// Update applies fn to the current collection as one atomic read-modify-write.
func (s *SavedStore) Update(ctx context.Context, fn func(current []domain.SavedEvent) []domain.SavedEvent) error {
	s.mu.Lock()
	next := fn(slices.Clone(s.events))
	if next == nil {
		next = []domain.SavedEvent{}
	}

	data, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("encode saved events: %w", err)
	}
	if err := s.store.Set(ctx, domain.KeySavedEvents, data); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist saved events: %w", err)
	}
	s.events = next

	listeners := make([]Listener, 0, len(s.listeners))
	for _, id := range sortedKeys(s.listeners) {
		listeners = append(listeners, s.listeners[id])
	}
	snapshot := slices.Clone(next)
	s.mu.Unlock()

	for _, l := range listeners {
		l(slices.Clone(snapshot))
	}
	return nil
}

// Subscribe registers l for every future write and returns its unsubscribe func.
func (s *SavedStore) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func indexOf(events []domain.SavedEvent, eventID string) int {
	return slices.IndexFunc(events, func(e domain.SavedEvent) bool { return e.ID == eventID })
}

func sortedKeys(m map[int]Listener) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
