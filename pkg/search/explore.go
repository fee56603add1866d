package search

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/domain"
)

// ExploreParams are the last non-empty wizard parameters seen.
type ExploreParams struct {
	Step string `json:"step,omitempty"`
	City string `json:"city,omitempty"`
	Date string `json:"date,omitempty"`
}

// ExploreMemory remembers how far the user got so that returning to the
// explore section lands on the most useful step.
type ExploreMemory struct {
	mu      sync.Mutex
	store   domain.KeyValueStore
	logger  zerolog.Logger
	reached bool
	last    ExploreParams
}

func NewExploreMemory(store domain.KeyValueStore, logger zerolog.Logger) *ExploreMemory {
	return &ExploreMemory{store: store, logger: logger}
}

// Load reads persisted state. Missing or undecodable values start empty.
func (m *ExploreMemory) Load(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if raw, err := m.store.Get(ctx, domain.KeyReachedStep3); err == nil {
		m.reached = string(raw) == "true"
	} else if !errors.Is(err, domain.ErrNotFound) {
		m.logger.Warn().Err(err).Msg("failed to read explore progress")
	}

	raw, err := m.store.Get(ctx, domain.KeyLastExploreParams)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			m.logger.Warn().Err(err).Msg("failed to read last explore parameters")
		}
		return
	}
	var params ExploreParams
	if err := json.Unmarshal(raw, &params); err != nil {
		m.logger.Warn().Err(err).Msg("discarding undecodable explore parameters")
		return
	}
	m.last = params
}

// Observe records a wizard projection. Empty values never erase remembered ones.
func (m *ExploreMemory) Observe(ctx context.Context, values url.Values) {
	m.mu.Lock()
	defer m.mu.Unlock()

	step := values.Get("step")
	if step == strconv.Itoa(int(StepResults)) && !m.reached {
		m.reached = true
		if err := m.store.Set(ctx, domain.KeyReachedStep3, []byte("true")); err != nil {
			m.logger.Warn().Err(err).Msg("failed to persist explore progress")
		}
	}

	updated := m.last
	if step != "" {
		updated.Step = step
	}
	if city := values.Get("city"); city != "" {
		updated.City = city
	}
	if date := values.Get("date"); date != "" {
		updated.Date = date
	}
	if updated == m.last {
		return
	}
	m.last = updated

	data, err := json.Marshal(updated)
	if err != nil {
		return
	}
	if err := m.store.Set(ctx, domain.KeyLastExploreParams, data); err != nil {
		m.logger.Warn().Err(err).Msg("failed to persist explore parameters")
	}
}

// Target is where re-entering the explore section should land.
func (m *ExploreMemory) Target() url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.reached && m.last.City != "" && m.last.Date != "":
		return url.Values{"step": {"3"}, "city": {m.last.City}, "date": {m.last.Date}}
	case m.last.City != "":
		return url.Values{"step": {"2"}, "city": {m.last.City}}
	}
	return url.Values{}
}

func (m *ExploreMemory) Reached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reached
}
