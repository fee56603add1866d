package itinerary

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/domain"
)

const unknownVenue = "Unknown Venue"

// AIPlanner generates and manages AI itineraries built from the saved events.
type AIPlanner struct {
	api    domain.AIItineraryAPI
	saved  *SavedStore
	tokens TokenSource
	logger zerolog.Logger
}

func NewAIPlanner(api domain.AIItineraryAPI, saved *SavedStore, tokens TokenSource, logger zerolog.Logger) *AIPlanner {
	return &AIPlanner{api: api, saved: saved, tokens: tokens, logger: logger}
}

func (a *AIPlanner) token(op string) (string, error) {
	token := a.tokens.Token()
	if token == "" {
		return "", fmt.Errorf("%s: %w", op, domain.ErrAuthRequired)
	}
	return token, nil
}

func (a *AIPlanner) Generate(ctx context.Context) (*domain.AIItinerary, error) {
	token, err := a.token("generate itinerary")
	if err != nil {
		return nil, err
	}

	selected := SelectedEvents(a.saved.Get())
	if len(selected) == 0 {
		return nil, domain.ValidationError{Field: "events", Message: "Save at least one event to generate an itinerary"}
	}

	it, err := a.api.GenerateItinerary(ctx, token, selected)
	if err != nil {
		a.logger.Error().Err(err).Int("events", len(selected)).Msg("error generating itinerary")
		return nil, fmt.Errorf("generate itinerary: %w", err)
	}
	a.logger.Info().Str("itinerary_id", it.ID).Int("days", len(it.DayPlans)).Msg("generated itinerary")
	return it, nil
}

func (a *AIPlanner) List(ctx context.Context) ([]domain.AIItinerary, error) {
	token, err := a.token("list itineraries")
	if err != nil {
		return nil, err
	}
	return a.api.ListAIItineraries(ctx, token)
}

func (a *AIPlanner) Get(ctx context.Context, id string) (*domain.AIItinerary, error) {
	token, err := a.token("get itinerary")
	if err != nil {
		return nil, err
	}
	return a.api.GetAIItinerary(ctx, token, id)
}

func (a *AIPlanner) Delete(ctx context.Context, id string) error {
	token, err := a.token("delete itinerary")
	if err != nil {
		return err
	}
	if err := a.api.DeleteAIItinerary(ctx, token, id); err != nil {
		return fmt.Errorf("delete itinerary %s: %w", id, err)
	}
	return nil
}

// SelectedEvents projects saved events onto the generator's input shape.
func SelectedEvents(saved []domain.SavedEvent) []domain.SelectedEvent {
	selected := make([]domain.SelectedEvent, 0, len(saved))
	for _, e := range saved {
		venue := e.Venue
		if venue == "" {
			venue = unknownVenue
		}
		selected = append(selected, domain.SelectedEvent{ID: e.ID, Name: e.Name, Venue: venue, StartDate: e.StartDate})
	}
	return selected
}
