package itinerary

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/domain"
)

const UpdateFailedMessage = "Failed to update your itinerary. Please try again."

// TokenSource yields the current bearer token, or "" when nobody is logged in.
type TokenSource interface {
	Token() string
}

// Planner keeps the itinerary marks of the committed query and the saved set.
type Planner struct {
	api      domain.ItineraryAPI
	saved    *SavedStore
	tokens   TokenSource
	notifier *Notifier
	logger   zerolog.Logger

	mu    sync.Mutex
	marks map[string]domain.Status
}

func NewPlanner(api domain.ItineraryAPI, saved *SavedStore, tokens TokenSource, notifier *Notifier, logger zerolog.Logger) *Planner {
	return &Planner{
		api:      api,
		saved:    saved,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
		marks:    make(map[string]domain.Status),
	}
}

// MarkEvent records status for eventID under query. Without a session it
// returns ErrAuthRequired and sends nothing.
func (p *Planner) MarkEvent(ctx context.Context, query domain.Query, eventID string, status domain.Status) error {
	token := p.tokens.Token()
	if token == "" {
		return fmt.Errorf("mark event %s: %w", eventID, domain.ErrAuthRequired)
	}
	if eventID == "" {
		return domain.ValidationError{Field: "eventId", Message: "eventId cannot be null or empty"}
	}
	if !status.Valid() {
		return domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	update := domain.ItineraryUpdate{EventID: eventID, City: query.City, Date: query.Date, Status: status}
	if err := p.api.PostItinerary(ctx, token, update); err != nil {
		p.logger.Error().Err(err).Str("event_id", eventID).Str("status", string(status)).Msg("error updating itinerary")
		p.notifier.Error(domain.UserMessage(err, UpdateFailedMessage))
		return fmt.Errorf("mark event %s: %w", eventID, err)
	}

	p.setMark(eventID, status)
	p.notifier.Success(fmt.Sprintf("Marked as '%s'!", capitalize(string(status))))
	return nil
}

// ToggleSave adds event to the saved set, or removes it. Removing an event
// that carries a mark also writes a removed status for it.
func (p *Planner) ToggleSave(ctx context.Context, query domain.Query, event domain.MergedEvent) (bool, error) {
	var saved bool
	err := p.saved.Update(ctx, func(current []domain.SavedEvent) []domain.SavedEvent {
		if i := indexOf(current, event.ID); i >= 0 {
			saved = false
			return append(current[:i], current[i+1:]...)
		}
		saved = true
		return append(current, domain.NewSavedEvent(event))
	})
	if err != nil {
		return false, err
	}

	if !saved {
		p.retract(ctx, query, event.ID)
	}
	return saved, nil
}

func (p *Planner) retract(ctx context.Context, query domain.Query, eventID string) {
	if _, ok := p.Status(eventID); !ok {
		return
	}
	token := p.tokens.Token()
	if token == "" {
		return
	}

	update := domain.ItineraryUpdate{EventID: eventID, City: query.City, Date: query.Date, Status: domain.StatusRemoved}
	if err := p.api.PostItinerary(ctx, token, update); err != nil {
		// Log error but continue
		p.logger.Warn().Err(err).Str("event_id", eventID).Msg("failed to retract itinerary mark")
		return
	}
	p.setMark(eventID, domain.StatusRemoved)
}

// LoadMarks replaces the known marks with the backend's view of query.
func (p *Planner) LoadMarks(ctx context.Context, query domain.Query) {
	marks := make(map[string]domain.Status)

	if token := p.tokens.Token(); token != "" && !query.IsZero() {
		fetched, err := p.api.GetItinerary(ctx, token, query)
		if err != nil {
			p.logger.Warn().Err(err).Str("city", query.City).Str("date", query.Date).Msg("failed to load itinerary")
		}
		for _, m := range fetched {
			marks[m.EventID] = m.Status
		}
	}

	p.mu.Lock()
	p.marks = marks
	p.mu.Unlock()
}

func (p *Planner) Status(eventID string) (domain.Status, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.marks[eventID]
	return s, ok
}

// Marks returns a copy of every known mark.
func (p *Planner) Marks() map[string]domain.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]domain.Status, len(p.marks))
	for id, s := range p.marks {
		out[id] = s
	}
	return out
}

func (p *Planner) ClearMarks() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.marks = make(map[string]domain.Status)
}

func (p *Planner) setMark(eventID string, status domain.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.marks[eventID] = status
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
