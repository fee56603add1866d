package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/domain"
	"github.com/yair/localgeo/pkg/integrations"
	"github.com/yair/localgeo/pkg/observability"
)

const FetchErrorMessage = "Failed to fetch events. Please try again."

type EventCache interface {
	Get(ctx context.Context, query domain.Query) (*domain.CacheEntry, bool)
	Put(ctx context.Context, entry domain.CacheEntry) bool
	Evict(ctx context.Context, query domain.Query) error
}

type Fetcher interface {
	Fetch(ctx context.Context, query domain.Query) integrations.QueryResult
}

type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

// Result is one resolved query.
type Result struct {
	Query     domain.Query         `json:"query"`
	Events    []domain.MergedEvent `json:"events"`
	MapCenter domain.MapCenter     `json:"mapCenter"`
	FromCache bool                 `json:"fromCache"`
}

// View is the derived state rendered by the explore screen.
type View struct {
	Wizard           Wizard               `json:"wizard"`
	Loading          bool                 `json:"loading"`
	Error            string               `json:"error,omitempty"`
	Page             int                  `json:"page"`
	TotalPages       int                  `json:"totalPages"`
	TotalEvents      int                  `json:"totalEvents"`
	Events           []domain.MergedEvent `json:"events"`
	MapCenter        domain.MapCenter     `json:"mapCenter"`
	ExpandedID       string               `json:"expandedId,omitempty"`
	HighlightedID    string               `json:"highlightedId,omitempty"`
	ImageIndex       map[string]int       `json:"imageIndex"`
	ArtistFilter     string               `json:"artistFilter"`
	AvailableArtists []string             `json:"availableArtists"`
}

type ControllerConfig struct {
	PageSize      int
	DefaultCenter domain.MapCenter
}

// Controller owns the explore flow: wizard state, resolved events and the UI
// state derived from them. All methods are safe for concurrent use.
type Controller struct {
	cache   EventCache
	fetcher Fetcher
	metrics observability.MetricsProviderInterface
	logger  zerolog.Logger
	now     func() time.Time

	pageSize      int
	defaultCenter domain.MapCenter

	mu            sync.Mutex
	generation    uint64
	wizard        Wizard
	events        []domain.MergedEvent
	mapCenter     domain.MapCenter
	loading       bool
	errMsg        string
	page          int
	artistFilter  string
	expandedID    string
	highlightedID string
	imageIndex    map[string]int
}

func NewController(cfg ControllerConfig, cache EventCache, fetcher Fetcher, metrics observability.MetricsProviderInterface, logger zerolog.Logger) *Controller {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.DefaultCenter == (domain.MapCenter{}) {
		cfg.DefaultCenter = domain.DefaultMapCenter
	}
	if metrics == nil {
		metrics = observability.NoopMetrics()
	}

	return &Controller{
		cache:         cache,
		fetcher:       fetcher,
		metrics:       metrics,
		logger:        logger,
		now:           time.Now,
		pageSize:      cfg.PageSize,
		defaultCenter: cfg.DefaultCenter,
		wizard:        NewWizard(),
		events:        []domain.MergedEvent{},
		mapCenter:     cfg.DefaultCenter,
		page:          1,
		imageIndex:    map[string]int{},
	}
}

// Resolve serves query from the cache, or fetches, groups and caches it.
// It does not touch controller state.
func (c *Controller) Resolve(ctx context.Context, query domain.Query) (Result, error) {
	if err := query.Validate(); err != nil {
		return Result{}, err
	}

	if entry, ok := c.cache.Get(ctx, query); ok {
		center := entry.MapCenter
		if center == (domain.MapCenter{}) {
			center = c.defaultCenter
		}
		return Result{Query: query, Events: entry.Events, MapCenter: center, FromCache: true}, nil
	}

	fetched := c.fetcher.Fetch(ctx, query)
	if fetched.EventsErr != nil {
		c.logger.Error().Err(fetched.EventsErr).
			Str("city", query.City).
			Str("date", query.Date).
			Msg("failed to fetch events")
		return Result{Query: query}, fmt.Errorf("resolve %s on %s: %w", query.City, query.Date, fetched.EventsErr)
	}

	center := fetched.Center
	if fetched.GeocodeErr != nil {
		c.logger.Warn().Err(fetched.GeocodeErr).Str("city", query.City).Msg("geocoding failed, using default center")
		c.metrics.IncGeocodeFallbacks()
		center = c.defaultCenter
	}

	result := Result{Query: query, Events: GroupEvents(fetched.Events), MapCenter: center}

	// Log error but continue
	c.cache.Put(ctx, domain.CacheEntry{
		Query:     query,
		Events:    result.Events,
		MapCenter: center,
		Timestamp: c.now().UnixMilli(),
	})

	return result, nil
}

// Refresh resolves the committed query and applies the outcome unless a newer
// query was committed meanwhile, in which case ErrStaleResult is returned.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.wizard.Step != StepResults {
		c.mu.Unlock()
		return fmt.Errorf("no committed query: %w", domain.ErrInvalidTransition)
	}
	c.generation++
	gen := c.generation
	query := c.wizard.Committed
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	result, err := c.Resolve(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.wizard.Step != StepResults || c.wizard.Committed != query {
		c.metrics.IncStaleResults()
		c.logger.Debug().Str("city", query.City).Str("date", query.Date).Msg("discarding stale result")
		return domain.ErrStaleResult
	}

	c.loading = false
	c.resetViewLocked()
	if err != nil {
		c.events = []domain.MergedEvent{}
		c.errMsg = FetchErrorMessage
		return err
	}

	c.events = result.Events
	c.mapCenter = result.MapCenter
	return nil
}

// callers hold c.mu
func (c *Controller) resetViewLocked() {
	c.page = 1
	c.expandedID = ""
	c.highlightedID = ""
	c.imageIndex = map[string]int{}
}

// Reload drops the cached entry of the committed query and resolves it again.
func (c *Controller) Reload(ctx context.Context) error {
	query := c.Wizard().Committed
	if query.IsZero() {
		return fmt.Errorf("no committed query: %w", domain.ErrInvalidTransition)
	}
	if err := c.cache.Evict(ctx, query); err != nil {
		c.logger.Warn().Err(err).Str("city", query.City).Str("date", query.Date).Msg("failed to evict cached events")
	}
	return c.Refresh(ctx)
}

func (c *Controller) SetCity(city string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wizard.SetCity(city)
}

func (c *Controller) SetDate(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wizard.SetDate(date)
}

// Next advances the wizard and resolves when it enters results.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	committed, err := c.wizard.Next()
	c.errMsg = ""
	c.mu.Unlock()

	if err != nil || !committed {
		return err
	}
	return c.Refresh(ctx)
}

func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = ""
	return c.wizard.Back()
}

// Submit commits the edited city and date while on results and resolves them.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	err := c.wizard.Submit()
	c.mu.Unlock()

	if err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Reset returns to the first step and drops all results. In-flight resolves become stale.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.wizard.Reset()
	c.events = []domain.MergedEvent{}
	c.mapCenter = c.defaultCenter
	c.loading = false
	c.errMsg = ""
	c.artistFilter = ""
	c.resetViewLocked()
}

// Restore applies a wizard decoded from the startup URL.
func (c *Controller) Restore(ctx context.Context, w Wizard) error {
	c.mu.Lock()
	c.generation++
	c.wizard = w
	c.mu.Unlock()

	if w.Step != StepResults {
		return nil
	}
	return c.Refresh(ctx)
}

func (c *Controller) Wizard() Wizard {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wizard
}

func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := TotalPages(len(c.events), c.pageSize)
	page = max(page, 1)
	if total > 0 {
		page = min(page, total)
	}
	c.page = page
}

// SetArtistFilter updates the needle; a filter that hides events resets paging.
func (c *Controller) SetArtistFilter(needle string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.artistFilter = needle
	if needle != "" && len(FilterByArtist(c.events, needle)) < len(c.events) {
		c.page = 1
	}
}

// ToggleExpand expands id, or collapses it if already expanded. It reports
// whether id is expanded afterwards.
func (c *Controller) ToggleExpand(eventID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.expandedID == eventID {
		c.expandedID = ""
		c.highlightedID = ""
		return false, nil
	}

	event, ok := c.findLocked(eventID)
	if !ok {
		return false, fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
	}

	c.expandedID = eventID
	c.highlightedID = eventID
	if center, ok := event.Coordinates(); ok {
		c.mapCenter = center
	}
	return true, nil
}

// CycleImage moves the carousel of an event, wrapping at both ends.
func (c *Controller) CycleImage(eventID string, dir Direction) (int, error) {
	if dir != DirectionNext && dir != DirectionPrev {
		return 0, domain.ValidationError{Field: "dir", Message: "direction must be next or prev"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	event, ok := c.findLocked(eventID)
	if !ok {
		return 0, fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
	}

	n := event.ImageCount()
	current := c.imageIndex[eventID]
	if n <= 1 {
		return current, nil
	}

	next := (current + 1) % n
	if dir == DirectionPrev {
		next = (current - 1 + n) % n
	}
	c.imageIndex[eventID] = next
	return next, nil
}

func (c *Controller) findLocked(eventID string) (domain.MergedEvent, bool) {
	for _, event := range c.events {
		if event.ID == eventID {
			return event, true
		}
	}
	return domain.MergedEvent{}, false
}

// Event looks up a resolved event by id.
func (c *Controller) Event(eventID string) (domain.MergedEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findLocked(eventID)
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	displayed := Paginate(c.events, c.page, c.pageSize)
	page, totalPages := c.page, TotalPages(len(c.events), c.pageSize)
	if c.artistFilter != "" {
		// a filtered list is shown whole, as a single page
		displayed = FilterByArtist(c.events, c.artistFilter)
		page, totalPages = 1, min(len(displayed), 1)
	}

	images := make(map[string]int, len(c.imageIndex))
	for id, i := range c.imageIndex {
		images[id] = i
	}

	return View{
		Wizard:           c.wizard,
		Loading:          c.loading,
		Error:            c.errMsg,
		Page:             page,
		TotalPages:       totalPages,
		TotalEvents:      len(c.events),
		Events:           displayed,
		MapCenter:        c.mapCenter,
		ExpandedID:       c.expandedID,
		HighlightedID:    c.highlightedID,
		ImageIndex:       images,
		ArtistFilter:     c.artistFilter,
		AvailableArtists: AvailableArtists(c.events),
	}
}
