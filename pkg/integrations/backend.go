package integrations

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/domain"
	"github.com/yair/localgeo/pkg/observability"
)

const (
	defaultPlacesLocation = "New York"
	defaultVoiceNoteType  = "audio/webm"
	maxErrorBody          = 64 << 10
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// BackendClient wraps the application REST API. Each call is a single attempt.
type BackendClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rateLimiter
	metrics     observability.MetricsProviderInterface
	logger      zerolog.Logger
}

func NewBackendClient(config BackendConfig, metrics observability.MetricsProviderInterface, logger zerolog.Logger) (*BackendClient, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if metrics == nil {
		metrics = observability.NoopMetrics()
	}

	return &BackendClient{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		// backend allows 100 requests per minute per address
		rateLimiter: newRateLimiter(100, time.Minute, 0),
		metrics:     metrics,
		logger:      logger,
	}, nil
}

type request struct {
	endpoint    string
	method      string
	path        string
	query       url.Values
	token       string
	body        io.Reader
	contentType string
}

func jsonRequest(endpoint, method, path, token string, payload any) (request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}
	return request{
		endpoint:    endpoint,
		method:      method,
		path:        path,
		token:       token,
		body:        bytes.NewReader(data),
		contentType: "application/json",
	}, nil
}

// do sends r and returns the response body of a 2xx answer.
func (c *BackendClient) do(ctx context.Context, r request) ([]byte, error) {
	if err := c.rateLimiter.Allow(); err != nil {
		return nil, err
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveBackendDuration(r.endpoint, time.Since(start))
	if err != nil {
		c.metrics.IncBackendRequests(r.endpoint, 0)
		return nil, fmt.Errorf("%s %s: %w: %v", r.method, r.path, domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()
	c.metrics.IncBackendRequests(r.endpoint, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := readAPIError(resp)
		c.logger.Debug().
			Str("endpoint", r.endpoint).
			Int("status", resp.StatusCode).
			Str("message", apiErr.Message).
			Msg("backend request failed")
		return nil, fmt.Errorf("%s %s: %w", r.method, r.path, apiErr)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %v", r.method, r.path, domain.ErrNetworkFailure, err)
	}
	return body, nil
}

func (c *BackendClient) decode(ctx context.Context, r request, out any) error {
	body, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w: %v", r.endpoint, domain.ErrDecodeFailure, err)
	}
	return nil
}

// readAPIError extracts the server message from a JSON object, a JSON string or plain text.
func readAPIError(resp *http.Response) *domain.APIError {
	apiErr := &domain.APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if body[0] == '{' && json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	var text string
	if body[0] == '"' && json.Unmarshal(body, &text) == nil {
		apiErr.Message = text
		return apiErr
	}

	apiErr.Message = string(body)
	return apiErr
}

// Login posts credentials; the answer body is the token itself.
func (c *BackendClient) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	r, err := jsonRequest("auth_login", http.MethodPost, "/auth/login", "", creds)
	if err != nil {
		return "", err
	}

	body, err := c.do(ctx, r)
	if err != nil {
		return "", err
	}

	token := parseToken(body)
	if token == "" {
		return "", fmt.Errorf("login returned no token: %w", domain.ErrDecodeFailure)
	}
	return token, nil
}

func parseToken(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}
	switch body[0] {
	case '"':
		var token string
		if json.Unmarshal(body, &token) == nil {
			return strings.TrimSpace(token)
		}
	case '{':
		var payload struct {
			Token       string `json:"token"`
			AccessToken string `json:"accessToken"`
		}
		if json.Unmarshal(body, &payload) == nil {
			if payload.Token != "" {
				return payload.Token
			}
			return payload.AccessToken
		}
		return ""
	}
	return string(body)
}

func (c *BackendClient) Register(ctx context.Context, reg domain.RegisterRequest) error {
	r, err := jsonRequest("auth_register", http.MethodPost, "/auth/register", "", reg)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, r)
	return err
}

type backendUser struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
}

func (c *BackendClient) GetUser(ctx context.Context, token, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ValidationError{Field: "userId", Message: "user id is required"}
	}

	var wire backendUser
	r := request{
		endpoint: "users_get",
		method:   http.MethodGet,
		path:     "/users/" + url.PathEscape(userID),
		token:    token,
	}
	if err := c.decode(ctx, r, &wire); err != nil {
		return nil, err
	}

	user := &domain.User{
		UserID:      userID,
		Username:    wire.Username,
		DisplayName: wire.DisplayName,
		Bio:         wire.Bio,
	}
	return user, nil
}

func (c *BackendClient) SearchEvents(ctx context.Context, query domain.Query) ([]domain.RawEvent, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	events := []domain.RawEvent{}
	r := request{
		endpoint: "events",
		method:   http.MethodGet,
		path:     "/events",
		query:    url.Values{"city": {query.City}, "date": {query.Date}},
	}
	if err := c.decode(ctx, r, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *BackendClient) SearchArtistEvents(ctx context.Context, artistName string) ([]domain.RawEvent, error) {
	artistName = strings.TrimSpace(artistName)
	if artistName == "" {
		return nil, domain.ErrInvalidRequest
	}

	events := []domain.RawEvent{}
	r := request{
		endpoint: "events_artist",
		method:   http.MethodGet,
		path:     "/events/search/artist",
		query:    url.Values{"artistName": {artistName}},
	}
	if err := c.decode(ctx, r, &events); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.RawEvent{}, nil
		}
		return nil, err
	}
	return events, nil
}

func (c *BackendClient) Places(ctx context.Context, kind domain.PlaceKind, query domain.PlaceQuery) ([]domain.Place, error) {
	if kind != domain.PlaceRestaurants && kind != domain.PlaceAttractions {
		return nil, domain.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown place category %q", kind)}
	}

	location := strings.TrimSpace(query.Location)
	if location == "" {
		location = defaultPlacesLocation
	}
	params := url.Values{"location": {location}}
	if query.Latitude != nil && query.Longitude != nil && *query.Latitude != 0 && *query.Longitude != 0 {
		params.Set("latitude", fmt.Sprint(*query.Latitude))
		params.Set("longitude", fmt.Sprint(*query.Longitude))
	}

	var places []domain.Place
	r := request{
		endpoint: "places_" + string(kind),
		method:   http.MethodGet,
		path:     "/places/" + string(kind),
		query:    params,
	}
	if err := c.decode(ctx, r, &places); err != nil {
		return nil, err
	}
	if places == nil {
		places = []domain.Place{}
	}
	return places, nil
}

func (c *BackendClient) Restaurants(ctx context.Context, query domain.PlaceQuery) ([]domain.Place, error) {
	return c.Places(ctx, domain.PlaceRestaurants, query)
}

func (c *BackendClient) Attractions(ctx context.Context, query domain.PlaceQuery) ([]domain.Place, error) {
	return c.Places(ctx, domain.PlaceAttractions, query)
}

type backendMark struct {
	EventID string `json:"eventId"`
	Status  string `json:"status"`
}

func (c *BackendClient) GetItinerary(ctx context.Context, token string, query domain.Query) ([]domain.ItineraryMark, error) {
	var wire []backendMark
	r := request{
		endpoint: "itinerary_get",
		method:   http.MethodGet,
		path:     "/itinerary",
		query:    url.Values{"city": {query.City}, "date": {query.Date}},
		token:    token,
	}
	if err := c.decode(ctx, r, &wire); err != nil {
		return nil, err
	}

	// the backend answers with upper-case enum names
	marks := make([]domain.ItineraryMark, 0, len(wire))
	for _, m := range wire {
		if m.EventID == "" {
			continue
		}
		marks = append(marks, domain.ItineraryMark{
			EventID: m.EventID,
			Status:  domain.Status(strings.ToLower(m.Status)),
		})
	}
	return marks, nil
}

func (c *BackendClient) PostItinerary(ctx context.Context, token string, update domain.ItineraryUpdate) error {
	if update.EventID == "" {
		return domain.ValidationError{Field: "eventId", Message: "eventId cannot be null or empty"}
	}
	r, err := jsonRequest("itinerary_post", http.MethodPost, "/itinerary", token, update)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, r)
	return err
}

type backendItinerary struct {
	ID          string            `json:"id"`
	ItineraryID string            `json:"itineraryId"`
	Title       string            `json:"title"`
	City        string            `json:"city"`
	StartDate   string            `json:"startDate"`
	EndDate     string            `json:"endDate"`
	Description string            `json:"description"`
	DayPlans    []domain.DayPlan  `json:"dayPlans"`
	Activities  []domain.Activity `json:"activities"`
	Notes       string            `json:"notes"`
}

// toDomain folds a flat activity list into a single first day.
func (b backendItinerary) toDomain() domain.AIItinerary {
	it := domain.AIItinerary{
		ID:          b.ID,
		Title:       b.Title,
		City:        b.City,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		Description: b.Description,
		DayPlans:    b.DayPlans,
		Notes:       b.Notes,
	}
	if it.ID == "" {
		it.ID = b.ItineraryID
	}
	if len(it.DayPlans) == 0 && len(b.Activities) > 0 {
		it.DayPlans = []domain.DayPlan{{Day: 1, Date: b.StartDate, Activities: b.Activities}}
	}
	if it.DayPlans == nil {
		it.DayPlans = []domain.DayPlan{}
	}
	return it
}

func (c *BackendClient) GenerateItinerary(ctx context.Context, token string, events []domain.SelectedEvent) (*domain.AIItinerary, error) {
	if len(events) == 0 {
		return nil, domain.ValidationError{Field: "events", Message: "select at least one event"}
	}
	r, err := jsonRequest("itinerary_generate", http.MethodPost, "/itinerary/generate", token, events)
	if err != nil {
		return nil, err
	}

	var wire backendItinerary
	if err := c.decode(ctx, r, &wire); err != nil {
		return nil, err
	}
	it := wire.toDomain()
	return &it, nil
}

func (c *BackendClient) ListAIItineraries(ctx context.Context, token string) ([]domain.AIItinerary, error) {
	var wire []backendItinerary
	r := request{endpoint: "itinerary_ai_list", method: http.MethodGet, path: "/itinerary/ai", token: token}
	if err := c.decode(ctx, r, &wire); err != nil {
		return nil, err
	}

	itineraries := make([]domain.AIItinerary, 0, len(wire))
	for _, w := range wire {
		itineraries = append(itineraries, w.toDomain())
	}
	return itineraries, nil
}

func (c *BackendClient) GetAIItinerary(ctx context.Context, token, id string) (*domain.AIItinerary, error) {
	var wire backendItinerary
	r := request{endpoint: "itinerary_ai_get", method: http.MethodGet, path: "/itinerary/ai/" + url.PathEscape(id), token: token}
	if err := c.decode(ctx, r, &wire); err != nil {
		return nil, err
	}
	it := wire.toDomain()
	return &it, nil
}

func (c *BackendClient) DeleteAIItinerary(ctx context.Context, token, id string) error {
	r := request{endpoint: "itinerary_ai_delete", method: http.MethodDelete, path: "/itinerary/ai/" + url.PathEscape(id), token: token}
	_, err := c.do(ctx, r)
	return err
}

func (c *BackendClient) ListVoiceNotes(ctx context.Context, token string) ([]domain.VoiceNote, error) {
	notes := []domain.VoiceNote{}
	r := request{endpoint: "voice_notes_list", method: http.MethodGet, path: "/voice-notes", token: token}
	if err := c.decode(ctx, r, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *BackendClient) UploadVoiceNote(ctx context.Context, token string, upload domain.VoiceNoteUpload) (*domain.VoiceNote, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fileName := upload.FileName
	if fileName == "" {
		fileName = "voice-note.webm"
	}
	contentType := upload.ContentType
	if contentType == "" {
		contentType = defaultVoiceNoteType
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(fileName)))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart file: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, fmt.Errorf("failed to write multipart file: %w", err)
	}
	if err := mw.WriteField("name", upload.Name); err != nil {
		return nil, fmt.Errorf("failed to write multipart field: %w", err)
	}
	if upload.EventID != "" {
		if err := mw.WriteField("eventId", upload.EventID); err != nil {
			return nil, fmt.Errorf("failed to write multipart field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	var note domain.VoiceNote
	r := request{
		endpoint:    "voice_notes_upload",
		method:      http.MethodPost,
		path:        "/voice-notes",
		token:       token,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}
	if err := c.decode(ctx, r, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *BackendClient) DeleteVoiceNote(ctx context.Context, token, id string) error {
	r := request{endpoint: "voice_notes_delete", method: http.MethodDelete, path: "/voice-notes/" + url.PathEscape(id), token: token}
	_, err := c.do(ctx, r)
	return err
}
