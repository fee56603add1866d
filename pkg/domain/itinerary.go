package domain

type Status string

const (
	StatusInterested Status = "interested"
	StatusGoing      Status = "going"
	StatusSaved      Status = "saved"
	StatusRemoved    Status = "removed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusInterested, StatusGoing, StatusSaved, StatusRemoved:
		return true
	}
	return false
}

// ItineraryMark is a user's status annotation on an event. At most one is kept per EventID.
type ItineraryMark struct {
	EventID string `json:"eventId"`
	Status  Status `json:"status"`
}

// ItineraryUpdate is the body of POST /itinerary.
type ItineraryUpdate struct {
	EventID string `json:"eventId"`
	City    string `json:"city"`
	Date    string `json:"date"`
	Status  Status `json:"status"`
}

// SavedEvent is the user-curated subset of a MergedEvent kept client-side.
type SavedEvent struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Venue     string   `json:"venue"`
	StartDate string   `json:"startDate"`
	Image     string   `json:"image,omitempty"`
	Images    []string `json:"images,omitempty"`
	URL       string   `json:"url,omitempty"`
	MinPrice  *float64 `json:"minPrice,omitempty"`
	MaxPrice  *float64 `json:"maxPrice,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func NewSavedEvent(e MergedEvent) SavedEvent {
	image := e.Image
	if image == "" && len(e.Images) > 0 {
		image = e.Images[0]
	}
	return SavedEvent{
		ID:        e.ID,
		Name:      e.Name,
		Venue:     e.Venue,
		StartDate: e.StartDate,
		Image:     image,
		Images:    e.Images,
		URL:       e.URL,
		MinPrice:  e.MinPrice,
		MaxPrice:  e.MaxPrice,
		Latitude:  e.Latitude,
		Longitude: e.Longitude,
	}
}

// SelectedEvent is the shape sent to the AI itinerary generator.
type SelectedEvent struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Venue     string `json:"venue"`
	StartDate string `json:"startDate"`
}

type Activity struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Location    string `json:"location"`
	Duration    string `json:"duration"`
	EventID     string `json:"eventId,omitempty"`
}

type DayPlan struct {
	Day        int        `json:"day"`
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
	Notes      string     `json:"notes,omitempty"`
}

type AIItinerary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	City        string    `json:"city"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Description string    `json:"description,omitempty"`
	DayPlans    []DayPlan `json:"dayPlans"`
	Notes       string    `json:"notes,omitempty"`
}

type VoiceNote struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Date    string `json:"date"`
	URL     string `json:"url,omitempty"`
	EventID string `json:"eventId,omitempty"`
}

type PlaceKind string

const (
	PlaceRestaurants PlaceKind = "restaurants"
	PlaceAttractions PlaceKind = "attractions"
)

type Place struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Address        string   `json:"address,omitempty"`
	Category       string   `json:"category,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	PhotoReference string   `json:"photoReference,omitempty"`
	Source         string   `json:"source,omitempty"`
}

type PlaceQuery struct {
	Location  string   `json:"location"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}
