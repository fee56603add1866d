package domain

import (
	"context"
)

// Persisted client-side keys.
const (
	KeyToken             = "token"
	KeySavedEvents       = "savedEvents"
	KeyReachedStep3      = "reachedStep3"
	KeyLastExploreParams = "lastExploreParams"
)

// KeyValueStore is the local persistence used in place of browser storage.
// Get returns ErrNotFound for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Geocoder interface {
	Geocode(ctx context.Context, city string) (MapCenter, error)
}

type EventSource interface {
	SearchEvents(ctx context.Context, query Query) ([]RawEvent, error)
}

type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (string, error)
	Register(ctx context.Context, req RegisterRequest) error
	GetUser(ctx context.Context, token, userID string) (*User, error)
}

type ItineraryAPI interface {
	GetItinerary(ctx context.Context, token string, query Query) ([]ItineraryMark, error)
	PostItinerary(ctx context.Context, token string, update ItineraryUpdate) error
}

type AIItineraryAPI interface {
	GenerateItinerary(ctx context.Context, token string, events []SelectedEvent) (*AIItinerary, error)
	ListAIItineraries(ctx context.Context, token string) ([]AIItinerary, error)
	GetAIItinerary(ctx context.Context, token, id string) (*AIItinerary, error)
	DeleteAIItinerary(ctx context.Context, token, id string) error
}

type VoiceNoteAPI interface {
	ListVoiceNotes(ctx context.Context, token string) ([]VoiceNote, error)
	UploadVoiceNote(ctx context.Context, token string, upload VoiceNoteUpload) (*VoiceNote, error)
	DeleteVoiceNote(ctx context.Context, token, id string) error
}

type VoiceNoteUpload struct {
	Name        string
	EventID     string
	FileName    string
	ContentType string
	Data        []byte
}

type DiscoveryAPI interface {
	SearchArtistEvents(ctx context.Context, artistName string) ([]RawEvent, error)
	Places(ctx context.Context, kind PlaceKind, query PlaceQuery) ([]Place, error)
}
