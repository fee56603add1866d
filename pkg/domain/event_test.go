package domain

import (
	"math"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestQuery(t *testing.T) {
	t.Run("Validate reports the first missing field", func(t *testing.T) {
		tests := []struct {
			name  string
			query Query
			field string
		}{
			{"missing city", Query{Date: "2025-06-01"}, "city"},
			{"missing date", Query{City: "Austin"}, "date"},
			{"missing both", Query{}, "city"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.query.Validate()
				var vErr ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.field, vErr.Field)
				assert.ErrorIs(t, err, ErrInvalidRequest)
			})
		}
	})

	t.Run("Validate accepts a complete query", func(t *testing.T) {
		assert.NoError(t, Query{City: "Austin", Date: "2025-06-01"}.Validate())
	})

	t.Run("equality is exact", func(t *testing.T) {
		assert.NotEqual(t, Query{City: "austin", Date: "2025-06-01"}, Query{City: "Austin", Date: "2025-06-01"})
		assert.True(t, Query{}.IsZero())
	})
}

func TestRawEventCoordinates(t *testing.T) {
	tests := []struct {
		name string
		lat  *float64
		lon  *float64
		ok   bool
	}{
		{"both present", ptr(30.27), ptr(-97.74), true},
		{"missing latitude", nil, ptr(-97.74), false},
		{"zero longitude", ptr(30.27), ptr(0.0), false},
		{"NaN latitude", ptr(math.NaN()), ptr(-97.74), false},
		{"infinite longitude", ptr(30.27), ptr(math.Inf(1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			center, ok := RawEvent{Latitude: tt.lat, Longitude: tt.lon}.Coordinates()
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, *tt.lat, center.Lat())
				assert.Equal(t, *tt.lon, center.Lon())
			}
		})
	}
}

func TestMergedEventJSON(t *testing.T) {
	merged := MergedEvent{
		RawEvent:          RawEvent{ID: "e1", Name: "Show", Venue: "Hall", StartDate: "2025-06-01T19:00:00"},
		AllStartTimes:     []string{"2025-06-01T19:00:00", "2025-06-01T21:00:00"},
		OriginalStartDate: "2025-06-01T19:00:00",
	}

	data, err := json.Marshal(merged)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "e1", fields["id"])
	assert.Equal(t, "Hall", fields["venue"])
	assert.Len(t, fields["allStartTimes"], 2)
	assert.NotContains(t, fields, "latitude")
}

func TestMapCenterJSON(t *testing.T) {
	data, err := json.Marshal(DefaultMapCenter)
	require.NoError(t, err)
	assert.JSONEq(t, `[40.74,-73.98]`, string(data))
}

func TestNewSavedEvent(t *testing.T) {
	t.Run("falls back to the first image", func(t *testing.T) {
		saved := NewSavedEvent(MergedEvent{RawEvent: RawEvent{
			ID:       "e1",
			Name:     "Show",
			Images:   []string{"a.jpg", "b.jpg"},
			MinPrice: ptr(25.0),
		}})
		assert.Equal(t, "a.jpg", saved.Image)
		assert.Equal(t, 25.0, *saved.MinPrice)
	})

	t.Run("keeps an explicit image", func(t *testing.T) {
		saved := NewSavedEvent(MergedEvent{RawEvent: RawEvent{ID: "e1", Image: "main.jpg", Images: []string{"a.jpg"}}})
		assert.Equal(t, "main.jpg", saved.Image)
	})
}

func TestStatus(t *testing.T) {
	for _, s := range []Status{StatusInterested, StatusGoing, StatusSaved, StatusRemoved} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("maybe").Valid())
}
