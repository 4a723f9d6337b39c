package memory

import (
	"encoding/json"
	"fmt"
	"time"
)

// Search kinds recorded in the history.
const (
	SearchAlerts   = "alerts"
	SearchForecast = "forecast"
)

// UnknownLocation names a forecast search made without a location name.
const UnknownLocation = "Unknown"

// timestampLayout is a naive local ISO-8601 timestamp with microseconds.
// Older memory files were written in this form, so new records use it too.
const timestampLayout = "2006-01-02T15:04:05.000000"

// Document is the whole persisted memory: search history plus favorites.
// It is always read and written as a unit.
type Document struct {
	Searches  []SearchRecord   `json:"searches"`
	Favorites []FavoriteRecord `json:"favorites"`
}

// SearchRecord is one entry of the search history.
// Alerts searches carry State; forecast searches carry Location and coordinates.
type SearchRecord struct {
	Type      string
	State     string
	Location  string
	Latitude  *float64
	Longitude *float64
	Timestamp string
}

// searchRecordJSON is the on-disk shape of a SearchRecord. State and
// Location are pointers so the key of the record's own kind is always
// written, even when empty, and keys of the other kind are left out.
type searchRecordJSON struct {
	Type      string   `json:"type"`
	State     *string  `json:"state,omitempty"`
	Location  *string  `json:"location,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// MarshalJSON writes state for alerts records and location for forecast
// records unconditionally.
func (r SearchRecord) MarshalJSON() ([]byte, error) {
	w := searchRecordJSON{
		Type:      r.Type,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Timestamp: r.Timestamp,
	}
	if r.Type == SearchAlerts || r.State != "" {
		w.State = &r.State
	}
	if r.Type == SearchForecast || r.Location != "" {
		w.Location = &r.Location
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a record. A forecast record without a location key
// reads as UnknownLocation.
func (r *SearchRecord) UnmarshalJSON(data []byte) error {
	var w searchRecordJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = SearchRecord{
		Type:      w.Type,
		Latitude:  w.Latitude,
		Longitude: w.Longitude,
		Timestamp: w.Timestamp,
	}
	if w.State != nil {
		r.State = *w.State
	}
	switch {
	case w.Location != nil:
		r.Location = *w.Location
	case w.Type == SearchForecast:
		r.Location = UnknownLocation
	}
	return nil
}

// FavoriteRecord is a saved location, unique by Name.
type FavoriteRecord struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Added     string  `json:"added"`
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		Searches:  []SearchRecord{},
		Favorites: []FavoriteRecord{},
	}
}

// normalize replaces nil lists so the document always serializes as [] rather than null.
func (d *Document) normalize() {
	if d.Searches == nil {
		d.Searches = []SearchRecord{}
	}
	if d.Favorites == nil {
		d.Favorites = []FavoriteRecord{}
	}
}

// RecordAlertsSearch appends an alerts lookup for a region to the history.
func (d *Document) RecordAlertsSearch(state string) {
	d.Searches = append(d.Searches, SearchRecord{
		Type:      SearchAlerts,
		State:     state,
		Timestamp: Now(),
	})
}

// RecordForecastSearch appends a forecast lookup to the history.
func (d *Document) RecordForecastSearch(location string, lat, lon float64) {
	d.Searches = append(d.Searches, SearchRecord{
		Type:      SearchForecast,
		Location:  location,
		Latitude:  &lat,
		Longitude: &lon,
		Timestamp: Now(),
	})
}

// FindFavorite returns the favorite with the given name, or nil.
func (d *Document) FindFavorite(name string) *FavoriteRecord {
	for i := range d.Favorites {
		if d.Favorites[i].Name == name {
			return &d.Favorites[i]
		}
	}
	return nil
}

// AddFavorite appends a favorite unless one with the same name exists.
// It reports whether the favorite was added.
func (d *Document) AddFavorite(name string, lat, lon float64) bool {
	if d.FindFavorite(name) != nil {
		return false
	}
	d.Favorites = append(d.Favorites, FavoriteRecord{
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
		Added:     Now(),
	})
	return true
}

// RecentSearches returns up to limit of the newest searches, most recent first.
func (d *Document) RecentSearches(limit int) []SearchRecord {
	n := len(d.Searches)
	if limit > n || limit <= 0 {
		limit = n
	}
	out := make([]SearchRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, d.Searches[i])
	}
	return out
}

// ClearSearches drops the whole search history. Favorites are untouched.
func (d *Document) ClearSearches() {
	d.Searches = []SearchRecord{}
}

// Now returns the current time formatted for a record timestamp.
func Now() string {
	return timeNow().Format(timestampLayout)
}

// ParseTimestamp parses a record timestamp. Naive timestamps are read as
// local time; RFC 3339 timestamps keep their offset.
func ParseTimestamp(s string) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
