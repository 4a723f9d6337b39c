package memory

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func fixedNow(t *testing.T, ts time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return ts }
	t.Cleanup(func() { timeNow = orig })
}

func TestNow_UsesNaiveMicrosecondLayout(t *testing.T) {
	fixedNow(t, time.Date(2025, 10, 3, 14, 5, 9, 123456000, time.Local))

	if got, want := Now(), "2025-10-03T14:05:09.123456"; got != want {
		t.Errorf("Now() = %q, want %q", got, want)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"naive micros", "2025-10-03T14:05:09.123456", "2025-10-03 14:05"},
		{"naive seconds", "2025-10-03T14:05:09", "2025-10-03 14:05"},
		{"space separator", "2025-10-03 08:00:00", "2025-10-03 08:00"},
		{"rfc3339", "2025-10-03T14:05:09Z", "2025-10-03 14:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.input)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error: %v", tt.input, err)
			}
			if got := ts.Format("2006-01-02 15:04"); got != tt.want {
				t.Errorf("ParseTimestamp(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}

	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestDocument_AddFavorite_DuplicateNameKeepsFirst(t *testing.T) {
	doc := NewDocument()

	if !doc.AddFavorite("Home", 40.0, -75.0) {
		t.Fatal("first AddFavorite should succeed")
	}
	if doc.AddFavorite("Home", 1.0, 2.0) {
		t.Fatal("second AddFavorite with same name should be rejected")
	}
	if len(doc.Favorites) != 1 {
		t.Fatalf("favorites = %d, want 1", len(doc.Favorites))
	}
	if fav := doc.FindFavorite("Home"); fav.Latitude != 40.0 || fav.Longitude != -75.0 {
		t.Errorf("stored coordinates = (%v, %v), want (40, -75)", fav.Latitude, fav.Longitude)
	}
}

func TestDocument_RecordSearches(t *testing.T) {
	fixedNow(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local))
	doc := NewDocument()

	doc.RecordAlertsSearch("CA")
	doc.RecordForecastSearch("Boulder", 40.01, -105.27)

	if len(doc.Searches) != 2 {
		t.Fatalf("searches = %d, want 2", len(doc.Searches))
	}
	alerts := doc.Searches[0]
	if alerts.Type != SearchAlerts || alerts.State != "CA" || alerts.Latitude != nil {
		t.Errorf("unexpected alerts record: %+v", alerts)
	}
	forecast := doc.Searches[1]
	if forecast.Type != SearchForecast || forecast.Location != "Boulder" {
		t.Errorf("unexpected forecast record: %+v", forecast)
	}
	if forecast.Latitude == nil || *forecast.Latitude != 40.01 {
		t.Errorf("forecast latitude = %v, want 40.01", forecast.Latitude)
	}
	if forecast.Timestamp != "2025-01-02T03:04:05.000000" {
		t.Errorf("timestamp = %q", forecast.Timestamp)
	}
}

func TestDocument_RecentSearches(t *testing.T) {
	doc := NewDocument()
	for _, s := range []string{"A", "B", "C", "D"} {
		doc.RecordAlertsSearch(s)
	}

	tests := []struct {
		limit int
		want  []string
	}{
		{2, []string{"D", "C"}},
		{4, []string{"D", "C", "B", "A"}},
		{10, []string{"D", "C", "B", "A"}},
		{0, []string{"D", "C", "B", "A"}},
	}
	for _, tt := range tests {
		got := doc.RecentSearches(tt.limit)
		if len(got) != len(tt.want) {
			t.Errorf("RecentSearches(%d) len = %d, want %d", tt.limit, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].State != tt.want[i] {
				t.Errorf("RecentSearches(%d)[%d] = %s, want %s", tt.limit, i, got[i].State, tt.want[i])
			}
		}
	}
}

func TestNewSQLiteStore_OpenError(t *testing.T) {
	orig := openDB
	openDB = func(driverName, dataSourceName string) (*sql.DB, error) {
		return nil, errors.New("disk on fire")
	}
	t.Cleanup(func() { openDB = orig })

	_, err := NewSQLiteStore(filepath.Join(t.TempDir(), "memory.db"))
	if err == nil {
		t.Fatal("expected error when the database cannot be opened")
	}
}
