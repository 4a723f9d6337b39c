package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/HendryAvila/weather-mcp/internal/memory"
	"github.com/HendryAvila/weather-mcp/internal/nws"
)

// forecastAPI serves a points document that links to /forecast, and the
// given forecast body there.
func forecastAPI(t *testing.T, forecastBody string) (*ForecastTool, *memory.FileStore) {
	t.Helper()
	mux := http.NewServeMux()
	srv, client := newTestAPI(t, mux)
	mux.HandleFunc("/points/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"properties": {"forecast": %q}}`, srv.URL+"/forecast")
	})
	mux.HandleFunc("/forecast", jsonHandler(forecastBody))

	store := newTestStore(t)
	return NewForecastTool(store, client), store
}

func periodsJSON(n int) string {
	periods := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		periods = append(periods, fmt.Sprintf(
			`{"number": %d, "name": "Period %d", "temperature": %d, "temperatureUnit": "F",
			  "windSpeed": "%d mph", "windDirection": "NW", "detailedForecast": "Sunny %d"}`,
			i, i, 60+i, i, i))
	}
	return `{"properties": {"periods": [` + strings.Join(periods, ",") + `]}}`
}

func TestForecastTool_Definition(t *testing.T) {
	def := NewForecastTool(newTestStore(t), nil).Definition()

	if def.Name != "get_forecast" {
		t.Errorf("name = %s, want get_forecast", def.Name)
	}
	if len(def.InputSchema.Required) != 2 {
		t.Errorf("required = %v, want latitude and longitude", def.InputSchema.Required)
	}
	if _, ok := def.InputSchema.Properties["location_name"]; !ok {
		t.Error("location_name should be an optional parameter")
	}
}

func TestForecastTool_RendersFirstFivePeriods(t *testing.T) {
	tool, _ := forecastAPI(t, periodsJSON(7))

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"latitude":      37.7749,
		"longitude":     -122.4194,
		"location_name": "San Francisco",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(result)

	wantPrefix := "[Weather MCP Server] Forecast for San Francisco\n" +
		"\nPeriod 1:\nTemperature: 61°F\nWind: 1 mph NW\nForecast: Sunny 1\n" +
		"\n" +
		"\nPeriod 2:\n"
	if !strings.HasPrefix(text, wantPrefix) {
		t.Errorf("text prefix mismatch:\ngot:  %q\nwant: %q", text, wantPrefix)
	}
	if !strings.Contains(text, "Period 5:") {
		t.Error("fifth period should be rendered")
	}
	if strings.Contains(text, "Period 6:") {
		t.Error("only the first five periods should be rendered")
	}
	if !strings.HasSuffix(text, "Forecast: Sunny 5\n") {
		t.Errorf("text should end with the fifth block, got %q", text)
	}
}

func TestForecastTool_MissingTemperature(t *testing.T) {
	tool, _ := forecastAPI(t, `{"properties": {"periods": [
		{"name": "Tonight", "temperature": null, "temperatureUnit": "F", "windSpeed": "5 mph", "windDirection": "S", "detailedForecast": "Clear"}
	]}}`)

	result, _ := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"latitude": 40.0, "longitude": -105.0,
	}))

	want := "[Weather MCP Server] Forecast for Unknown\n" +
		"\nTonight:\nTemperature: Unknown°F\nWind: 5 mph S\nForecast: Clear\n"
	if got := resultText(result); got != want {
		t.Errorf("text mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestForecastTool_PointsFailure(t *testing.T) {
	_, client := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of range", http.StatusNotFound)
	}))
	tool := NewForecastTool(newTestStore(t), client)

	result, _ := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"latitude": 51.5, "longitude": -0.12,
	}))
	if got := resultText(result); got != "Unable to fetch forecast data" {
		t.Errorf("text = %q", got)
	}
}

func TestForecastTool_NetworkFailure(t *testing.T) {
	srv, client := newTestAPI(t, jsonHandler(`{}`))
	srv.Close()
	store := newTestStore(t)
	tool := NewForecastTool(store, client)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"latitude": 39.74, "longitude": -104.99, "location_name": "Denver",
	}))
	if err != nil {
		t.Fatalf("a network failure must not surface as a Go error: %v", err)
	}
	if result.IsError {
		t.Error("network failures are plain text, not error results")
	}
	if got := resultText(result); got != "Unable to fetch forecast data" {
		t.Errorf("text = %q, want %q", got, "Unable to fetch forecast data")
	}

	doc := mustLoad(t, store)
	if len(doc.Searches) != 1 || doc.Searches[0].Location != "Denver" {
		t.Errorf("searches = %+v, want the Denver lookup recorded", doc.Searches)
	}
}

func TestForecastTool_PointsWithoutForecastURL(t *testing.T) {
	_, client := newTestAPI(t, jsonHandler(`{"properties": {}}`))
	tool := NewForecastTool(newTestStore(t), client)

	result, _ := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"latitude": 10.0, "longitude": 10.0,
	}))
	if got := resultText(result); got != "Unable to fetch forecast data" {
		t.Errorf("text = %q", got)
	}
}

func TestForecastTool_ForecastFailure(t *testing.T) {
	tool, _ := forecastAPI(t, `{"properties": {}}`)

	result, _ := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"latitude": 37.0, "longitude": -122.0,
	}))
	if got := resultText(result); got != "Unable to fetch forecast" {
		t.Errorf("text = %q", got)
	}
}

func TestForecastTool_RecordsSearch(t *testing.T) {
	tool, store := forecastAPI(t, periodsJSON(1))

	_, _ = tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"latitude": 37.7749, "longitude": -122.4194, "location_name": "SF",
	}))

	doc := mustLoad(t, store)
	if len(doc.Searches) != 1 {
		t.Fatalf("searches = %d, want 1", len(doc.Searches))
	}
	s := doc.Searches[0]
	if s.Type != memory.SearchForecast || s.Location != "SF" {
		t.Errorf("recorded search = %+v", s)
	}
	if s.Latitude == nil || *s.Latitude != 37.7749 || s.Longitude == nil || *s.Longitude != -122.4194 {
		t.Errorf("recorded coordinates = %v, %v", s.Latitude, s.Longitude)
	}
}

func TestForecastTool_InvalidCoordinates(t *testing.T) {
	tool := NewForecastTool(newTestStore(t), nil)

	tests := []map[string]interface{}{
		{"longitude": 1.0},
		{"latitude": 1.0},
		{"latitude": "north", "longitude": 1.0},
	}
	for _, args := range tests {
		result, err := tool.Handle(context.Background(), makeReq(args))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Errorf("args %v: expected an error result", args)
		}
	}
}

func TestFormatPeriod_RendersDetailedForecastOnly(t *testing.T) {
	var period nws.ForecastPeriod
	payload := `{"number": 1, "name": "Tonight", "temperature": 48, "temperatureUnit": "F",
		"windSpeed": "10 mph", "windDirection": "SW", "shortForecast": "Mostly Clear",
		"detailedForecast": "Mostly clear, with a low around 48."}`
	if err := json.Unmarshal([]byte(payload), &period); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := "\nTonight:\nTemperature: 48°F\nWind: 10 mph SW\nForecast: Mostly clear, with a low around 48.\n"
	if got := formatPeriod(period); got != want {
		t.Errorf("formatPeriod() = %q, want %q", got, want)
	}
}
