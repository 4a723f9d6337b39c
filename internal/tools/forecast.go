package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/HendryAvila/weather-mcp/internal/memory"
	"github.com/HendryAvila/weather-mcp/internal/nws"
	"github.com/mark3labs/mcp-go/mcp"
)

// forecastPeriods is how many periods get_forecast renders.
const forecastPeriods = 5

// ForecastTool handles the get_forecast MCP tool.
type ForecastTool struct {
	store    memory.Store
	fetcher  Fetcher
	detailed bool
}

// NewForecastTool creates a ForecastTool with its dependencies.
func NewForecastTool(store memory.Store, fetcher Fetcher) *ForecastTool {
	return &ForecastTool{store: store, fetcher: fetcher}
}

// SetDetailedErrors makes fetch failures report their cause.
func (t *ForecastTool) SetDetailedErrors(on bool) {
	t.detailed = on
}

// Definition returns the MCP tool definition for get_forecast.
func (t *ForecastTool) Definition() mcp.Tool {
	return mcp.NewTool("get_forecast",
		mcp.WithDescription("Get weather forecast for a location."),
		mcp.WithTitleAnnotation("Weather Forecast"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Description("Latitude of the location"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Description("Longitude of the location"),
		),
		mcp.WithString("location_name",
			mcp.Description("Name of the location (optional)"),
			mcp.DefaultString(memory.UnknownLocation),
		),
	)
}

// Handle processes the get_forecast tool call.
//
// Two dependent requests: the points endpoint resolves the coordinate to a
// forecast URL, which is then fetched. Either failing short-circuits.
func (t *ForecastTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lat, ok := floatArg(req, "latitude")
	if !ok {
		return mcp.NewToolResultError("'latitude' is required and must be a number"), nil
	}
	lon, ok := floatArg(req, "longitude")
	if !ok {
		return mcp.NewToolResultError("'longitude' is required and must be a number"), nil
	}
	location := req.GetString("location_name", memory.UnknownLocation)

	if err := t.store.Update(ctx, func(doc *memory.Document) error {
		doc.RecordForecastSearch(location, lat, lon)
		return nil
	}); err != nil {
		return storeError("record search", err), nil
	}

	var points nws.PointsResponse
	res := t.fetcher.FetchJSON(ctx, t.fetcher.PointsURL(lat, lon), &points)
	if !res.OK() || points.Properties.Forecast == "" {
		return mcp.NewToolResultText(unableMessage("Unable to fetch forecast data", res, t.detailed)), nil
	}

	var forecast nws.ForecastResponse
	res = t.fetcher.FetchJSON(ctx, points.Properties.Forecast, &forecast)
	if !res.OK() || forecast.Properties.Periods == nil {
		return mcp.NewToolResultText(unableMessage("Unable to fetch forecast", res, t.detailed)), nil
	}

	periods := forecast.Properties.Periods
	if len(periods) > forecastPeriods {
		periods = periods[:forecastPeriods]
	}

	blocks := make([]string, 0, len(periods))
	for _, p := range periods {
		blocks = append(blocks, formatPeriod(p))
	}

	return mcp.NewToolResultText(
		fmt.Sprintf("%s Forecast for %s\n", header, location) + strings.Join(blocks, "\n"),
	), nil
}

func formatPeriod(p nws.ForecastPeriod) string {
	temp := "Unknown"
	if p.Temperature != nil {
		temp = strconv.FormatFloat(*p.Temperature, 'f', -1, 64)
	}
	return fmt.Sprintf("\n%s:\nTemperature: %s°%s\nWind: %s %s\nForecast: %s\n",
		p.Name, temp, p.TemperatureUnit, p.WindSpeed, p.WindDirection, p.DetailedForecast)
}
