// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on abstractions.
// No business logic lives here, only wiring.
package server

import (
	"fmt"
	"log/slog"

	"github.com/HendryAvila/weather-mcp/internal/config"
	"github.com/HendryAvila/weather-mcp/internal/memory"
	"github.com/HendryAvila/weather-mcp/internal/nws"
	"github.com/HendryAvila/weather-mcp/internal/observe"
	"github.com/HendryAvila/weather-mcp/internal/prompts"
	"github.com/HendryAvila/weather-mcp/internal/resources"
	"github.com/HendryAvila/weather-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"
)

// Name is the MCP server name announced to hosts.
const Name = "weather"

// Version is set at build time via ldflags.
var Version = "dev"

// Options carries the ambient dependencies created by the caller.
// Zero values fall back to slog.Default and the global meter provider.
type Options struct {
	Logger  *slog.Logger
	Metrics *observe.Metrics
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the memory store and must be
// called on shutdown (typically via defer). It is always non-nil.
func New(cfg *config.Config, opts Options) (*server.MCPServer, func(), error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		m, err := observe.NewMetrics(otel.GetMeterProvider())
		if err != nil {
			return nil, noop, fmt.Errorf("creating metrics: %w", err)
		}
		metrics = m
	}

	// --- Create shared dependencies ---

	store, err := memory.New(memory.Config{
		Backend: cfg.Store.Backend,
		Path:    cfg.Store.Path,
	})
	if err != nil {
		return nil, noop, fmt.Errorf("opening memory store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("memory store close", "error", err)
		}
	}

	client := nws.NewClient(nws.Config{
		BaseURL:   cfg.API.BaseURL,
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.API.Timeout,
	},
		nws.WithRecorder(metrics),
		nws.WithLogger(logger),
	)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
		server.WithToolHandlerMiddleware(observe.ToolMiddleware(metrics, logger)),
	)

	// --- Register weather tools ---

	alertsTool := tools.NewAlertsTool(store, client)
	alertsTool.SetDetailedErrors(cfg.API.DetailedErrors)
	s.AddTool(alertsTool.Definition(), alertsTool.Handle)

	forecastTool := tools.NewForecastTool(store, client)
	forecastTool.SetDetailedErrors(cfg.API.DetailedErrors)
	s.AddTool(forecastTool.Definition(), forecastTool.Handle)

	// --- Register memory tools ---

	saveFavoriteTool := tools.NewSaveFavoriteTool(store)
	s.AddTool(saveFavoriteTool.Definition(), saveFavoriteTool.Handle)

	getFavoritesTool := tools.NewGetFavoritesTool(store)
	s.AddTool(getFavoritesTool.Definition(), getFavoritesTool.Handle)

	getHistoryTool := tools.NewGetHistoryTool(store)
	s.AddTool(getHistoryTool.Definition(), getHistoryTool.Handle)

	clearHistoryTool := tools.NewClearHistoryTool(store)
	s.AddTool(clearHistoryTool.Definition(), clearHistoryTool.Handle)

	// --- Register prompts ---

	quickWeatherPrompt := prompts.NewQuickWeatherPrompt(store)
	s.AddPrompt(quickWeatherPrompt.Definition(), quickWeatherPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.InfoResource(), resourceHandler.HandleInfo)
	s.AddResource(resourceHandler.StatsResource(), resourceHandler.HandleStats)

	logger.Debug("mcp server ready",
		"backend", cfg.Store.Backend,
		"api", cfg.API.BaseURL,
		"version", Version,
	)
	return s, cleanup, nil
}

// noop is the cleanup returned when construction fails before the store opens.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use the weather tools.
func serverInstructions() string {
	return `You have access to a weather server backed by the US National Weather Service.
Coverage is the United States only.

## TOOLS

- get_alerts(state): active alerts for a two-letter US state code (CA, NY).
- get_forecast(latitude, longitude, location_name?): the next five forecast periods.
  Pass location_name when you know it; it is shown in the history.
- save_favorite(name, latitude, longitude): remember a location. Names are unique.
- get_favorites(): list saved locations with their coordinates.
- get_history(limit?): recent alert and forecast searches, newest first.
- clear_history(): forget the search history. Favorites are kept.

## TIPS

- When the user names a saved place, call get_favorites first and reuse its
  coordinates instead of guessing.
- "Unable to fetch ..." means the upstream API failed. Do not retry in a loop.
- The weather://stats resource reports how many searches and favorites exist.`
}
