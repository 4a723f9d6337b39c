package nws

// AlertsResponse is the GeoJSON collection returned by /alerts/active/area/{region}.
// A nil Features means the key was absent from the payload.
type AlertsResponse struct {
	Features []AlertFeature `json:"features"`
}

// AlertFeature is one active alert.
type AlertFeature struct {
	Properties AlertProperties `json:"properties"`
}

// AlertProperties holds the alert fields the tools render.
// Pointers distinguish missing fields from empty ones.
type AlertProperties struct {
	Event       *string `json:"event"`
	AreaDesc    *string `json:"areaDesc"`
	Severity    *string `json:"severity"`
	Description *string `json:"description"`
}

// PointsResponse is the grid-point metadata returned by /points/{lat},{lon}.
type PointsResponse struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
}

// ForecastResponse is the payload behind a grid point's forecast URL.
type ForecastResponse struct {
	Properties struct {
		Periods []ForecastPeriod `json:"periods"`
	} `json:"properties"`
}

// ForecastPeriod is a single forecast window ("Tonight", "Tuesday", ...).
type ForecastPeriod struct {
	Name             string   `json:"name"`
	Temperature      *float64 `json:"temperature"`
	TemperatureUnit  string   `json:"temperatureUnit"`
	WindSpeed        string   `json:"windSpeed"`
	WindDirection    string   `json:"windDirection"`
	DetailedForecast string   `json:"detailedForecast"`
}
