package tools

import "context"

// WeatherReport is the raw reading returned by a weather provider.
// Unit selection and formatting happen in the handler.
type WeatherReport struct {
	Location    string
	Summary     string
	TempC       float64
	TempF       float64
	FeelsLikeC  float64
	FeelsLikeF  float64
	HumidityPct string
	Source      string
}

// WeatherProvider fetches current conditions for a location. One
// outbound call with a bounded timeout; failures are returned, never
// panicked.
type WeatherProvider interface {
	Current(ctx context.Context, location string) (WeatherReport, error)
}

// TopicSummary is a concise factual summary for a topic.
type TopicSummary struct {
	Title   string
	Summary string
	URL     string
	Source  string
}

// SummaryProvider looks up an encyclopedia-style summary for a topic.
type SummaryProvider interface {
	Summarize(ctx context.Context, topic string) (TopicSummary, error)
}
