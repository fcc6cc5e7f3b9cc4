package mock

import (
	"context"

	"github.com/harunnryd/kirana/pkg/tools"
)

// Weather returns a canned report or error.
type Weather struct {
	Report tools.WeatherReport
	Err    error
}

func (w Weather) Current(ctx context.Context, location string) (tools.WeatherReport, error) {
	if w.Err != nil {
		return tools.WeatherReport{}, w.Err
	}
	report := w.Report
	if report.Location == "" {
		report.Location = location
	}
	return report, nil
}

// Search returns a canned topic summary or error.
type Search struct {
	Summary tools.TopicSummary
	Err     error
}

func (s Search) Summarize(ctx context.Context, topic string) (tools.TopicSummary, error) {
	if s.Err != nil {
		return tools.TopicSummary{}, s.Err
	}
	summary := s.Summary
	if summary.Title == "" {
		summary.Title = topic
	}
	return summary, nil
}
