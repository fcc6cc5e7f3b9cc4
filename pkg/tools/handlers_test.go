package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type stubWeather struct {
	report WeatherReport
	err    error
}

func (s stubWeather) Current(ctx context.Context, location string) (WeatherReport, error) {
	if s.err != nil {
		return WeatherReport{}, s.err
	}
	r := s.report
	if r.Location == "" {
		r.Location = location
	}
	return r, nil
}

type stubSearch struct {
	summary TopicSummary
	err     error
}

func (s stubSearch) Summarize(ctx context.Context, topic string) (TopicSummary, error) {
	if s.err != nil {
		return TopicSummary{}, s.err
	}
	return s.summary, nil
}

func TestWeatherToolFormatsTemperatures(t *testing.T) {
	tool := WeatherTool(stubWeather{report: WeatherReport{
		Summary:    "Partly cloudy",
		TempC:      21.6,
		TempF:      70.9,
		FeelsLikeC: 20.1,
		FeelsLikeF: 68.2,
		HumidityPct: "55%",
		Source:     "wttr.in",
	}})

	res := tool.Handler(context.Background(), map[string]any{"location": "Lisbon", "unit": "celsius"})
	if res["error"] != nil {
		t.Fatalf("unexpected error: %v", res["error"])
	}
	if res["temperature"] != "22°C" {
		t.Errorf("temperature = %v, want 22°C", res["temperature"])
	}
	if res["feels_like"] != "20°C" {
		t.Errorf("feels_like = %v, want 20°C", res["feels_like"])
	}

	res = tool.Handler(context.Background(), map[string]any{"location": "Lisbon"})
	if res["temperature"] != "71°F" {
		t.Errorf("default unit temperature = %v, want 71°F", res["temperature"])
	}
}

func TestWeatherToolCoercesUnknownUnit(t *testing.T) {
	tool := WeatherTool(stubWeather{report: WeatherReport{TempF: 50, FeelsLikeF: 48}})
	res := tool.Handler(context.Background(), map[string]any{"location": "Oslo", "unit": "kelvin"})
	if res["temperature"] != "50°F" {
		t.Errorf("temperature = %v, want coercion to fahrenheit", res["temperature"])
	}
}

func TestWeatherToolMissingLocation(t *testing.T) {
	tool := WeatherTool(stubWeather{})
	res := tool.Handler(context.Background(), map[string]any{"location": "   "})
	if res["error"] != "Missing location." {
		t.Fatalf("error = %v, want Missing location.", res["error"])
	}
}

func TestWeatherToolProviderFailureIsContained(t *testing.T) {
	tool := WeatherTool(stubWeather{err: errors.New("connection refused")})
	res := tool.Handler(context.Background(), map[string]any{"location": "Lisbon"})
	msg, _ := res["error"].(string)
	if !strings.HasPrefix(msg, "Weather provider unavailable:") {
		t.Fatalf("error = %q, want provider-unavailable prefix", msg)
	}
	if res["location"] != "Lisbon" {
		t.Errorf("location = %v, want echoed location", res["location"])
	}
}

func TestCalendarToolIdempotent(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	state := NewAssistantStateAt(now)
	tool := CalendarTool(state)

	first := tool.Handler(context.Background(), map[string]any{"date": "2024-05-10"})
	second := tool.Handler(context.Background(), map[string]any{"date": "2024-05-10"})

	events1, _ := first["events"].([]CalendarEvent)
	events2, _ := second["events"].([]CalendarEvent)
	if len(events1) != 2 || len(events2) != 2 {
		t.Fatalf("event counts = %d, %d; want 2, 2", len(events1), len(events2))
	}
	if events1[0].Title != events2[0].Title {
		t.Errorf("repeated calls disagree: %q vs %q", events1[0].Title, events2[0].Title)
	}
	if events1[0].Title != "Stand-up with product team" {
		t.Errorf("first event = %q", events1[0].Title)
	}
}

func TestCalendarToolEmptyDateIsNeverNil(t *testing.T) {
	state := NewAssistantStateAt(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC))
	tool := CalendarTool(state)
	res := tool.Handler(context.Background(), map[string]any{"date": "1999-01-01"})
	events, ok := res["events"].([]CalendarEvent)
	if !ok {
		t.Fatalf("events missing or wrong type: %T", res["events"])
	}
	if events == nil {
		t.Fatal("events is nil, want empty slice")
	}
	if len(events) != 0 {
		t.Fatalf("len(events) = %d, want 0", len(events))
	}
}

func TestCalendarToolValidation(t *testing.T) {
	state := NewAssistantStateAt(time.Now())
	tool := CalendarTool(state)

	res := tool.Handler(context.Background(), map[string]any{})
	if res["error"] != "Provide a date in YYYY-MM-DD format." {
		t.Fatalf("missing date error = %v", res["error"])
	}

	res = tool.Handler(context.Background(), map[string]any{"date": "not-a-date"})
	msg, _ := res["error"].(string)
	if !strings.HasPrefix(msg, "Invalid date:") {
		t.Fatalf("error = %q, want Invalid date prefix", msg)
	}
	if _, ok := res["events"]; ok {
		t.Error("failed lookup must not carry an events key")
	}
}

func TestReminderToolStoresAndCounts(t *testing.T) {
	state := NewAssistantStateAt(time.Now())
	tool := ReminderTool(state)

	for i := 1; i <= 3; i++ {
		res := tool.Handler(context.Background(), map[string]any{
			"summary":  fmt.Sprintf("reminder %d", i),
			"due_time": "2024-03-01T09:00:00",
		})
		if res["error"] != nil {
			t.Fatalf("unexpected error on append %d: %v", i, res["error"])
		}
		if res["status"] != "stored" {
			t.Fatalf("status = %v", res["status"])
		}
		if res["total"] != i {
			t.Fatalf("total = %v after %d appends", res["total"], i)
		}
	}

	stored := state.Reminders()
	if len(stored) != 3 {
		t.Fatalf("len(reminders) = %d, want 3", len(stored))
	}
	if stored[0].DueTime != "2024-03-01T09:00:00" {
		t.Errorf("due_time = %q, want the zone-less input echoed back", stored[0].DueTime)
	}
}

func TestReminderToolValidation(t *testing.T) {
	state := NewAssistantStateAt(time.Now())
	tool := ReminderTool(state)

	cases := []struct {
		name string
		args map[string]any
		want string
	}{
		{"empty summary", map[string]any{"summary": " ", "due_time": "2024-03-01T09:00:00"}, "Reminder summary cannot be empty."},
		{"missing due_time", map[string]any{"summary": "call mom"}, "Provide a due_time in ISO-8601 format."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := tool.Handler(context.Background(), tc.args)
			if res["error"] != tc.want {
				t.Fatalf("error = %v, want %q", res["error"], tc.want)
			}
		})
	}

	res := tool.Handler(context.Background(), map[string]any{"summary": "x", "due_time": "whenever"})
	msg, _ := res["error"].(string)
	if !strings.HasPrefix(msg, "Invalid due_time:") {
		t.Fatalf("error = %q, want Invalid due_time prefix", msg)
	}
	if len(state.Reminders()) != 0 {
		t.Error("failed validation must not store a reminder")
	}
}

func TestSearchToolSuccessAndFailure(t *testing.T) {
	ok := SearchTool(stubSearch{summary: TopicSummary{
		Title:   "Go (programming language)",
		Summary: "Go is a statically typed language.",
		URL:     "https://en.wikipedia.org/wiki/Go_(programming_language)",
		Source:  "wikipedia",
	}})
	res := ok.Handler(context.Background(), map[string]any{"topic": "golang"})
	if res["error"] != nil {
		t.Fatalf("unexpected error: %v", res["error"])
	}
	if res["title"] != "Go (programming language)" {
		t.Errorf("title = %v", res["title"])
	}

	failing := SearchTool(stubSearch{err: errors.New("404")})
	res = failing.Handler(context.Background(), map[string]any{"topic": "golang"})
	msg, _ := res["error"].(string)
	if !strings.HasPrefix(msg, "Wikipedia lookup failed:") {
		t.Fatalf("error = %q", msg)
	}

	res = failing.Handler(context.Background(), map[string]any{"topic": "  "})
	if res["error"] != "Topic cannot be empty." {
		t.Fatalf("empty topic error = %v", res["error"])
	}
}

func TestEmailToolAssemblesDraft(t *testing.T) {
	tool := EmailTool()
	res := tool.Handler(context.Background(), map[string]any{
		"recipient": "Dana",
		"subject":   "Project Kickoff",
		"outline":   "- scope\n• timeline\n\n  budget ",
	})
	if res["subject"] != "Project Kickoff" {
		t.Fatalf("subject = %v", res["subject"])
	}
	body, _ := res["body"].(string)
	for _, want := range []string{
		"Hi Dana,",
		"I'm reaching out about project kickoff.",
		"Here are the key points:",
		"- scope",
		"- timeline",
		"- budget",
		"Best,\nYour Assistant",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q\nbody:\n%s", want, body)
		}
	}
}

func TestEmailToolDefaults(t *testing.T) {
	tool := EmailTool()
	res := tool.Handler(context.Background(), map[string]any{})
	if res["subject"] != "Quick update" {
		t.Fatalf("subject = %v, want default", res["subject"])
	}
	body, _ := res["body"].(string)
	if !strings.Contains(body, "Hi there,") {
		t.Errorf("body missing default greeting:\n%s", body)
	}
	if strings.Contains(body, "Here are the key points:") {
		t.Errorf("empty outline must omit the bullet section:\n%s", body)
	}
}

func TestParseTimestampNormalization(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-01T09:00:00", "2024-03-01T09:00:00"},
		{"2024-03-01 09:00", "2024-03-01T09:00:00"},
		{"2024-03-01", "2024-03-01T00:00:00"},
		{"2024-03-01T09:00:00Z", "2024-03-01T09:00:00Z"},
	}
	for _, tc := range cases {
		got, err := parseTimestamp(tc.in)
		if err != nil {
			t.Fatalf("parseTimestamp(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("parseTimestamp(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseDateAcceptsCommonLayouts(t *testing.T) {
	for _, in := range []string{"2024-05-10", "2024/05/10", "05/10/2024", "May 10, 2024"} {
		got, err := parseDate(in)
		if err != nil {
			t.Fatalf("parseDate(%q): %v", in, err)
		}
		if got != "2024-05-10" {
			t.Errorf("parseDate(%q) = %q, want 2024-05-10", in, got)
		}
	}
	if _, err := parseDate("tomorrow"); err == nil {
		t.Error("parseDate(tomorrow) should fail")
	}
}
