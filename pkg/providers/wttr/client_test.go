package wttr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const payload = `{
  "current_condition": [{
    "weatherDesc": [{"value": "Partly cloudy"}],
    "temp_C": "22",
    "temp_F": "71",
    "FeelsLikeC": "21",
    "FeelsLikeF": "69",
    "humidity": "55"
  }],
  "nearest_area": [{"areaName": [{"value": "Lisbon"}]}]
}`

func TestCurrent(t *testing.T) {
	var path, query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		query = r.URL.RawQuery
		w.Write([]byte(payload))
	}))
	defer server.Close()

	client := NewClient()
	client.BaseURL = server.URL

	report, err := client.Current(context.Background(), "Lisbon, Portugal")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if path != "/Lisbon, Portugal" {
		t.Errorf("path = %q, want the location as one segment", path)
	}
	if query != "format=j1" {
		t.Errorf("query = %q", query)
	}
	if report.Location != "Lisbon" {
		t.Errorf("location = %q, want resolved area name", report.Location)
	}
	if report.Summary != "Partly cloudy" {
		t.Errorf("summary = %q", report.Summary)
	}
	if report.TempC != 22 || report.TempF != 71 {
		t.Errorf("temps = %v / %v", report.TempC, report.TempF)
	}
	if report.HumidityPct != "55%" {
		t.Errorf("humidity = %q", report.HumidityPct)
	}
	if report.Source != "wttr.in" {
		t.Errorf("source = %q", report.Source)
	}
}

func TestCurrentBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient()
	client.BaseURL = server.URL
	if _, err := client.Current(context.Background(), "Lisbon"); err == nil {
		t.Fatal("expected an error for a 503")
	}
}

func TestCurrentMissingCondition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current_condition": []}`))
	}))
	defer server.Close()

	client := NewClient()
	client.BaseURL = server.URL
	if _, err := client.Current(context.Background(), "Lisbon"); err == nil {
		t.Fatal("expected an error for an empty condition list")
	}
}
