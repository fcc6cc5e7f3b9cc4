package tools

import (
	"sync"
	"time"
)

// Reminder is one stored reminder entry.
type Reminder struct {
	Summary string `json:"summary"`
	DueTime string `json:"due_time"`
}

// CalendarEvent is one seeded agenda entry.
type CalendarEvent struct {
	Title    string `json:"title"`
	Time     string `json:"time"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// AssistantState is the session-scoped store shared by the stateful
// tool handlers. Reminders only grow within a session; the calendar
// index is seeded once at construction and read-only afterwards.
// All access is serialized so handlers may run concurrently.
type AssistantState struct {
	mu        sync.Mutex
	reminders []Reminder
	calendar  map[string][]CalendarEvent
}

func NewAssistantState() *AssistantState {
	return NewAssistantStateAt(time.Now().UTC())
}

// NewAssistantStateAt seeds the calendar index relative to the given
// reference day. Split out so tests can pin the seed dates.
func NewAssistantStateAt(now time.Time) *AssistantState {
	today := now.Format("2006-01-02")
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")
	return &AssistantState{
		calendar: map[string][]CalendarEvent{
			today: {
				{
					Title:    "Stand-up with product team",
					Time:     "09:30",
					Location: "Zoom",
					Notes:    "Share progress on the onboarding flow prototype.",
				},
				{
					Title:    "Gym session",
					Time:     "17:45",
					Location: "Local fitness center",
					Notes:    "Strength day - focus on posterior chain.",
				},
			},
			tomorrow: {
				{
					Title:    "Client status update",
					Time:     "13:00",
					Location: "Teams",
					Notes:    "Review Q4 roadmap and confirm deliverables.",
				},
			},
		},
	}
}

// AddReminder appends a reminder and returns the total count after the
// append.
func (s *AssistantState) AddReminder(r Reminder) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders = append(s.reminders, r)
	return len(s.reminders)
}

// Reminders returns a copy of the stored reminders in insertion order.
func (s *AssistantState) Reminders() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Reminder, len(s.reminders))
	copy(out, s.reminders)
	return out
}

// Agenda returns the seeded events for an ISO date, never nil.
func (s *AssistantState) Agenda(date string) []CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.calendar[date]
	out := make([]CalendarEvent, len(events))
	copy(out, events)
	return out
}
