package models

import (
	"testing"
	"time"
)

func TestStatusAt(t *testing.T) {
	now := time.Now()
	future := now.Add(2 * time.Hour)
	past := now.Add(-2 * time.Hour)

	cases := []struct {
		name       string
		attendance int
		capacity   int
		endTime    time.Time
		want       EventStatus
	}{
		{"open seats before end", 3, 10, future, StatusActive},
		{"at capacity before end", 10, 10, future, StatusFull},
		{"over capacity before end", 11, 10, future, StatusFull},
		{"ended with open seats", 3, 10, past, StatusExpire},
		{"ended at capacity", 10, 10, past, StatusExpire},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := &Event{Attendance: tc.attendance, Capacity: tc.capacity, EndTime: tc.endTime}
			if got := e.StatusAt(now); got != tc.want {
				t.Errorf("StatusAt = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestHasParticipant(t *testing.T) {
	e := &Event{Participants: []string{"u1", "u2"}}
	if !e.HasParticipant("u1") {
		t.Error("expected u1 to be a participant")
	}
	if e.HasParticipant("u3") {
		t.Error("did not expect u3 to be a participant")
	}
}

func TestSearchText(t *testing.T) {
	e := &Event{Title: "Jazz Night", Description: "Live quartet"}
	if got := e.SearchText(); got != "Jazz Night Live quartet" {
		t.Errorf("SearchText = %q", got)
	}

	blank := &Event{Title: "  ", Description: ""}
	if got := blank.SearchText(); got != "" {
		t.Errorf("SearchText for blank content = %q, want empty", got)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"capacity": "must be a positive integer",
		"title":    "must not be blank",
	}}
	want := "capacity: must be a positive integer; title: must not be blank"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
