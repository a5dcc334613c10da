package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gatherly/api/internal/models"
)

func validCreateRequest() models.CreateEventRequest {
	return models.CreateEventRequest{
		Title:       "Jazz Night",
		Category:    "Music",
		City:        "Waterloo",
		Location:    "Riverside Hall",
		StartTime:   time.Now().Add(24 * time.Hour),
		EndTime:     time.Now().Add(27 * time.Hour),
		Capacity:    50,
		Description: "Live quartet with open jam session",
	}
}

func newTestEventService() (*EventService, *fakeEventsRepo, *stubEmbedder) {
	repo := newFakeEventsRepo()
	embedder := newStubEmbedder()
	return NewEventService(repo, embedder, nil), repo, embedder
}

func TestCreateEventRejectsInvalidFields(t *testing.T) {
	es, _, _ := newTestEventService()
	ctx := context.Background()

	longTitle := make([]byte, 201)
	for i := range longTitle {
		longTitle[i] = 'x'
	}

	cases := []struct {
		name   string
		mutate func(*models.CreateEventRequest)
		field  string
	}{
		{"zero capacity", func(r *models.CreateEventRequest) { r.Capacity = 0 }, "capacity"},
		{"negative capacity", func(r *models.CreateEventRequest) { r.Capacity = -3 }, "capacity"},
		{"end before start", func(r *models.CreateEventRequest) { r.EndTime = r.StartTime.Add(-time.Hour) }, "end_time"},
		{"start in the past", func(r *models.CreateEventRequest) {
			r.StartTime = time.Now().Add(-time.Hour)
			r.EndTime = time.Now().Add(time.Hour)
		}, "start_time"},
		{"title too long", func(r *models.CreateEventRequest) { r.Title = string(longTitle) }, "title"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(&req)

			_, err := es.CreateEvent(ctx, "creator", req)
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got %v, want ValidationError", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Errorf("expected field %q in %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestCreateEventComputesVector(t *testing.T) {
	es, _, _ := newTestEventService()

	event, err := es.CreateEvent(context.Background(), "creator", validCreateRequest())
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if len(event.Vector) != 384 {
		t.Errorf("vector length = %d, want 384", len(event.Vector))
	}
	if event.Attendance != 0 {
		t.Errorf("attendance = %d, want 0", event.Attendance)
	}
	if event.Status != models.StatusActive {
		t.Errorf("status = %q, want active", event.Status)
	}
}

func TestComputeVectorClearsForBlankContent(t *testing.T) {
	es, _, embedder := newTestEventService()

	event := &models.Event{Title: "   ", Description: "", Vector: []float64{1, 2, 3}}
	if err := es.computeVector(context.Background(), event); err != nil {
		t.Fatalf("computeVector: %v", err)
	}
	if event.Vector != nil {
		t.Errorf("vector = %v, want nil for blank content", event.Vector)
	}
	if embedder.calls != 0 {
		t.Errorf("embedder called %d times for blank content, want 0", embedder.calls)
	}
}

func TestUpdateEventPermission(t *testing.T) {
	es, repo, _ := newTestEventService()
	repo.seed(&models.Event{
		ID:        "e1",
		Title:     "Jazz Night",
		CreatorID: "creator",
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(2 * time.Hour),
		Capacity:  10,
	})

	title := "Hijacked"
	_, err := es.UpdateEvent(context.Background(), "e1", "intruder", models.UpdateEventRequest{Title: &title}, true)
	if !errors.Is(err, models.ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
}

func TestUpdateEventRecomputesVectorOnContentChange(t *testing.T) {
	es, _, embedder := newTestEventService()
	ctx := context.Background()

	event, err := es.CreateEvent(ctx, "creator", validCreateRequest())
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	callsAfterCreate := embedder.calls

	newTitle := "Blues Night"
	if _, err := es.UpdateEvent(ctx, event.ID, "creator", models.UpdateEventRequest{Title: &newTitle}, true); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if embedder.calls != callsAfterCreate+1 {
		t.Errorf("embedder calls = %d, want %d (title change recomputes)", embedder.calls, callsAfterCreate+1)
	}

	capacity := 99
	if _, err := es.UpdateEvent(ctx, event.ID, "creator", models.UpdateEventRequest{Capacity: &capacity}, true); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if embedder.calls != callsAfterCreate+1 {
		t.Errorf("embedder calls = %d, capacity-only change must not recompute", embedder.calls)
	}
}

func TestUpdateEventRevalidatesMergedState(t *testing.T) {
	es, repo, _ := newTestEventService()
	repo.seed(&models.Event{
		ID:        "e1",
		Title:     "Jazz Night",
		CreatorID: "creator",
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(2 * time.Hour),
		Capacity:  10,
	})

	// end_time moved before the unchanged start_time must fail even though
	// only end_time was sent.
	badEnd := time.Now().Add(30 * time.Minute)
	_, err := es.UpdateEvent(context.Background(), "e1", "creator", models.UpdateEventRequest{EndTime: &badEnd}, true)
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if _, ok := verr.Fields["end_time"]; !ok {
		t.Errorf("expected end_time in %v", verr.Fields)
	}
}

func TestPutRequiresFullPayload(t *testing.T) {
	es, repo, _ := newTestEventService()
	repo.seed(&models.Event{
		ID:        "e1",
		Title:     "Jazz Night",
		CreatorID: "creator",
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(2 * time.Hour),
		Capacity:  10,
	})

	title := "New Title"
	_, err := es.UpdateEvent(context.Background(), "e1", "creator", models.UpdateEventRequest{Title: &title}, false)
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError for incomplete PUT", err)
	}
}

func TestDeleteEventPermission(t *testing.T) {
	es, repo, _ := newTestEventService()
	repo.seed(&models.Event{ID: "e1", CreatorID: "creator", Capacity: 10, EndTime: time.Now().Add(time.Hour)})

	if err := es.DeleteEvent(context.Background(), "e1", "intruder"); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
	if err := es.DeleteEvent(context.Background(), "e1", "creator"); err != nil {
		t.Errorf("creator delete failed: %v", err)
	}
	if err := es.DeleteEvent(context.Background(), "e1", "creator"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestCancelPermission(t *testing.T) {
	es, repo, _ := newTestEventService()
	repo.seed(&models.Event{ID: "e1", CreatorID: "creator", Capacity: 10, EndTime: time.Now().Add(time.Hour)})

	if err := es.SetCancelled(context.Background(), "e1", "intruder", true); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
	if err := es.SetCancelled(context.Background(), "e1", "creator", true); err != nil {
		t.Errorf("creator cancel failed: %v", err)
	}

	event, err := es.GetEvent(context.Background(), "e1")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if !event.Cancelled {
		t.Error("event not marked cancelled")
	}
}

func TestJoinEnforcesCapacity(t *testing.T) {
	es, repo, _ := newTestEventService()
	repo.seed(&models.Event{
		ID:           "e1",
		CreatorID:    "creator",
		Capacity:     2,
		Participants: []string{"u1", "u2"},
		EndTime:      time.Now().Add(time.Hour),
	})

	err := es.JoinEvent(context.Background(), "e1", "u3")
	if !errors.Is(err, models.ErrEventFull) {
		t.Errorf("got %v, want ErrEventFull", err)
	}

	event, _ := repo.GetEventByID(context.Background(), "e1")
	if event.Attendance != 2 || len(event.Participants) != 2 {
		t.Errorf("attendance=%d participants=%d, want 2/2", event.Attendance, len(event.Participants))
	}
}

func TestJoinTwiceFails(t *testing.T) {
	es, repo, _ := newTestEventService()
	repo.seed(&models.Event{ID: "e1", CreatorID: "creator", Capacity: 5, EndTime: time.Now().Add(time.Hour)})

	if err := es.JoinEvent(context.Background(), "e1", "u1"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if err := es.JoinEvent(context.Background(), "e1", "u1"); !errors.Is(err, models.ErrAlreadyJoined) {
		t.Errorf("got %v, want ErrAlreadyJoined", err)
	}
}

func TestLeaveWithoutJoinFails(t *testing.T) {
	es, repo, _ := newTestEventService()
	repo.seed(&models.Event{ID: "e1", CreatorID: "creator", Capacity: 5, EndTime: time.Now().Add(time.Hour)})

	if err := es.LeaveEvent(context.Background(), "e1", "u1"); !errors.Is(err, models.ErrNotJoined) {
		t.Errorf("got %v, want ErrNotJoined", err)
	}
}

func TestJoinLeaveKeepsAttendanceDerived(t *testing.T) {
	es, repo, _ := newTestEventService()
	repo.seed(&models.Event{ID: "e1", CreatorID: "creator", Capacity: 5, EndTime: time.Now().Add(time.Hour)})
	ctx := context.Background()

	for _, u := range []string{"u1", "u2", "u3"} {
		if err := es.JoinEvent(ctx, "e1", u); err != nil {
			t.Fatalf("join %s: %v", u, err)
		}
	}
	if err := es.LeaveEvent(ctx, "e1", "u2"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	event, _ := repo.GetEventByID(ctx, "e1")
	if event.Attendance != len(event.Participants) {
		t.Errorf("attendance %d != participants %d", event.Attendance, len(event.Participants))
	}
	if event.Attendance != 2 {
		t.Errorf("attendance = %d, want 2", event.Attendance)
	}
}

func TestConcurrentJoinsNeverExceedCapacity(t *testing.T) {
	es, repo, _ := newTestEventService()
	const capacity = 5
	repo.seed(&models.Event{ID: "e1", CreatorID: "creator", Capacity: capacity, EndTime: time.Now().Add(time.Hour)})

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := string(rune('a' + n))
			results <- es.JoinEvent(context.Background(), "e1", userID)
		}(i)
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else if !errors.Is(err, models.ErrEventFull) {
			t.Errorf("unexpected join error: %v", err)
		}
	}
	if successes != capacity {
		t.Errorf("successful joins = %d, want %d", successes, capacity)
	}

	event, _ := repo.GetEventByID(context.Background(), "e1")
	if event.Attendance != capacity || len(event.Participants) != capacity {
		t.Errorf("attendance=%d participants=%d, want %d", event.Attendance, len(event.Participants), capacity)
	}
}

func TestJoinUnknownEvent(t *testing.T) {
	es, _, _ := newTestEventService()
	if err := es.JoinEvent(context.Background(), "missing", "u1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
