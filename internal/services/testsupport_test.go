package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/gatherly/api/internal/models"
)

// fakeEventsRepo is an in-memory models.EventsRepo. Join and Leave hold one
// lock across check and mutation, mirroring the single-document atomicity of
// the real store.
type fakeEventsRepo struct {
	mu     sync.Mutex
	events map[string]*models.Event
}

func newFakeEventsRepo() *fakeEventsRepo {
	return &fakeEventsRepo{events: map[string]*models.Event{}}
}

func (f *fakeEventsRepo) seed(events ...*models.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range events {
		if e.Participants == nil {
			e.Participants = []string{}
		}
		e.Attendance = len(e.Participants)
		f.events[e.ID] = e
	}
}

func (f *fakeEventsRepo) CreateEvent(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventsRepo) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return event, nil
}

func (f *fakeEventsRepo) ReplaceEvent(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[event.ID]; !ok {
		return models.ErrNotFound
	}
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventsRepo) DeleteEvent(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventsRepo) JoinEvent(ctx context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return models.ErrNotFound
	}
	if event.HasParticipant(userID) {
		return models.ErrAlreadyJoined
	}
	if event.Attendance >= event.Capacity {
		return models.ErrEventFull
	}
	event.Participants = append(event.Participants, userID)
	event.Attendance = len(event.Participants)
	return nil
}

func (f *fakeEventsRepo) LeaveEvent(ctx context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return models.ErrNotFound
	}
	if !event.HasParticipant(userID) {
		return models.ErrNotJoined
	}
	kept := event.Participants[:0]
	for _, p := range event.Participants {
		if p != userID {
			kept = append(kept, p)
		}
	}
	event.Participants = kept
	event.Attendance = len(event.Participants)
	return nil
}

func (f *fakeEventsRepo) SetCancelled(ctx context.Context, id string, cancelled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return models.ErrNotFound
	}
	event.Cancelled = cancelled
	return nil
}

func (f *fakeEventsRepo) QueryEvents(ctx context.Context, q models.EventQuery) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := []*models.Event{}
	for _, event := range f.events {
		if !matchesQuery(event, q) {
			continue
		}
		matched = append(matched, event)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].StartTime.Before(matched[j].StartTime)
	})
	return matched, nil
}

func matchesQuery(event *models.Event, q models.EventQuery) bool {
	for _, city := range q.Cities {
		if !strings.EqualFold(event.City, city) {
			return false
		}
	}
	for _, category := range q.Categories {
		if !strings.EqualFold(event.Category, category) {
			return false
		}
	}
	for _, status := range q.Statuses {
		switch status {
		case models.StatusActive:
			if event.Attendance >= event.Capacity {
				return false
			}
		case models.StatusFull:
			if event.Attendance < event.Capacity {
				return false
			}
		}
	}
	if !q.TimeFloor.IsZero() && event.StartTime.Before(q.TimeFloor) {
		return false
	}
	return true
}

func (f *fakeEventsRepo) ListByCreator(ctx context.Context, creatorID string) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Event{}
	for _, e := range f.events {
		if e.CreatorID == creatorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventsRepo) ListJoined(ctx context.Context, userID string) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Event{}
	for _, e := range f.events {
		if e.HasParticipant(userID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventsRepo) RandomEvents(ctx context.Context, n int) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Event{}
	for _, e := range f.events {
		if len(out) == n {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

// stubEmbedder is a deterministic 384-dimension bag-of-words embedder: each
// distinct token gets its own dimension, so token overlap maps directly to
// cosine similarity.
type stubEmbedder struct {
	mu    sync.Mutex
	vocab map[string]int
	calls int
}

func newStubEmbedder() *stubEmbedder {
	return &stubEmbedder{vocab: map[string]int{}}
}

func (s *stubEmbedder) Dim() int { return 384 }

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	vec := make([]float64, 384)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		idx, ok := s.vocab[token]
		if !ok {
			idx = len(s.vocab) % 384
			s.vocab[token] = idx
		}
		vec[idx]++
	}
	return vec, nil
}
