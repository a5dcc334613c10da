package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatherly/api/internal/models"
	"github.com/gatherly/api/internal/search"
)

// PageSize is the fixed page size for search and filter results.
const PageSize = 20

// ErrMissingCity is returned when the required city parameter is absent.
var ErrMissingCity = errors.New("missing 'city' parameter")

// InvalidParameterError reports malformed search/filter input; handlers
// surface it as a client error.
type InvalidParameterError struct {
	Msg string
}

func (e *InvalidParameterError) Error() string {
	return e.Msg
}

// FilterPair is one key/name pair from the filter endpoint.
type FilterPair struct {
	Key  string
	Name string
}

// SearchService runs the two search modes over the catalog's city-filtered,
// future-dated subset: plain browse ordered by start time, and semantic
// ranking when a query is present.
type SearchService struct {
	events   models.EventsRepo
	embedder search.Embedder
}

func NewSearchService(events models.EventsRepo, embedder search.Embedder) *SearchService {
	return &SearchService{
		events:   events,
		embedder: embedder,
	}
}

func (ss *SearchService) Search(ctx context.Context, city, query string, page *int) ([]*models.Event, error) {
	if strings.TrimSpace(city) == "" {
		return nil, ErrMissingCity
	}

	now := time.Now().UTC()
	events, err := ss.events.QueryEvents(ctx, models.EventQuery{
		Cities:    []string{city},
		TimeFloor: now,
	})
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(query) == "" {
		// Keyword-less browse: catalog order (start_time ascending).
		return fillStatuses(Paginate(events, page), now), nil
	}

	queryVec, err := ss.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed search query: %w", err)
	}

	// Events without a stored vector cannot be ranked and are excluded.
	candidates := make([]*models.Event, 0, len(events))
	corpus := make([][]float64, 0, len(events))
	for _, e := range events {
		if len(e.Vector) > 0 {
			candidates = append(candidates, e)
			corpus = append(corpus, e.Vector)
		}
	}

	scores, err := search.Rank(queryVec, corpus)
	if err != nil {
		if errors.Is(err, search.ErrEmptyCorpus) {
			return []*models.Event{}, nil
		}
		return nil, err
	}

	ranked := make([]*models.Event, len(scores))
	for i, sc := range scores {
		ranked[i] = candidates[sc.Index]
	}
	return fillStatuses(Paginate(ranked, page), now), nil
}

// Filter applies AND-combined key/name pairs over future events. Allowed keys
// are city, category, and status (active|full).
func (ss *SearchService) Filter(ctx context.Context, pairs []FilterPair, page *int) ([]*models.Event, error) {
	if len(pairs) == 0 {
		return nil, &InvalidParameterError{Msg: "at least one pair of (key, name) is required"}
	}

	now := time.Now().UTC()
	q := models.EventQuery{TimeFloor: now}
	for _, p := range pairs {
		switch strings.ToLower(p.Key) {
		case "city":
			q.Cities = append(q.Cities, p.Name)
		case "category":
			q.Categories = append(q.Categories, p.Name)
		case "status":
			switch strings.ToLower(p.Name) {
			case "active":
				q.Statuses = append(q.Statuses, models.StatusActive)
			case "full":
				q.Statuses = append(q.Statuses, models.StatusFull)
			default:
				return nil, &InvalidParameterError{
					Msg: fmt.Sprintf("unsupported status value: %s. Allowed: active, full.", p.Name),
				}
			}
		default:
			return nil, &InvalidParameterError{
				Msg: fmt.Sprintf("unsupported key: %s. Allowed keys: city, category, status.", p.Key),
			}
		}
	}

	events, err := ss.events.QueryEvents(ctx, q)
	if err != nil {
		return nil, err
	}
	return fillStatuses(Paginate(events, page), now), nil
}

// Paginate slices [page*PageSize, (page+1)*PageSize). A nil page returns the
// whole set; an out-of-range page returns an empty slice, not an error.
func Paginate(events []*models.Event, page *int) []*models.Event {
	if page == nil {
		return events
	}
	if *page < 0 {
		return []*models.Event{}
	}
	start := *page * PageSize
	if start >= len(events) {
		return []*models.Event{}
	}
	end := start + PageSize
	if end > len(events) {
		end = len(events)
	}
	return events[start:end]
}
