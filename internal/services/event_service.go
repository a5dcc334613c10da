package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gatherly/api/internal/helpers"
	"github.com/gatherly/api/internal/models"
	"github.com/gatherly/api/internal/search"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// EventService orchestrates event lifecycle operations: validation, vector
// computation, and delegation to the catalog repository.
type EventService struct {
	events   models.EventsRepo
	embedder search.Embedder
	cld      *cloudinary.Cloudinary
}

func NewEventService(events models.EventsRepo, embedder search.Embedder, cld *cloudinary.Cloudinary) *EventService {
	return &EventService{
		events:   events,
		embedder: embedder,
		cld:      cld,
	}
}

func (es *EventService) CreateEvent(ctx context.Context, creatorID string, req models.CreateEventRequest) (*models.Event, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, validationFields(err)
	}

	now := time.Now().UTC()
	event := &models.Event{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(req.Title),
		Category:     req.Category,
		City:         req.City,
		Location:     req.Location,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Description:  req.Description,
		Capacity:     req.Capacity,
		Attendance:   0,
		Participants: []string{},
		CreatorID:    creatorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := validateInvariants(event); err != nil {
		return nil, err
	}
	if !event.StartTime.After(now) {
		return nil, models.NewValidationError("start_time", "must be in the future")
	}

	// The vector depends only on title and description, so it is computed
	// before the write path is entered.
	if err := es.computeVector(ctx, event); err != nil {
		return nil, err
	}

	if req.EventImage != "" && es.cld != nil {
		url, publicID, err := helpers.UploadImage(ctx, es.cld, req.EventImage, helpers.EventsFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload event image: %w", err)
		}
		event.EventImage = url
		event.ImageID = publicID
	}

	if err := es.events.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	event.Status = event.StatusAt(time.Now())
	return event, nil
}

// UpdateEvent merges the request into the stored event and re-validates the
// full invariant set, not just the changed fields. partial distinguishes PATCH
// from PUT: a PUT must carry every required field.
func (es *EventService) UpdateEvent(ctx context.Context, id, actorID string, req models.UpdateEventRequest, partial bool) (*models.Event, error) {
	event, err := es.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != actorID {
		return nil, models.ErrForbidden
	}

	if !partial {
		if err := requireFullPayload(req); err != nil {
			return nil, err
		}
	}

	contentChanged := false
	if req.Title != nil && *req.Title != event.Title {
		event.Title = strings.TrimSpace(*req.Title)
		contentChanged = true
	}
	if req.Description != nil && *req.Description != event.Description {
		event.Description = *req.Description
		contentChanged = true
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.City != nil {
		event.City = *req.City
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if req.Capacity != nil {
		event.Capacity = *req.Capacity
	}

	if err := validateInvariants(event); err != nil {
		return nil, err
	}

	if contentChanged {
		if err := es.computeVector(ctx, event); err != nil {
			return nil, err
		}
	}

	if req.EventImage != nil && *req.EventImage != "" && es.cld != nil {
		url, publicID, err := helpers.UploadImage(ctx, es.cld, *req.EventImage, helpers.EventsFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload event image: %w", err)
		}
		// Replacing the image orphans the old asset; removal is best effort.
		_ = helpers.DeleteImage(ctx, es.cld, event.ImageID)
		event.EventImage = url
		event.ImageID = publicID
	}

	event.UpdatedAt = time.Now().UTC()
	if err := es.events.ReplaceEvent(ctx, event); err != nil {
		return nil, err
	}

	event.Status = event.StatusAt(time.Now())
	return event, nil
}

func (es *EventService) DeleteEvent(ctx context.Context, id, actorID string) error {
	event, err := es.events.GetEventByID(ctx, id)
	if err != nil {
		return err
	}
	if event.CreatorID != actorID {
		return models.ErrForbidden
	}
	if err := es.events.DeleteEvent(ctx, id); err != nil {
		return err
	}
	_ = helpers.DeleteImage(ctx, es.cld, event.ImageID)
	return nil
}

func (es *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := es.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Status = event.StatusAt(time.Now())
	return event, nil
}

// JoinEvent and LeaveEvent delegate straight to the repository: the capacity
// and membership preconditions are enforced there, at the single point where
// the participant set can change.
func (es *EventService) JoinEvent(ctx context.Context, id, userID string) error {
	return es.events.JoinEvent(ctx, id, userID)
}

func (es *EventService) LeaveEvent(ctx context.Context, id, userID string) error {
	return es.events.LeaveEvent(ctx, id, userID)
}

func (es *EventService) SetCancelled(ctx context.Context, id, actorID string, cancelled bool) error {
	event, err := es.events.GetEventByID(ctx, id)
	if err != nil {
		return err
	}
	if event.CreatorID != actorID {
		return models.ErrForbidden
	}
	return es.events.SetCancelled(ctx, id, cancelled)
}

func (es *EventService) ListCreatedBy(ctx context.Context, creatorID string) ([]*models.Event, error) {
	events, err := es.events.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	return fillStatuses(events, time.Now()), nil
}

func (es *EventService) ListJoinedBy(ctx context.Context, userID string) ([]*models.Event, error) {
	events, err := es.events.ListJoined(ctx, userID)
	if err != nil {
		return nil, err
	}
	return fillStatuses(events, time.Now()), nil
}

func (es *EventService) RandomEvents(ctx context.Context, n int) ([]*models.Event, error) {
	events, err := es.events.RandomEvents(ctx, n)
	if err != nil {
		return nil, err
	}
	return fillStatuses(events, time.Now()), nil
}

// computeVector fills the event's embedding from title + description, or
// clears it when the combined text is blank. An embedding failure aborts the
// save rather than persisting a stale vector.
func (es *EventService) computeVector(ctx context.Context, event *models.Event) error {
	text := event.SearchText()
	if text == "" {
		event.Vector = nil
		return nil
	}
	vector, err := es.embedder.Embed(ctx, text)
	if err != nil {
		return &models.ValidationError{Fields: map[string]string{
			"vector": fmt.Sprintf("failed to compute content vector: %v", err),
		}}
	}
	event.Vector = vector
	return nil
}

func validateInvariants(event *models.Event) error {
	fields := map[string]string{}
	if strings.TrimSpace(event.Title) == "" {
		fields["title"] = "must not be blank"
	} else if len(event.Title) > 200 {
		fields["title"] = "must be at most 200 characters"
	}
	if len(event.Category) > 100 {
		fields["category"] = "must be at most 100 characters"
	}
	if len(event.City) > 100 {
		fields["city"] = "must be at most 100 characters"
	}
	if len(event.Location) > 255 {
		fields["location"] = "must be at most 255 characters"
	}
	if event.Capacity <= 0 {
		fields["capacity"] = "must be a positive integer"
	}
	if !event.EndTime.After(event.StartTime) {
		fields["end_time"] = "must be after start_time"
	}
	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}

func requireFullPayload(req models.UpdateEventRequest) error {
	fields := map[string]string{}
	if req.Title == nil {
		fields["title"] = "this field is required"
	}
	if req.Category == nil {
		fields["category"] = "this field is required"
	}
	if req.City == nil {
		fields["city"] = "this field is required"
	}
	if req.Location == nil {
		fields["location"] = "this field is required"
	}
	if req.StartTime == nil {
		fields["start_time"] = "this field is required"
	}
	if req.EndTime == nil {
		fields["end_time"] = "this field is required"
	}
	if req.Capacity == nil {
		fields["capacity"] = "this field is required"
	}
	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}

func validationFields(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return models.NewValidationError("body", err.Error())
	}
	fields := map[string]string{}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[strings.ToLower(fe.Field())] = "this field is required"
		case "max":
			fields[strings.ToLower(fe.Field())] = fmt.Sprintf("must be at most %s characters", fe.Param())
		default:
			fields[strings.ToLower(fe.Field())] = fmt.Sprintf("failed %s validation", fe.Tag())
		}
	}
	return &models.ValidationError{Fields: fields}
}

func fillStatuses(events []*models.Event, now time.Time) []*models.Event {
	for _, e := range events {
		e.Status = e.StatusAt(now)
	}
	return events
}
