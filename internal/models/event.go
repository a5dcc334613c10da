package models

import (
	"strings"
	"time"
)

type EventStatus string

const (
	StatusActive EventStatus = "active"
	StatusFull   EventStatus = "full"
	StatusExpire EventStatus = "expire"
)

// Event is the central entity of the platform. The embedding vector is
// persisted alongside the record but never serialized to clients.
type Event struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Category    string    `bson:"category" json:"category"`
	City        string    `bson:"city" json:"city"`
	Location    string    `bson:"location" json:"location"`
	StartTime   time.Time `bson:"start_time" json:"start_time"`
	EndTime     time.Time `bson:"end_time" json:"end_time"`
	Description string    `bson:"description" json:"description"`
	Capacity    int       `bson:"capacity" json:"capacity"`

	// attendance is derived: always the size of participants, updated in the
	// same database operation that mutates the set. Nothing writes it directly.
	Attendance   int      `bson:"attendance" json:"attendance"`
	Participants []string `bson:"participants" json:"participants"`

	Vector []float64 `bson:"vector,omitempty" json:"-"`

	Cancelled  bool   `bson:"cancelled" json:"cancelled"`
	CreatorID  string `bson:"creator_id" json:"creator"`
	EventImage string `bson:"event_image,omitempty" json:"event_image,omitempty"`

	// ImageID is the media store's handle for event_image, needed to delete
	// the asset when the image is replaced or the event is removed.
	ImageID string `bson:"image_id,omitempty" json:"-"`

	// Populated on reads, not stored.
	Status EventStatus `bson:"-" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// StatusAt computes the event status as a pure function of the clock:
//  1. attendance < capacity and now < end_time => active
//  2. attendance >= capacity and now < end_time => full
//  3. now >= end_time => expire
func (e *Event) StatusAt(now time.Time) EventStatus {
	if now.Before(e.EndTime) {
		if e.Attendance < e.Capacity {
			return StatusActive
		}
		return StatusFull
	}
	return StatusExpire
}

// HasParticipant reports whether the user is currently joined.
func (e *Event) HasParticipant(userID string) bool {
	for _, p := range e.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// SearchText is the content the embedding vector is computed from.
func (e *Event) SearchText() string {
	return strings.TrimSpace(e.Title + " " + e.Description)
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Category    string    `json:"category" validate:"required,max=100"`
	City        string    `json:"city" validate:"required,max=100"`
	Location    string    `json:"location" validate:"required,max=255"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	Capacity    int       `json:"capacity" validate:"required"`
	Description string    `json:"description"`
	EventImage  string    `json:"event_image"`
}

// UpdateEventRequest is the payload for PUT/PATCH. Pointer fields distinguish
// "absent" from zero values so PATCH can merge only what was sent.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Category    *string    `json:"category"`
	City        *string    `json:"city"`
	Location    *string    `json:"location"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Capacity    *int       `json:"capacity"`
	Description *string    `json:"description"`
	EventImage  *string    `json:"event_image"`
}

// ImproveDescriptionRequest is the payload for the description assistant.
type ImproveDescriptionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
