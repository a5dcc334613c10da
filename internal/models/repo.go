package models

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

var Validate = validator.New()

// EventQuery describes a catalog query. Repeated values for the same field are
// AND-combined, matching the filter endpoint contract. A zero TimeFloor means
// no lower bound on start_time.
type EventQuery struct {
	Cities     []string
	Categories []string
	Statuses   []EventStatus
	TimeFloor  time.Time
}

// EventsRepo is the persistence boundary for the event catalog. Join and Leave
// are the only operations that can grow or shrink the participant set; their
// implementations must evaluate the precondition and the mutation as one
// indivisible unit per event.
type EventsRepo interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, id string) (*Event, error)
	ReplaceEvent(ctx context.Context, event *Event) error
	DeleteEvent(ctx context.Context, id string) error
	JoinEvent(ctx context.Context, id, userID string) error
	LeaveEvent(ctx context.Context, id, userID string) error
	SetCancelled(ctx context.Context, id string, cancelled bool) error
	QueryEvents(ctx context.Context, q EventQuery) ([]*Event, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*Event, error)
	ListJoined(ctx context.Context, userID string) ([]*Event, error)
	RandomEvents(ctx context.Context, n int) ([]*Event, error)
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}
