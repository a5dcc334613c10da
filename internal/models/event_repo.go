package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const EventsColName = "events"

// caseInsensitive gives exact-match equality regardless of letter case, used
// for city and category filters.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

func (mdb *MongodbRepo) eventsCollection() (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(EventsColName), nil
}

// EnsureEventIndexes bootstraps the indexes the query paths rely on.
func (mdb *MongodbRepo) EnsureEventIndexes(ctx context.Context) error {
	col, err := mdb.eventsCollection()
	if err != nil {
		return err
	}
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "city", Value: 1}, {Key: "start_time", Value: 1}},
			Options: options.Index().SetCollation(caseInsensitive)},
		{Keys: bson.D{{Key: "creator_id", Value: 1}}},
		{Keys: bson.D{{Key: "participants", Value: 1}}},
	}
	_, err = col.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create event indexes: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) error {
	col, err := mdb.eventsCollection()
	if err != nil {
		return err
	}
	_, err = col.InsertOne(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id string) (*Event, error) {
	col, err := mdb.eventsCollection()
	if err != nil {
		return nil, err
	}
	var event Event
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) ReplaceEvent(ctx context.Context, event *Event) error {
	col, err := mdb.eventsCollection()
	if err != nil {
		return err
	}
	res, err := col.ReplaceOne(ctx, bson.M{"_id": event.ID}, event)
	if err != nil {
		return fmt.Errorf("failed to replace event: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mdb *MongodbRepo) DeleteEvent(ctx context.Context, id string) error {
	col, err := mdb.eventsCollection()
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// JoinEvent adds the user to the participant set and re-derives attendance in
// one document update. The precondition (free capacity, not already joined) is
// part of the update filter, so the check and the write cannot interleave with
// a concurrent join against the same event.
func (mdb *MongodbRepo) JoinEvent(ctx context.Context, id, userID string) error {
	col, err := mdb.eventsCollection()
	if err != nil {
		return err
	}

	filter := bson.M{
		"_id":          id,
		"participants": bson.M{"$ne": userID},
		"$expr":        bson.M{"$lt": bson.A{"$attendance", "$capacity"}},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"participants": bson.M{"$setUnion": bson.A{"$participants", bson.A{userID}}},
		}}},
		{{Key: "$set", Value: bson.M{
			"attendance": bson.M{"$size": "$participants"},
			"updated_at": "$$NOW",
		}}},
	}

	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to join event: %w", err)
	}
	if res.MatchedCount == 0 {
		// Distinguish why the precondition failed.
		event, getErr := mdb.GetEventByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		if event.HasParticipant(userID) {
			return ErrAlreadyJoined
		}
		return ErrEventFull
	}
	return nil
}

// LeaveEvent mirrors JoinEvent: membership removal and attendance re-derivation
// happen in the same atomic update.
func (mdb *MongodbRepo) LeaveEvent(ctx context.Context, id, userID string) error {
	col, err := mdb.eventsCollection()
	if err != nil {
		return err
	}

	filter := bson.M{"_id": id, "participants": userID}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"participants": bson.M{"$setDifference": bson.A{"$participants", bson.A{userID}}},
		}}},
		{{Key: "$set", Value: bson.M{
			"attendance": bson.M{"$size": "$participants"},
			"updated_at": "$$NOW",
		}}},
	}

	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to leave event: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, getErr := mdb.GetEventByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrNotJoined
	}
	return nil
}

func (mdb *MongodbRepo) SetCancelled(ctx context.Context, id string, cancelled bool) error {
	col, err := mdb.eventsCollection()
	if err != nil {
		return err
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"cancelled": cancelled, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to update cancelled flag: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// QueryEvents runs a filtered catalog query ordered ascending by start_time.
func (mdb *MongodbRepo) QueryEvents(ctx context.Context, q EventQuery) ([]*Event, error) {
	col, err := mdb.eventsCollection()
	if err != nil {
		return nil, err
	}

	var clauses []bson.M
	for _, city := range q.Cities {
		clauses = append(clauses, bson.M{"city": city})
	}
	for _, category := range q.Categories {
		clauses = append(clauses, bson.M{"category": category})
	}
	for _, status := range q.Statuses {
		switch status {
		case StatusActive:
			clauses = append(clauses, bson.M{"$expr": bson.M{"$lt": bson.A{"$attendance", "$capacity"}}})
		case StatusFull:
			clauses = append(clauses, bson.M{"$expr": bson.M{"$gte": bson.A{"$attendance", "$capacity"}}})
		default:
			return nil, fmt.Errorf("unsupported status filter: %s", status)
		}
	}
	if !q.TimeFloor.IsZero() {
		clauses = append(clauses, bson.M{"start_time": bson.M{"$gte": q.TimeFloor}})
	}

	filter := bson.M{}
	if len(clauses) > 0 {
		filter = bson.M{"$and": clauses}
	}

	opts := options.Find().
		SetCollation(caseInsensitive).
		SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeEvents(ctx, cursor)
}

func (mdb *MongodbRepo) ListByCreator(ctx context.Context, creatorID string) ([]*Event, error) {
	return mdb.findEvents(ctx, bson.M{"creator_id": creatorID})
}

func (mdb *MongodbRepo) ListJoined(ctx context.Context, userID string) ([]*Event, error) {
	return mdb.findEvents(ctx, bson.M{"participants": userID})
}

// RandomEvents returns up to n events sampled from the whole catalog.
func (mdb *MongodbRepo) RandomEvents(ctx context.Context, n int) ([]*Event, error) {
	col, err := mdb.eventsCollection()
	if err != nil {
		return nil, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.M{"size": n}}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to sample events: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeEvents(ctx, cursor)
}

func (mdb *MongodbRepo) findEvents(ctx context.Context, filter bson.M) ([]*Event, error) {
	col, err := mdb.eventsCollection()
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeEvents(ctx, cursor)
}

func decodeEvents(ctx context.Context, cursor *mongo.Cursor) ([]*Event, error) {
	events := []*Event{}
	for cursor.Next(ctx) {
		var event Event
		if err := cursor.Decode(&event); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, &event)
	}
	return events, cursor.Err()
}
