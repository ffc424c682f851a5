package repositories

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ArchivedActivity is an append-only audit record of an accepted inbound
// activity document
type ArchivedActivity struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActivityID string             `bson:"activity_id" json:"activity_id"`
	Type       string             `bson:"type" json:"type"`
	Actor      string             `bson:"actor" json:"actor"`
	Document   bson.M             `bson:"document" json:"document"`
	ReceivedAt time.Time          `bson:"received_at" json:"received_at"`
}

// ActivityArchive defines the interface for the raw inbound activity log
type ActivityArchive interface {
	ArchiveActivity(ctx context.Context, activityID, activityType, actor string, raw []byte) error
	GetRecent(ctx context.Context, limit int64) ([]ArchivedActivity, error)
}

// MongoActivityArchive implements ActivityArchive for MongoDB
type MongoActivityArchive struct {
	collection *mongo.Collection
}

// NewMongoActivityArchive creates a new MongoActivityArchive
func NewMongoActivityArchive(db *mongo.Database) *MongoActivityArchive {
	return &MongoActivityArchive{collection: db.Collection("inbound_activities")}
}

// ArchiveActivity appends the raw document to the audit collection
func (r *MongoActivityArchive) ArchiveActivity(ctx context.Context, activityID, activityType, actor string, raw []byte) error {
	var document bson.M
	if err := json.Unmarshal(raw, &document); err != nil {
		return err
	}
	record := ArchivedActivity{
		ID:         primitive.NewObjectID(),
		ActivityID: activityID,
		Type:       activityType,
		Actor:      actor,
		Document:   document,
		ReceivedAt: time.Now(),
	}
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

// GetRecent retrieves the most recently received activities
func (r *MongoActivityArchive) GetRecent(ctx context.Context, limit int64) ([]ArchivedActivity, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "received_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var activities []ArchivedActivity
	if err = cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}
