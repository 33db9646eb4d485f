package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/davicafu/eventreg/internal/registration/domain"
)

const collectionName = "registration_activity"

// ActivityLog implementa domain.ActivityLog sobre MongoDB.
type ActivityLog struct {
	coll *mongo.Collection
}

func NewActivityLog(ctx context.Context, client *mongo.Client, dbName string) (*ActivityLog, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}
	return &ActivityLog{coll: client.Database(dbName).Collection(collectionName)}, nil
}

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.

type mongoActivity struct {
	Kind       string    `bson:"kind"`
	EventID    string    `bson:"eventId"`
	UserID     string    `bson:"userId"`
	OccurredAt time.Time `bson:"occurredAt"`
}

type mongoDailyActivity struct {
	Day           time.Time `bson:"_id"`
	Registrations int       `bson:"registrations"`
	Cancellations int       `bson:"cancellations"`
}

func (r *ActivityLog) Record(ctx context.Context, activities []domain.Activity) error {
	if len(activities) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(activities))
	for _, a := range activities {
		docs = append(docs, mongoActivity{
			Kind:       string(a.Kind),
			EventID:    a.EventID.String(),
			UserID:     a.UserID.String(),
			OccurredAt: a.OccurredAt.UTC(),
		})
	}

	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to insert activities: %w", err)
	}
	return nil
}

func (r *ActivityLog) DailyTrend(ctx context.Context, from, to time.Time) ([]domain.DailyActivity, error) {
	countKind := func(kind domain.ActivityKind) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$kind", string(kind)}}, 1, 0}}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"occurredAt": bson.M{"$gte": from.UTC(), "$lt": to.UTC()}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           bson.M{"$dateTrunc": bson.M{"date": "$occurredAt", "unit": "day", "timezone": "UTC"}},
			"registrations": countKind(domain.ActivityRegistered),
			"cancellations": countKind(domain.ActivityCancelled),
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activity trend: %w", err)
	}
	defer cursor.Close(ctx)

	trend := []domain.DailyActivity{}
	for cursor.Next(ctx) {
		var row mongoDailyActivity
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		trend = append(trend, domain.DailyActivity{
			Day:           row.Day.UTC(),
			Registrations: row.Registrations,
			Cancellations: row.Cancellations,
		})
	}
	return trend, cursor.Err()
}

// EnsureIndexes crea el índice por fecha que usa la agregación.
func (r *ActivityLog) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "occurredAt", Value: 1}},
	})
	return err
}

var _ domain.ActivityLog = (*ActivityLog)(nil)
