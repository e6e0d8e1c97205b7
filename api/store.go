package api

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongorest/mongorest/pkg/mongodb"
)

// Store is the data-access surface the handlers dispatch against. It is the
// exact operation set of mongodb.Manager, abstracted so the routing and
// translation layer can be exercised without a live cluster.
type Store interface {
	Connect(ctx context.Context) error
	Connected() bool

	FindOne(ctx context.Context, database, collection string, filter, projection bson.D) (bson.D, error)
	Find(ctx context.Context, database, collection string, q mongodb.FindQuery) ([]bson.D, error)
	InsertOne(ctx context.Context, database, collection string, document bson.D) (string, error)
	InsertMany(ctx context.Context, database, collection string, documents []bson.D) ([]string, error)
	UpdateOne(ctx context.Context, database, collection string, filter, update bson.D, upsert bool) (mongodb.UpdateResult, error)
	UpdateMany(ctx context.Context, database, collection string, filter, update bson.D, upsert bool) (mongodb.UpdateResult, error)
	DeleteOne(ctx context.Context, database, collection string, filter bson.D) (int64, error)
	DeleteMany(ctx context.Context, database, collection string, filter bson.D) (int64, error)
	Aggregate(ctx context.Context, database, collection string, pipeline []bson.D) ([]bson.D, error)
}

var _ Store = (*mongodb.Manager)(nil)
