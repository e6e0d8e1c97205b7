package api

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongorest/mongorest/pkg/mongodb"
)

// handlerFunc translates one validated envelope into one database call and
// one structured result.
type handlerFunc func(ctx context.Context, store Store, env *Envelope) Result

// operations is the fixed dispatch table: action name in the URL path to
// handler. Anything not listed here is an INVALID_ACTION.
var operations = map[string]handlerFunc{
	"findOne":    findOne,
	"find":       find,
	"insertOne":  insertOne,
	"insertMany": insertMany,
	"updateOne":  updateOne,
	"updateMany": updateMany,
	"deleteOne":  deleteOne,
	"deleteMany": deleteMany,
	"aggregate":  aggregate,
}

var (
	errMissingDocument  = errors.New("document is required")
	errMissingDocuments = errors.New("documents is required")
	errMissingFilter    = errors.New("filter is required")
	errMissingUpdate    = errors.New("update is required")
	errMissingPipeline  = errors.New("pipeline is required")
)

func findOne(ctx context.Context, store Store, env *Envelope) Result {
	doc, err := store.FindOne(ctx, env.Database, env.Collection, env.Filter, env.Projection)
	if err != nil {
		return failure("FIND_ONE_ERROR", "find document", err)
	}
	return success(bson.M{"document": doc})
}

func find(ctx context.Context, store Store, env *Envelope) Result {
	docs, err := store.Find(ctx, env.Database, env.Collection, mongodb.FindQuery{
		Filter:     env.Filter,
		Projection: env.Projection,
		Sort:       env.Sort,
		Skip:       env.Skip,
		Limit:      env.Limit,
	})
	if err != nil {
		return failure("FIND_ERROR", "find documents", err)
	}
	if docs == nil {
		docs = []bson.D{}
	}
	return success(bson.M{"documents": docs})
}

func insertOne(ctx context.Context, store Store, env *Envelope) Result {
	if env.Document == nil {
		return failure("INSERT_ONE_ERROR", "insert document", errMissingDocument)
	}
	id, err := store.InsertOne(ctx, env.Database, env.Collection, env.Document)
	if err != nil {
		return failure("INSERT_ONE_ERROR", "insert document", err)
	}
	return success(bson.M{"insertedId": id})
}

func insertMany(ctx context.Context, store Store, env *Envelope) Result {
	if env.Documents == nil {
		return failure("INSERT_MANY_ERROR", "insert documents", errMissingDocuments)
	}
	ids, err := store.InsertMany(ctx, env.Database, env.Collection, env.Documents)
	if err != nil {
		return failure("INSERT_MANY_ERROR", "insert documents", err)
	}
	return success(bson.M{"insertedIds": ids})
}

func updateOne(ctx context.Context, store Store, env *Envelope) Result {
	if env.Filter == nil {
		return failure("UPDATE_ONE_ERROR", "update document", errMissingFilter)
	}
	if env.Update == nil {
		return failure("UPDATE_ONE_ERROR", "update document", errMissingUpdate)
	}
	res, err := store.UpdateOne(ctx, env.Database, env.Collection, env.Filter, env.Update, env.Upsert)
	if err != nil {
		return failure("UPDATE_ONE_ERROR", "update document", err)
	}
	return success(updatePayload(res))
}

func updateMany(ctx context.Context, store Store, env *Envelope) Result {
	if env.Filter == nil {
		return failure("UPDATE_MANY_ERROR", "update documents", errMissingFilter)
	}
	if env.Update == nil {
		return failure("UPDATE_MANY_ERROR", "update documents", errMissingUpdate)
	}
	res, err := store.UpdateMany(ctx, env.Database, env.Collection, env.Filter, env.Update, env.Upsert)
	if err != nil {
		return failure("UPDATE_MANY_ERROR", "update documents", err)
	}
	return success(updatePayload(res))
}

func deleteOne(ctx context.Context, store Store, env *Envelope) Result {
	if env.Filter == nil {
		return failure("DELETE_ONE_ERROR", "delete document", errMissingFilter)
	}
	count, err := store.DeleteOne(ctx, env.Database, env.Collection, env.Filter)
	if err != nil {
		return failure("DELETE_ONE_ERROR", "delete document", err)
	}
	return success(bson.M{"deletedCount": count})
}

func deleteMany(ctx context.Context, store Store, env *Envelope) Result {
	if env.Filter == nil {
		return failure("DELETE_MANY_ERROR", "delete documents", errMissingFilter)
	}
	count, err := store.DeleteMany(ctx, env.Database, env.Collection, env.Filter)
	if err != nil {
		return failure("DELETE_MANY_ERROR", "delete documents", err)
	}
	return success(bson.M{"deletedCount": count})
}

func aggregate(ctx context.Context, store Store, env *Envelope) Result {
	if env.Pipeline == nil {
		return failure("AGGREGATE_ERROR", "aggregate documents", errMissingPipeline)
	}
	docs, err := store.Aggregate(ctx, env.Database, env.Collection, env.Pipeline)
	if err != nil {
		return failure("AGGREGATE_ERROR", "aggregate documents", err)
	}
	if docs == nil {
		docs = []bson.D{}
	}
	return success(bson.M{"documents": docs})
}

// updatePayload shapes an update result; upsertedId appears only when an
// upsert actually occurred.
func updatePayload(res mongodb.UpdateResult) bson.M {
	payload := bson.M{
		"matchedCount":  res.MatchedCount,
		"modifiedCount": res.ModifiedCount,
	}
	if res.UpsertedID != "" {
		payload["upsertedId"] = res.UpsertedID
	}
	return payload
}
