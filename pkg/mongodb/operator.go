package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// FindQuery carries the optional parameters of a Find call. Nil or zero
// fields are omitted from the driver call.
type FindQuery struct {
	Filter     bson.D
	Projection bson.D
	Sort       bson.D
	Skip       *int64
	Limit      *int64
}

// UpdateResult reports the outcome of an UpdateOne or UpdateMany call.
// UpsertedID is empty unless the call upserted a new document.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedID    string
}

// FindOne returns the first document matching filter, or nil if none match.
func (m *Manager) FindOne(ctx context.Context, database, collection string, filter, projection bson.D) (bson.D, error) {
	coll, err := m.collection(database, collection)
	if err != nil {
		return nil, err
	}

	opts := options.FindOne()
	if projection != nil {
		opts = opts.SetProjection(projection)
	}

	var doc bson.D
	err = coll.FindOne(ctx, orEmpty(normalizeFilter(filter)), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Find returns all documents matching the query, honoring projection, sort,
// skip, and limit when set.
func (m *Manager) Find(ctx context.Context, database, collection string, q FindQuery) ([]bson.D, error) {
	coll, err := m.collection(database, collection)
	if err != nil {
		return nil, err
	}

	opts := options.Find()
	if q.Projection != nil {
		opts = opts.SetProjection(q.Projection)
	}
	if q.Sort != nil {
		opts = opts.SetSort(q.Sort)
	}
	if q.Skip != nil {
		opts = opts.SetSkip(*q.Skip)
	}
	if q.Limit != nil {
		opts = opts.SetLimit(*q.Limit)
	}

	cursor, err := coll.Find(ctx, orEmpty(normalizeFilter(q.Filter)), opts)
	if err != nil {
		return nil, err
	}

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// InsertOne inserts a single document and returns the inserted identifier
// in its string form.
func (m *Manager) InsertOne(ctx context.Context, database, collection string, document bson.D) (string, error) {
	coll, err := m.collection(database, collection)
	if err != nil {
		return "", err
	}

	res, err := coll.InsertOne(ctx, document)
	if err != nil {
		return "", err
	}
	return idString(res.InsertedID), nil
}

// InsertMany inserts documents in order and returns their identifiers in
// string form, in input order.
func (m *Manager) InsertMany(ctx context.Context, database, collection string, documents []bson.D) ([]string, error) {
	coll, err := m.collection(database, collection)
	if err != nil {
		return nil, err
	}

	docs := make([]any, len(documents))
	for i, d := range documents {
		docs[i] = d
	}

	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(res.InsertedIDs))
	for i, id := range res.InsertedIDs {
		ids[i] = idString(id)
	}
	return ids, nil
}

// UpdateOne applies update to the first document matching filter.
func (m *Manager) UpdateOne(ctx context.Context, database, collection string, filter, update bson.D, upsert bool) (UpdateResult, error) {
	coll, err := m.collection(database, collection)
	if err != nil {
		return UpdateResult{}, err
	}

	res, err := coll.UpdateOne(ctx, orEmpty(normalizeFilter(filter)), update, options.UpdateOne().SetUpsert(upsert))
	if err != nil {
		return UpdateResult{}, err
	}
	return updateResult(res), nil
}

// UpdateMany applies update to every document matching filter.
func (m *Manager) UpdateMany(ctx context.Context, database, collection string, filter, update bson.D, upsert bool) (UpdateResult, error) {
	coll, err := m.collection(database, collection)
	if err != nil {
		return UpdateResult{}, err
	}

	res, err := coll.UpdateMany(ctx, orEmpty(normalizeFilter(filter)), update, options.UpdateMany().SetUpsert(upsert))
	if err != nil {
		return UpdateResult{}, err
	}
	return updateResult(res), nil
}

// DeleteOne removes the first document matching filter and returns the
// number of documents deleted (0 or 1).
func (m *Manager) DeleteOne(ctx context.Context, database, collection string, filter bson.D) (int64, error) {
	coll, err := m.collection(database, collection)
	if err != nil {
		return 0, err
	}

	res, err := coll.DeleteOne(ctx, orEmpty(normalizeFilter(filter)))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteMany removes every document matching filter.
func (m *Manager) DeleteMany(ctx context.Context, database, collection string, filter bson.D) (int64, error) {
	coll, err := m.collection(database, collection)
	if err != nil {
		return 0, err
	}

	res, err := coll.DeleteMany(ctx, orEmpty(normalizeFilter(filter)))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Aggregate executes the pipeline as given, without stage validation, and
// returns the resulting documents.
func (m *Manager) Aggregate(ctx context.Context, database, collection string, pipeline []bson.D) ([]bson.D, error) {
	coll, err := m.collection(database, collection)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func updateResult(res *mongo.UpdateResult) UpdateResult {
	out := UpdateResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}
	if res.UpsertedCount > 0 {
		out.UpsertedID = idString(res.UpsertedID)
	}
	return out
}

// orEmpty substitutes an empty filter for nil so "match any document"
// requests reach the driver as {}.
func orEmpty(filter bson.D) bson.D {
	if filter == nil {
		return bson.D{}
	}
	return filter
}
