package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongorest/mongorest/api"
	"github.com/mongorest/mongorest/pkg/mongodb"
)

// fakeStore implements api.Store with programmable behavior per operation.
// The zero value acts as a connected store whose operations succeed with
// empty results.
type fakeStore struct {
	connected  bool
	connectErr error

	findOneFn    func(database, collection string, filter, projection bson.D) (bson.D, error)
	findFn       func(database, collection string, q mongodb.FindQuery) ([]bson.D, error)
	insertOneFn  func(database, collection string, document bson.D) (string, error)
	insertManyFn func(database, collection string, documents []bson.D) ([]string, error)
	updateFn     func(database, collection string, filter, update bson.D, upsert bool) (mongodb.UpdateResult, error)
	deleteFn     func(database, collection string, filter bson.D) (int64, error)
	aggregateFn  func(database, collection string, pipeline []bson.D) ([]bson.D, error)
}

func (f *fakeStore) Connect(context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeStore) Connected() bool { return f.connected }

func (f *fakeStore) FindOne(_ context.Context, database, collection string, filter, projection bson.D) (bson.D, error) {
	if f.findOneFn == nil {
		return nil, nil
	}
	return f.findOneFn(database, collection, filter, projection)
}

func (f *fakeStore) Find(_ context.Context, database, collection string, q mongodb.FindQuery) ([]bson.D, error) {
	if f.findFn == nil {
		return nil, nil
	}
	return f.findFn(database, collection, q)
}

func (f *fakeStore) InsertOne(_ context.Context, database, collection string, document bson.D) (string, error) {
	if f.insertOneFn == nil {
		return "", nil
	}
	return f.insertOneFn(database, collection, document)
}

func (f *fakeStore) InsertMany(_ context.Context, database, collection string, documents []bson.D) ([]string, error) {
	if f.insertManyFn == nil {
		return nil, nil
	}
	return f.insertManyFn(database, collection, documents)
}

func (f *fakeStore) UpdateOne(_ context.Context, database, collection string, filter, update bson.D, upsert bool) (mongodb.UpdateResult, error) {
	if f.updateFn == nil {
		return mongodb.UpdateResult{}, nil
	}
	return f.updateFn(database, collection, filter, update, upsert)
}

func (f *fakeStore) UpdateMany(_ context.Context, database, collection string, filter, update bson.D, upsert bool) (mongodb.UpdateResult, error) {
	if f.updateFn == nil {
		return mongodb.UpdateResult{}, nil
	}
	return f.updateFn(database, collection, filter, update, upsert)
}

func (f *fakeStore) DeleteOne(_ context.Context, database, collection string, filter bson.D) (int64, error) {
	if f.deleteFn == nil {
		return 0, nil
	}
	return f.deleteFn(database, collection, filter)
}

func (f *fakeStore) DeleteMany(_ context.Context, database, collection string, filter bson.D) (int64, error) {
	if f.deleteFn == nil {
		return 0, nil
	}
	return f.deleteFn(database, collection, filter)
}

func (f *fakeStore) Aggregate(_ context.Context, database, collection string, pipeline []bson.D) ([]bson.D, error) {
	if f.aggregateFn == nil {
		return nil, nil
	}
	return f.aggregateFn(database, collection, pipeline)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postAction(t *testing.T, router http.Handler, action string, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	path := "/action"
	if action != "" {
		path += "/" + action
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), "response body: %s", rec.Body.String())
	return rec, payload
}

func newRouter(store api.Store) http.Handler {
	return api.NewRouter(store, testLogger())
}

const validEnvelope = `{"dataSource":"main","database":"app","collection":"users"}`

func TestActionEnvelopeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "missing dataSource", body: `{"database":"app","collection":"users"}`},
		{name: "missing database", body: `{"dataSource":"main","collection":"users"}`},
		{name: "missing collection", body: `{"dataSource":"main","database":"app"}`},
		{name: "empty fields", body: `{"dataSource":"","database":"","collection":""}`},
		{name: "empty body object", body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newRouter(&fakeStore{connected: true})
			rec, payload := postAction(t, router, "findOne", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_REQUEST", payload["error_code"])
		})
	}
}

func TestActionMalformedBody(t *testing.T) {
	t.Parallel()

	router := newRouter(&fakeStore{connected: true})
	rec, payload := postAction(t, router, "findOne", `{"dataSource":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", payload["error_code"])
}

func TestActionUnknownName(t *testing.T) {
	t.Parallel()

	router := newRouter(&fakeStore{connected: true})
	rec, payload := postAction(t, router, "doSomething", validEnvelope)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ACTION", payload["error_code"])
}

func TestActionMissingName(t *testing.T) {
	t.Parallel()

	router := newRouter(&fakeStore{connected: true})
	rec, payload := postAction(t, router, "", validEnvelope)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_ACTION", payload["error_code"])
}

func TestActionMissingURI(t *testing.T) {
	t.Parallel()

	store := &fakeStore{connectErr: mongodb.ErrMissingURI}
	router := newRouter(store)
	rec, payload := postAction(t, router, "findOne", validEnvelope)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "MONGODB_URI_MISSING", payload["error_code"])
}

func TestActionConnectFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{connectErr: mongodb.ErrFailedToConnect}
	router := newRouter(store)
	rec, payload := postAction(t, router, "findOne", validEnvelope)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", payload["error_code"])
	assert.Equal(t, "Internal server error", payload["error"])
}

func TestActionConnectsLazily(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	router := newRouter(store)
	rec, _ := postAction(t, router, "findOne", validEnvelope)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.Connected())
}

func TestFindOne(t *testing.T) {
	t.Parallel()

	t.Run("returns matching document", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{
			connected: true,
			findOneFn: func(database, collection string, filter, projection bson.D) (bson.D, error) {
				assert.Equal(t, "app", database)
				assert.Equal(t, "users", collection)
				return bson.D{{Key: "name", Value: "A"}}, nil
			},
		}
		rec, payload := postAction(t, newRouter(store), "findOne", validEnvelope)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]any{"name": "A"}, payload["document"])
	})

	t.Run("returns null when nothing matches", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{connected: true}
		rec, payload := postAction(t, newRouter(store), "findOne", validEnvelope)

		assert.Equal(t, http.StatusOK, rec.Code)
		val, ok := payload["document"]
		require.True(t, ok, "document key must be present")
		assert.Nil(t, val)
	})

	t.Run("store failure becomes operation error", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{
			connected: true,
			findOneFn: func(string, string, bson.D, bson.D) (bson.D, error) {
				return nil, fmt.Errorf("filter shape rejected")
			},
		}
		rec, payload := postAction(t, newRouter(store), "findOne", validEnvelope)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "FIND_ONE_ERROR", payload["error_code"])
		assert.Equal(t, "Failed to find document: filter shape rejected", payload["error"])
	})
}

func TestFind(t *testing.T) {
	t.Parallel()

	t.Run("passes query options through", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{
			connected: true,
			findFn: func(database, collection string, q mongodb.FindQuery) ([]bson.D, error) {
				require.NotNil(t, q.Skip)
				require.NotNil(t, q.Limit)
				assert.Equal(t, int64(1), *q.Skip)
				assert.Equal(t, int64(2), *q.Limit)
				require.Len(t, q.Sort, 1)
				assert.Equal(t, "n", q.Sort[0].Key)
				return []bson.D{
					{{Key: "n", Value: 5}},
					{{Key: "n", Value: 4}},
				}, nil
			},
		}
		body := `{"dataSource":"main","database":"app","collection":"users","sort":{"n":-1},"skip":1,"limit":2}`
		rec, payload := postAction(t, newRouter(store), "find", body)

		assert.Equal(t, http.StatusOK, rec.Code)
		docs, ok := payload["documents"].([]any)
		require.True(t, ok)
		require.Len(t, docs, 2)
		assert.Equal(t, map[string]any{"n": float64(5)}, docs[0])
		assert.Equal(t, map[string]any{"n": float64(4)}, docs[1])
	})

	t.Run("no matches yields empty array", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{connected: true}
		rec, payload := postAction(t, newRouter(store), "find", validEnvelope)

		assert.Equal(t, http.StatusOK, rec.Code)
		docs, ok := payload["documents"].([]any)
		require.True(t, ok, "documents must be an array, got %T", payload["documents"])
		assert.Empty(t, docs)
	})
}

func TestInsertOne(t *testing.T) {
	t.Parallel()

	t.Run("returns inserted id", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{
			connected: true,
			insertOneFn: func(database, collection string, document bson.D) (string, error) {
				require.Len(t, document, 1)
				assert.Equal(t, "name", document[0].Key)
				return "64dbff7f8c1e4a0f2b3c4d5e", nil
			},
		}
		body := `{"dataSource":"main","database":"app","collection":"users","document":{"name":"A"}}`
		rec, payload := postAction(t, newRouter(store), "insertOne", body)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "64dbff7f8c1e4a0f2b3c4d5e", payload["insertedId"])
	})

	t.Run("missing document", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{connected: true}
		rec, payload := postAction(t, newRouter(store), "insertOne", validEnvelope)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INSERT_ONE_ERROR", payload["error_code"])
		assert.Equal(t, "Failed to insert document: document is required", payload["error"])
	})
}

func TestInsertMany(t *testing.T) {
	t.Parallel()

	t.Run("returns ids in input order", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{
			connected: true,
			insertManyFn: func(database, collection string, documents []bson.D) ([]string, error) {
				require.Len(t, documents, 2)
				return []string{"id-1", "id-2"}, nil
			},
		}
		body := `{"dataSource":"main","database":"app","collection":"users","documents":[{"n":1},{"n":2}]}`
		rec, payload := postAction(t, newRouter(store), "insertMany", body)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []any{"id-1", "id-2"}, payload["insertedIds"])
	})

	t.Run("missing documents", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{connected: true}
		rec, payload := postAction(t, newRouter(store), "insertMany", validEnvelope)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INSERT_MANY_ERROR", payload["error_code"])
	})
}

func TestUpdateOne(t *testing.T) {
	t.Parallel()

	const body = `{"dataSource":"main","database":"app","collection":"users","filter":{"n":1},"update":{"$set":{"n":2}}}`

	t.Run("reports counts without upsertedId", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{
			connected: true,
			updateFn: func(database, collection string, filter, update bson.D, upsert bool) (mongodb.UpdateResult, error) {
				assert.False(t, upsert)
				return mongodb.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
			},
		}
		rec, payload := postAction(t, newRouter(store), "updateOne", body)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), payload["matchedCount"])
		assert.Equal(t, float64(1), payload["modifiedCount"])
		assert.NotContains(t, payload, "upsertedId")
	})

	t.Run("upsert reports upsertedId", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{
			connected: true,
			updateFn: func(database, collection string, filter, update bson.D, upsert bool) (mongodb.UpdateResult, error) {
				assert.True(t, upsert)
				return mongodb.UpdateResult{UpsertedID: "64dbff7f8c1e4a0f2b3c4d5e"}, nil
			},
		}
		upsertBody := `{"dataSource":"main","database":"app","collection":"users","filter":{"n":1},"update":{"$set":{"n":2}},"upsert":true}`
		rec, payload := postAction(t, newRouter(store), "updateOne", upsertBody)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(0), payload["matchedCount"])
		assert.Equal(t, float64(0), payload["modifiedCount"])
		assert.Equal(t, "64dbff7f8c1e4a0f2b3c4d5e", payload["upsertedId"])
	})

	t.Run("missing filter", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{connected: true}
		noFilter := `{"dataSource":"main","database":"app","collection":"users","update":{"$set":{"n":2}}}`
		rec, payload := postAction(t, newRouter(store), "updateOne", noFilter)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "UPDATE_ONE_ERROR", payload["error_code"])
	})

	t.Run("missing update", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{connected: true}
		noUpdate := `{"dataSource":"main","database":"app","collection":"users","filter":{"n":1}}`
		rec, payload := postAction(t, newRouter(store), "updateOne", noUpdate)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "UPDATE_ONE_ERROR", payload["error_code"])
	})
}

func TestUpdateMany(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		connected: true,
		updateFn: func(database, collection string, filter, update bson.D, upsert bool) (mongodb.UpdateResult, error) {
			return mongodb.UpdateResult{MatchedCount: 3, ModifiedCount: 3}, nil
		},
	}
	body := `{"dataSource":"main","database":"app","collection":"users","filter":{},"update":{"$set":{"n":2}}}`
	rec, payload := postAction(t, newRouter(store), "updateMany", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), payload["matchedCount"])
	assert.Equal(t, float64(3), payload["modifiedCount"])
}

func TestDelete(t *testing.T) {
	t.Parallel()

	t.Run("deleteOne reports count", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{
			connected: true,
			deleteFn: func(database, collection string, filter bson.D) (int64, error) {
				return 1, nil
			},
		}
		body := `{"dataSource":"main","database":"app","collection":"users","filter":{"n":1}}`
		rec, payload := postAction(t, newRouter(store), "deleteOne", body)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), payload["deletedCount"])
	})

	t.Run("deleteMany surfaces store failure", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{
			connected: true,
			deleteFn: func(database, collection string, filter bson.D) (int64, error) {
				return 0, fmt.Errorf("write conflict")
			},
		}
		body := `{"dataSource":"main","database":"app","collection":"users","filter":{}}`
		rec, payload := postAction(t, newRouter(store), "deleteMany", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "DELETE_MANY_ERROR", payload["error_code"])
		assert.Equal(t, "Failed to delete documents: write conflict", payload["error"])
	})

	t.Run("deleteOne missing filter", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{connected: true}
		rec, payload := postAction(t, newRouter(store), "deleteOne", validEnvelope)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "DELETE_ONE_ERROR", payload["error_code"])
	})
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	t.Run("runs pipeline as given", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{
			connected: true,
			aggregateFn: func(database, collection string, pipeline []bson.D) ([]bson.D, error) {
				require.Len(t, pipeline, 2)
				assert.Equal(t, "$match", pipeline[0][0].Key)
				assert.Equal(t, "$group", pipeline[1][0].Key)
				return []bson.D{{{Key: "_id", Value: "eng"}, {Key: "count", Value: 2}}}, nil
			},
		}
		body := `{"dataSource":"main","database":"app","collection":"users","pipeline":[{"$match":{"status":"active"}},{"$group":{"_id":"$dept","count":{"$sum":1}}}]}`
		rec, payload := postAction(t, newRouter(store), "aggregate", body)

		assert.Equal(t, http.StatusOK, rec.Code)
		docs, ok := payload["documents"].([]any)
		require.True(t, ok)
		require.Len(t, docs, 1)
		assert.Equal(t, map[string]any{"_id": "eng", "count": float64(2)}, docs[0])
	})

	t.Run("missing pipeline", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{connected: true}
		rec, payload := postAction(t, newRouter(store), "aggregate", validEnvelope)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "AGGREGATE_ERROR", payload["error_code"])
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("succeeds without a connection", func(t *testing.T) {
		t.Parallel()

		router := newRouter(&fakeStore{})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "healthy", payload["status"])
		assert.Equal(t, false, payload["mongoConnected"])
		assert.NotEmpty(t, payload["timestamp"])
	})

	t.Run("reports connection state", func(t *testing.T) {
		t.Parallel()

		router := newRouter(&fakeStore{connected: true})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, true, payload["mongoConnected"])
	})
}

func TestInfo(t *testing.T) {
	t.Parallel()

	router := newRouter(&fakeStore{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, api.ServiceName, payload["name"])
	assert.Equal(t, api.ServiceVersion, payload["version"])
	assert.NotEmpty(t, payload["endpoints"])
}

func TestPanicBecomesInternalError(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		connected: true,
		findOneFn: func(string, string, bson.D, bson.D) (bson.D, error) {
			panic("boom")
		},
	}
	rec, payload := postAction(t, newRouter(store), "findOne", validEnvelope)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", payload["error_code"])
	assert.Equal(t, "Internal server error", payload["error"])
}

var _ api.Store = (*fakeStore)(nil)
