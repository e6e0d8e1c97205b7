package mongodb

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// idString converts an identifier-typed value to its canonical string form:
// ObjectIDs to their 24-character hex representation, everything else to
// its default string rendering.
func idString(id any) string {
	switch v := id.(type) {
	case bson.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// normalizeFilter coerces a top-level _id given as a 24-character hex
// string into a bson.ObjectID, so a filter built from a previously returned
// insertedId matches the stored identifier. Clients that need an exact
// string match can use extended JSON to bypass the coercion. Nested and
// operator-valued _id expressions are passed through untouched.
func normalizeFilter(filter bson.D) bson.D {
	for i, e := range filter {
		if e.Key != "_id" {
			continue
		}
		if s, ok := e.Value.(string); ok {
			if oid, err := bson.ObjectIDFromHex(s); err == nil {
				filter[i].Value = oid
			}
		}
	}
	return filter
}
