package api

import (
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Envelope is the top-level request object of every /action call: routing
// fields plus the union of all operation-specific payload fields. Filter,
// projection, sort, update, and pipeline contents are opaque to this layer
// and forwarded to the database verbatim.
type Envelope struct {
	DataSource string `bson:"dataSource"`
	Database   string `bson:"database"`
	Collection string `bson:"collection"`

	Filter     bson.D   `bson:"filter"`
	Projection bson.D   `bson:"projection"`
	Sort       bson.D   `bson:"sort"`
	Skip       *int64   `bson:"skip"`
	Limit      *int64   `bson:"limit"`
	Document   bson.D   `bson:"document"`
	Documents  []bson.D `bson:"documents"`
	Update     bson.D   `bson:"update"`
	Upsert     bool     `bson:"upsert"`
	Pipeline   []bson.D `bson:"pipeline"`
}

// ErrInvalidBody is returned when the request body is not a JSON document.
var ErrInvalidBody = errors.New("request body is not a valid JSON document")

// DecodeEnvelope reads the request body as a MongoDB extended JSON document.
// Extended JSON keeps opaque sub-documents key-ordered and lets clients
// express driver-native types such as {"$oid": ...}; plain JSON parses the
// same way. Unknown fields are ignored.
func DecodeEnvelope(r io.Reader) (*Envelope, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrInvalidBody, err)
	}

	var env Envelope
	if err := bson.UnmarshalExtJSON(data, false, &env); err != nil {
		return nil, errors.Join(ErrInvalidBody, err)
	}
	return &env, nil
}

// validate checks the mandatory routing fields. dataSource is required for
// compatibility with the retired hosted API but is not otherwise used to
// select a cluster.
func (e *Envelope) validate() bool {
	return e.DataSource != "" && e.Database != "" && e.Collection != ""
}
