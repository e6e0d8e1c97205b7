// Package api implements the REST facade over the generic MongoDB
// data-access surface: a fixed set of nine actions (findOne, find,
// insertOne, insertMany, updateOne, updateMany, deleteOne, deleteMany,
// aggregate) exposed as POST /action/{actionName}.
//
// Each request carries a JSON envelope with routing fields (dataSource,
// database, collection) plus operation-specific payload fields. The router
// validates only the envelope's presence invariants; filters, update
// expressions, and pipelines are opaque and forwarded to the database
// unchanged. Handlers return a tagged Result (success payload or
// OperationError), which the router maps to HTTP 200 or 400; anything that
// escapes a handler becomes a generic 500.
//
// Requests and responses speak MongoDB extended JSON, so opaque documents
// keep their key order and driver-native types round-trip faithfully.
package api
