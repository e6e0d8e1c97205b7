package api

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// OperationError is the failure variant of a handler result: a stable
// per-operation code and a human-readable message.
type OperationError struct {
	Code    string
	Message string
}

// Result is what every operation handler returns: either a success payload
// or an operation error, never both.
type Result struct {
	Payload bson.M
	Err     *OperationError
}

func success(payload bson.M) Result {
	return Result{Payload: payload}
}

func failure(code, verb string, err error) Result {
	return Result{Err: &OperationError{
		Code:    code,
		Message: fmt.Sprintf("Failed to %s: %v", verb, err),
	}}
}
