package api

// Router-level error codes. Operation-level codes live in the operation
// table next to their handlers.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeMissingAction  = "MISSING_ACTION"
	CodeInvalidAction  = "INVALID_ACTION"
	CodeURIMissing     = "MONGODB_URI_MISSING"
	CodeInternal       = "INTERNAL_ERROR"
)
