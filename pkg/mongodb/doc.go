// Package mongodb manages a single pooled MongoDB client handle and exposes
// the generic data-access operations (find, insert, update, delete,
// aggregate) as thin pass-through calls against the official driver.
//
// The Manager is explicitly constructed and injected rather than held in a
// package-level singleton; it lazily connects on first use, caches one
// database handle per distinct database name, and is fully reset by Close
// so a later Connect recreates everything. Pool size and timeouts come from
// an environment-driven Config.
//
// Filters, update expressions, and pipeline stages are treated as opaque
// documents: this package forwards them to the driver verbatim, with one
// convenience exception documented on normalizeFilter (_id hex-string
// coercion).
package mongodb
