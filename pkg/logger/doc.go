// Package logger builds configured slog.Logger instances with sensible
// presets for development (text, debug) and production (JSON, info), plus a
// small set of attribute helpers for consistent log field naming.
package logger
