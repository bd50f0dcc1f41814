package vellum

import "go.uber.org/zap"

// logField is a thin indirection over zap.Any so call sites in files that
// don't want to import zap directly (entitymanager.go) can still build
// structured fields.
func logField(key string, value any) zap.Field {
	return zap.Any(key, value)
}

// logger returns the World's structured logger, defaulting to a no-op
// logger if none was configured (SPEC_FULL.md §10.1).
func (w *World) logger() *zap.Logger {
	if w.log == nil {
		return zap.NewNop()
	}
	return w.log
}
