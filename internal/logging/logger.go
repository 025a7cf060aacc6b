package logging

import (
	"log/slog"
	"os"

	"gorm.io/gorm"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// EnableStoreMirror swaps the global logger for one that also batches
// ERROR+ records into the system_logs table. Call Stop on the returned
// handler at shutdown to flush the last batch.
func EnableStoreMirror(db *gorm.DB) *StoreHandler {
	inner := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	h := NewStoreHandler(inner, db)
	slog.SetDefault(slog.New(h))
	return h
}
