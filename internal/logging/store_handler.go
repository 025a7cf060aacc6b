package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newmedev/mealreview-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StoreHandler wraps another slog.Handler and mirrors ERROR+ records into
// Postgres in async batches, so swallowed failures (upstream fetch errors,
// auth sync errors) keep a queryable trace. Handlers derived via WithAttrs
// or WithGroup share one batcher.
type StoreHandler struct {
	inner   slog.Handler
	batcher *logBatcher
}

type logBatcher struct {
	db     *gorm.DB
	mu     sync.Mutex
	buffer []models.SystemLog
	ticker *time.Ticker
	done   chan struct{}
	fallbk slog.Handler
}

func NewStoreHandler(inner slog.Handler, db *gorm.DB) *StoreHandler {
	b := &logBatcher{
		db:     db,
		buffer: make([]models.SystemLog, 0, 50),
		ticker: time.NewTicker(5 * time.Second),
		done:   make(chan struct{}),
		fallbk: inner,
	}
	go b.flushLoop()
	return &StoreHandler{inner: inner, batcher: b}
}

func (b *logBatcher) flushLoop() {
	for {
		select {
		case <-b.ticker.C:
			b.flush()
		case <-b.done:
			b.flush()
			return
		}
	}
}

func (b *logBatcher) flush() {
	b.mu.Lock()
	if len(b.buffer) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.buffer
	b.buffer = make([]models.SystemLog, 0, 50)
	b.mu.Unlock()

	if err := b.db.CreateInBatches(batch, 50).Error; err != nil {
		// Write to the fallback handler directly; going through slog again
		// would re-enter the store mirror.
		rec := slog.NewRecord(time.Now(), slog.LevelWarn, "failed to flush system logs", 0)
		rec.AddAttrs(slog.String("error", err.Error()), slog.Int("count", len(batch)))
		_ = b.fallbk.Handle(context.Background(), rec)
	}
}

func (b *logBatcher) add(entry models.SystemLog) {
	b.mu.Lock()
	b.buffer = append(b.buffer, entry)
	needFlush := len(b.buffer) >= 50
	b.mu.Unlock()

	if needFlush {
		go b.flush()
	}
}

// Stop flushes the remaining batch and ends the flush loop.
func (h *StoreHandler) Stop() {
	h.batcher.ticker.Stop()
	close(h.batcher.done)
}

func (h *StoreHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level) || level >= slog.LevelError
}

func (h *StoreHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.inner.Enabled(ctx, record.Level) {
		if err := h.inner.Handle(ctx, record); err != nil {
			return err
		}
	}
	if record.Level < slog.LevelError {
		return nil
	}

	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "trace_id":
			entry.TraceID = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		default:
			extra[a.Key] = a.Value.Any()
		}
		return true
	})

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	h.batcher.add(entry)
	return nil
}

func (h *StoreHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &StoreHandler{inner: h.inner.WithAttrs(attrs), batcher: h.batcher}
}

func (h *StoreHandler) WithGroup(name string) slog.Handler {
	return &StoreHandler{inner: h.inner.WithGroup(name), batcher: h.batcher}
}
