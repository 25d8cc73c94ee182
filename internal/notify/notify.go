// Package notify provides host-side implementations of domain.Notifier.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/logger"
)

// Log writes every notice to the structured logger.
type Log struct {
	SessionID string
}

func (l Log) Notify(ctx context.Context, n domain.Notice) {
	level := slog.LevelInfo
	if n.Kind == domain.NoticeError {
		level = slog.LevelWarn
	}
	logger.Log.Log(ctx, level, "wizard notice",
		"session_id", l.SessionID,
		"kind", n.Kind,
		"title", n.Title,
		"message", n.Message,
	)
}

// Collector buffers notices so a request handler can return them as toasts.
type Collector struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Notify(_ context.Context, n domain.Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

// Drain returns the buffered notices and empties the buffer.
func (c *Collector) Drain() []domain.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

// Multi fans a notice out to every notifier. Nil entries are skipped.
type Multi []domain.Notifier

func (m Multi) Notify(ctx context.Context, n domain.Notice) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}

type collectorKey struct{}

// WithCollector attaches a per-request collector to ctx.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, collectorKey{}, c)
}

// CollectorFrom returns the request's collector, if any.
func CollectorFrom(ctx context.Context) *Collector {
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}

// Request forwards a notice to the collector carried by the calling
// request's context. Wizards live across requests, so the collector is
// looked up per call rather than captured.
type Request struct{}

func (Request) Notify(ctx context.Context, n domain.Notice) {
	if c := CollectorFrom(ctx); c != nil {
		c.Notify(ctx, n)
	}
}
