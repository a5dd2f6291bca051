package notify

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically removes expired toasts
type Sweeper struct {
	notifier *Notifier
	interval time.Duration
}

// NewSweeper creates a new sweep worker
func NewSweeper(notifier *Notifier, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	return &Sweeper{
		notifier: notifier,
		interval: interval,
	}
}

// Start begins the sweep worker in a goroutine
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	slog.Info("toast sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("toast sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	if n := s.notifier.Expire(s.notifier.now()); n > 0 {
		slog.Debug("expired toasts removed", "count", n)
	}
}
