// Package notify holds transient user-facing notifications (toasts).
package notify

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the visual category of a toast
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

const (
	DefaultSuccessTTL = 3 * time.Second
	DefaultErrorTTL   = 5 * time.Second
)

// Toast is one transient message
type Toast struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Origin    string    `json:"origin,omitempty"`
}

// Expired reports whether the toast should no longer be shown
func (t Toast) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Sink receives toast lifecycle events for delivery to clients
type Sink interface {
	ToastAdded(t Toast)
	ToastDismissed(id string)
}

// Publisher forwards locally raised toasts to other console instances
type Publisher interface {
	Publish(ctx context.Context, t Toast) error
}

// Config holds toast lifetimes
type Config struct {
	SuccessTTL time.Duration
	ErrorTTL   time.Duration
}

// Notifier stores active toasts and fans them out to sinks
type Notifier struct {
	mu        sync.RWMutex
	toasts    map[string]Toast
	sinks     []Sink
	publisher Publisher
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

// NewNotifier creates a notifier; zero TTLs fall back to the defaults
func NewNotifier(cfg Config, logger *slog.Logger) *Notifier {
	if cfg.SuccessTTL <= 0 {
		cfg.SuccessTTL = DefaultSuccessTTL
	}
	if cfg.ErrorTTL <= 0 {
		cfg.ErrorTTL = DefaultErrorTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Notifier{
		toasts: make(map[string]Toast),
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// AddSink registers a delivery target
func (n *Notifier) AddSink(s Sink) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sinks = append(n.sinks, s)
}

// SetPublisher registers the cross-instance relay
func (n *Notifier) SetPublisher(p Publisher) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.publisher = p
}

// Success raises a success toast
func (n *Notifier) Success(msg string) Toast {
	return n.raise(KindSuccess, msg, n.cfg.SuccessTTL)
}

// Error raises an error toast
func (n *Notifier) Error(msg string) Toast {
	return n.raise(KindError, msg, n.cfg.ErrorTTL)
}

// Info raises an informational toast
func (n *Notifier) Info(msg string) Toast {
	return n.raise(KindInfo, msg, n.cfg.SuccessTTL)
}

func (n *Notifier) raise(kind Kind, msg string, ttl time.Duration) Toast {
	now := n.now()
	t := Toast{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   msg,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	n.logger.Debug("toast raised", "id", t.ID, "kind", kind, "message", msg)
	n.store(t)

	n.mu.RLock()
	publisher := n.publisher
	n.mu.RUnlock()
	if publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := publisher.Publish(ctx, t); err != nil {
			n.logger.Warn("failed to publish toast", "id", t.ID, "error", err)
		}
	}
	return t
}

// Receive stores a toast raised by another instance without republishing it
func (n *Notifier) Receive(t Toast) {
	if t.ID == "" || t.Expired(n.now()) {
		return
	}
	n.store(t)
}

func (n *Notifier) store(t Toast) {
	n.mu.Lock()
	n.toasts[t.ID] = t
	sinks := append([]Sink(nil), n.sinks...)
	n.mu.Unlock()

	for _, s := range sinks {
		s.ToastAdded(t)
	}
}

// Active returns unexpired toasts, oldest first
func (n *Notifier) Active() []Toast {
	now := n.now()

	n.mu.RLock()
	out := make([]Toast, 0, len(n.toasts))
	for _, t := range n.toasts {
		if !t.Expired(now) {
			out = append(out, t)
		}
	}
	n.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Dismiss closes a toast; it reports whether the toast existed
func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	_, ok := n.toasts[id]
	delete(n.toasts, id)
	sinks := append([]Sink(nil), n.sinks...)
	n.mu.Unlock()

	if ok {
		for _, s := range sinks {
			s.ToastDismissed(id)
		}
	}
	return ok
}

// Expire removes every toast whose lifetime has passed and returns how many
func (n *Notifier) Expire(now time.Time) int {
	n.mu.Lock()
	var expired []string
	for id, t := range n.toasts {
		if t.Expired(now) {
			expired = append(expired, id)
			delete(n.toasts, id)
		}
	}
	sinks := append([]Sink(nil), n.sinks...)
	n.mu.Unlock()

	for _, id := range expired {
		for _, s := range sinks {
			s.ToastDismissed(id)
		}
	}
	return len(expired)
}
