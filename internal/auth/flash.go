package auth

import (
	"context"
	"encoding/json"

	"github.com/alexedwards/scs/v2"
	"github.com/joestump/journey-web/internal/view"
	"go.uber.org/zap"
)

const sessionFlashKey = "flash"

// Flash is a notification waiting to be shown on the next page render.
type Flash struct {
	Level       string `json:"level"`
	Message     string `json:"message"`
	Description string `json:"description"`
	DurationMS  int64  `json:"duration_ms"`
}

// Flashes stores notifications in the server-side session until a page
// renders them.
type Flashes struct {
	sessions *scs.SessionManager
	logger   *zap.Logger
}

// NewFlashes creates a Flashes backed by sm. The session middleware
// (sm.LoadAndSave) must wrap every handler that uses it.
func NewFlashes(sm *scs.SessionManager, logger *zap.Logger) *Flashes {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flashes{sessions: sm, logger: logger}
}

// Notifier returns a view.Notifier bound to ctx's session.
func (f *Flashes) Notifier(ctx context.Context) view.Notifier {
	return &flashNotifier{flashes: f, ctx: ctx}
}

// Add appends n to the pending notifications of ctx's session.
func (f *Flashes) Add(ctx context.Context, n view.Notification) {
	pending := f.load(ctx)
	pending = append(pending, Flash{
		Level:       n.Level,
		Message:     n.Message,
		Description: n.Description,
		DurationMS:  n.Duration.Milliseconds(),
	})
	b, err := json.Marshal(pending)
	if err != nil {
		f.logger.Error("encode flash", zap.Error(err))
		return
	}
	f.sessions.Put(ctx, sessionFlashKey, string(b))
}

// Pop removes and returns the pending notifications of ctx's session.
func (f *Flashes) Pop(ctx context.Context) []Flash {
	pending := f.load(ctx)
	if len(pending) > 0 {
		f.sessions.Remove(ctx, sessionFlashKey)
	}
	return pending
}

func (f *Flashes) load(ctx context.Context) []Flash {
	raw := f.sessions.GetString(ctx, sessionFlashKey)
	if raw == "" {
		return nil
	}
	var pending []Flash
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		f.logger.Warn("discarding unreadable flash", zap.Error(err))
		f.sessions.Remove(ctx, sessionFlashKey)
		return nil
	}
	return pending
}

type flashNotifier struct {
	flashes *Flashes
	ctx     context.Context
}

func (n *flashNotifier) Warning(v view.Notification) {
	if v.Level == "" {
		v.Level = "warning"
	}
	n.flashes.Add(n.ctx, v)
}
