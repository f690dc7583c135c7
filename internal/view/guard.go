package view

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/joestump/journey-web/internal/metrics"
	"go.uber.org/zap"
)

// AlreadyLoggedIn is shown when a logged-in visitor lands on the landing page.
var AlreadyLoggedIn = Notification{
	Level:       "warning",
	Message:     "로그인되어 있습니다!",
	Description: "로그아웃을 먼저 해주세요.",
	Duration:    3 * time.Second,
}

// GuardConfig holds the fixed paths and message used by a Guard.
type GuardConfig struct {
	LandingPath  string
	RedirectPath string
	Warning      Notification
}

// DefaultGuardConfig redirects logged-in visitors from "/" to "/journey".
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		LandingPath:  "/",
		RedirectPath: "/journey",
		Warning:      AlreadyLoggedIn,
	}
}

// Snapshot is the routing and cookie state observed by one render.
type Snapshot struct {
	Location Location
	Session  SessionProvider
	Cookies  []*http.Cookie
}

// Guard is the state behind one mounted page. A full page load mounts a new
// guard; HTMX navigation inside that page renders the same guard again. It
// reacts to three inputs: a cookie revision change sets the logged-in flag,
// a path change starts a health check, and the flag on the landing path fires
// a one-shot redirect.
type Guard struct {
	cfg    GuardConfig
	health HealthChecker
	logger *zap.Logger
	now    func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	checks  sync.WaitGroup
	release sync.Once

	mu          sync.Mutex
	mounted     bool
	loggedIn    bool
	revision    string
	path        string
	cancelCheck context.CancelFunc
	lastSeen    time.Time
}

// NewGuard mounts a guard. Call Unmount to cancel its in-flight health check.
func NewGuard(cfg GuardConfig, health HealthChecker, logger *zap.Logger) *Guard {
	if health == nil {
		panic("view: NewGuard requires a HealthChecker")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Guard{
		cfg:      cfg,
		health:   health,
		logger:   logger,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		lastSeen: time.Now(),
	}
}

// Render applies one render pass for the snapshot and reports whether the
// landing redirect fired. When it fires, nav and notify have each been called
// exactly once and the caller must not render the view.
func (g *Guard) Render(s Snapshot, nav Navigator, notify Notifier) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lastSeen = g.now()
	first := !g.mounted
	g.mounted = true

	if rev := s.Session.Revision(); first || rev != g.revision {
		g.revision = rev
		if s.Session.IsAuthenticated() {
			g.loggedIn = true
		}
	}

	if first || s.Location.Path != g.path {
		g.path = s.Location.Path
		g.startCheck(s.Cookies)
	}

	if g.loggedIn && g.path == g.cfg.LandingPath {
		nav.Navigate(g.cfg.RedirectPath, NavigateOptions{Replace: true})
		g.loggedIn = false
		notify.Warning(g.cfg.Warning)
		metrics.LandingRedirectsTotal.Inc()
		g.logger.Debug("redirected logged-in visitor",
			zap.String("from", g.cfg.LandingPath),
			zap.String("to", g.cfg.RedirectPath))
		return true
	}
	return false
}

// startCheck cancels the previous health check and starts a new one bound to
// the guard lifetime. g.mu must be held.
func (g *Guard) startCheck(cookies []*http.Cookie) {
	if g.cancelCheck != nil {
		g.cancelCheck()
	}
	if g.ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithCancel(g.ctx)
	g.cancelCheck = cancel
	path := g.path

	g.checks.Add(1)
	go func() {
		defer g.checks.Done()
		defer cancel()
		if err := g.health.Check(ctx, cookies); err != nil {
			g.logger.Debug("health check failed", zap.String("path", path), zap.Error(err))
		}
	}()
}

// LoggedIn reports the current value of the logged-in flag.
func (g *Guard) LoggedIn() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loggedIn
}

// Path returns the last path the guard rendered.
func (g *Guard) Path() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.path
}

func (g *Guard) touch(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastSeen = now
}

func (g *Guard) idleSince(now time.Time) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return now.Sub(g.lastSeen)
}

// Unmount cancels any in-flight health check and waits for it to return.
// It is safe to call more than once.
func (g *Guard) Unmount() {
	g.release.Do(func() {
		g.mu.Lock()
		g.cancel()
		g.mu.Unlock()
	})
	g.checks.Wait()
}
