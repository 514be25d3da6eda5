package push

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"scuolaguida/models"
	"scuolaguida/storage"
	"scuolaguida/utils"
)

// Reaction is what a push intent does once the app can act on it.
type Reaction func(ctx context.Context)

// LaunchSource asks the OS for the notification response that launched the
// app, covering a cold start via tap. Taking the response consumes it, so a
// relaunch cannot replay it.
type LaunchSource interface {
	TakeLaunchNotification(ctx context.Context) (*models.Notification, error)
}

// Bridge routes push-derived intents to the coordinator that owns each kind.
// A foreground notification dispatches immediately to the live subscriber
// set; a backgrounded tap persists one durable intent that the next
// foreground pass consumes exactly once.
type Bridge struct {
	store    storage.Store
	launcher LaunchSource

	mu        sync.RWMutex
	reactions map[models.PushIntent][]Reaction
}

// NewBridge wires the durable slot and the OS fallback. launcher may be nil
// when the shell cannot provide one.
func NewBridge(store storage.Store, launcher LaunchSource) *Bridge {
	return &Bridge{
		store:     store,
		launcher:  launcher,
		reactions: make(map[models.PushIntent][]Reaction),
	}
}

// React registers fn to run whenever kind arrives. Registration order is
// dispatch order.
func (b *Bridge) React(kind models.PushIntent, fn Reaction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reactions[kind] = append(b.reactions[kind], fn)
}

// HandleForeground dispatches a notification received while the app is
// running. Nothing is persisted: the subscriber set is live.
func (b *Bridge) HandleForeground(ctx context.Context, n models.Notification) {
	kind, ok := n.Intent()
	if !ok {
		return
	}
	b.dispatch(ctx, kind)
}

// RecordTapped durably records the intent of a notification tapped while the
// app was backgrounded. The slot holds one intent; a later tap overwrites an
// earlier unconsumed one.
func (b *Bridge) RecordTapped(n models.Notification) {
	kind, ok := n.Intent()
	if !ok {
		return
	}
	if err := b.store.SetPendingPushIntent(string(kind)); err != nil {
		utils.GetLogger().Error("push: failed to persist tapped intent",
			zap.Error(err), zap.String("kind", string(kind)))
	}
}

// ConsumePendingOrLaunch resolves the durable slot, falling back to the OS
// launch notification, and dispatches at most one intent. The slot is
// cleared before dispatch so an intent can never run twice.
func (b *Bridge) ConsumePendingOrLaunch(ctx context.Context) {
	logger := utils.GetLogger()

	pending, err := b.store.PendingPushIntent()
	if err != nil {
		logger.Error("push: failed to read pending intent", zap.Error(err))
		pending = ""
	}
	if pending != "" {
		if err := b.store.ClearPendingPushIntent(); err != nil {
			logger.Error("push: failed to clear pending intent", zap.Error(err))
		}
		b.dispatch(ctx, models.PushIntent(pending))
		return
	}

	if b.launcher == nil {
		return
	}
	n, err := b.launcher.TakeLaunchNotification(ctx)
	if err != nil {
		logger.Debug("push: launch notification lookup failed", zap.Error(err))
		return
	}
	if n == nil {
		return
	}
	if kind, ok := n.Intent(); ok {
		b.dispatch(ctx, kind)
	}
}

func (b *Bridge) dispatch(ctx context.Context, kind models.PushIntent) {
	b.mu.RLock()
	fns := make([]Reaction, len(b.reactions[kind]))
	copy(fns, b.reactions[kind])
	b.mu.RUnlock()

	if len(fns) == 0 {
		// A kind nobody owns is dropped, not an error.
		utils.GetLogger().Debug("push: no reaction registered, dropping intent",
			zap.String("kind", string(kind)))
		return
	}
	utils.GetLogger().Debug("push: dispatching intent", zap.String("kind", string(kind)))
	for _, fn := range fns {
		fn(ctx)
	}
}
