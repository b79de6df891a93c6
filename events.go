package session

import (
	"sync"
)

// TokensClearedEvent is published when the in-memory token state is wiped.
type TokensClearedEvent struct {
	Reason ClearReason
}

// TokensRefreshedEvent is published after a successful refresh. ExpiresIn is
// the lifetime reported by the backend in seconds, 0 when it was absent.
type TokensRefreshedEvent struct {
	AccessToken string
	ExpiresIn   int64
}

// CrossTabLogoutEvent is published when a logout that originated elsewhere
// (another tab, another process) is applied locally. Source identifies the
// originating token manager instance.
type CrossTabLogoutEvent struct {
	Source string
}

// AuthStateChangedEvent is published whenever the authenticated flag flips.
type AuthStateChangedEvent struct {
	Authenticated bool
}

// ClearReason describes why token state was cleared.
type ClearReason = string

const (
	// ClearReasonRefreshFailed means the backend rejected the refresh
	// credential and the session is over.
	ClearReasonRefreshFailed ClearReason = "refresh_failed"
	// ClearReasonManualLogout means the user asked to log out.
	ClearReasonManualLogout ClearReason = "manual_logout"
	// ClearReasonExternal means the clear was applied on behalf of another
	// tab or process.
	ClearReasonExternal ClearReason = "external_logout"
)

// Listener consumes events published on an Emitter.
type Listener[T any] func(T)

type listenerEntry[T any] struct {
	fn Listener[T]
}

// Emitter is a synchronous single-channel publisher. Listeners run in
// subscription order; a panicking listener is recovered and logged so it
// cannot starve the rest. Subscribing or unsubscribing from inside a
// listener is safe: Emit iterates over a snapshot.
type Emitter[T any] struct {
	mu        sync.Mutex
	listeners []*listenerEntry[T]
	logger    Logger
}

// NewEmitter creates an emitter. A nil logger falls back to the package
// default.
func NewEmitter[T any](logger Logger) *Emitter[T] {
	if logger == nil {
		logger = defLogger{}
	}
	return &Emitter[T]{logger: logger}
}

// Subscribe registers fn and returns its unsubscribe function. Calling the
// returned function more than once is a no-op.
func (e *Emitter[T]) Subscribe(fn Listener[T]) func() {
	if fn == nil {
		return func() {}
	}

	entry := &listenerEntry[T]{fn: fn}

	e.mu.Lock()
	e.listeners = append(e.listeners, entry)
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.remove(entry)
		})
	}
}

func (e *Emitter[T]) remove(entry *listenerEntry[T]) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, candidate := range e.listeners {
		if candidate == entry {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return
		}
	}
}

// Emit invokes every currently registered listener with payload.
func (e *Emitter[T]) Emit(payload T) {
	e.mu.Lock()
	snapshot := make([]*listenerEntry[T], len(e.listeners))
	copy(snapshot, e.listeners)
	e.mu.Unlock()

	for _, entry := range snapshot {
		e.invoke(entry.fn, payload)
	}
}

func (e *Emitter[T]) invoke(fn Listener[T], payload T) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("session event listener panicked: %v", r)
		}
	}()
	fn(payload)
}

// Clear drops every listener. Used at application teardown and test reset.
func (e *Emitter[T]) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = nil
}

// Len reports the number of registered listeners.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

// Events bundles the session lifecycle channels. One instance is shared
// between the token manager and every subscriber interested in session
// facts (WebSocket re-auth, UI banners, cross-tab propagation).
type Events struct {
	TokensCleared    *Emitter[TokensClearedEvent]
	TokensRefreshed  *Emitter[TokensRefreshedEvent]
	CrossTabLogout   *Emitter[CrossTabLogoutEvent]
	AuthStateChanged *Emitter[AuthStateChangedEvent]
}

// NewEvents creates the channel bundle. A nil logger falls back to the
// package default.
func NewEvents(logger Logger) *Events {
	if logger == nil {
		logger = defLogger{}
	}
	return &Events{
		TokensCleared:    NewEmitter[TokensClearedEvent](logger),
		TokensRefreshed:  NewEmitter[TokensRefreshedEvent](logger),
		CrossTabLogout:   NewEmitter[CrossTabLogoutEvent](logger),
		AuthStateChanged: NewEmitter[AuthStateChangedEvent](logger),
	}
}

// Clear removes the listeners from every channel.
func (e *Events) Clear() {
	e.TokensCleared.Clear()
	e.TokensRefreshed.Clear()
	e.CrossTabLogout.Clear()
	e.AuthStateChanged.Clear()
}
