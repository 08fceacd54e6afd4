// Package storefront binds the session store, inventory cache, cart and
// admin gate into the state machine behind the shop page.
//
// All state is owned by one event loop goroutine and changed one event at a
// time. Network calls never run on the loop: they run on their own
// goroutines and post their results back, where the result is applied only
// if the session that issued the call is still the current one and still
// has a token. Results for a session that has ended are discarded.
package storefront

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"sweet-shop/internal/admin"
	"sweet-shop/internal/cart"
	"sweet-shop/internal/event"
	"sweet-shop/internal/inventory"
	"sweet-shop/internal/model"
	"sweet-shop/internal/session"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("storefront closed")

const loadErrorMessage = "Failed to load sweets"

type inventoryAPI interface {
	ListSweets(ctx context.Context) ([]model.Sweet, error)
	PurchaseSweet(ctx context.Context, id int64) (model.Sweet, error)
}

type Options struct {
	Bus         event.Bus
	CallTimeout time.Duration
	Now         func() time.Time
}

type Storefront struct {
	sessions    *session.Store
	api         inventoryAPI
	gate        *admin.Gate
	bus         event.Bus
	callTimeout time.Duration
	now         func() time.Time

	// Owned by the loop goroutine.
	inventory *inventory.Cache
	cart      *cart.Aggregator
	sessionID string
	notices   []model.Notice

	events    chan func()
	stop      chan struct{}
	stopped   chan struct{}
	stopOnce  sync.Once
	inflight  sync.WaitGroup
	baseCtx   context.Context
	cancelAll context.CancelFunc
}

// New starts the event loop. Call Start to pick up a persisted session and
// Close to stop.
func New(sessions *session.Store, api inventoryAPI, gate *admin.Gate, opts Options) *Storefront {
	if opts.Bus == nil {
		opts.Bus = event.Discard{}
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 15 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Storefront{
		sessions:    sessions,
		api:         api,
		gate:        gate,
		bus:         opts.Bus,
		callTimeout: opts.CallTimeout,
		now:         opts.Now,
		inventory:   inventory.NewCache(),
		cart:        cart.NewAggregator(),
		events:      make(chan func()),
		stop:        make(chan struct{}),
		stopped:     make(chan struct{}),
		baseCtx:     baseCtx,
		cancelAll:   cancel,
	}
	go s.loop()

	return s
}

func (s *Storefront) loop() {
	defer close(s.stopped)
	for {
		select {
		case fn := <-s.events:
			fn()
		case <-s.stop:
			return
		}
	}
}

// Start resumes the session whose token survived in storage, if any.
func (s *Storefront) Start(ctx context.Context) error {
	return s.exec(ctx, func() {
		token, err := s.sessions.Token(ctx)
		if err != nil {
			if !errors.Is(err, model.ErrNoSession) {
				slog.Error("read persisted token", "error", err)
			}
			return
		}
		slog.Info("resuming persisted session")
		s.beginSession(token)
	})
}

// Close stops the loop, cancels in-flight calls and waits for their
// goroutines to finish.
func (s *Storefront) Close() {
	s.stopOnce.Do(func() {
		s.cancelAll()
		close(s.stop)
	})
	<-s.stopped
	s.inflight.Wait()
}

// Wait blocks until every call issued so far has had its result applied or
// discarded.
func (s *Storefront) Wait() {
	s.inflight.Wait()
}

// exec runs fn on the loop and waits for it. It must not be called from
// the loop itself.
func (s *Storefront) exec(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}

	select {
	case s.events <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrClosed
	}

	select {
	case <-done:
		return nil
	case <-s.stopped:
		return ErrClosed
	}
}

// call runs request off the loop and posts apply back onto it.
func (s *Storefront) call(request func(ctx context.Context) func()) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(s.baseCtx, s.callTimeout)
		apply := request(ctx)
		cancel()

		if err := s.exec(context.Background(), apply); err != nil {
			slog.Debug("call result dropped", "error", err)
		}
	}()
}

func (s *Storefront) publish(t event.Type, payload any) {
	s.bus.Publish(event.New(t, payload))
}

func (s *Storefront) hasToken() bool {
	_, err := s.sessions.Token(s.baseCtx)
	return err == nil
}

// isCurrent reports whether a result issued under id may still be applied.
func (s *Storefront) isCurrent(id string) bool {
	return id != "" && id == s.sessionID && s.hasToken()
}

// requireSession checks that a session is active. A session whose token has
// disappeared from storage is ended on the spot.
func (s *Storefront) requireSession() error {
	if s.sessionID == "" {
		return model.ErrNoSession
	}
	if !s.hasToken() {
		slog.Warn("token vanished from storage; ending session")
		s.endSession()
		return model.ErrNoSession
	}
	return nil
}

// beginSession starts a new session for token and refreshes the inventory
// once. A previous session, if any, ends first.
func (s *Storefront) beginSession(token string) {
	current, err := s.sessions.Token(s.baseCtx)
	if err != nil || current != token {
		slog.Info("token changed before session start; ignoring")
		return
	}

	if s.sessionID != "" {
		s.endSession()
	}

	s.sessionID = uuid.NewString()
	s.notices = nil
	payload, err := session.Decode(token)
	if err != nil {
		slog.Warn("session token is not decodable", "error", err)
	}
	slog.Info("session started", "session_id", s.sessionID, "username", payload.Username, "role", payload.Role.String())
	s.publish(event.TypeSessionStarted, model.SessionInfo{Authenticated: true, Username: payload.Username, Role: payload.Role.String()})

	s.refresh(s.sessionID)
}

func (s *Storefront) endSession() {
	slog.Info("session ended", "session_id", s.sessionID)
	s.sessionID = ""
	s.cart.Clear()
	s.inventory.Reset()
	s.publish(event.TypeCartCleared, nil)
	s.publish(event.TypeSessionEnded, nil)
}

func (s *Storefront) refresh(id string) {
	s.call(func(ctx context.Context) func() {
		sweets, err := s.api.ListSweets(ctx)
		return func() { s.applyRefresh(id, sweets, err) }
	})
}

func (s *Storefront) applyRefresh(id string, sweets []model.Sweet, err error) {
	if !s.isCurrent(id) {
		slog.Info("discarding inventory for ended session", "session_id", id)
		return
	}

	if err != nil {
		slog.Warn("inventory refresh failed", "error", err, "kept_items", s.inventory.Len())
		s.inventory.SetLoadError(loadErrorMessage)
		s.addNotice(model.NoticeLoadFailure, loadErrorMessage, 0)
		s.publish(event.TypeInventoryLoadFailed, map[string]string{"message": loadErrorMessage})
		return
	}

	s.inventory.Replace(sweets)
	slog.Info("inventory refreshed", "items", len(sweets))
	s.publish(event.TypeInventoryRefreshed, map[string]int{"items": len(sweets)})
}

func (s *Storefront) addNotice(kind model.NoticeKind, message string, sweetID int64) model.Notice {
	notice := model.Notice{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		SweetID:   sweetID,
		CreatedAt: s.now().UTC(),
	}
	s.notices = append(s.notices, notice)
	return notice
}
