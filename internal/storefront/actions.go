package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sweet-shop/internal/admin"
	"sweet-shop/internal/catalog"
	"sweet-shop/internal/event"
	"sweet-shop/internal/model"
)

// Login authenticates, persists the token and starts a session, which
// triggers one inventory refresh. Bad credentials leave everything as it was.
func (s *Storefront) Login(ctx context.Context, username string, password string) (model.SessionInfo, error) {
	token, err := s.sessions.Login(ctx, username, password)
	if err != nil {
		slog.Warn("login failed", "username", username, "error", err)
		message := "Login failed"
		if errors.Is(err, model.ErrInvalidCredentials) {
			message = "Invalid username or password"
		}
		if execErr := s.exec(ctx, func() { s.addNotice(model.NoticeAuthFailure, message, 0) }); execErr != nil {
			slog.Debug("auth failure notice dropped", "error", execErr)
		}
		return model.SessionInfo{}, err
	}

	// The token is already persisted; starting the session must not be
	// skipped because the caller gave up.
	if err := s.exec(context.WithoutCancel(ctx), func() { s.beginSession(token) }); err != nil {
		return model.SessionInfo{}, err
	}

	return s.Session(ctx), nil
}

// Logout removes the token and drops the cart and inventory snapshot.
func (s *Storefront) Logout(ctx context.Context) error {
	var logoutErr error
	err := s.exec(ctx, func() {
		if logoutErr = s.sessions.Logout(ctx); logoutErr != nil {
			return
		}
		if s.sessionID != "" {
			s.endSession()
		}
	})
	if err != nil {
		return err
	}
	return logoutErr
}

// Role is decoded from the stored token on every call.
func (s *Storefront) Role(ctx context.Context) model.Role {
	return s.sessions.CurrentRole(ctx)
}

// HasSession reports whether a token is stored. An undecodable token still
// counts: it can be used for calls and must be removable by Logout.
func (s *Storefront) HasSession(ctx context.Context) bool {
	_, err := s.sessions.Token(ctx)
	return err == nil
}

func (s *Storefront) Session(ctx context.Context) model.SessionInfo {
	if !s.HasSession(ctx) {
		return model.SessionInfo{Role: model.RoleNone.String()}
	}
	payload, err := s.sessions.Payload(ctx)
	if err != nil {
		return model.SessionInfo{Authenticated: true, Role: model.RoleNone.String()}
	}
	return model.SessionInfo{
		Authenticated: true,
		Username:      payload.Username,
		Role:          payload.Role.String(),
		CanAddSweets:  s.gate.Allowed(ctx),
	}
}

// Reload refreshes the inventory on user request.
func (s *Storefront) Reload(ctx context.Context) error {
	var reloadErr error
	err := s.exec(ctx, func() {
		if reloadErr = s.requireSession(); reloadErr != nil {
			return
		}
		s.refresh(s.sessionID)
	})
	if err != nil {
		return err
	}
	return reloadErr
}

// Purchase adds the sweet to the cart immediately and asks the service to
// buy it. The cart line and the inventory quantity are two separate
// effects: the line is added now and unconditionally, the quantity changes
// only when the service answers. A failed purchase leaves the line in the
// cart and raises a notice.
func (s *Storefront) Purchase(ctx context.Context, id int64) (model.CartLine, error) {
	var (
		line        model.CartLine
		purchaseErr error
	)
	err := s.exec(ctx, func() {
		if purchaseErr = s.requireSession(); purchaseErr != nil {
			return
		}

		sweet, ok := s.inventory.Get(id)
		if !ok {
			purchaseErr = model.ErrSweetNotFound
			return
		}
		if sweet.Quantity <= 0 {
			purchaseErr = model.ErrOutOfStock
			return
		}

		line = s.cart.AddOrIncrement(sweet)
		s.publish(event.TypeCartUpdated, s.cart.View())
		s.purchase(s.sessionID, sweet)
	})
	if err != nil {
		return model.CartLine{}, err
	}
	return line, purchaseErr
}

func (s *Storefront) purchase(id string, sweet model.Sweet) {
	s.call(func(ctx context.Context) func() {
		updated, err := s.api.PurchaseSweet(ctx, sweet.ID)
		return func() { s.applyPurchase(id, sweet, updated, err) }
	})
}

func (s *Storefront) applyPurchase(id string, sweet model.Sweet, updated model.Sweet, err error) {
	if !s.isCurrent(id) {
		slog.Info("discarding purchase result for ended session", "session_id", id, "sweet_id", sweet.ID)
		return
	}

	if err != nil {
		slog.Warn("purchase failed", "sweet_id", sweet.ID, "error", err)
		notice := s.addNotice(model.NoticeMutationFailure, fmt.Sprintf("Failed to purchase %s", sweet.Name), sweet.ID)
		s.publish(event.TypePurchaseFailed, notice)
		return
	}

	if !s.inventory.ApplyPurchaseResult(updated) {
		slog.Warn("purchase result for sweet missing from snapshot", "sweet_id", updated.ID)
		return
	}
	s.publish(event.TypeInventoryUpdated, updated)
}

// AddSweet creates a sweet through the admin gate and appends the created
// record to the snapshot if the session is still the one that asked.
func (s *Storefront) AddSweet(ctx context.Context, draft model.SweetDraft) (model.Sweet, error) {
	var (
		id         string
		sessionErr error
	)
	if err := s.exec(ctx, func() {
		sessionErr = s.requireSession()
		id = s.sessionID
	}); err != nil {
		return model.Sweet{}, err
	}
	if sessionErr != nil {
		return model.Sweet{}, sessionErr
	}

	created, err := s.gate.AddSweet(ctx, draft, admin.AppenderFunc(func(created model.Sweet) {
		err := s.exec(context.WithoutCancel(ctx), func() {
			if !s.isCurrent(id) {
				slog.Info("discarding created sweet for ended session", "session_id", id, "sweet_id", created.ID)
				return
			}
			s.inventory.Append(created)
			s.publish(event.TypeSweetAdded, created)
		})
		if err != nil {
			slog.Debug("created sweet dropped", "error", err)
		}
	}))
	if errors.Is(err, model.ErrMutationFailure) {
		noticeErr := s.exec(context.WithoutCancel(ctx), func() {
			if !s.isCurrent(id) {
				return
			}
			s.addNotice(model.NoticeMutationFailure, fmt.Sprintf("Failed to add %s", draft.Name), 0)
		})
		if noticeErr != nil {
			slog.Debug("add sweet failure notice dropped", "error", noticeErr)
		}
	}
	return created, err
}

// CanAddSweets reports whether the admin form should be offered.
func (s *Storefront) CanAddSweets(ctx context.Context) bool {
	return s.gate.Allowed(ctx)
}

// Catalog returns the filtered view of the snapshot.
func (s *Storefront) Catalog(ctx context.Context, search string, category string) (model.CatalogView, error) {
	if category == "" {
		category = model.CategoryAll
	}

	var (
		view    model.CatalogView
		viewErr error
	)
	err := s.exec(ctx, func() {
		if viewErr = s.requireSession(); viewErr != nil {
			return
		}
		snapshot := s.inventory.Snapshot()
		view = model.CatalogView{
			Items:      catalog.Visible(snapshot, search, category),
			Categories: catalog.Categories(snapshot),
			Search:     search,
			Category:   category,
			LoadError:  s.inventory.LoadError(),
		}
	})
	if err != nil {
		return model.CatalogView{}, err
	}
	return view, viewErr
}

func (s *Storefront) Inventory(ctx context.Context) ([]model.Sweet, error) {
	var (
		sweets []model.Sweet
		invErr error
	)
	err := s.exec(ctx, func() {
		if invErr = s.requireSession(); invErr != nil {
			return
		}
		sweets = s.inventory.Snapshot()
	})
	if err != nil {
		return nil, err
	}
	return sweets, invErr
}

func (s *Storefront) Cart(ctx context.Context) (model.CartView, error) {
	var (
		view    model.CartView
		cartErr error
	)
	err := s.exec(ctx, func() {
		if cartErr = s.requireSession(); cartErr != nil {
			return
		}
		view = s.cart.View()
	})
	if err != nil {
		return model.CartView{}, err
	}
	return view, cartErr
}

// Checkout hands back what was in the cart and empties it. Orders are not
// submitted anywhere; each purchase already went to the service.
func (s *Storefront) Checkout(ctx context.Context) (model.Receipt, error) {
	var (
		receipt     model.Receipt
		checkoutErr error
	)
	err := s.exec(ctx, func() {
		if checkoutErr = s.requireSession(); checkoutErr != nil {
			return
		}
		if s.cart.Count() == 0 {
			checkoutErr = model.ErrEmptyCart
			return
		}
		receipt = s.cart.Checkout(s.now().UTC())
		slog.Info("checkout", "lines", len(receipt.Lines), "total", receipt.Total)
		s.publish(event.TypeCartCleared, receipt)
	})
	if err != nil {
		return model.Receipt{}, err
	}
	return receipt, checkoutErr
}

// Notices returns and forgets the pending notices. It works without a
// session so a failed login can be reported.
func (s *Storefront) Notices(ctx context.Context) ([]model.Notice, error) {
	var notices []model.Notice
	err := s.exec(ctx, func() {
		notices = s.notices
		s.notices = nil
	})
	if err != nil {
		return nil, err
	}
	if notices == nil {
		notices = []model.Notice{}
	}
	return notices, nil
}
