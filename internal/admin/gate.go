// Package admin gates inventory creation behind the ADMIN role.
//
// The role check here only decides what the storefront offers. The sweets
// service authorizes the create call itself.
package admin

import (
	"context"
	"fmt"
	"log/slog"

	"sweet-shop/internal/model"
)

type roleSource interface {
	CurrentRole(ctx context.Context) model.Role
}

type creator interface {
	CreateSweet(ctx context.Context, draft model.SweetDraft) (model.Sweet, error)
}

// Appender receives the server-confirmed record.
type Appender interface {
	Append(created model.Sweet)
}

type AppenderFunc func(created model.Sweet)

func (f AppenderFunc) Append(created model.Sweet) { f(created) }

type Gate struct {
	roles   roleSource
	creator creator
}

func NewGate(roles roleSource, creator creator) *Gate {
	return &Gate{roles: roles, creator: creator}
}

// Allowed reports whether the add-sweet action should be offered.
func (g *Gate) Allowed(ctx context.Context) bool {
	return g.roles.CurrentRole(ctx) == model.RoleAdmin
}

// AddSweet creates draft on the server and hands the result to appender.
// On failure nothing is appended and the caller keeps its draft.
func (g *Gate) AddSweet(ctx context.Context, draft model.SweetDraft, appender Appender) (model.Sweet, error) {
	if !g.Allowed(ctx) {
		return model.Sweet{}, model.ErrForbidden
	}

	created, err := g.creator.CreateSweet(ctx, draft)
	if err != nil {
		slog.Warn("add sweet failed", "name", draft.Name, "error", err)
		return model.Sweet{}, fmt.Errorf("%w: add sweet: %w", model.ErrMutationFailure, err)
	}

	appender.Append(created)
	slog.Info("sweet added", "id", created.ID, "name", created.Name)
	return created, nil
}
