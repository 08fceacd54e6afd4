package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"sweet-shop/internal/model"
	"sweet-shop/pkg/apierror"
)

type staticRole model.Role

func (r staticRole) CurrentRole(context.Context) model.Role { return model.Role(r) }

type fakeCreator struct {
	calls int
	err   error
}

func (f *fakeCreator) CreateSweet(_ context.Context, draft model.SweetDraft) (model.Sweet, error) {
	f.calls++
	if f.err != nil {
		return model.Sweet{}, f.err
	}
	return model.Sweet{ID: 10, Name: draft.Name, Category: draft.Category, Price: draft.Price, Quantity: draft.Quantity}, nil
}

func TestAddSweetAppendsOnSuccess(t *testing.T) {
	t.Parallel()

	creator := &fakeCreator{}
	gate := NewGate(staticRole(model.RoleAdmin), creator)

	var appended []model.Sweet
	created, err := gate.AddSweet(context.Background(), model.SweetDraft{Name: "Barfi", Category: "MILK", Price: 20, Quantity: 4},
		AppenderFunc(func(s model.Sweet) { appended = append(appended, s) }))

	require.NoError(t, err)
	require.Equal(t, int64(10), created.ID)
	require.Equal(t, []model.Sweet{created}, appended)
}

func TestAddSweetRequiresAdmin(t *testing.T) {
	t.Parallel()

	for _, role := range []model.Role{model.RoleNone, model.RoleUser} {
		creator := &fakeCreator{}
		gate := NewGate(staticRole(role), creator)

		require.False(t, gate.Allowed(context.Background()))
		_, err := gate.AddSweet(context.Background(), model.SweetDraft{Name: "Barfi"}, AppenderFunc(func(model.Sweet) {
			t.Fatal("must not append")
		}))
		require.ErrorIs(t, err, model.ErrForbidden)
		require.Zero(t, creator.calls)
	}
}

func TestAddSweetFailureAppendsNothing(t *testing.T) {
	t.Parallel()

	gate := NewGate(staticRole(model.RoleAdmin), &fakeCreator{err: errors.New("boom")})

	_, err := gate.AddSweet(context.Background(), model.SweetDraft{Name: "Barfi"}, AppenderFunc(func(model.Sweet) {
		t.Fatal("must not append")
	}))
	require.ErrorIs(t, err, model.ErrMutationFailure)
}

func TestParseDraft(t *testing.T) {
	t.Parallel()

	draft, err := ParseDraft(model.DraftForm{Name: " Barfi ", Category: "MILK", Price: "12.50", Quantity: " 4 ", ImageURL: "barfi.png"})
	require.NoError(t, err)
	require.Equal(t, model.SweetDraft{Name: "Barfi", Category: "MILK", Price: 12.5, Quantity: 4, ImageURL: "barfi.png"}, draft)

	draft, err = ParseDraft(model.DraftForm{Name: "Barfi", Category: "MILK", Price: "0", Quantity: "0"})
	require.NoError(t, err)
	require.Zero(t, draft.Price)

	cases := []struct {
		name  string
		form  model.DraftForm
		field string
	}{
		{name: "missing name", form: model.DraftForm{Category: "MILK", Price: "1", Quantity: "1"}, field: "name"},
		{name: "missing category", form: model.DraftForm{Name: "Barfi", Price: "1", Quantity: "1"}, field: "category"},
		{name: "non numeric price", form: model.DraftForm{Name: "Barfi", Category: "MILK", Price: "ten", Quantity: "1"}, field: "price"},
		{name: "nan price", form: model.DraftForm{Name: "Barfi", Category: "MILK", Price: "NaN", Quantity: "1"}, field: "price"},
		{name: "negative price", form: model.DraftForm{Name: "Barfi", Category: "MILK", Price: "-1", Quantity: "1"}, field: "price"},
		{name: "fractional quantity", form: model.DraftForm{Name: "Barfi", Category: "MILK", Price: "1", Quantity: "1.5"}, field: "quantity"},
		{name: "negative quantity", form: model.DraftForm{Name: "Barfi", Category: "MILK", Price: "1", Quantity: "-2"}, field: "quantity"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDraft(tc.form)
			require.ErrorIs(t, err, model.ErrInvalidInput)

			var apiErr *apierror.APIError
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tc.field, apiErr.Details)
		})
	}
}
