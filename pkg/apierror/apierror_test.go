package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

var errSentinel = errors.New("sentinel")

func TestAPIErrorFormatting(t *testing.T) {
	t.Parallel()

	require.Equal(t, "NOT_FOUND: sweet not found", New("NOT_FOUND", "sweet not found", "", http.StatusNotFound).Error())
	require.Equal(t, "BAD_REQUEST: invalid field (price)", New("BAD_REQUEST", "invalid field", "price", http.StatusBadRequest).Error())

	var nilErr *APIError
	require.Equal(t, "", nilErr.Error())
	require.NoError(t, nilErr.Unwrap())
}

func TestWrapKeepsCause(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("purchase: %w", Wrap(errSentinel, "UPSTREAM_ERROR", "sold out", "", http.StatusConflict))

	require.ErrorIs(t, err, errSentinel)
	require.Equal(t, http.StatusConflict, StatusOf(err))
	require.Equal(t, 0, StatusOf(errSentinel))
}
