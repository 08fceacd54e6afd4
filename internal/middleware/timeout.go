package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sweet-shop/internal/model"
)

// Timeout bounds /api handlers. Storefront operations also watch the
// request context, so a request cut off here stops waiting for the loop.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	body, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "REQUEST_TIMEOUT",
			Message: fmt.Sprintf("request did not finish within %s", timeout),
		},
	})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
