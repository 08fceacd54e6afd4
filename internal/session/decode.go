package session

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"sweet-shop/internal/model"
)

type tokenClaims struct {
	jwt.RegisteredClaims

	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Decode reads the payload of a credential token without checking its
// signature or expiry. The result may only drive what the page offers; the
// sweets service re-validates the token on every privileged call.
func Decode(token string) (model.TokenPayload, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.TokenPayload{}, fmt.Errorf("%w: empty token", model.ErrDecode)
	}

	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return model.TokenPayload{}, fmt.Errorf("%w: %w", model.ErrDecode, err)
	}

	payload := model.TokenPayload{ID: claims.ID, Username: claims.Username}
	switch model.Role(claims.Role) {
	case model.RoleAdmin:
		payload.Role = model.RoleAdmin
	case model.RoleUser:
		payload.Role = model.RoleUser
	default:
		return model.TokenPayload{}, fmt.Errorf("%w: unknown role %q", model.ErrDecode, claims.Role)
	}

	return payload, nil
}
