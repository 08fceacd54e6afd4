package model

type Role string

const (
	RoleNone  Role = ""
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// TokenPayload is what the storefront can read out of a credential token
// without verifying it.
type TokenPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

type SessionInfo struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Role          string `json:"role"`
	CanAddSweets  bool   `json:"can_add_sweets"`
}
