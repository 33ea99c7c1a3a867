package cart

import (
	"strings"

	"github.com/google/uuid"
)

// Identity names the owner of a cart: an authenticated user or an anonymous
// session key. Exactly one of the two is set.
type Identity struct {
	UserID     *uuid.UUID
	SessionKey string
}

// ForUser builds a user identity.
func ForUser(id uuid.UUID) Identity {
	return Identity{UserID: &id}
}

// ForSession builds an anonymous identity.
func ForSession(key string) Identity {
	return Identity{SessionKey: strings.TrimSpace(key)}
}

// Valid reports whether exactly one owner is set.
func (i Identity) Valid() bool {
	hasUser := i.UserID != nil && *i.UserID != uuid.Nil
	hasSession := strings.TrimSpace(i.SessionKey) != ""
	return hasUser != hasSession
}

// IsUser reports whether the identity is an authenticated user.
func (i Identity) IsUser() bool {
	return i.UserID != nil && *i.UserID != uuid.Nil
}

// String is used for log fields.
func (i Identity) String() string {
	if i.IsUser() {
		return "user:" + i.UserID.String()
	}
	return "session"
}
