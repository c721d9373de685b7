package cart

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/skillwave/skillwave-backend/pkg/errors"
)

// Owner identifies whose cart an operation targets: an authenticated user
// or an anonymous guest session. Exactly one variant is populated; the
// constructors are the only way to build one, so a user-and-session
// combination cannot be represented.
type Owner struct {
	userID    uuid.UUID
	sessionID string
}

// UserOwner builds an owner for an authenticated user.
func UserOwner(userID uuid.UUID) Owner {
	return Owner{userID: userID}
}

// GuestOwner builds an owner for an anonymous session token.
func GuestOwner(sessionID string) Owner {
	return Owner{sessionID: strings.TrimSpace(sessionID)}
}

// IsUser reports whether the owner is an authenticated user.
func (o Owner) IsUser() bool {
	return o.userID != uuid.Nil
}

// UserID returns the user identifier when the owner is a user.
func (o Owner) UserID() (uuid.UUID, bool) {
	if !o.IsUser() {
		return uuid.Nil, false
	}
	return o.userID, true
}

// SessionID returns the guest session token when the owner is a guest.
func (o Owner) SessionID() (string, bool) {
	if o.IsUser() || o.sessionID == "" {
		return "", false
	}
	return o.sessionID, true
}

// Validate rejects the zero Owner. Callers must supply an identity; the
// HTTP layer mints guest session tokens before reaching the service.
func (o Owner) Validate() error {
	if o.userID == uuid.Nil && o.sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	return nil
}
