package profiles

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Profile is a user record as persisted by the identity provider sync.
// RoleTag is the canonical user_type column; LegacyRole and LegacyTitle
// survive from the pre-migration schema and are only consulted by the
// legacy adapter in adapter.go.
type Profile struct {
	UserID      uuid.UUID
	Email       string
	FullName    string
	RoleTag     string
	LegacyRole  string
	LegacyTitle string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ErrEndUserRole is returned when the admin assignment path is asked to
// grant a customer-facing role.
var ErrEndUserRole = errors.New("customer-facing roles cannot be assigned through the admin path")
