package beconnected

import (
	"database/sql"
	"time"
)

// A Model is the essential data points for primary ID-based models in the web app,
// indicating when a record was created, last updated and soft deleted.
type Model struct {
	ID        uint        `json:"id"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	DeletedAt DeletedTime `json:"deletedAt"`
}

// Exists asserts whether the Model was ever persisted.
func (m Model) Exists() bool { return !m.CreatedAt.IsZero() }

// DeletedTime is a nullable timestamp marking a record as soft deleted.
type DeletedTime struct {
	sql.NullTime
}

// IsDeleted asserts whether the record is soft deleted.
func (dt DeletedTime) IsDeleted() bool { return dt.Valid }

// AccessState is a string representation of the broadest, general access
// a User has to the web app.
type AccessState string

const (
	AccessGranted     AccessState = "granted"
	AccessInvited     AccessState = "invited"
	AccessRevoked     AccessState = "revoked"
	AccessVerifyEmail AccessState = "verify-email"
)

// String stringifies the AccessState.
//
// String implements fmt.Stringer.
func (as AccessState) String() string { return string(as) }

// Valid asserts the AccessState is one of the known values.
//
// Valid implements Enumerable.
func (as AccessState) Valid() error {
	switch as {
	case AccessGranted, AccessInvited, AccessRevoked, AccessVerifyEmail:
		return nil
	default:
		return ErrNotValid
	}
}
