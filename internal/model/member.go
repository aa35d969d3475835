package model

import (
	"time"
)

// Member binds a person, approver, or guard to a facility session.
// A person's binding is what Submit and the scan processor resolve; the
// token hash authenticates API calls.
type Member struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Role         MemberRole `db:"role" json:"role"`
	FacilityID   string     `db:"facility_id" json:"facilityId"`
	SessionID    *string    `db:"session_id" json:"sessionId,omitempty"`
	Phone        *string    `db:"phone" json:"-"`
	ContactPhone *string    `db:"contact_phone" json:"-"`
	TokenHash    string     `db:"token_hash" json:"-"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}
