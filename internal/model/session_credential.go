package model

import (
	"time"
)

// SessionCredential is the persisted backing row for a session-join QR.
// Exactly one row exists per session; rotating replaces the token in place,
// which invalidates every previously distributed encoding of it.
type SessionCredential struct {
	SessionID       string    `db:"session_id" json:"sessionId"`
	FacilityID      string    `db:"facility_id" json:"facilityId"`
	ValidationToken string    `db:"validation_token" json:"-"`
	IssuedAt        time.Time `db:"issued_at" json:"issuedAt"`
	ExpiresAt       time.Time `db:"expires_at" json:"expiresAt"`
}

type UpsertSessionCredentialParams struct {
	SessionID       string
	FacilityID      string
	ValidationToken string
	IssuedAt        time.Time
	ExpiresAt       time.Time
}
