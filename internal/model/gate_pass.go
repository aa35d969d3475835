package model

import (
	"time"
)

type GatePassRequest struct {
	ID             string         `db:"id" json:"id"`
	PersonID       string         `db:"person_id" json:"personId"`
	FacilityID     string         `db:"facility_id" json:"facilityId"`
	SessionID      string         `db:"session_id" json:"sessionId"`
	ApproverID     *string        `db:"approver_id" json:"approverId,omitempty"`
	Description    string         `db:"description" json:"description"`
	Destination    string         `db:"destination" json:"destination"`
	WindowStart    time.Time      `db:"window_start" json:"windowStart"`
	WindowEnd      time.Time      `db:"window_end" json:"windowEnd"`
	Status         GatePassStatus `db:"status" json:"status"`
	DecidedAt      *time.Time     `db:"decided_at" json:"decidedAt,omitempty"`
	ActualExitAt   *time.Time     `db:"actual_exit_at" json:"actualExitAt,omitempty"`
	ActualReturnAt *time.Time     `db:"actual_return_at" json:"actualReturnAt,omitempty"`
	ReturnLocation *string        `db:"return_location" json:"returnLocation,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// Active reports whether the request still occupies the person's single
// active slot: pending, or approved but not yet completed.
func (r *GatePassRequest) Active() bool {
	switch r.Status {
	case GatePassStatusPending:
		return true
	case GatePassStatusApproved:
		return true
	default:
		return false
	}
}

// AwaitingLocation reports whether the person has exited but not yet
// recorded where they can be reached before a return credential is issued.
func (r *GatePassRequest) AwaitingLocation() bool {
	return r.Status == GatePassStatusApproved &&
		r.ActualExitAt != nil &&
		r.ReturnLocation == nil &&
		r.ActualReturnAt == nil
}

type CreateGatePassParams struct {
	ID          string
	PersonID    string
	FacilityID  string
	SessionID   string
	Description string
	Destination string
	WindowStart time.Time
	WindowEnd   time.Time
}
