// Package audit logs security-relevant credential events. The end-user
// message for a rejected credential is deliberately generic ("please
// rescan"); this log is where stale, expired, and unknown credentials stay
// distinguishable.
package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventCredentialStale    EventType = "credential_stale"
	EventCredentialExpired  EventType = "credential_expired"
	EventCredentialUnknown  EventType = "credential_unknown"
	EventCredentialInvalid  EventType = "credential_invalid"
	EventWrongFacilityScan  EventType = "wrong_facility_scan"
	EventTokenMinted        EventType = "token_minted"
	EventTokenRotated       EventType = "token_rotated"
	EventAuthFailure        EventType = "auth_failure"
	EventScanConflict       EventType = "scan_conflict"
	EventNotificationFailed EventType = "notification_failed"
)

type Event struct {
	Type       EventType
	PersonID   string
	SessionID  string
	FacilityID string
	GuardID    string
	Details    map[string]interface{}
}

func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "security").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.PersonID != "" {
		logger = logger.With().Str("person_id", event.PersonID).Logger()
	}
	if event.SessionID != "" {
		logger = logger.With().Str("session_id", event.SessionID).Logger()
	}
	if event.FacilityID != "" {
		logger = logger.With().Str("facility_id", event.FacilityID).Logger()
	}
	if event.GuardID != "" {
		logger = logger.With().Str("guard_id", event.GuardID).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("security audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}
