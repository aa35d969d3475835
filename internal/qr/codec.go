// Package qr encodes and decodes the two QR payload families carried by
// the service: the session-join credential a person scans to bind to a
// facility session, and the ephemeral gate-pass credential presented to a
// guard at the gate. Decoding rejects the whole payload before any business
// check runs; a structurally valid result is still untrusted until the
// registry or scan processor cross-checks it.
package qr

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "github.com/campuspass/outpass-server/internal/errors"
)

type Kind string

const (
	KindSession Kind = "session"
	KindExit    Kind = "exit"
	KindReturn  Kind = "return"
)

// Payload is the decoded form of a scanned QR code. The concrete type is
// either SessionJoin or GatePass; callers switch exhaustively on it.
type Payload interface {
	PayloadKind() Kind
}

// SessionJoin is the rotating session-join credential. Token is compared
// against the registry's current validation token to detect staleness.
type SessionJoin struct {
	Kind       Kind   `json:"kind"`
	SessionID  string `json:"sessionId"`
	FacilityID string `json:"facilityId"`
	Token      string `json:"validationToken"`
}

func (p SessionJoin) PayloadKind() Kind { return KindSession }

// GatePass is the ephemeral exit/return credential. It carries no secret;
// validity is re-derived from the referenced request's stored state.
type GatePass struct {
	Kind       Kind   `json:"kind"`
	PersonID   string `json:"personId"`
	FacilityID string `json:"facilityId"`
	SessionID  string `json:"sessionId"`
	IssuedAt   int64  `json:"issuedAt"`
}

func (p GatePass) PayloadKind() Kind { return p.Kind }

// Encode serializes a payload to its wire form.
func Encode(p Payload) ([]byte, error) {
	switch v := p.(type) {
	case SessionJoin:
		v.Kind = KindSession
		return json.Marshal(v)
	case GatePass:
		if v.Kind != KindExit && v.Kind != KindReturn {
			return nil, apperrors.MissingField("kind")
		}
		return json.Marshal(v)
	default:
		return nil, apperrors.Internal("unknown payload type")
	}
}

// Decode parses raw QR bytes into a typed payload. It fails with
// MALFORMED_PAYLOAD when the bytes are not a well-formed record and with
// MISSING_FIELD when a required field for the credential family is absent.
func Decode(data []byte) (Payload, error) {
	var probe struct {
		Kind Kind `json:"kind"`
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&probe); err != nil {
		return nil, apperrors.MalformedPayload(err)
	}

	switch probe.Kind {
	case KindSession:
		var p SessionJoin
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, apperrors.MalformedPayload(err)
		}
		if p.SessionID == "" {
			return nil, apperrors.MissingField("sessionId")
		}
		if p.FacilityID == "" {
			return nil, apperrors.MissingField("facilityId")
		}
		if p.Token == "" {
			return nil, apperrors.MissingField("validationToken")
		}
		return p, nil

	case KindExit, KindReturn:
		var p GatePass
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, apperrors.MalformedPayload(err)
		}
		if p.PersonID == "" {
			return nil, apperrors.MissingField("personId")
		}
		if p.FacilityID == "" {
			return nil, apperrors.MissingField("facilityId")
		}
		if p.SessionID == "" {
			return nil, apperrors.MissingField("sessionId")
		}
		return p, nil

	case "":
		return nil, apperrors.MissingField("kind")

	default:
		return nil, apperrors.MalformedPayload(fmt.Errorf("unknown credential kind %q", probe.Kind))
	}
}
