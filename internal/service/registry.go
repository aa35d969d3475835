package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/campuspass/outpass-server/internal/audit"
	apperrors "github.com/campuspass/outpass-server/internal/errors"
	"github.com/campuspass/outpass-server/internal/model"
	"github.com/campuspass/outpass-server/internal/qr"
	"github.com/campuspass/outpass-server/internal/repository"
	"github.com/campuspass/outpass-server/internal/util"
)

// ValidationStatus is the outcome of checking a scanned session-join
// credential against the registry's current token.
type ValidationStatus string

const (
	CredentialValid    ValidationStatus = "valid"
	CredentialStale    ValidationStatus = "stale"
	CredentialExpired  ValidationStatus = "expired"
	CredentialNotFound ValidationStatus = "not_found"
)

// MintResult pairs the stored credential row with its encoded QR form.
type MintResult struct {
	Credential *model.SessionCredential
	Encoded    []byte
}

// RegistryService mints, rotates, and validates session-join credentials.
// Token comparison is the primary staleness defense: rotating replaces the
// stored token, which invalidates every previously distributed encoding
// immediately, even before its literal expiry. Expiry is secondary cleanup.
type RegistryService struct {
	credRepo repository.SessionCredentialRepository
	tokenTTL time.Duration
	now      func() time.Time
}

func NewRegistryService(credRepo repository.SessionCredentialRepository, tokenTTL time.Duration) *RegistryService {
	return &RegistryService{
		credRepo: credRepo,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Mint issues a fresh validation token for a session and stores it as the
// single current token, replacing any previous one.
func (s *RegistryService) Mint(ctx context.Context, facilityID, sessionID string) (*MintResult, error) {
	token, err := util.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generate validation token: %w", err)
	}

	issuedAt := s.now()
	cred, err := s.credRepo.Upsert(ctx, model.UpsertSessionCredentialParams{
		SessionID:       sessionID,
		FacilityID:      facilityID,
		ValidationToken: token,
		IssuedAt:        issuedAt,
		ExpiresAt:       issuedAt.Add(s.tokenTTL),
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	encoded, err := qr.Encode(qr.SessionJoin{
		SessionID:  cred.SessionID,
		FacilityID: cred.FacilityID,
		Token:      cred.ValidationToken,
	})
	if err != nil {
		return nil, fmt.Errorf("encode session credential: %w", err)
	}

	audit.Log(ctx, audit.Event{
		Type:       audit.EventTokenMinted,
		SessionID:  sessionID,
		FacilityID: facilityID,
	})

	log.Info().
		Str("sessionId", sessionID).
		Str("facilityId", facilityID).
		Time("expiresAt", cred.ExpiresAt).
		Msg("session credential minted")

	return &MintResult{Credential: cred, Encoded: encoded}, nil
}

// Rotate replaces the session's validation token. It requires the session
// credential to already exist; concurrent rotations race last-writer-wins,
// which is acceptable for an administrative action.
func (s *RegistryService) Rotate(ctx context.Context, sessionID string) (*MintResult, error) {
	existing, err := s.credRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing == nil {
		return nil, apperrors.NotFound("Session credential")
	}

	result, err := s.Mint(ctx, existing.FacilityID, sessionID)
	if err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.Event{
		Type:       audit.EventTokenRotated,
		SessionID:  sessionID,
		FacilityID: existing.FacilityID,
	})

	return result, nil
}

// Validate checks a decoded session-join payload against the stored
// credential. The embedded token is compared against the current one first
// by identity of the session row, then by constant-time equality; an expiry
// that has passed takes precedence over token comparison.
func (s *RegistryService) Validate(ctx context.Context, payload qr.SessionJoin) (ValidationStatus, error) {
	stored, err := s.credRepo.FindBySessionID(ctx, payload.SessionID)
	if err != nil {
		return "", apperrors.Database(err)
	}

	if stored == nil {
		audit.Log(ctx, audit.Event{
			Type:      audit.EventCredentialUnknown,
			SessionID: payload.SessionID,
		})
		return CredentialNotFound, nil
	}

	if s.now().After(stored.ExpiresAt) {
		audit.Log(ctx, audit.Event{
			Type:       audit.EventCredentialExpired,
			SessionID:  payload.SessionID,
			FacilityID: stored.FacilityID,
		})
		return CredentialExpired, nil
	}

	if !util.ConstantTimeEqual(payload.Token, stored.ValidationToken) {
		audit.Log(ctx, audit.Event{
			Type:       audit.EventCredentialStale,
			SessionID:  payload.SessionID,
			FacilityID: stored.FacilityID,
		})
		return CredentialStale, nil
	}

	return CredentialValid, nil
}

// StatusError maps a non-valid status to its client-facing error.
func StatusError(status ValidationStatus) *apperrors.AppError {
	switch status {
	case CredentialStale:
		return apperrors.StaleCredential()
	case CredentialExpired:
		return apperrors.ExpiredCredential()
	case CredentialNotFound:
		return apperrors.CredentialNotFound()
	default:
		return nil
	}
}
