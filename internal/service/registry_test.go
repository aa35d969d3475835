package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/campuspass/outpass-server/internal/errors"
	"github.com/campuspass/outpass-server/internal/model"
	"github.com/campuspass/outpass-server/internal/qr"
)

func TestRegistryMint(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("stores a fresh token with 24h expiry", func(t *testing.T) {
		repo := new(mockSessionCredentialRepo)
		svc := NewRegistryService(repo, 24*time.Hour)
		svc.now = func() time.Time { return now }

		var captured model.UpsertSessionCredentialParams
		repo.On("Upsert", mock.Anything, mock.MatchedBy(func(p model.UpsertSessionCredentialParams) bool {
			captured = p
			return p.SessionID == "sess-1" && p.FacilityID == "fac-1"
		})).Return(&model.SessionCredential{
			SessionID:       "sess-1",
			FacilityID:      "fac-1",
			ValidationToken: "stored-token",
			IssuedAt:        now,
			ExpiresAt:       now.Add(24 * time.Hour),
		}, nil)

		result, err := svc.Mint(context.Background(), "fac-1", "sess-1")
		require.NoError(t, err)

		assert.Len(t, captured.ValidationToken, 64)
		assert.Equal(t, now, captured.IssuedAt)
		assert.Equal(t, now.Add(24*time.Hour), captured.ExpiresAt)
		assert.NotEmpty(t, result.Encoded)
		repo.AssertExpectations(t)
	})

	t.Run("encoded credential round-trips through the codec", func(t *testing.T) {
		repo := new(mockSessionCredentialRepo)
		svc := NewRegistryService(repo, 24*time.Hour)
		svc.now = func() time.Time { return now }

		repo.On("Upsert", mock.Anything, mock.Anything).Return(&model.SessionCredential{
			SessionID:       "sess-1",
			FacilityID:      "fac-1",
			ValidationToken: "tok-abc",
			IssuedAt:        now,
			ExpiresAt:       now.Add(24 * time.Hour),
		}, nil)

		result, err := svc.Mint(context.Background(), "fac-1", "sess-1")
		require.NoError(t, err)

		payload, err := qr.Decode(result.Encoded)
		require.NoError(t, err)
		join, ok := payload.(qr.SessionJoin)
		require.True(t, ok)
		assert.Equal(t, "tok-abc", join.Token)
		assert.Equal(t, "sess-1", join.SessionID)
	})
}

func TestRegistryRotate(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("fails when no credential exists for the session", func(t *testing.T) {
		repo := new(mockSessionCredentialRepo)
		svc := NewRegistryService(repo, 24*time.Hour)

		repo.On("FindBySessionID", mock.Anything, "sess-1").Return(nil, nil)

		_, err := svc.Rotate(context.Background(), "sess-1")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("replaces the token keeping the facility binding", func(t *testing.T) {
		repo := new(mockSessionCredentialRepo)
		svc := NewRegistryService(repo, 24*time.Hour)
		svc.now = func() time.Time { return now }

		repo.On("FindBySessionID", mock.Anything, "sess-1").Return(&model.SessionCredential{
			SessionID:       "sess-1",
			FacilityID:      "fac-1",
			ValidationToken: "old-token",
			ExpiresAt:       now.Add(20 * time.Hour),
		}, nil)
		repo.On("Upsert", mock.Anything, mock.MatchedBy(func(p model.UpsertSessionCredentialParams) bool {
			return p.FacilityID == "fac-1" && p.ValidationToken != "old-token"
		})).Return(&model.SessionCredential{
			SessionID:       "sess-1",
			FacilityID:      "fac-1",
			ValidationToken: "new-token",
			IssuedAt:        now,
			ExpiresAt:       now.Add(24 * time.Hour),
		}, nil)

		result, err := svc.Rotate(context.Background(), "sess-1")
		require.NoError(t, err)
		assert.Equal(t, "new-token", result.Credential.ValidationToken)
		repo.AssertExpectations(t)
	})
}

func TestRegistryValidate(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	newService := func(stored *model.SessionCredential) *RegistryService {
		repo := new(mockSessionCredentialRepo)
		if stored == nil {
			repo.On("FindBySessionID", mock.Anything, mock.Anything).Return(nil, nil)
		} else {
			repo.On("FindBySessionID", mock.Anything, stored.SessionID).Return(stored, nil)
		}
		svc := NewRegistryService(repo, 24*time.Hour)
		svc.now = func() time.Time { return now }
		return svc
	}

	t.Run("valid when token matches and not expired", func(t *testing.T) {
		svc := newService(&model.SessionCredential{
			SessionID:       "sess-1",
			FacilityID:      "fac-1",
			ValidationToken: "current",
			ExpiresAt:       now.Add(time.Hour),
		})

		status, err := svc.Validate(context.Background(), qr.SessionJoin{
			SessionID: "sess-1", FacilityID: "fac-1", Token: "current",
		})
		require.NoError(t, err)
		assert.Equal(t, CredentialValid, status)
	})

	t.Run("not found when no row exists", func(t *testing.T) {
		svc := newService(nil)

		status, err := svc.Validate(context.Background(), qr.SessionJoin{
			SessionID: "sess-9", FacilityID: "fac-1", Token: "anything",
		})
		require.NoError(t, err)
		assert.Equal(t, CredentialNotFound, status)
	})

	t.Run("expired when wall clock passed expiry", func(t *testing.T) {
		svc := newService(&model.SessionCredential{
			SessionID:       "sess-1",
			ValidationToken: "current",
			ExpiresAt:       now.Add(-time.Minute),
		})

		status, err := svc.Validate(context.Background(), qr.SessionJoin{
			SessionID: "sess-1", FacilityID: "fac-1", Token: "current",
		})
		require.NoError(t, err)
		assert.Equal(t, CredentialExpired, status)
	})

	t.Run("stale after rotation even before expiry", func(t *testing.T) {
		// The stored row carries the rotated token; a credential embedding
		// the old token must be rejected on comparison, not expiry.
		svc := newService(&model.SessionCredential{
			SessionID:       "sess-1",
			ValidationToken: "t2-rotated",
			ExpiresAt:       now.Add(23 * time.Hour),
		})

		status, err := svc.Validate(context.Background(), qr.SessionJoin{
			SessionID: "sess-1", FacilityID: "fac-1", Token: "t1-original",
		})
		require.NoError(t, err)
		assert.Equal(t, CredentialStale, status)
	})
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status   ValidationStatus
		expected apperrors.ErrorCode
	}{
		{CredentialStale, apperrors.ErrCodeStaleCredential},
		{CredentialExpired, apperrors.ErrCodeExpiredCredential},
		{CredentialNotFound, apperrors.ErrCodeCredentialNotFound},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			err := StatusError(tc.status)
			require.NotNil(t, err)
			assert.Equal(t, tc.expected, err.Code)
		})
	}

	t.Run("valid maps to nil", func(t *testing.T) {
		assert.Nil(t, StatusError(CredentialValid))
	})
}
