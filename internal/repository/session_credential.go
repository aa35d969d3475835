package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/campuspass/outpass-server/internal/model"
)

// SessionCredentialRepository stores the single current validation token per
// session. Upsert is a one-row atomic replace keyed by session_id, so two
// concurrent rotations still leave exactly one consistent token/expiry pair.
type SessionCredentialRepository interface {
	Upsert(ctx context.Context, params model.UpsertSessionCredentialParams) (*model.SessionCredential, error)
	FindBySessionID(ctx context.Context, sessionID string) (*model.SessionCredential, error)
	DeleteExpired(ctx context.Context) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) SessionCredentialRepository
}

type sessionCredentialDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type sessionCredentialRepo struct {
	db sessionCredentialDB
}

func NewSessionCredentialRepository(db *sqlx.DB) SessionCredentialRepository {
	return &sessionCredentialRepo{db: db}
}

func (r *sessionCredentialRepo) WithTx(tx *sqlx.Tx) SessionCredentialRepository {
	return &sessionCredentialRepo{db: tx}
}

func (r *sessionCredentialRepo) Upsert(ctx context.Context, params model.UpsertSessionCredentialParams) (*model.SessionCredential, error) {
	var cred model.SessionCredential
	err := r.db.GetContext(ctx, &cred, `
		INSERT INTO session_credentials (session_id, facility_id, validation_token, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE SET
			facility_id = EXCLUDED.facility_id,
			validation_token = EXCLUDED.validation_token,
			issued_at = EXCLUDED.issued_at,
			expires_at = EXCLUDED.expires_at
		RETURNING *
	`, params.SessionID, params.FacilityID, params.ValidationToken, params.IssuedAt, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *sessionCredentialRepo) FindBySessionID(ctx context.Context, sessionID string) (*model.SessionCredential, error) {
	var cred model.SessionCredential
	err := r.db.GetContext(ctx, &cred, `
		SELECT * FROM session_credentials WHERE session_id = $1
	`, sessionID)
	return HandleNotFound(&cred, err)
}

func (r *sessionCredentialRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM session_credentials WHERE expires_at < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
