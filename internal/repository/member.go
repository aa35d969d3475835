package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/campuspass/outpass-server/internal/model"
)

type MemberRepository interface {
	FindByID(ctx context.Context, id string) (*model.Member, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.Member, error)
}

type memberRepo struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) FindByID(ctx context.Context, id string) (*model.Member, error) {
	var member model.Member
	err := r.db.GetContext(ctx, &member, `
		SELECT * FROM members WHERE id = $1 AND active
	`, id)
	return HandleNotFound(&member, err)
}

func (r *memberRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Member, error) {
	var member model.Member
	err := r.db.GetContext(ctx, &member, `
		SELECT * FROM members WHERE token_hash = $1 AND active
	`, tokenHash)
	return HandleNotFound(&member, err)
}
