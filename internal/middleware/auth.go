package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/campuspass/outpass-server/internal/audit"
	"github.com/campuspass/outpass-server/internal/model"
	"github.com/campuspass/outpass-server/internal/repository"
	"github.com/campuspass/outpass-server/internal/util"
)

type contextKey string

const MemberContextKey contextKey = "member"

func GetMember(ctx context.Context) *model.Member {
	if member, ok := ctx.Value(MemberContextKey).(*model.Member); ok {
		return member
	}
	return nil
}

type AuthMiddleware struct {
	memberRepo repository.MemberRepository
}

func NewAuthMiddleware(memberRepo repository.MemberRepository) *AuthMiddleware {
	return &AuthMiddleware{memberRepo: memberRepo}
}

// Handler resolves the bearer token to an active member and stores it on the
// request context. Tokens are compared by hash; the plaintext never touches
// storage.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing authentication token",
			})
			return
		}

		tokenHash := util.HashToken(token)
		member, err := m.memberRepo.FindByTokenHash(r.Context(), tokenHash)
		if err != nil {
			log.Error().Err(err).Msg("auth middleware: database error")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Authentication failed",
			})
			return
		}

		if member == nil {
			audit.Log(r.Context(), audit.Event{Type: audit.EventAuthFailure})
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid token",
			})
			return
		}

		ctx := context.WithValue(r.Context(), MemberContextKey, member)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route to members holding the given role. It must run
// after Handler.
func RequireRole(role model.MemberRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			member := GetMember(r.Context())
			if member == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "Missing authentication token",
				})
				return
			}
			if member.Role != role {
				log.Warn().
					Str("memberId", member.ID).
					Str("role", string(member.Role)).
					Str("required", string(role)).
					Msg("role check failed")
				writeJSON(w, http.StatusForbidden, map[string]string{
					"error": "Insufficient role",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
