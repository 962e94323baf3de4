package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"github.com/calebward/aurum/common/redact"
	"github.com/calebward/aurum/common/trace"
	"github.com/calebward/aurum/internal/aurum/authz"
)

type userCtxKey struct{}
type rawTokenKey struct{}

// userFrom returns the authenticated caller placed on the context by the
// auth middleware.
func userFrom(ctx context.Context) (authz.UserContext, bool) {
	u, ok := ctx.Value(userCtxKey{}).(authz.UserContext)
	return u, ok
}

// rawTokenFrom returns the verbatim bearer token, forwarded downstream so
// the data services apply their own authorization to the same identity.
func rawTokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(rawTokenKey{}).(string)
	return t
}

// authMiddleware verifies the bearer token and attaches the resulting
// UserContext and the raw token to the request context. Any failure is a 401;
// the response body stays in the assistant's JSON contract.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, prefix) {
			writeJSON(w, http.StatusUnauthorized, errorResponse("Please sign in to use the assistant."))
			return
		}
		raw := strings.TrimSpace(header[len(prefix):])

		user, err := s.parseToken(raw)
		if err != nil {
			slog.Debug("rejected bearer token",
				"request", trace.RequestID(r.Context()),
				"token", redact.BearerToken(raw),
				"err", err,
			)
			writeJSON(w, http.StatusUnauthorized, errorResponse("Your session is invalid or has expired. Please sign in again."))
			return
		}

		ctx := context.WithValue(r.Context(), userCtxKey{}, user)
		ctx = context.WithValue(ctx, rawTokenKey{}, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// parseToken validates the HMAC signature and standard claims, then maps the
// identity claims onto a UserContext. A token without a subject or with a
// role outside the closed set is rejected outright.
func (s *Server) parseToken(raw string) (authz.UserContext, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return authz.UserContext{}, fmt.Errorf("parse token: %w", err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return authz.UserContext{}, errors.New("token has no subject")
	}

	roleClaim, _ := claims["role"].(string)
	role, err := authz.ParseRole(roleClaim)
	if err != nil {
		return authz.UserContext{}, err
	}

	email, _ := claims["email"].(string)
	username, _ := claims["preferred_username"].(string)
	if username == "" {
		username, _ = claims["username"].(string)
	}
	verified, _ := claims["email_verified"].(bool)

	return authz.UserContext{
		UserID:        sub,
		Email:         email,
		Username:      username,
		Role:          role,
		EmailVerified: verified,
	}, nil
}
