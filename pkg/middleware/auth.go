package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "tourism/pkg/errors"
	"tourism/pkg/logger"
	"tourism/pkg/model"
	"tourism/pkg/token"

	"github.com/julienschmidt/httprouter"
)

const principalKey contextKey = "principal"

type TokenParser interface {
	Parse(tokenString string) (*token.Claims, error)
}

func WithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) *model.Principal {
	p, _ := ctx.Value(principalKey).(*model.Principal)
	return p
}

// ErrAccountNotFound is returned by an AccountLookup for unknown subjects.
var ErrAccountNotFound = errors.New("account not found")

// AccountLookup returns the stored role of a token subject and whether the
// account may still act.
type AccountLookup func(ctx context.Context, userID string) (role model.Role, active bool, err error)

// Authenticator guards individual routes with a bearer token.
type Authenticator struct {
	tokens   TokenParser
	accounts AccountLookup
	log      *logger.Logger
}

func NewAuthenticator(tokens TokenParser, log *logger.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, log: log}
}

// WithAccounts makes every authenticated request re-read the account, so
// deactivation and role changes apply before the token expires.
func (a *Authenticator) WithAccounts(lookup AccountLookup) *Authenticator {
	a.accounts = lookup
	return a
}

func (a *Authenticator) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		raw, ok := bearerToken(r)
		if !ok {
			writeErrorBody(w, apperrors.Unauthorized("Authentication required"))
			return
		}

		claims, err := a.tokens.Parse(raw)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, token.ErrExpiredToken) {
				message = "Token expired"
			}
			a.log.Warn("Rejected bearer token",
				"request_id", RequestIDFromContext(r.Context()),
				"path", r.URL.Path,
				"error", err,
			)
			writeErrorBody(w, apperrors.Unauthorized(message))
			return
		}

		principal := &model.Principal{UserID: claims.Subject, Role: model.Role(claims.Role)}
		if a.accounts != nil {
			if appErr := a.refresh(r, principal); appErr != nil {
				writeErrorBody(w, appErr)
				return
			}
		}
		next(w, r.WithContext(WithPrincipal(r.Context(), principal)), ps)
	}
}

// refresh replaces the token role with the stored one and rejects accounts
// that were deleted or deactivated.
func (a *Authenticator) refresh(r *http.Request, p *model.Principal) *apperrors.AppError {
	role, active, err := a.accounts(r.Context(), p.UserID)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		a.log.Warn("Token subject has no account", "request_id", RequestIDFromContext(r.Context()), "user_id", p.UserID)
		return apperrors.Unauthorized("Account not found")
	case err != nil:
		a.log.Error("Failed to load account",
			"request_id", RequestIDFromContext(r.Context()),
			"user_id", p.UserID,
			"error", err,
		)
		return apperrors.Unavailable("Authentication")
	case !active:
		a.log.Warn("Rejected inactive account", "request_id", RequestIDFromContext(r.Context()), "user_id", p.UserID)
		return apperrors.Unauthorized("Account is inactive")
	}
	p.Role = role
	return nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
