package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/token"
)

// TokenParser validates bearer tokens.
type TokenParser interface {
	Parse(tokenString string) (*token.Claims, error)
}

// SessionResolver loads live sessions by id.
type SessionResolver interface {
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
}

// JWTAuth validates the bearer token, loads its session and attaches it to the
// request for handlers to pass on explicitly.
func JWTAuth(tokens TokenParser, sessions SessionResolver, adapter *httpcontext.Adapter, base *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if base == nil {
		base = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				reject(ctx, http.StatusUnauthorized, domain.ErrNoAuthenticatedUser)
				return
			}

			stdCtx, cancel := adapter.Attach(ctx)
			defer cancel()
			log := logger.WithRequestID(stdCtx, base)

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				log.Warn("invalid jwt token", zap.Error(err))
				reject(ctx, http.StatusUnauthorized, domain.ErrNoAuthenticatedUser)
				return
			}

			session, err := sessions.GetSession(stdCtx, claims.SessionID)
			if err != nil {
				if domain.IsDomainError(err, domain.ErrCodeStoreFailed) {
					log.Error("session lookup failed", zap.Error(err))
					reject(ctx, http.StatusServiceUnavailable, err)
					return
				}
				reject(ctx, http.StatusUnauthorized, domain.ErrNoAuthenticatedUser)
				return
			}
			if session.UserID != claims.UserID {
				log.Warn("token does not match session", zap.String("session_id", session.ID))
				reject(ctx, http.StatusUnauthorized, domain.ErrNoAuthenticatedUser)
				return
			}

			httpcontext.WithSession(ctx, session)
			next(ctx)
		}
	}
}

func reject(ctx *fasthttp.RequestCtx, status int, err error) {
	code := string(domain.ErrCodeUnauthorized)
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		code = string(dErr.Code)
	}
	body, _ := json.Marshal(transport.NewError(code, err.Error(), nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
