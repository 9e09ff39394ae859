package httpcontext

import (
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskboard/domain"
)

const userValueSession = "httpcontext.session"

// WithSession attaches the authenticated session to the request.
func WithSession(ctx *fasthttp.RequestCtx, session *domain.Session) {
	ctx.SetUserValue(userValueSession, session)
}

// Session returns the session attached by the auth middleware, or nil.
func Session(ctx *fasthttp.RequestCtx) *domain.Session {
	session, _ := ctx.UserValue(userValueSession).(*domain.Session)
	return session
}
