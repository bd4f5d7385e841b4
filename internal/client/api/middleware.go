// Package api is the CLI's HTTP client adapter. Every request goes through
// one Doer; cross-cutting behavior (bearer token, global 401 handling,
// logging) is layered on as explicit middlewares.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/milktracker/internal/client/storage"
	"github.com/dmitrijs2005/milktracker/internal/common"
	"github.com/dmitrijs2005/milktracker/internal/logging"
	"github.com/google/uuid"
)

// Doer executes a single HTTP request.
type Doer func(*http.Request) (*http.Response, error)

type Middleware func(Doer) Doer

// Chain wraps d so that mws[0] is the outermost layer.
func Chain(d Doer, mws ...Middleware) Doer {
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](d)
	}
	return d
}

// BearerToken attaches the stored token, read at dispatch time, as an
// Authorization header. Requests go out unauthenticated when there is none.
func BearerToken(tokens storage.TokenStore) Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			tok, err := tokens.Token(req.Context())
			if err != nil {
				return nil, err
			}
			if tok != "" {
				req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+tok)
			}
			return next(req)
		}
	}
}

// OnUnauthorized applies the global policy for 401 responses: the stored
// token is dropped and hook runs, whichever caller issued the request.
// The response is still returned to the caller. No retry.
func OnUnauthorized(tokens storage.TokenStore, hook func(ctx context.Context)) Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			resp, err := next(req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}
			// the request context may already be near its deadline
			ctx := context.WithoutCancel(req.Context())
			_ = tokens.ClearToken(ctx)
			if hook != nil {
				hook(ctx)
			}
			return resp, nil
		}
	}
}

// UserAgent stamps every request with ua and a fresh request id.
func UserAgent(ua string) Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			req.Header.Set("User-Agent", ua)
			req.Header.Set("X-Request-ID", uuid.NewString())
			return next(req)
		}
	}
}

// Logging writes one debug line per request.
func Logging(l logging.Logger) Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			begin := time.Now()
			resp, err := next(req)
			args := []any{"method", req.Method, "path", req.URL.Path, "duration", time.Since(begin)}
			if err != nil {
				l.Debug(req.Context(), "request failed", append(args, "error", err)...)
				return resp, err
			}
			l.Debug(req.Context(), "request", append(args, "status", resp.StatusCode)...)
			return resp, nil
		}
	}
}
