// Package connect provides the Connect RPC surface of the playlist service.
package connect

import (
	"context"
	"crypto/subtle"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19box-playlist/internal/infra/config"
)

const (
	// AdminTokenHeader is the header name for admin authentication token.
	AdminTokenHeader = "X-Admin-Token"
)

var errInvalidToken = errors.New("missing or invalid admin token")

// NewAdminAuthInterceptor creates an interceptor that validates admin tokens
// from request metadata.
func NewAdminAuthInterceptor(cfg *config.Config) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			token := req.Header().Get(AdminTokenHeader)
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Admin.Token)) != 1 {
				zlog.Warn().Msgf("rpc: rejected request: procedure=%s peer=%s", req.Spec().Procedure, req.Peer().Addr)
				return nil, connect.NewError(connect.CodeUnauthenticated, errInvalidToken)
			}
			return next(ctx, req)
		}
	}
}
