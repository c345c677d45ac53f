package authentication

import (
	"net/http"
	"strings"

	"github.com/Kaptaan1992/honeybees-daycare/shared"

	"github.com/pkg/errors"
)

var ErrAuthenticationRequired = errors.New("authentication required")

// Guard wraps the admin API. Requests pass when the local login flag is set;
// the few endpoints a logged-out UI still needs stay open.
type Guard struct {
	Service Service `inject:""`
}

var openPaths = []string{
	"/api/v1/login",
	"/api/v1/session",
	"/healthz",
	"/readyz",
}

func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, path := range openPaths {
			if strings.HasPrefix(r.URL.Path, path) {
				next.ServeHTTP(w, r)
				return
			}
		}
		if !g.Service.IsAuthenticated(r.Context()) {
			shared.WriteError(w, http.StatusUnauthorized, ErrAuthenticationRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
