package server

import (
	"net/http"

	"github.com/tenantops/appset-keyspaces-plugin/internal/auth"
)

// BearerMiddleware gates every route behind the shared plugin token. The
// ApplicationSet plugin protocol expects 403 on a bad credential, not 401,
// and no detail about why the check failed. A rejected request never
// reaches the handler, so no database query is issued for it.
func BearerMiddleware(authenticator *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authenticator.Verify(r.Header.Get("Authorization")); err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
