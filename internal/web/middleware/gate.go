package middleware

import (
	"net/http"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
)

// RequireToken пускает только с действующим токеном, иначе на /login
func RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := ClientFrom(r.Context())
		if client == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if _, ok := client.Session.CurrentToken(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAnyRole — без токена на /login, без нужной роли отдает forbidden
func RequireAnyRole(forbidden http.Handler, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := ClientFrom(r.Context())
			if !client.Session.HasAnyOf(r.Context(), roles...) {
				forbidden.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
