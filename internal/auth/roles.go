package auth

import "net/http"

// Role gates. Superadmin implies admin; member gets no write access anywhere.

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.UserMetadata.Admin && !claims.UserMetadata.Superadmin {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireSuperadmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.UserMetadata.Superadmin {
			http.Error(w, "superadmin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
