package routes

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"quranreel/auth"
	"quranreel/logger"
	"quranreel/models"
)

// verifyJWT verifies the bearer token of the request and returns its claims
func verifyJWT(r *http.Request, secret string) (*models.AdminClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header required")
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	return auth.Verify(token, auth.VerifyConfig{
		SecretKey:      []byte(secret),
		ExpectedIssuer: auth.Issuer,
		ClockSkew:      time.Minute,
	})
}

// requireAdmin guards next with the admin token when REEL_ADMIN_SECRET is set.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORS(w, true)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if s.Config.AdminSecret != "" {
			claims, err := verifyJWT(r, s.Config.AdminSecret)
			if err != nil {
				logger.Warnf("Rejected admin request to %s from %s: %v", r.URL.Path, r.RemoteAddr, err)
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			logger.Debugf("Admin request to %s by %s", r.URL.Path, claims.Subject)
		}
		next(w, r)
	}
}
