package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Claims carries the subject identity asserted by the external identity
// provider. Authentication itself is delegated; this middleware only verifies
// the token signature and makes the claims available to handlers.
type Claims struct {
	Subject string
	Email   string
	Role    string
}

// ClaimsFromContext returns the verified claims, or nil when the request was
// anonymous (middleware not installed or no token presented).
func ClaimsFromContext(c echo.Context) *Claims {
	claims, _ := c.Get("auth_claims").(*Claims)
	return claims
}

// BearerClaims verifies a bearer token signed by the external identity
// provider with the shared HMAC secret and attaches its claims to the
// request. Requests without a token pass through anonymously; requests with
// an invalid token are rejected.
func BearerClaims(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "malformed authorization header")
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			claims := &Claims{}
			if mc, ok := token.Claims.(jwt.MapClaims); ok {
				claims.Subject, _ = mc["sub"].(string)
				claims.Email, _ = mc["email"].(string)
				claims.Role, _ = mc["role"].(string)
			}
			c.Set("auth_claims", claims)
			return next(c)
		}
	}
}
