package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by AuthMiddleware for downstream handlers.
const (
	ContextIdentity    = "identity"
	ContextDisplayName = "display_name"
	ContextRole        = "role"
)

// RoleOrganizer marks tokens allowed to hit the admin endpoints.
const RoleOrganizer = "organizer"

// GatewayClaims is the payload the chat gateway signs for each end user it
// relays: the opaque platform identity in Subject, plus display name and an
// optional role.
type GatewayClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

// AuthMiddleware validates the gateway bearer token and stores the relayed
// solver identity in the request context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims := &GatewayClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextIdentity, claims.Subject)
		c.Set(ContextDisplayName, claims.Name)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// OrganizerOnly restricts a route group to organizer-role tokens. Must run
// after AuthMiddleware.
func OrganizerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != RoleOrganizer {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "organizer role required"})
			return
		}
		c.Next()
	}
}

// GetIdentityFromRequest returns the relayed identity and display name, or
// writes a 401 and returns false when the context carries none.
func GetIdentityFromRequest(c *gin.Context) (identity, displayName string, ok bool) {
	identity = c.GetString(ContextIdentity)
	if identity == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no authenticated identity"})
		return "", "", false
	}
	return identity, c.GetString(ContextDisplayName), true
}
