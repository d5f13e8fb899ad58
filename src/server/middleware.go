package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	token "placeshare/src/token"
)

const (
	authHeaderKey    = "Authorization"
	bearerPrefix     = "Bearer "
	userIDContextKey = "auth_user_id"
)

// AuthRequired verifies the bearer token on protected routes and attaches the
// authenticated user id to the request context. Stateless per-request check.
func AuthRequired(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authHeaderKey)
		if header == "" {
			respondError(c, errUnauthenticated("authorization header missing"))
			return
		}
		if !strings.HasPrefix(header, bearerPrefix) {
			respondError(c, errUnauthenticated("invalid authorization header format"))
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			respondError(c, errUnauthenticated("invalid or expired token"))
			return
		}

		c.Set(userIDContextKey, claims.Subject)
		c.Next()
	}
}

// authUserID reads the user id AuthRequired stored on the context.
func authUserID(c *gin.Context) (primitive.ObjectID, error) {
	raw := c.GetString(userIDContextKey)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, errUnauthenticated("invalid or expired token")
	}
	return id, nil
}
