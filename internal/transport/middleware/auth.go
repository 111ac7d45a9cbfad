package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sekolahdigital/notify-service/internal/entity"
)

const authorizationHeader = "Authorization"

type userCtxKey struct{}

// Claims is the JWT payload issued by the school app's auth service.
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	ExtraRole string `json:"extra_role,omitempty"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token and stores the acting user in the request
// context. Websocket clients cannot set headers, so a token query parameter
// is accepted as a fallback.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			return
		}

		user, err := parseToken(token, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization token"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), userCtxKey{}, user)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader(authorizationHeader)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

func parseToken(tokenString, secret string) (*entity.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	return &entity.User{
		ID:        claims.UserID,
		Role:      claims.Role,
		ExtraRole: claims.ExtraRole,
	}, nil
}

// UserFromContext resolves the authenticated user stored by Auth, or nil for
// unauthenticated requests.
func UserFromContext(ctx context.Context) *entity.User {
	user, _ := ctx.Value(userCtxKey{}).(*entity.User)
	return user
}
