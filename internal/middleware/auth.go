package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/BistroPdv/bistro-api/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const ClaimsKey = "claims"

// JWTClaims are the custom claims embedded in every access token. The tenant
// CNPJ travels in the token: handlers pass it down explicitly, and every
// repository query filters by it.
type JWTClaims struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	RestaurantCnpj string `json:"restaurant_cnpj"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "Autenticação necessária")
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid || claims.RestaurantCnpj == "" {
			abortUnauthorized(c, "Token inválido ou expirado")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	return claims
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.Envelope{
		StatusCode: http.StatusUnauthorized,
		Message:    msg,
		ErrorCode:  apierror.CodeOperationNotAllowed,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       c.Request.URL.Path,
		Method:     c.Request.Method,
		ErrorID:    uuid.NewString(),
	})
}
