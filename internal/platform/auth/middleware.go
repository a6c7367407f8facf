package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"SAMS-backend/internal/platform/apperr"
)

const (
	CtxUserIDKey = "user_id"
	CtxRoleKey   = "role"
)

// RequireAuth: Authorization: Bearer <token> を検証して context に sub/role を詰める
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, role, err := parseBearer(secret, c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apperr.FromErr(err))
			return
		}
		c.Set(CtxUserIDKey, sub)
		c.Set(CtxRoleKey, role)
		c.Next()
	}
}

// parseBearer: HS256固定でJWTを検証し、subとrole（任意）を取り出す
func parseBearer(secret []byte, header string) (sub, role string, err error) {
	scheme, tokenStr, found := strings.Cut(header, " ")
	tokenStr = strings.TrimSpace(tokenStr)
	if !found || !strings.EqualFold(scheme, "Bearer") || tokenStr == "" {
		return "", "", apperr.Unauthenticated("missing or malformed Authorization header")
	}

	// WithValidMethods でalg none系を締め出す
	token, parseErr := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if parseErr != nil || !token.Valid {
		return "", "", apperr.Unauthenticated("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", apperr.Unauthenticated("invalid claims")
	}
	sub, ok = claims["sub"].(string)
	if !ok || sub == "" {
		return "", "", apperr.Unauthenticated("token has no subject")
	}
	role, _ = claims["role"].(string)
	return sub, role, nil
}

// RequireRole: 教員専用ルートなどを守る。RequireAuthの内側で使うこと
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		if r != "" {
			allowed[r] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		role := c.GetString(CtxRoleKey)
		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, apperr.Forbidden("forbidden"))
			return
		}
		c.Next()
	}
}
