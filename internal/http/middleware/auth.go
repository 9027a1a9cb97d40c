package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// UserIDLocalKey holds the authenticated subject set by JWT.
const UserIDLocalKey = "user_id"

// JWT verifies an HMAC-signed bearer token and stores its "sub" claim under
// UserIDLocalKey. The "Bearer " prefix is optional.
func JWT(secret []byte) fiber.Handler {
	keyFunc := func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}

	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "access denied, no token provided")
		}
		if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
			raw = strings.TrimSpace(raw[7:])
		}

		token, err := jwt.Parse(raw, keyFunc, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		sub, err := token.Claims.GetSubject()
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token claims")
		}
		if sub != "" {
			c.Locals(UserIDLocalKey, sub)
		}
		return c.Next()
	}
}

// UserID returns the subject stored by JWT, if any.
func UserID(c *fiber.Ctx) string {
	s, _ := c.Locals(UserIDLocalKey).(string)
	return s
}
