package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/arnold/studytrack-api/internal/config"
	"github.com/arnold/studytrack-api/internal/models"
)

const (
	SessionTTL = 365 * 24 * time.Hour
	userKey    = "user"
)

type Claims struct {
	UserID uint   `json:"userId"`
	OpenID string `json:"openId"`
	jwt.RegisteredClaims
}

// UserLookup loads the account a session token points at.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) *models.User
}

// Sessions issues and verifies signed session tokens. A token travels either
// in the Authorization header or in the session cookie.
type Sessions struct {
	secret []byte
	cookie string
	secure bool
	now    func() time.Time
}

func NewSessions(cfg *config.Config) *Sessions {
	return &Sessions{
		secret: []byte(cfg.JWTSecret),
		cookie: cfg.SessionCookie,
		secure: cfg.IsProduction(),
		now:    time.Now,
	}
}

func (s *Sessions) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		OpenID: user.OpenID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Sessions) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// SetCookie stores token in the session cookie.
func (s *Sessions) SetCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     s.cookie,
		Value:    token,
		Path:     "/",
		Expires:  s.now().Add(SessionTTL),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Sessions) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Sessions) token(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		if token := strings.TrimPrefix(header, "Bearer "); token != header {
			return token
		}
	}
	return c.Cookies(s.cookie)
}

// Resolve attaches the session user, if any, to the request. Requests with
// a missing or invalid token continue anonymously.
func (s *Sessions) Resolve(users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := s.token(c)
		if token == "" {
			return c.Next()
		}

		claims, err := s.ParseToken(token)
		if err != nil {
			return c.Next()
		}

		if user := users.GetUserByID(c.UserContext(), claims.UserID); user != nil {
			c.Locals(userKey, user)
		}
		return c.Next()
	}
}

// Protected rejects anonymous requests.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Please login",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the resolved session user or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
