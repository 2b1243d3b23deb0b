package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"Fluxo/config"
	"Fluxo/internal/domain/user"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const UserIDKey = "user_id"

// UserLookup confirma que o dono do token ainda existe.
type UserLookup interface {
	Exists(ctx context.Context, userID ulid.ULID) error
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type JwtService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	users      UserLookup
	now        func() time.Time
}

func NewJwtService(cfg config.JWTConfig, users UserLookup) (*JwtService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret vazio")
	}
	expiration := cfg.Expiration
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &JwtService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		expiration: expiration,
		users:      users,
		now:        time.Now,
	}, nil
}

// GenerateToken devolve o token assinado e o instante de expiracao.
func (s *JwtService) GenerateToken(u *user.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiration)
	claims := Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Id.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, appErrors.ErrInternalServer.WithError(err)
	}
	return signed, expiresAt, nil
}

func (s *JwtService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, appErrors.NewAuthError("INVALID_TOKEN", "Token invalido ou expirado").WithError(err)
	}
	return claims, nil
}

func AuthMiddleware(jwtSvc *JwtService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, appErrors.NewAuthError("MISSING_TOKEN", "Token de autenticacao ausente"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abortWithError(c, appErrors.NewAuthError("INVALID_TOKEN_FORMAT", "Formato esperado: Bearer {token}"))
			return
		}

		claims, err := jwtSvc.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abortWithError(c, err)
			return
		}

		userID, err := ulid.Parse(claims.Subject)
		if err != nil {
			abortWithError(c, appErrors.ErrUnauthorized.WithError(err))
			return
		}
		if jwtSvc.users != nil {
			if err := jwtSvc.users.Exists(c.Request.Context(), userID); err != nil {
				abortWithError(c, appErrors.ErrUnauthorized.WithError(err))
				return
			}
		}

		c.Set(UserIDKey, userID.String())
		ctx := c.Request.Context()
		l := logger.FromContext(ctx).With().Str("user_id", userID.String()).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(ctx, l))
		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error":   appErr.Code,
		"message": appErr.Message,
	})
}
